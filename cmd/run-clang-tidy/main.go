package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/slaclab/aes-stream-drivers/internal/common"
	"github.com/slaclab/aes-stream-drivers/internal/compiledb"
	"github.com/slaclab/aes-stream-drivers/internal/tidy"
	"github.com/ternarybob/arbor"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	tidyExe     = flag.String("e", "", "Analysis executable to run per file (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")

	configFiles configPaths // Multiple -config flags supported

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("run-clang-tidy version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	if len(configFiles) == 0 {
		if path := common.DiscoverConfigFile(); path != "" {
			configFiles = append(configFiles, path)
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *tidyExe != "" {
		config.Tidy.Executable = *tidyExe
	}

	logger = common.InitLogger(config).WithCorrelationId(common.NewRunID())
	common.PrintBanner("run-clang-tidy")

	db, err := compiledb.Load(config.Tidy.Database)
	if err != nil {
		logger.Fatal().Str("file", config.Tidy.Database).Err(err).Msg("Failed to load compile database")
		os.Exit(1)
	}

	// Report the project's analysis settings when a .clang-tidy file exists.
	projectConfig, err := tidy.LoadProjectConfig(".")
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable project analysis configuration")
	} else if projectConfig != nil {
		logger.Info().
			Str("checks", projectConfig.Checks).
			Str("warnings_as_errors", projectConfig.WarningsAsErrors).
			Msg("Project analysis configuration")
	}

	logger.Info().
		Str("executable", config.Tidy.Executable).
		Str("build_path", config.Tidy.BuildPath).
		Int("files", len(db)).
		Msg("Starting analysis batch")

	runner := tidy.NewRunner(config.Tidy.Executable, config.Tidy.BuildPath)
	summary, err := runner.Run(context.Background(), db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Analysis batch aborted")
		os.Exit(1)
	}

	summary.Print(os.Stdout)

	if !summary.AllPassed() {
		logger.Error().
			Int("failed", summary.Failed()).
			Int("passed", summary.Passed()).
			Msg("Analysis batch finished with failures")
		os.Exit(1)
	}

	logger.Info().Int("files", summary.Passed()).Msg("Analysis batch finished successfully")
}
