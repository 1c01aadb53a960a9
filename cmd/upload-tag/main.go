package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/slaclab/aes-stream-drivers/internal/common"
	"github.com/slaclab/aes-stream-drivers/internal/ghrelease"
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
	repoFlag    = flag.String("repo", "", "GitHub repository in the format 'owner/repository'")
	tagFlag     = flag.String("tag", "", "Tag of the release to upload to")
	fileFlag    = flag.String("file", "", "Path to the file to upload")
	tokenEnv    = flag.String("token-env", "", "Environment variable holding the GitHub token (overrides config)")
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
		fmt.Printf("upload-tag version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	required := []struct{ name, value string }{
		{"repo", *repoFlag},
		{"tag", *tagFlag},
		{"file", *fileFlag},
	}
	for _, f := range required {
		if f.value == "" {
			fmt.Printf("Error: --%s flag is required\n", f.name)
			flag.Usage()
			os.Exit(1)
		}
	}

	// Reject a malformed repository identifier before any network activity.
	if _, _, err := ghrelease.SplitRepo(*repoFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
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

	if *tokenEnv != "" {
		config.GitHub.TokenEnv = *tokenEnv
	}

	logger = common.InitLogger(config).WithCorrelationId(common.NewRunID())
	common.PrintBanner("upload-tag")

	fmt.Println("Logging into GitHub...")

	// The token check runs before any network activity.
	token := os.Getenv(config.GitHub.TokenEnv)
	if token == "" {
		logger.Fatal().
			Str("variable", config.GitHub.TokenEnv).
			Msgf("Failed to get GitHub token from %s environment variable", config.GitHub.TokenEnv)
		os.Exit(1)
	}

	client, err := ghrelease.NewClient(token,
		ghrelease.WithLogger(logger),
		ghrelease.WithRateLimit(config.GitHub.RateLimit),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create GitHub client")
		os.Exit(1)
	}

	ctx := context.Background()

	login, err := client.Login(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("GitHub login failed")
		os.Exit(1)
	}
	logger.Info().Str("user", login).Msg("Logged in to GitHub")

	asset, err := client.UploadReleaseAsset(ctx, *repoFlag, *tagFlag, *fileFlag)
	if err != nil {
		logger.Fatal().
			Str("repo", *repoFlag).
			Str("tag", *tagFlag).
			Str("file", *fileFlag).
			Err(err).
			Msg("Failed to upload release asset")
		os.Exit(1)
	}

	logger.Info().
		Str("asset", asset.GetName()).
		Str("url", asset.GetBrowserDownloadURL()).
		Msg("Release asset uploaded")

	fmt.Printf("Successfully uploaded %s to release %s in repository %s.\n", *fileFlag, *tagFlag, *repoFlag)
}
