package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/slaclab/aes-stream-drivers/internal/clang"
	"github.com/slaclab/aes-stream-drivers/internal/common"
	"github.com/slaclab/aes-stream-drivers/internal/compiledb"
)

// stringList is a custom flag type that allows a flag to be repeated
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

var (
	// Command-line flags
	dbFile      = flag.String("f", "compile_commands.json", "Compile database to filter")
	clangExe    = flag.String("clang", "", "Compiler executable to query for supported flags (overrides config)")
	writeBack   = flag.Bool("w", false, "Write the result back to the input file instead of stdout")
	showVersion = flag.Bool("version", false, "Print version information")

	stripFlags  stringList // Multiple --strip flags supported
	configFiles stringList // Multiple -config flags supported
)

func init() {
	flag.Var(&stripFlags, "strip", "Additional flag to remove (can be specified multiple times)")
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("filter-clangdb version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Errors go to stderr; stdout carries nothing but the filtered database.
	if len(configFiles) == 0 {
		if path := common.DiscoverConfigFile(); path != "" {
			configFiles = append(configFiles, path)
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply command-line flag overrides (highest priority)
	if *clangExe != "" {
		config.Clang.Executable = *clangExe
	}

	// A missing input is a hard error; a filter run never produces partial output.
	db, err := compiledb.Load(*dbFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	supported, err := clang.QuerySupportedFlags(context.Background(), config.Clang.Executable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	extra := make([]string, 0, len(config.Clang.Strip)+len(stripFlags))
	extra = append(extra, config.Clang.Strip...)
	extra = append(extra, stripFlags...)

	filtered := compiledb.NewFilter(supported, extra...).Apply(db)

	if *writeBack {
		if err := filtered.Save(*dbFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	data, err := filtered.MarshalIndent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
