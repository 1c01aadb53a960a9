package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the shared configuration file looked up when no
// -config flag is given.
const ConfigFileName = "aes-tools.toml"

// Config represents the shared configuration for the driver tooling.
// All values have working defaults; a config file is never required.
type Config struct {
	Clang   ClangConfig   `toml:"clang"`
	Tidy    TidyConfig    `toml:"tidy"`
	GitHub  GitHubConfig  `toml:"github"`
	Logging LoggingConfig `toml:"logging"`
}

// ClangConfig controls how the compile-database filter queries the compiler.
type ClangConfig struct {
	Executable string   `toml:"executable" validate:"required"` // compiler queried for supported flags
	Strip      []string `toml:"strip"`                          // extra flags to strip, merged with the built-in defaults
}

// TidyConfig controls the clang-tidy batch runner.
type TidyConfig struct {
	Executable string `toml:"executable" validate:"required"` // analysis command to invoke per file
	BuildPath  string `toml:"build_path" validate:"required"` // passed as -p=<path>
	Database   string `toml:"database" validate:"required"`   // compile database filename in the working directory
}

// GitHubConfig controls the release uploader.
type GitHubConfig struct {
	TokenEnv  string `toml:"token_env" validate:"required"`      // environment variable holding the API token
	RateLimit int    `toml:"rate_limit" validate:"min=1,max=50"` // client-side API requests per second
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
}

// NewDefaultConfig returns the built-in defaults. Defaults alone satisfy
// every tool contract; files, environment and flags only override.
func NewDefaultConfig() *Config {
	return &Config{
		Clang: ClangConfig{
			Executable: "clang",
			Strip:      []string{},
		},
		Tidy: TidyConfig{
			Executable: "clang-tidy",
			BuildPath:  ".",
			Database:   "compile_commands.json",
		},
		GitHub: GitHubConfig{
			TokenEnv:  "GITHUB_TOKEN",
			RateLimit: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console"},
		},
	}
}

// DiscoverConfigFile returns the path of the shared config file, looking in
// the working directory first and next to the executable second. Returns ""
// when no file exists; the tools then run on defaults.
func DiscoverConfigFile() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(execPath), ConfigFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier ones; CLI flag
// overrides are applied by the caller on top.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies AES_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("AES_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("AES_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if exe := os.Getenv("AES_CLANG_EXECUTABLE"); exe != "" {
		config.Clang.Executable = exe
	}
	if strip := os.Getenv("AES_CLANG_STRIP"); strip != "" {
		flags := []string{}
		for _, f := range strings.Split(strip, ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				flags = append(flags, trimmed)
			}
		}
		config.Clang.Strip = flags
	}

	if exe := os.Getenv("AES_TIDY_EXECUTABLE"); exe != "" {
		config.Tidy.Executable = exe
	}
	if buildPath := os.Getenv("AES_TIDY_BUILD_PATH"); buildPath != "" {
		config.Tidy.BuildPath = buildPath
	}
	if database := os.Getenv("AES_TIDY_DATABASE"); database != "" {
		config.Tidy.Database = database
	}

	if tokenEnv := os.Getenv("AES_GITHUB_TOKEN_ENV"); tokenEnv != "" {
		config.GitHub.TokenEnv = tokenEnv
	}
	if rateLimit := os.Getenv("AES_GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.GitHub.RateLimit = rl
		} else {
			GetLogger().Warn().Str("value", rateLimit).Msg("Ignoring non-numeric AES_GITHUB_RATE_LIMIT")
		}
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
