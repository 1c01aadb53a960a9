package tidy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfigName is the configuration file the analysis tool itself
// reads from the project root.
const ProjectConfigName = ".clang-tidy"

// ProjectConfig holds the subset of .clang-tidy settings worth reporting
// before a batch run.
type ProjectConfig struct {
	Checks            string `yaml:"Checks"`
	WarningsAsErrors  string `yaml:"WarningsAsErrors"`
	HeaderFilterRegex string `yaml:"HeaderFilterRegex"`
}

// LoadProjectConfig reads dir's .clang-tidy file. A missing file is not an
// error; callers get (nil, nil) and should carry on.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ProjectConfigName, err)
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectConfigName, err)
	}
	return &config, nil
}
