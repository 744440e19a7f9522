package lint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/selfassign/internal"
	tt "github.com/gnolang/selfassign/internal/types"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".selfassign.yaml"

// Config represents the overall configuration with a name and a set of rules.
type Config struct {
	Name        string                   `yaml:"name"`
	Rules       map[string]tt.ConfigRule `yaml:"rules"`
	IgnorePaths []string                 `yaml:"ignore-paths,omitempty"`
}

// DefaultConfig enables every known rule at its default severity.
func DefaultConfig() Config {
	return Config{
		Name:  "selfassign",
		Rules: internal.DefaultRules(),
	}
}

// LoadConfig reads the configuration at path. A missing file yields the
// default configuration.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	var config Config
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return config, nil
}

// WriteConfig writes config to path as YAML.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
