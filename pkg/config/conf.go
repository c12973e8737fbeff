package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forecastlab/pmeval/pkg/eval"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config holds the app defaults for evaluation runs. Flags override these
// per invocation.
type Config struct {
	Source     string          `yaml:"source"`
	Seed       int64           `yaml:"seed"`
	TestFrac   float64         `yaml:"testFraction"`
	ValFrac    float64         `yaml:"valFraction"`
	Folds      int             `yaml:"folds"`
	Bins       int             `yaml:"bins"`
	Thresholds eval.Thresholds `yaml:"thresholds"`
}

func getDefaultConfig() *Config {
	return &Config{
		Seed:       eval.DefaultSeed,
		TestFrac:   eval.DefaultTestFraction,
		ValFrac:    eval.DefaultValFraction,
		Folds:      eval.DefaultFolds,
		Bins:       eval.DefaultBins,
		Thresholds: eval.DefaultThresholds(),
	}
}

// Options maps the file config to engine options.
func (c *Config) Options() eval.Options {
	return eval.Options{
		Seed:         c.Seed,
		TestFraction: c.TestFrac,
		ValFraction:  c.ValFrac,
		Folds:        c.Folds,
		Bins:         c.Bins,
		Thresholds:   c.Thresholds,
	}
}

// Save writes the config file into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads the app config from dirPath, creating the directory and
// a default config file when either is missing.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current user,
// creating it when missing. The create flag reports whether it was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("getting user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("creating dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
