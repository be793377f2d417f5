package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".exposurescan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .exposurescan configuration file.
// Every field is optional; unset fields leave the Config untouched.
type File struct {
	DBDir         string `yaml:"dbDir,omitempty"`
	Verbose       *bool  `yaml:"verbose,omitempty"`
	BatchSize     int    `yaml:"batchSize,omitempty"`
	MaxTextBytes  int    `yaml:"maxTextBytes,omitempty"`
	SnippetLength int    `yaml:"snippetLength,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
	CatalogFile   string `yaml:"catalogFile,omitempty"`

	// Format is "text", "json" or "markdown".
	Format     string `yaml:"format,omitempty"`
	ReportFile string `yaml:"reportFile,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cf, nil
}

// Apply copies the values set in the file onto cfg. Relative paths are
// resolved against the directory holding the file.
func (cf *File) Apply(cfg *Config, fileDir string) error {
	if cf.DBDir != "" {
		cfg.DBDir = resolvePath(cf.DBDir, fileDir)
	}
	if cf.Verbose != nil {
		cfg.Verbose = *cf.Verbose
	}
	if cf.BatchSize != 0 {
		cfg.BatchSize = cf.BatchSize
	}
	if cf.MaxTextBytes != 0 {
		cfg.MaxTextBytes = cf.MaxTextBytes
	}
	if cf.SnippetLength != 0 {
		cfg.SnippetLength = cf.SnippetLength
	}
	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, cf.Timeout)
		}
		cfg.Timeout = d
	}
	if cf.CatalogFile != "" {
		cfg.CatalogFile = resolvePath(cf.CatalogFile, fileDir)
	}
	if cf.ReportFile != "" {
		cfg.ReportFile = cf.ReportFile
	}

	switch cf.Format {
	case "":
	case "json":
		cfg.JSONReport, cfg.MarkdownReport = true, false
	case "markdown", "md":
		cfg.JSONReport, cfg.MarkdownReport = false, true
	case "text":
		cfg.JSONReport, cfg.MarkdownReport = false, false
	default:
		return fmt.Errorf("%w: unknown format %q", ErrConflictingReportFormats, cf.Format)
	}

	return nil
}

func resolvePath(path, dir string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .exposurescan in the current directory
// 3. Look for .exposurescan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
