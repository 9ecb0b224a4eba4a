// Package config provides configuration management and settings for reorg
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fumiya-kume/reorg/pkg/logger"
)

// Log level constants
const (
	logLevelDebug = "debug"
)

// ValidationLevel represents the level of configuration validation
type ValidationLevel int

const (
	ValidationLevelBasic ValidationLevel = iota
	ValidationLevelStrict
	ValidationLevelComplete
)

// ConfigValidator validates configuration
type ConfigValidator struct {
	level ValidationLevel
}

// ConfigValidationResult contains validation results
type ConfigValidationResult struct {
	Errors   []error
	Warnings []string
}

// HasErrors returns true if there are validation errors
func (cvr *ConfigValidationResult) HasErrors() bool {
	return len(cvr.Errors) > 0
}

// NewConfigValidator creates a new config validator
func NewConfigValidator(level ValidationLevel) *ConfigValidator {
	return &ConfigValidator{level: level}
}

// ValidateConfig validates a configuration
func (cv *ConfigValidator) ValidateConfig(config *Config) *ConfigValidationResult {
	result := &ConfigValidationResult{
		Errors:   []error{},
		Warnings: []string{},
	}

	if err := cv.validateBasicConfig(config); err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	cv.validateVersion(config, result)
	cv.validateReorgConfig(config, result)
	cv.validateStrictLevel(config, result)
	cv.validateCompleteLevel(config, result)

	return result
}

// validateBasicConfig performs basic null checks
func (cv *ConfigValidator) validateBasicConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	return nil
}

// validateVersion validates the configuration version
func (cv *ConfigValidator) validateVersion(config *Config, result *ConfigValidationResult) {
	if config.Version == "" {
		result.Errors = append(result.Errors, fmt.Errorf("version cannot be empty"))
		return
	}

	validVersions := map[string]bool{"1.0": true, "2.0": true}
	if !validVersions[config.Version] {
		result.Errors = append(result.Errors, fmt.Errorf("invalid version format: %s", config.Version))
	}
}

// validateReorgConfig validates reorg-specific configuration
func (cv *ConfigValidator) validateReorgConfig(config *Config, result *ConfigValidationResult) {
	validStrategies := map[string]bool{"preserve": true, "by-file": true, "squash": true, "absorb": true}
	if !validStrategies[config.Reorg.Strategy] {
		result.Errors = append(result.Errors, fmt.Errorf("invalid strategy: %s", config.Reorg.Strategy))
	}
	for _, label := range config.GitHub.AnnotationLabels {
		if label == "" {
			result.Errors = append(result.Errors, fmt.Errorf("GitHub label cannot be empty"))
			return
		}
	}
}

// validateStrictLevel performs strict-level validation
func (cv *ConfigValidator) validateStrictLevel(config *Config, result *ConfigValidationResult) {
	if cv.level < ValidationLevelStrict {
		return
	}

	if config.Editor.Command == "" {
		result.Warnings = append(result.Warnings, "editor command not specified")
	}
}

// validateCompleteLevel performs complete-level validation
func (cv *ConfigValidator) validateCompleteLevel(config *Config, result *ConfigValidationResult) {
	if cv.level < ValidationLevelComplete {
		return
	}

	if config.Reorg.NoVerify {
		result.Warnings = append(result.Warnings, "commit verification hooks are disabled")
	}
}

// Config represents the application configuration
type Config struct {
	Version string `yaml:"version"`

	Reorg  ReorgConfig  `yaml:"reorg"`
	Editor EditorConfig `yaml:"editor"`
	GitHub GitHubConfig `yaml:"github"`

	Logging LoggingConfig `yaml:"logging"`
}

// ReorgConfig holds behavior settings for the reorganization core
type ReorgConfig struct {
	Namespace     string `yaml:"namespace"`
	Strategy      string `yaml:"strategy"`
	NoEditor      bool   `yaml:"no_editor"`
	NoVerify      bool   `yaml:"no_verify"`
	KeepSafetyRef bool   `yaml:"keep_safety_ref"`
	GitPath       string `yaml:"git_path"`
}

// EditorConfig holds settings for the external commit-message editor
type EditorConfig struct {
	Command string        `yaml:"command"`
	Args    []string       `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// GitHubConfig holds optional GitHub-aware rendering settings used by `reorg show`
type GitHubConfig struct {
	AnnotationLabels []string `yaml:"annotation_labels"`
	UseCLI           bool     `yaml:"use_cli"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Format     string `yaml:"format"`
	Rotation   bool   `yaml:"rotation"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Use current directory as fallback if home directory cannot be determined
		homeDir = "."
	}

	return &Config{
		Version: "1.0",

		Reorg: ReorgConfig{
			Namespace:     "reorg",
			Strategy:      "preserve",
			NoEditor:      false,
			NoVerify:      false,
			KeepSafetyRef: true,
			GitPath:       "git",
		},

		Editor: EditorConfig{
			Command: "",
			Args:    nil,
			Timeout: 10 * time.Minute,
		},

		GitHub: GitHubConfig{
			AnnotationLabels: []string{},
			UseCLI:           true,
		},

		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(homeDir, ".reorg", "logs", "reorg.log"),
			Format:     "text",
			Rotation:   true,
			MaxSize:    100, // MB
			MaxAge:     30,  // days
			MaxBackups: 5,
		},
	}
}

// GetConfigPaths returns the list of configuration file paths to check
func GetConfigPaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Use current directory as fallback if home directory cannot be determined
		homeDir = "."
	}

	paths := []string{
		".reorg.yaml",
		".reorg.yml",
		filepath.Join(homeDir, ".reorg.yaml"),
		filepath.Join(homeDir, ".reorg.yml"),
		filepath.Join(homeDir, ".config", "reorg", "config.yaml"),
		filepath.Join(homeDir, ".config", "reorg", "config.yml"),
	}

	// Add environment variable override
	if envPath := os.Getenv("REORG_CONFIG"); envPath != "" {
		paths = append([]string{envPath}, paths...)
	}

	return paths
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validStrategies := map[string]bool{"preserve": true, "by-file": true, "squash": true, "absorb": true}
	if !validStrategies[c.Reorg.Strategy] {
		return fmt.Errorf("reorg.strategy must be one of: preserve, by-file, squash, absorb")
	}
	if c.Reorg.Namespace == "" {
		return fmt.Errorf("reorg.namespace cannot be empty")
	}
	if c.Reorg.GitPath == "" {
		return fmt.Errorf("reorg.git_path cannot be empty")
	}

	if c.Editor.Timeout < time.Second {
		return fmt.Errorf("editor.timeout must be at least 1 second")
	}

	// Validate Logging configuration
	validLevels := map[string]bool{
		logLevelDebug: true,
		"info":        true,
		"warn":        true,
		"error":       true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}

// ApplyEnvironmentOverrides applies environment variable overrides to the configuration
func (c *Config) ApplyEnvironmentOverrides() {
	// Editor overrides
	if cmd := os.Getenv("REORG_EDITOR"); cmd != "" {
		c.Editor.Command = cmd
	} else if cmd := os.Getenv("VISUAL"); cmd != "" && c.Editor.Command == "" {
		c.Editor.Command = cmd
	} else if cmd := os.Getenv("EDITOR"); cmd != "" && c.Editor.Command == "" {
		c.Editor.Command = cmd
	}

	// Strategy override
	if strategy := os.Getenv("REORG_STRATEGY"); strategy != "" {
		c.Reorg.Strategy = strategy
	}

	// Logging overrides
	if level := os.Getenv("REORG_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("REORG_LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	// Debug mode override
	if os.Getenv("REORG_DEBUG") == "true" {
		c.Logging.Level = logLevelDebug
	}
}

// ToLoggerConfig converts the logging configuration to logger.Config
func (c *Config) ToLoggerConfig() logger.Config {
	var level logger.Level
	switch c.Logging.Level {
	case logLevelDebug:
		level = logger.LevelDebug
	case "info":
		level = logger.LevelInfo
	case "warn":
		level = logger.LevelWarn
	case "error":
		level = logger.LevelError
	default:
		level = logger.LevelInfo
	}

	return logger.Config{
		Level:     level,
		LogFile:   c.Logging.File,
		Debug:     c.Logging.Level == logLevelDebug,
		Timestamp: true,
		Prefix:    "reorg",
	}
}
