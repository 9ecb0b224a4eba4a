package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumiya-kume/reorg/pkg/logger"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "preserve", cfg.Reorg.Strategy)
	assert.Equal(t, "reorg", cfg.Reorg.Namespace)
	assert.True(t, cfg.Reorg.KeepSafetyRef)
	assert.Equal(t, 10*time.Minute, cfg.Editor.Timeout)
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reorg.Strategy = "rebase"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyNamespace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reorg.Namespace = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyGitPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reorg.GitPath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsShortEditorTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor.Timeout = 100 * time.Millisecond
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("REORG_EDITOR", "")
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	t.Setenv("REORG_STRATEGY", "squash")
	t.Setenv("REORG_LOG_LEVEL", "warn")
	t.Setenv("REORG_LOG_FILE", "/tmp/reorg-test.log")
	t.Setenv("REORG_DEBUG", "")

	cfg := DefaultConfig()
	cfg.ApplyEnvironmentOverrides()

	assert.Equal(t, "squash", cfg.Reorg.Strategy)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/reorg-test.log", cfg.Logging.File)
}

func TestApplyEnvironmentOverridesDebugForcesLogLevel(t *testing.T) {
	t.Setenv("REORG_EDITOR", "")
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	t.Setenv("REORG_STRATEGY", "")
	t.Setenv("REORG_LOG_LEVEL", "")
	t.Setenv("REORG_LOG_FILE", "")
	t.Setenv("REORG_DEBUG", "true")

	cfg := DefaultConfig()
	cfg.ApplyEnvironmentOverrides()

	assert.Equal(t, logLevelDebug, cfg.Logging.Level)
}

func TestApplyEnvironmentOverridesEditorPriority(t *testing.T) {
	t.Setenv("REORG_EDITOR", "")
	t.Setenv("VISUAL", "code --wait")
	t.Setenv("EDITOR", "vim")

	cfg := DefaultConfig()
	cfg.ApplyEnvironmentOverrides()

	assert.Equal(t, "code --wait", cfg.Editor.Command)
}

func TestToLoggerConfigMapsLevels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"

	loggerCfg := cfg.ToLoggerConfig()
	assert.Equal(t, logger.LevelWarn, loggerCfg.Level)
	assert.Equal(t, "reorg", loggerCfg.Prefix)
	assert.False(t, loggerCfg.Debug)
}

func TestConfigValidatorStrictWarnsOnMissingEditor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor.Command = ""

	validator := NewConfigValidator(ValidationLevelStrict)
	result := validator.ValidateConfig(cfg)

	require.False(t, result.HasErrors())
	assert.Contains(t, result.Warnings, "editor command not specified")
}

func TestConfigValidatorCompleteWarnsOnNoVerify(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reorg.NoVerify = true

	validator := NewConfigValidator(ValidationLevelComplete)
	result := validator.ValidateConfig(cfg)

	require.False(t, result.HasErrors())
	assert.Contains(t, result.Warnings, "commit verification hooks are disabled")
}

func TestConfigValidatorRejectsInvalidStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reorg.Strategy = "rebase"

	validator := NewConfigValidator(ValidationLevelBasic)
	result := validator.ValidateConfig(cfg)

	assert.True(t, result.HasErrors())
}

func TestGetConfigPathsHonorsEnvOverride(t *testing.T) {
	t.Setenv("REORG_CONFIG", "/tmp/custom-reorg.yaml")
	paths := GetConfigPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "/tmp/custom-reorg.yaml", paths[0])
}
