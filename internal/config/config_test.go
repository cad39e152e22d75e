package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Report: config.ReportConfig{
			Format: "table",
			Output: "coverage.txt",
			Name:   "nightly",
		},
		Check: config.CheckConfig{
			Lines:        80,
			Instructions: 75,
			Branches:     60,
			Methods:      90,
		},
		Payload: config.PayloadConfig{
			Languages:   []string{"Go", "Java"},
			MaxFileSize: 1 << 20,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:    "debug",
			SampleRatio: 0.25,
		},
	}
}

func TestValidate_ValidConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_ZeroConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	require.NoError(t, cfg.Validate())
}

func TestValidate_LinesThresholdNegative_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Check.Lines = -1

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidLinesThreshold)
}

func TestValidate_LinesThresholdTooHigh_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Check.Lines = 100.5

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidLinesThreshold)
}

func TestValidate_InstructionsThreshold_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Check.Instructions = 101

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidInstructionsThreshold)
}

func TestValidate_BranchesThreshold_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Check.Branches = -0.1

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidBranchesThreshold)
}

func TestValidate_MethodsThreshold_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Check.Methods = 200

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidMethodsThreshold)
}

func TestValidate_NegativeMaxFileSize_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Payload.MaxFileSize = -1

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidMaxFileSize)
}

func TestValidate_SampleRatioNegative_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Observability.SampleRatio = -0.1

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidSampleRatio)
}

func TestValidate_SampleRatioTooHigh_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Observability.SampleRatio = 1.1

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidSampleRatio)
}
