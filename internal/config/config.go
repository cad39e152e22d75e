package config

import "errors"

// Config is the top-level configuration struct for covscope.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Report        ReportConfig        `mapstructure:"report"`
	Check         CheckConfig         `mapstructure:"check"`
	Payload       PayloadConfig       `mapstructure:"payload"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	Name   string `mapstructure:"name"`
}

// CheckConfig holds minimum covered-percent thresholds for the check
// gate. A zero threshold disables the corresponding gate.
type CheckConfig struct {
	Lines        float64 `mapstructure:"lines"`
	Instructions float64 `mapstructure:"instructions"`
	Branches     float64 `mapstructure:"branches"`
	Methods      float64 `mapstructure:"methods"`
}

// PayloadConfig holds diff payload generation settings.
type PayloadConfig struct {
	Languages   []string `mapstructure:"languages"`
	MaxFileSize int      `mapstructure:"max_file_size"`
}

// ObservabilityConfig holds logging and telemetry settings.
type ObservabilityConfig struct {
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
}

// thresholdMax is the upper bound for check gate thresholds.
const thresholdMax = 100.0

// sampleRatioMax is the upper bound for the trace sample ratio.
const sampleRatioMax = 1.0

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLinesThreshold indicates the lines threshold is out of range.
	ErrInvalidLinesThreshold = errors.New("check.lines must be between 0 and 100")
	// ErrInvalidInstructionsThreshold indicates the instructions threshold is out of range.
	ErrInvalidInstructionsThreshold = errors.New("check.instructions must be between 0 and 100")
	// ErrInvalidBranchesThreshold indicates the branches threshold is out of range.
	ErrInvalidBranchesThreshold = errors.New("check.branches must be between 0 and 100")
	// ErrInvalidMethodsThreshold indicates the methods threshold is out of range.
	ErrInvalidMethodsThreshold = errors.New("check.methods must be between 0 and 100")
	// ErrInvalidMaxFileSize indicates the payload max file size is negative.
	ErrInvalidMaxFileSize = errors.New("payload.max_file_size must be non-negative")
	// ErrInvalidSampleRatio indicates the trace sample ratio is out of range.
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	checkErr := c.validateCheck()
	if checkErr != nil {
		return checkErr
	}

	if c.Payload.MaxFileSize < 0 {
		return ErrInvalidMaxFileSize
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > sampleRatioMax {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateCheck() error {
	if !thresholdInRange(c.Check.Lines) {
		return ErrInvalidLinesThreshold
	}

	if !thresholdInRange(c.Check.Instructions) {
		return ErrInvalidInstructionsThreshold
	}

	if !thresholdInRange(c.Check.Branches) {
		return ErrInvalidBranchesThreshold
	}

	if !thresholdInRange(c.Check.Methods) {
		return ErrInvalidMethodsThreshold
	}

	return nil
}

func thresholdInRange(value float64) bool {
	return value >= 0 && value <= thresholdMax
}
