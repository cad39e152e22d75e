// Package config provides YAML-based project configuration for covscope.
package config

import "github.com/covscope/covscope/pkg/units"

// Report defaults.
const (
	DefaultReportFormat = "text"
	DefaultReportOutput = ""
	DefaultReportName   = "coverage"
)

// Check gate defaults. Zero disables a gate.
const (
	DefaultCheckLines        = 0.0
	DefaultCheckInstructions = 0.0
	DefaultCheckBranches     = 0.0
	DefaultCheckMethods      = 0.0
)

// Payload generation defaults.
const (
	DefaultPayloadMaxFileSize = units.MiB
)

// Observability defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogJSON     = false
	DefaultSampleRatio = 0.0
	DefaultMetricsAddr = ""
)
