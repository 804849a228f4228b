// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the opcode-index engine and its CLI.
package observability

import "log/slog"

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the Cobra command-line execution mode.
	ModeCLI AppMode = "cli"
	// ModeEngine is the in-process engine facade mode (library embedding).
	ModeEngine AppMode = "engine"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "opcode-index"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration. There is no OTLP exporter
// configuration: the engine never dials out over the network, so tracing
// is always a no-op and metrics are only ever scraped in-process via the
// Prometheus handler returned from Init.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "staging", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
