// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string `json:"level"`

	// Format is the output format (json, console)
	Format string `json:"format"`

	// Output is the output destination (stdout, stderr, file path)
	Output string `json:"output"`

	// Development enables development mode
	Development bool `json:"development"`
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// SetDefaults fills empty fields from DefaultConfig.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Output == "" {
		c.Output = d.Output
	}
}

func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format: unsupported %q (json, console)", c.Format)
	}
	return nil
}

// New builds a logger from cfg for the named binary. Every entry carries a
// service field so the gateway and the gRPC process can share a log sink. An
// unparsable level falls back to info.
//
// Outside development mode repeated entries are sampled per second, since the
// HTTP access log writes one entry per request.
func New(cfg Config, service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink, terminal, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format, terminal), sink, level)
	opts := []zap.Option{zap.AddCaller()}
	if service != "" {
		opts = append(opts, zap.Fields(zap.String("service", service)))
	}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}
	return zap.New(core, opts...), nil
}

// newEncoder uses RFC3339Nano timestamps, matching the API. Colour is only
// used when writing to a terminal stream.
func newEncoder(format string, terminal bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if terminal {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

func openOutput(output string) (zapcore.WriteSyncer, bool, error) {
	switch output {
	case "stdout":
		return zapcore.Lock(os.Stdout), true, nil
	case "stderr", "":
		return zapcore.Lock(os.Stderr), true, nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open log output: %w", err)
	}
	return zapcore.AddSync(f), false, nil
}

// Initialize builds a logger and installs it as the global logger used by
// Named.
func Initialize(cfg Config, service string) (*zap.Logger, error) {
	l, err := New(cfg, service)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// Named returns the global logger scoped to a component.
func Named(component string) *zap.Logger {
	return zap.L().Named(component)
}

// Sync flushes the global logger
func Sync() {
	_ = zap.L().Sync()
}
