package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string
	logBackend string
}

func newRootCmd() *cobra.Command {
	root := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "awarenode",
		Short: "Energy-aware sensing node",
		Long: `awarenode runs the decision cycle of a battery powered sensing node.

Each cycle the node weighs the relevance of the sensed data against the
remaining battery life and adapts its sampling period accordingly:
  1. Observe: sensor, application, radio and battery gauge
  2. Fuse: correct the power estimates with the measured consumption
  3. Act: program the timer, transmit the payload, report the battery`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&root.configPath, "config", "c", "", "YAML configuration file (default: built-in defaults)")
	cmd.PersistentFlags().BoolVarP(&root.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&root.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&root.logFormat, "log-format", "", "Log format: text or json")
	cmd.PersistentFlags().StringVar(&root.logBackend, "log-backend", "", "Log backend: slog or zap")

	cmd.AddCommand(newRunCmd(root), newConfigCmd(root))
	return cmd
}

// loadConfig returns the configuration file's content layered over the
// defaults, with the logging flags applied.
func (r *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if r.configPath != "" {
		loaded, err := config.Load(r.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if r.logLevel != "" {
		cfg.Logging.Level = r.logLevel
	}
	if r.verbose {
		cfg.Logging.Level = "debug"
	}
	if r.logFormat != "" {
		cfg.Logging.Format = r.logFormat
	}
	if r.logBackend != "" {
		cfg.Logging.Backend = r.logBackend
	}
	return cfg, nil
}

// newLogger builds the configured backend. The returned function flushes
// buffered entries and must be called before exit.
func newLogger(cfg config.LoggingConfig, out io.Writer) (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Backend {
	case "", "slog":
		return logging.NewLogger(&logging.LoggerConfig{
			Level:  level,
			Format: cfg.Format,
			Output: out,
		}), func() {}, nil
	case "zap":
		z, err := logging.NewZapLogger(level, cfg.Format)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return z, func() { _ = z.Sync() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}
