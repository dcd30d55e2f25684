package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/telemetry"
	"shiptrack/lib/trackstore"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	cfg Config
	tel telemetry.Telemetry
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "The config file to read, defaults to $SHIPTRACK_CONFIG when set.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level and dump HTTP exchanges if configured.")
}

var rootCmd = &cobra.Command{
	Use:           "shiptrack",
	Short:         "shiptrack reads port and vessel listings from myshiptracking.com.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configPath = resolveConfigPath(cmd)
		cfg, err = loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		level := telemetry.ParseLevel(cfg.LogLevel)
		if env := os.Getenv("SHIPTRACK_LOG_LEVEL"); env != "" {
			level = telemetry.ParseLevel(env)
		}
		if debug {
			level = slog.LevelDebug
		}
		telemetry.InitSlogLevel(level)

		tel, err = telemetry.SetupFromEnv(cmd.Context(), "shiptrack")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() (*myshiptracking.Client, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	return myshiptracking.NewClient(opts)
}

// openStore returns nil when no database is configured.
func openStore(ctx context.Context) (*trackstore.Store, error) {
	if cfg.Database == "" {
		return nil, nil
	}
	store, err := trackstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database, err)
	}
	return &store, nil
}
