package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"shiptrack/lib/configutil"
	"shiptrack/lib/restyutil"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/services/tracking"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "shiptrack.json5"

type RetryConfig struct {
	MaxAttempts int `json:"max_attempts"`
	DelayMs     int `json:"delay_ms"`
}

type Config struct {
	BaseUrl          string      `json:"base_url"`
	PageDelayMs      int         `json:"page_delay_ms"`
	Retry            RetryConfig `json:"retry"`
	TimeoutSeconds   int         `json:"timeout_seconds"`
	CloudflareBypass bool        `json:"cloudflare_bypass"`
	// pins the User-Agent header instead of drawing a random one per page
	UserAgent string `json:"user_agent"`
	// when set (and user_agent is not), each page picks one of these
	UserAgents []string `json:"user_agents"`
	// full HTTP exchanges are written here when debug logging is on
	HttpDumpDir string `json:"http_dump_dir"`

	DataDir   string `json:"data_dir"`
	PortsFile string `json:"ports_file"`
	// sqlite file or libsql url, empty (the default) disables the store
	Database   string          `json:"database"`
	SkipFailed bool            `json:"skip_failed"`
	Filters    tracking.Filter `json:"filters"`
	LogLevel   string          `json:"log_level"`
}

// CloudflareBypass and Database stay off by default, mergo cannot tell an
// explicit false or "" in the file from a missing key.
var defaultConfig = Config{
	BaseUrl:        myshiptracking.DefaultBaseUrl,
	PageDelayMs:    int(myshiptracking.DefaultPageDelay / time.Millisecond),
	Retry:          RetryConfig{MaxAttempts: myshiptracking.DefaultMaxAttempts, DelayMs: int(myshiptracking.DefaultRetryDelay / time.Millisecond)},
	TimeoutSeconds: int(myshiptracking.DefaultTimeout / time.Second),
	DataDir:        "data",
	PortsFile:      "ports.csv",
	Filters:        tracking.Filter{Country: "Netherlands", Type: "Port", MinSize: "Medium"},
	LogLevel:       "info",
}

// LoadEnv loads a dotenv file into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath prefers an explicit --config, then SHIPTRACK_CONFIG,
// which may come from .env and so is only read once that has been loaded.
func resolveConfigPath(cmd *cobra.Command) string {
	if flag := cmd.Flag("config"); flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if env := os.Getenv("SHIPTRACK_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

// loadConfig reads path (and its .local override), a missing file leaves
// every setting at its default.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if os.IsNotExist(err) {
		slog.Debug("no config file, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}
	return configutil.WithDefaults(cfg, defaultConfig)
}

func (c Config) clientOptions() (myshiptracking.ClientOptions, error) {
	opts := myshiptracking.ClientOptions{
		BaseUrl:          c.BaseUrl,
		PageDelay:        time.Duration(c.PageDelayMs) * time.Millisecond,
		MaxAttempts:      c.Retry.MaxAttempts,
		RetryDelay:       time.Duration(c.Retry.DelayMs) * time.Millisecond,
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.CloudflareBypass,
	}
	switch {
	case c.UserAgent != "":
		opts.UserAgents = myshiptracking.StaticUserAgent(c.UserAgent)
	case len(c.UserAgents) > 0:
		opts.UserAgents = myshiptracking.RotatingUserAgents(c.UserAgents)
	}
	if c.HttpDumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.HttpDumpDir)
		if err != nil {
			return opts, err
		}
		opts.InstrumentOutput = output
	}
	return opts, nil
}
