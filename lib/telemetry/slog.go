package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// InitSlog installs a text handler on stderr as the default logger. the
// level comes from SHIPTRACK_LOG_LEVEL unless debug forces it down.
func InitSlog(debug bool) {
	level := ParseLevel(os.Getenv("SHIPTRACK_LOG_LEVEL"))
	if debug {
		level = slog.LevelDebug
	}
	InitSlogLevel(level)
}

func InitSlogLevel(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// ParseLevel maps debug/info/warn/error to a slog level, anything else is info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
