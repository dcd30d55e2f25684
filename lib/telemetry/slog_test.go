package telemetry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		expected slog.Level
	}{
		{name: "debug", expected: slog.LevelDebug},
		{name: "WARN", expected: slog.LevelWarn},
		{name: " error ", expected: slog.LevelError},
		{name: "", expected: slog.LevelInfo},
		{name: "verbose", expected: slog.LevelInfo},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ParseLevel(test.name), test.name)
	}
}
