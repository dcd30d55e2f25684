package main

import (
	"log/slog"
	"shiptrack/cmd/shiptrack/commands"
	"shiptrack/lib/util/serviceutil"
)

func main() {
	err := commands.LoadEnv(".env")
	if err != nil {
		slog.Warn("failed to load .env", "err", err)
	}
	commands.ExecuteContext(serviceutil.SignalContext())
}
