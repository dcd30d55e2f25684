package chrono

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs callbacks on standard 5 field cron specs.
type Scheduler interface {
	Cron(spec string, callback func()) error
}

type StandardCron struct {
	cron *cron.Cron
}

// NewStandardCron starts a scheduler in location, a run still in progress
// when its next activation comes up is skipped.
func NewStandardCron(location *time.Location) StandardCron {
	if location == nil {
		location = time.Local
	}
	logger := cronLogger{}
	cronner := cron.New(
		cron.WithLogger(logger),
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	cronner.Start()

	return StandardCron{
		cron: cronner,
	}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

// Stop prevents new runs and returns a context that is done once the
// running ones have finished.
func (s StandardCron) Stop() context.Context {
	return s.cron.Stop()
}

// ValidateSpec reports whether spec is a standard cron spec or descriptor
// like "@hourly".
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

type cronLogger struct{}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), l.formatParams(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{"err", err}, l.formatParams(keysAndValues)...)
	slog.Error(fmt.Sprintf("cron: %s", msg), params...)
}
