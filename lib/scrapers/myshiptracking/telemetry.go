package myshiptracking

import (
	"shiptrack/lib/telemetry"

	"go.opentelemetry.io/otel"
)

var tracer = telemetry.Tracer("shiptrack.lib.scrapers.myshiptracking")
var meter = otel.Meter("shiptrack.lib.scrapers.myshiptracking")

var paginationFallbacks, _ = meter.Int64Counter("myshiptracking.pagination_fallbacks")
var attemptFailures, _ = meter.Int64Counter("myshiptracking.fetch_attempt_failures")
