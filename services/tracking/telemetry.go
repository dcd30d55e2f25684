package tracking

import (
	"shiptrack/lib/telemetry"

	"go.opentelemetry.io/otel"
)

var tracer = telemetry.Tracer("shiptrack.services.tracking")
var meter = otel.Meter("shiptrack.services.tracking")

var skippedUnits, _ = meter.Int64Counter("tracking.skipped_units")
