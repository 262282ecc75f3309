package campuscard

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("lib/scrapers/campuscard")
