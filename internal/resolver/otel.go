package resolver

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/aar/internal/resolver"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
