package license

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cityguide_license_verifications_total",
	Help: "Licence verifications by strategy and outcome (valid, invalid, error).",
}, []string{"strategy", "outcome"})

// Instrumented records a metric and a span around every verification.
type Instrumented struct {
	next     Verifier
	strategy string
}

func Instrument(next Verifier, strategy string) *Instrumented {
	return &Instrumented{next: next, strategy: strategy}
}

func (i *Instrumented) Verify(ctx context.Context, cityKey, code string) (Result, error) {
	ctx, span := otel.Tracer("cityguide/license").Start(ctx, "license.Verify")
	defer span.End()
	span.SetAttributes(
		attribute.String("license.strategy", i.strategy),
		attribute.String("city.key", cityKey),
	)

	res, err := i.next.Verify(ctx, cityKey, code)
	outcome := res.String()
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("license.outcome", outcome))
	verificationsTotal.WithLabelValues(i.strategy, outcome).Inc()
	return res, err
}
