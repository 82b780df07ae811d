package sinks

import (
	"context"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/rs/zerolog"
)

type logSink struct{}

// NewLogSink writes metric points to the context logger instead of a metrics backend
func NewLogSink() *logSink {
	return &logSink{}
}

func (s *logSink) PutMetric(ctx context.Context, point domain.MetricPoint) error {
	dims := zerolog.Dict()
	for _, d := range point.Dimensions {
		dims = dims.Str(d.Name, d.Value)
	}

	zerolog.Ctx(ctx).Info().
		Str("namespace", point.Namespace).
		Str("metric", point.Name).
		Float64("value", point.Value).
		Str("unit", string(point.Unit)).
		Dict("dimensions", dims).
		Msg("metric")
	return nil
}
