package outstream

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opencensus.io/trace"
)

var (
	outputDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outflux_outstream_add_output_duration_seconds",
			Help:    "Distribution of time spent producing outputs, by entity",
			Buckets: prometheus.ExponentialBuckets(0.125, 2, 12), // 0.125 -> 512s
		},
		[]string{"outstream", "type"},
	)
	outputsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outflux_outstream_outputs_total",
			Help: "Count of produced outputs, by entity and status",
		},
		[]string{"outstream", "type", "status"},
	)
)

type instrumentedEntity struct {
	Entity
	logger kitlog.Logger
}

// Instrument wraps an entity, causing every AddOutput to be logged, counted
// and timed in metrics, and captured in a new span.
func Instrument(logger kitlog.Logger, entity Entity) Entity {
	logger = kitlog.With(logger, "outstream", entity.Name(), "type", entity.Type())

	return &instrumentedEntity{Entity: entity, logger: logger}
}

func (e *instrumentedEntity) AddOutput(ctx context.Context) (err error) {
	ctx, span := trace.StartSpan(ctx, "pkg/outstream.Entity.AddOutput()")
	defer span.End()

	span.AddAttributes(
		trace.StringAttribute("outstream", e.Entity.Name()),
		trace.StringAttribute("type", e.Entity.Type()),
	)

	defer prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		status := "success"
		if err != nil {
			status = "failure"
		}

		e.logger.Log("event", "add_output", "duration", v, "status", status, "error", err)
		outputDurationSeconds.WithLabelValues(e.Entity.Name(), e.Entity.Type()).Observe(v)
		outputsTotal.WithLabelValues(e.Entity.Name(), e.Entity.Type(), status).Inc()
	})).ObserveDuration()

	err = e.Entity.AddOutput(ctx)
	return err
}
