// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	metricRenders     = "cibar.renders"
	metricDuration    = "cibar.render.duration"
	metricErrors      = "cibar.render.errors"
	metricDroppedRows = "cibar.dropped_rows"
)

type instruments struct {
	renders  metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	dropped  metric.Int64Counter
}

func newInstruments(meter metric.Meter) *instruments {
	// The names are fixed and valid, so creation does not fail.
	renders, _ := meter.Int64Counter(metricRenders,
		metric.WithDescription("Figures attempted"))
	duration, _ := meter.Float64Histogram(metricDuration,
		metric.WithDescription("Time to load, aggregate, draw and write one figure"),
		metric.WithUnit("s"))
	errs, _ := meter.Int64Counter(metricErrors,
		metric.WithDescription("Figures that failed, by error class"))
	dropped, _ := meter.Int64Counter(metricDroppedRows,
		metric.WithDescription("Observations dropped because their group is not in the group order"))
	return &instruments{renders: renders, duration: duration, errors: errs, dropped: dropped}
}

// recordRender counts one finished render attempt that began at start.
func (in *instruments) recordRender(ctx context.Context, start time.Time, err error) {
	in.renders.Add(ctx, 1)
	in.duration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		in.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("cibar.error.class", errorClass(err))))
	}
}

func (in *instruments) recordDropped(ctx context.Context, group string, rows int) {
	in.dropped.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("cibar.group", group)))
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrEmptyData):
		return "empty_data"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
