// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/petenewcomb/cibar"

type options struct {
	logger      *zap.Logger
	tracer      trace.Tracer
	meter       metric.Meter
	metrics     *instruments
	concurrency int
}

// An Option adjusts the behavior of [Render], [RenderFile] and [RenderAll].
type Option func(*options)

// WithLogger sets the logger that receives dropped-group warnings and debug
// progress. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracerProvider sets where spans are created. The default is the global
// provider from otel.GetTracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMeterProvider sets where render counts, durations, errors and dropped
// rows are recorded. The default is the global provider from
// otel.GetMeterProvider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meter = mp.Meter(instrumentationName)
		}
	}
}

// WithConcurrency limits how many panels [RenderAll] renders at once. Values
// below one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.GetMeterProvider().Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	o.metrics = newInstruments(o.meter)
	return o
}
