// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// A Panel is one figure of a batch: where to read its table, how to
// draw it and where to write it.
type Panel struct {
	// Name identifies the panel in logs and errors. Empty means the base
	// name of Output.
	Name       string     `yaml:"name"`
	Input      string     `yaml:"input"`
	Output     string     `yaml:"output"`
	Chart      ChartSpec  `yaml:"chart"`
	GroupOrder GroupOrder `yaml:"groupOrder"`
}

func (p *Panel) displayName() string {
	if p.Name != "" {
		return p.Name
	}
	return filepath.Base(p.Output)
}

// A Result is the outcome of rendering one panel.
type Result struct {
	Panel  *Panel
	Report *Report
	Err    error
}

// RenderAll renders every panel, up to the [WithConcurrency] limit at a
// time. Every panel is attempted even if others fail. Results are returned
// in panel order; the error combines the failures of all panels, each
// prefixed with its panel name.
//
// Panels must write to distinct outputs. A batch that names the same output
// twice fails with [ErrConfig] before anything is rendered.
func RenderAll(ctx context.Context, panels []Panel, opts ...Option) ([]Result, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "cibar.RenderAll", trace.WithAttributes(
		attribute.Int("cibar.panels", len(panels)),
		attribute.Int("cibar.concurrency", o.concurrency),
	))
	defer span.End()

	if err := checkPanels(panels); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	type completion struct {
		index  int
		report *Report
		err    error
	}
	completions := make(chan completion)
	slots := make(chan struct{}, o.concurrency)

	// Scatter: launch one goroutine per panel as slots become available.
	go func() {
		for i := range panels {
			slots <- struct{}{}
			if err := ctx.Err(); err != nil {
				<-slots
				completions <- completion{index: i, err: err}
				continue
			}
			go func() {
				defer func() { <-slots }()
				report, err := renderPanel(ctx, o, &panels[i])
				completions <- completion{index: i, report: report, err: err}
			}()
		}
	}()

	// Gather sequentially so results need no locking.
	results := make([]Result, len(panels))
	for range panels {
		c := <-completions
		results[c.index] = Result{Panel: &panels[c.index], Report: c.report, Err: c.err}
		if c.err != nil {
			o.logger.Error("Panel failed",
				zap.String("panel", panels[c.index].displayName()),
				zap.Error(c.err))
		}
	}

	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("panel %s: %w", r.Panel.displayName(), r.Err))
		}
	}
	if errs != nil {
		span.RecordError(errs)
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d panels failed", len(multierr.Errors(errs)), len(panels)))
	}
	return results, errs
}

func renderPanel(ctx context.Context, o *options, p *Panel) (*Report, error) {
	start := time.Now()
	name := p.displayName()
	ctx, span := o.tracer.Start(ctx, "cibar.Panel", trace.WithAttributes(
		attribute.String("cibar.panel", name),
		attribute.String("cibar.input", p.Input),
		attribute.String("cibar.output", p.Output),
	))
	defer span.End()

	po := *o
	po.logger = o.logger.With(zap.String("panel", name))
	report, err := renderFile(ctx, &po, p.Input, &p.Chart, p.GroupOrder, p.Output)
	recordResult(span, report, err)
	o.metrics.recordRender(ctx, start, err)
	return report, err
}

func checkPanels(panels []Panel) error {
	outputs := make(map[string]string, len(panels))
	for i := range panels {
		p := &panels[i]
		if p.Input == "" {
			return fmt.Errorf("%w: panel %d (%s) has no input", ErrConfig, i, p.displayName())
		}
		if p.Output == "" {
			return fmt.Errorf("%w: panel %d has no output", ErrConfig, i)
		}
		out := filepath.Clean(p.Output)
		if prev, dup := outputs[out]; dup {
			return fmt.Errorf("%w: panels %s and %s both write %s", ErrConfig, prev, p.displayName(), out)
		}
		outputs[out] = p.displayName()
	}
	return nil
}
