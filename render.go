// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Fraction of each category slot covered by its bars, and an estimate of
// how much of the canvas width the plot area gets after axes and legend.
const (
	slotFill     = 0.8
	plotAreaFill = 0.85
)

// A Report summarizes a successful render.
type Report struct {
	Output     string
	Categories int
	Bars       int

	// DroppedRows counts observations excluded because their group is not in
	// the group order. Callers can compare it with the table size to catch a
	// misspelled or stale group order.
	DroppedRows    int
	DroppedByGroup map[string]int
}

// A Figure is a laid-out chart that has not yet been written anywhere.
type Figure struct {
	Aggregate *Aggregate

	plot          *plot.Plot
	groups        []*groupBars // in drawn group order
	width, height vg.Length
}

// NewFigure aggregates table and lays out the resulting chart. It does not
// touch the file system.
func NewFigure(table *Table, spec *ChartSpec, order GroupOrder) (*Figure, error) {
	cfg, err := spec.withDefaults()
	if err != nil {
		return nil, err
	}
	agg, err := aggregate(table, &cfg, order)
	if err != nil {
		return nil, err
	}
	return layout(agg, &cfg, order)
}

func layout(agg *Aggregate, cfg *ChartSpec, order GroupOrder) (*Figure, error) {
	shades, err := Ramp(cfg.Palette, len(order))
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.Title.TextStyle.Font.Size = vg.Points(cfg.Fonts.Title)
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(cfg.Fonts.Label)
	p.Y.Label.TextStyle.Font.Size = vg.Points(cfg.Fonts.Label)
	p.X.Tick.Label.Font.Size = vg.Points(cfg.Fonts.Tick)
	p.Y.Tick.Label.Font.Size = vg.Points(cfg.Fonts.Tick)
	p.Legend.TextStyle.Font.Size = vg.Points(cfg.Fonts.Legend)
	p.Legend.Top = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.NominalX(agg.CategoryNames()...)

	w, h := cfg.size()
	slot := w * plotAreaFill / vg.Length(len(agg.Categories))
	barWidth := slot * slotFill / vg.Length(len(agg.Groups))

	// Center to center width of the widest possible cluster.
	clusterWidth := barWidth * vg.Length(len(agg.Groups)-1)

	if cfg.LegendTitle != "" {
		p.Legend.Add(cfg.LegendTitle)
	}
	fig := &Figure{Aggregate: agg, plot: p, width: w, height: h}
	for j, group := range agg.Groups {
		var bars []Bar
		var xs []float64
		for i, c := range agg.Categories {
			for _, b := range c.Bars {
				if b.Group == group {
					bars = append(bars, b)
					xs = append(xs, float64(i))
				}
			}
		}
		gb, err := newGroupBars(bars, xs, barWidth)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", group, err)
		}
		gb.Offset = barWidth*vg.Length(j) - clusterWidth/2
		gb.Color = shades[bars[0].Position]
		gb.LineStyle.Width = vg.Points(cfg.LineWidth)
		gb.LineStyle.Color = color.Gray{64}
		gb.ErrorStyle.Color = color.Gray{64}
		gb.ErrorStyle.Width = vg.Points(cfg.ErrorWidth)
		gb.CapWidth = 0
		if cfg.CapSize > 0 {
			gb.CapWidth = barWidth * vg.Length(cfg.CapSize)
		}
		if cfg.ShowValues {
			gb.LabelStyle = p.Y.Tick.Label
			gb.LabelStyle.XAlign = -0.5
			gb.LabelOffset.Y = vg.Points(2)
			gb.Labels = make([]string, len(bars))
			for i, b := range bars {
				gb.Labels[i] = strconv.FormatFloat(b.Mean, 'g', 3, 64)
			}
		}

		p.Add(gb)
		p.Legend.Add(group, gb)
		fig.groups = append(fig.groups, gb)
	}

	if cfg.YLimit != nil {
		p.Y.Min, p.Y.Max = cfg.YLimit.Low, cfg.YLimit.High
	} else {
		p.Y.Max *= defaultHeadroom
		if p.Y.Max <= p.Y.Min {
			p.Y.Max = p.Y.Min + 1
		}
	}

	return fig, nil
}

// WriteTo encodes the figure in format ("svg", "pdf" or "eps") to w.
func (f *Figure) WriteTo(w io.Writer, format string) (int64, error) {
	wt, err := f.plot.WriterTo(f.width, f.height, format)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return wt.WriteTo(w)
}

// Save writes the figure to path in the vector format chosen by its
// extension. The figure goes to a temporary file in the same directory that
// is renamed over path only once complete, so a failed save leaves any
// existing file at path untouched.
func (f *Figure) Save(path string) error {
	format, err := outputFormat(path)
	if err != nil {
		return err
	}
	return saveAtomically(path, func(w io.Writer) error {
		_, err := f.WriteTo(w, format)
		return err
	})
}

// saveAtomically creates any missing parent directories of path and writes
// it through a pending file. On failure the directories it created are
// removed again if they are still empty.
func saveAtomically(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	created := missingDirs(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		removeEmptyDirs(created)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := writePending(path, write); err != nil {
		removeEmptyDirs(created)
		return err
	}
	return nil
}

// missingDirs returns the ancestors of dir, dir included, that do not exist
// yet, deepest first.
func missingDirs(dir string) []string {
	var missing []string
	for {
		if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
			return missing
		}
		missing = append(missing, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return missing
		}
		dir = parent
	}
}

// removeEmptyDirs removes dirs in order, stopping at the first that cannot
// be removed. A directory another writer has since put files in is kept.
func removeEmptyDirs(dirs []string) {
	for _, d := range dirs {
		if os.Remove(d) != nil {
			return
		}
	}
}

func writePending(path string, write func(io.Writer) error) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644), renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer pf.Cleanup()

	if err := write(pf); err != nil {
		if isClassified(err) {
			return err
		}
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Render aggregates table, draws it as a grouped bar chart and writes it to
// outputPath. On failure nothing is written and any existing file at
// outputPath is left in place. The table is not modified.
func Render(ctx context.Context, table *Table, spec *ChartSpec, order GroupOrder, outputPath string, opts ...Option) (*Report, error) {
	start := time.Now()
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "cibar.Render", trace.WithAttributes(
		attribute.String("cibar.output", outputPath),
		attribute.Int("cibar.observations", table.Len()),
	))
	defer span.End()

	report, err := render(ctx, o, table, spec, order, outputPath)
	recordResult(span, report, err)
	o.metrics.recordRender(ctx, start, err)
	return report, err
}

// RenderFile loads the table at inputPath using the fields named by spec and
// renders it as [Render] does.
func RenderFile(ctx context.Context, inputPath string, spec *ChartSpec, order GroupOrder, outputPath string, opts ...Option) (*Report, error) {
	start := time.Now()
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "cibar.RenderFile", trace.WithAttributes(
		attribute.String("cibar.input", inputPath),
		attribute.String("cibar.output", outputPath),
	))
	defer span.End()

	report, err := renderFile(ctx, o, inputPath, spec, order, outputPath)
	recordResult(span, report, err)
	o.metrics.recordRender(ctx, start, err)
	return report, err
}

func renderFile(ctx context.Context, o *options, inputPath string, spec *ChartSpec, order GroupOrder, outputPath string) (*Report, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil chart spec", ErrConfig)
	}
	table, err := LoadTable(inputPath, spec.Fields())
	if err != nil {
		return nil, err
	}
	return render(ctx, o, table, spec, order, outputPath)
}

func render(ctx context.Context, o *options, table *Table, spec *ChartSpec, order GroupOrder, outputPath string) (*Report, error) {
	start := time.Now()
	log := o.logger.With(zap.String("output", outputPath))
	log.Debug("Rendering figure", zap.Int("observations", table.Len()))

	// Check the output format before doing any work.
	if _, err := outputFormat(outputPath); err != nil {
		return nil, err
	}
	cfg, err := spec.withDefaults()
	if err != nil {
		return nil, err
	}
	agg, err := aggregate(table, &cfg, order)
	if agg != nil {
		reportDropped(ctx, o, log, agg)
	}
	if err != nil {
		return nil, err
	}
	fig, err := layout(agg, &cfg, order)
	if err != nil {
		return nil, err
	}
	if err := fig.Save(outputPath); err != nil {
		return nil, err
	}

	report := &Report{
		Output:         outputPath,
		Categories:     len(agg.Categories),
		Bars:           agg.BarCount(),
		DroppedRows:    agg.DroppedRows,
		DroppedByGroup: agg.DroppedByGroup,
	}
	log.Debug("Rendered figure",
		zap.Int("categories", report.Categories),
		zap.Int("bars", report.Bars),
		zap.Int("dropped", report.DroppedRows),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

func reportDropped(ctx context.Context, o *options, log *zap.Logger, agg *Aggregate) {
	for _, group := range slices.Sorted(maps.Keys(agg.DroppedByGroup)) {
		rows := agg.DroppedByGroup[group]
		log.Warn("Dropping observations of group not in group order",
			zap.String("group", group),
			zap.Int("rows", rows))
		o.metrics.recordDropped(ctx, group, rows)
	}
}

func recordResult(span trace.Span, report *Report, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("cibar.categories", report.Categories),
		attribute.Int("cibar.bars", report.Bars),
		attribute.Int("cibar.dropped_rows", report.DroppedRows),
	)
}
