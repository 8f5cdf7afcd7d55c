// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command cibar renders a grouped bar chart with confidence-interval error
// bars from a delimited table, or a batch of such charts from a YAML panel
// file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/petenewcomb/cibar"
	"github.com/petenewcomb/cibar/internal/cli"
	"go.uber.org/zap"
)

const usage = `cibar - grouped bar charts with confidence-interval error bars

Usage:
  cibar -in data.csv -out fig.pdf -category COL -group COL -value COL -order A,B,C [flags]
  cibar -panels panels.yaml [flags]

Flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	var spec cibar.ChartSpec
	in := flag.String("in", "", "Input table (delimited text with a header row)")
	out := flag.String("out", "", "Output figure (.svg, .pdf or .eps)")
	flag.StringVar(&spec.CategoryField, "category", "", "Column holding the category (x axis)")
	flag.StringVar(&spec.GroupField, "group", "", "Column holding the group (bar within a category)")
	flag.StringVar(&spec.ValueField, "value", "", "Column holding the measured value")
	order := flag.String("order", "", "Comma-separated group order; other groups are dropped")
	ylim := flag.String("ylim", "", "Y axis range as low,high (default auto)")
	flag.Float64Var(&spec.Confidence, "confidence", cibar.DefaultConfidence, "Confidence level of the error bars")
	flag.StringVar(&spec.Estimator, "estimator", cibar.EstimatorT, "Interval estimator: t or bootstrap")
	flag.IntVar(&spec.BootstrapResamples, "resamples", 0, "Bootstrap resamples (default 1000)")
	flag.Uint64Var(&spec.BootstrapSeed, "seed", 0, "Bootstrap seed")
	flag.StringVar(&spec.Title, "title", "", "Chart title")
	flag.StringVar(&spec.XLabel, "xlabel", "", "X axis label")
	flag.StringVar(&spec.YLabel, "ylabel", "", "Y axis label (default the value column)")
	flag.StringVar(&spec.LegendTitle, "legend-title", "", "Legend title")
	flag.StringVar(&spec.Palette, "palette", cibar.DefaultPalette, "ColorBrewer sequential palette, optionally with _d suffix")
	flag.Float64Var(&spec.Width, "width", cibar.DefaultWidth, "Figure width in inches")
	flag.Float64Var(&spec.Height, "height", cibar.DefaultHeight, "Figure height in inches")
	flag.Float64Var(&spec.Fonts.Title, "font-title", 0, "Title font size in points")
	flag.Float64Var(&spec.Fonts.Label, "font-label", 0, "Axis label font size in points")
	flag.Float64Var(&spec.Fonts.Tick, "font-tick", 0, "Tick label font size in points")
	flag.Float64Var(&spec.Fonts.Legend, "font-legend", 0, "Legend font size in points")
	flag.Float64Var(&spec.LineWidth, "linewidth", 0, "Bar outline width in points")
	flag.Float64Var(&spec.ErrorWidth, "errwidth", cibar.DefaultErrorWidth, "Error bar width in points")
	flag.Float64Var(&spec.CapSize, "capsize", cibar.DefaultCapSize, "Error bar cap width as a fraction of bar width")
	flag.BoolVar(&spec.ShowValues, "values", false, "Label bars with their means")
	panels := flag.String("panels", "", "YAML panel file to render instead of a single figure")
	jobs := flag.Int("j", 0, "Panels to render concurrently (default GOMAXPROCS)")
	verbose := flag.Bool("v", false, "Log progress")
	traceSpans := flag.Bool("trace", false, "Print trace spans to stderr")
	flag.Parse()

	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := cli.NewLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	shutdown, err := cli.StartTracing(*traceSpans, os.Stderr)
	if err != nil {
		logger.Fatal("Starting tracing", zap.Error(err))
	}

	ctx := context.Background()
	opts := []cibar.Option{cibar.WithLogger(logger), cibar.WithConcurrency(*jobs)}
	if *panels != "" {
		err = renderPanels(ctx, *panels, opts)
	} else {
		err = renderOne(ctx, *in, *out, &spec, *order, *ylim, opts)
	}
	if serr := shutdown(ctx); serr != nil {
		logger.Warn("Flushing trace spans", zap.Error(serr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, cibar.ErrConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func renderOne(ctx context.Context, in, out string, spec *cibar.ChartSpec, order, ylim string, opts []cibar.Option) error {
	if in == "" || out == "" {
		return fmt.Errorf("%w: -in and -out are required", cibar.ErrConfig)
	}
	r, err := cli.ParseRange(ylim)
	if err != nil {
		return err
	}
	spec.YLimit = r

	report, err := cibar.RenderFile(ctx, in, spec, cli.ParseList(order), out, opts...)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func renderPanels(ctx context.Context, path string, opts []cibar.Option) error {
	panels, err := cibar.LoadPanelFile(path)
	if err != nil {
		return err
	}
	results, err := cibar.RenderAll(ctx, panels, opts...)
	for _, r := range results {
		if r.Err == nil {
			printReport(r.Report)
		}
	}
	return err
}

func printReport(r *cibar.Report) {
	fmt.Printf("%s: %d categories, %d bars", r.Output, r.Categories, r.Bars)
	if r.DroppedRows > 0 {
		fmt.Printf(", %d rows dropped", r.DroppedRows)
	}
	fmt.Println()
}
