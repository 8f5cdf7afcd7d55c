// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command n2nfigs renders the eight end-to-end attention latency panels
// (Figure 16 a-h) from n2n_a.csv through n2n_h.csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petenewcomb/cibar"
	"github.com/petenewcomb/cibar/internal/cli"
	"go.uber.org/zap"
)

var algorithms = cibar.GroupOrder{
	"Pytorch-fp16",
	"vectorSparse-fp16",
	"Magicube-16b8b",
	"Magicube-8b8b",
	"Magicube-8b4b",
	"Magicube-4b4b",
}

type configuration struct {
	panel    string
	sparsity string
	seqLen   int
	heads    int
	yMax     float64
}

var configurations = []configuration{
	{"a", "0.9", 4096, 4, 25},
	{"b", "0.9", 4096, 8, 50},
	{"c", "0.9", 8192, 4, 70},
	{"d", "0.9", 8192, 8, 150},
	{"e", "0.95", 4096, 4, 25},
	{"f", "0.95", 4096, 8, 50},
	{"g", "0.95", 8192, 4, 70},
	{"h", "0.95", 8192, 8, 150},
}

func panels(dataDir, outDir, ext string) []cibar.Panel {
	out := make([]cibar.Panel, len(configurations))
	for i, c := range configurations {
		out[i] = cibar.Panel{
			Name:   "Figure16-" + c.panel,
			Input:  filepath.Join(dataDir, "n2n_"+c.panel+".csv"),
			Output: filepath.Join(outDir, "Figure16-"+c.panel+ext),
			Chart: cibar.ChartSpec{
				// The category column is named after the configuration it
				// holds.
				CategoryField: fmt.Sprintf("S%s,Seq_l=%d,num_h=%d", c.sparsity, c.seqLen, c.heads),
				GroupField:    "algs",
				ValueField:    "Latency(ms)",
				Estimator:     cibar.EstimatorBootstrap,
				YLimit:        &cibar.Range{Low: 0, High: c.yMax},
				Title:         fmt.Sprintf("Sparsity=%s, Seq_len=%d, num_h=%d", c.sparsity, c.seqLen, c.heads),
				XLabel:        " ",
				LegendTitle:   "algs",
				Palette:       "Blues_d",
				Width:         5,
				Height:        3,
				Fonts:         cibar.FontSizes{Title: 12, Label: 8, Tick: 8, Legend: 6},
				ErrorWidth:    0.8,
				CapSize:       0.75,
			},
			GroupOrder: algorithms,
		}
	}
	return out
}

func main() {
	dataDir := flag.String("data", ".", "Directory holding n2n_a.csv through n2n_h.csv")
	outDir := flag.String("out", "figs", "Directory to write the figures to")
	format := flag.String("format", "pdf", "Output format: pdf, svg or eps")
	jobs := flag.Int("j", 0, "Panels to render concurrently (default GOMAXPROCS)")
	verbose := flag.Bool("v", false, "Log progress")
	traceSpans := flag.Bool("trace", false, "Print trace spans to stderr")
	flag.Parse()

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
	results, err := cibar.RenderAll(ctx, panels(*dataDir, *outDir, "."+*format),
		cibar.WithLogger(logger),
		cibar.WithConcurrency(*jobs),
	)
	if serr := shutdown(ctx); serr != nil {
		logger.Warn("Flushing trace spans", zap.Error(serr))
	}

	rendered := 0
	for _, r := range results {
		if r.Err == nil {
			rendered++
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rendered %d figures in %s\n", rendered, *outDir)
}
