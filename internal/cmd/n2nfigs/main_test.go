// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petenewcomb/cibar"
	"github.com/stretchr/testify/require"
)

func TestPanels(t *testing.T) {
	chk := require.New(t)

	ps := panels("data", "figs", ".pdf")
	chk.Len(ps, 8)
	for i, p := range ps {
		chk.Equal(filepath.Join("data", fmt.Sprintf("n2n_%c.csv", 'a'+i)), p.Input)
		chk.Equal(filepath.Join("figs", fmt.Sprintf("Figure16-%c.pdf", 'a'+i)), p.Output)
		chk.Equal(algorithms, p.GroupOrder)
	}
	chk.Equal("S0.9,Seq_l=4096,num_h=4", ps[0].Chart.CategoryField)
	chk.Equal("Sparsity=0.95, Seq_len=8192, num_h=8", ps[7].Chart.Title)
	chk.Equal(&cibar.Range{Low: 0, High: 150}, ps[7].Chart.YLimit)
}

// Rendering the full set against synthetic data exercises every panel's
// column names.
func TestRenderPanels(t *testing.T) {
	chk := require.New(t)

	dataDir := t.TempDir()
	for _, c := range configurations {
		var b strings.Builder
		fmt.Fprintf(&b, "\"S%s,Seq_l=%d,num_h=%d\",algs,Latency(ms)\n", c.sparsity, c.seqLen, c.heads)
		for i, alg := range algorithms {
			for rep := range 3 {
				fmt.Fprintf(&b, "n2n,%s,%g\n", alg, c.yMax/float64(i+2)+float64(rep))
			}
		}
		chk.NoError(os.WriteFile(filepath.Join(dataDir, "n2n_"+c.panel+".csv"), []byte(b.String()), 0o644))
	}

	outDir := filepath.Join(t.TempDir(), "figs")
	results, err := cibar.RenderAll(context.Background(), panels(dataDir, outDir, ".svg"))
	chk.NoError(err)
	for _, r := range results {
		chk.Equal(1, r.Report.Categories)
		chk.Equal(len(algorithms), r.Report.Bars)
		chk.FileExists(r.Panel.Output)
	}
}
