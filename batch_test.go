// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/petenewcomb/cibar"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderAll(t *testing.T) {
	chk := require.New(t)

	dir := t.TempDir()
	var panels []cibar.Panel
	for i := range 8 {
		in := writeCSV(t, dir, fmt.Sprintf("n2n_%d.csv", i),
			"config,algs,Latency(ms)\n"+
				"n2n,A,1\nn2n,A,2\nn2n,B,3\nn2n,B,4\nn2n,C,5\n")
		spec := latencySpec
		spec.Title = fmt.Sprintf("Panel %d", i)
		spec.YLimit = &cibar.Range{Low: 0, High: float64(10 * (i + 1))}
		panels = append(panels, cibar.Panel{
			Name:       fmt.Sprintf("panel-%d", i),
			Input:      in,
			Output:     filepath.Join(dir, "figs", fmt.Sprintf("panel-%d.svg", i)),
			Chart:      spec,
			GroupOrder: cibar.GroupOrder{"A", "B"},
		})
	}

	results, err := cibar.RenderAll(context.Background(), panels, cibar.WithConcurrency(3))
	chk.NoError(err)
	chk.Len(results, len(panels))
	for i, r := range results {
		chk.Same(&panels[i], r.Panel)
		chk.NoError(r.Err)
		chk.Equal(panels[i].Output, r.Report.Output)
		chk.Equal(2, r.Report.Bars)
		chk.Equal(1, r.Report.DroppedRows)
		chk.FileExists(panels[i].Output)
	}
}

func TestRenderAllReportsEachFailure(t *testing.T) {
	chk := require.New(t)

	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", "config,algs,Latency(ms)\nc,A,1\n")
	bad := writeCSV(t, dir, "bad.csv", "config,algs,Latency(ms)\nc,A,slow\n")
	panels := []cibar.Panel{
		{Name: "first", Input: good, Output: filepath.Join(dir, "first.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
		{Name: "broken", Input: bad, Output: filepath.Join(dir, "broken.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
		{Input: filepath.Join(dir, "missing.csv"), Output: filepath.Join(dir, "missing.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
		{Name: "last", Input: good, Output: filepath.Join(dir, "last.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
	}

	results, err := cibar.RenderAll(context.Background(), panels, cibar.WithConcurrency(1))
	chk.Error(err)
	errs := multierr.Errors(err)
	chk.Len(errs, 2)
	chk.ErrorIs(errs[0], cibar.ErrData)
	chk.ErrorContains(errs[0], "panel broken")
	chk.ErrorIs(errs[1], cibar.ErrIO)
	chk.ErrorContains(errs[1], "panel missing.svg")

	chk.NoError(results[0].Err)
	chk.Error(results[1].Err)
	chk.Error(results[2].Err)
	chk.NoError(results[3].Err)
	chk.FileExists(panels[0].Output)
	chk.NoFileExists(panels[1].Output)
	chk.FileExists(panels[3].Output)
}

func TestRenderAllRejectsDuplicateOutputs(t *testing.T) {
	chk := require.New(t)

	dir := t.TempDir()
	in := writeCSV(t, dir, "in.csv", "config,algs,Latency(ms)\nc,A,1\n")
	panels := []cibar.Panel{
		{Name: "one", Input: in, Output: filepath.Join(dir, "fig.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
		{Name: "two", Input: in, Output: filepath.Join(dir, ".", "fig.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
	}

	results, err := cibar.RenderAll(context.Background(), panels)
	chk.ErrorIs(err, cibar.ErrConfig)
	chk.Nil(results)
	chk.NoFileExists(filepath.Join(dir, "fig.svg"))
}

func TestRenderAllCanceled(t *testing.T) {
	chk := require.New(t)

	dir := t.TempDir()
	in := writeCSV(t, dir, "in.csv", "config,algs,Latency(ms)\nc,A,1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := cibar.RenderAll(ctx, []cibar.Panel{
		{Input: in, Output: filepath.Join(dir, "fig.svg"), Chart: latencySpec, GroupOrder: cibar.GroupOrder{"A"}},
	})
	chk.ErrorIs(err, context.Canceled)
	chk.ErrorIs(results[0].Err, context.Canceled)
	chk.NoFileExists(filepath.Join(dir, "fig.svg"))
}
