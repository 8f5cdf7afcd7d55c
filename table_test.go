// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petenewcomb/cibar"
	"github.com/stretchr/testify/require"
)

var latencyFields = cibar.Fields{Category: "config", Group: "algs", Value: "Latency(ms)"}

func TestReadTable(t *testing.T) {
	chk := require.New(t)

	table, err := cibar.ReadTable(strings.NewReader(
		"config,algs,Latency(ms),extra\n"+
			"cfgA,X,10,ignored\n"+
			"cfgA, X ,12.5,\n"+
			"cfgB,Y,8e-1,\n",
	), latencyFields)
	chk.NoError(err)
	chk.Equal([]cibar.Observation{
		{Category: "cfgA", Group: "X", Value: 10},
		{Category: "cfgA", Group: "X", Value: 12.5},
		{Category: "cfgB", Group: "Y", Value: 0.8},
	}, table.Observations())
}

func TestReadTableQuotedHeader(t *testing.T) {
	chk := require.New(t)

	fields := cibar.Fields{Category: "S0.9,Seq_l=4096,num_h=4", Group: "algs", Value: "Latency(ms)"}
	table, err := cibar.ReadTable(strings.NewReader(
		"\ufeff\"S0.9,Seq_l=4096,num_h=4\",algs,Latency(ms)\n"+
			"n2n,Pytorch-fp16,3.2\n",
	), fields)
	chk.NoError(err)
	chk.Equal(1, table.Len())
	chk.Equal(cibar.Observation{Category: "n2n", Group: "Pytorch-fp16", Value: 3.2}, table.At(0))
}

func TestReadTableSemicolon(t *testing.T) {
	chk := require.New(t)

	fields := latencyFields
	fields.Comma = ';'
	table, err := cibar.ReadTable(strings.NewReader("algs;config;Latency(ms)\nX;cfgA;1\n"), fields)
	chk.NoError(err)
	chk.Equal(cibar.Observation{Category: "cfgA", Group: "X", Value: 1}, table.At(0))
}

func TestReadTableHeaderOnly(t *testing.T) {
	chk := require.New(t)

	table, err := cibar.ReadTable(strings.NewReader("config,algs,Latency(ms)\n"), latencyFields)
	chk.NoError(err)
	chk.Equal(0, table.Len())
}

func TestReadTableErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		input  string
		fields cibar.Fields
		class  error
	}{
		"missing column": {"config,algs,latency\ncfgA,X,1\n", latencyFields, cibar.ErrConfig},
		"empty input":    {"", latencyFields, cibar.ErrConfig},
		"non-numeric":    {"config,algs,Latency(ms)\ncfgA,X,fast\n", latencyFields, cibar.ErrData},
		"empty value":    {"config,algs,Latency(ms)\ncfgA,X,\n", latencyFields, cibar.ErrData},
		"nan value":      {"config,algs,Latency(ms)\ncfgA,X,NaN\n", latencyFields, cibar.ErrData},
		"ragged row":     {"config,algs,Latency(ms)\ncfgA,X\n", latencyFields, cibar.ErrData},
		"bad quoting":    {"config,algs,Latency(ms)\ncfgA,\"X,1\n", latencyFields, cibar.ErrData},
		"empty field": {"config,algs,Latency(ms)\n",
			cibar.Fields{Category: "config", Value: "Latency(ms)"}, cibar.ErrConfig},
		"shared field": {"config,algs,Latency(ms)\n",
			cibar.Fields{Category: "algs", Group: "algs", Value: "Latency(ms)"}, cibar.ErrConfig},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := cibar.ReadTable(strings.NewReader(tc.input), tc.fields)
			require.ErrorIs(t, err, tc.class)
		})
	}
}

func TestReadTableErrorNamesLine(t *testing.T) {
	_, err := cibar.ReadTable(strings.NewReader(
		"config,algs,Latency(ms)\ncfgA,X,1\ncfgA,X,oops\n",
	), latencyFields)
	require.ErrorIs(t, err, cibar.ErrData)
	require.ErrorContains(t, err, "line 3")
	require.ErrorContains(t, err, `"oops"`)
}

func TestLoadTable(t *testing.T) {
	chk := require.New(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	chk.NoError(os.WriteFile(path, []byte("config,algs,Latency(ms)\ncfgA,X,4\n"), 0o644))

	table, err := cibar.LoadTable(path, latencyFields)
	chk.NoError(err)
	chk.Equal(1, table.Len())

	_, err = cibar.LoadTable(filepath.Join(t.TempDir(), "missing.csv"), latencyFields)
	chk.ErrorIs(err, cibar.ErrIO)
}

func TestNewTableCopies(t *testing.T) {
	chk := require.New(t)

	obs := []cibar.Observation{{Category: "c", Group: "g", Value: 1}}
	table := cibar.NewTable(obs)
	obs[0].Value = 2
	chk.Equal(1.0, table.At(0).Value)

	got := table.Observations()
	got[0].Value = 3
	chk.Equal(1.0, table.At(0).Value)
}
