// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionKeyHash(t *testing.T) {
	chk := require.New(t)

	keys := []partitionKey{
		{"cfgA", "X"},
		{"cfgB", "X"},
		{"cfgA", "Y"},
		{"cfgAX", ""},
		{"", "cfgAX"},
	}
	seen := map[uint64]partitionKey{}
	for _, k := range keys {
		h := k.hash()
		chk.Equal(h, k.hash(), "hash of %v is not stable", k)
		prev, dup := seen[h]
		chk.False(dup, "%v and %v hash alike", prev, k)
		seen[h] = k
	}
}

func TestBootstrapStreamsDifferByPartition(t *testing.T) {
	chk := require.New(t)

	values := []float64{1.13, 2.71, 3.37, 5.02, 7.9, 11.4, 13.3, 17.77}
	b := bootstrap{resamples: 500, seed: 7}

	a1, err := b.estimate(partitionKey{"cfgA", "X"}, values, 0.95)
	chk.NoError(err)
	a2, err := b.estimate(partitionKey{"cfgA", "X"}, values, 0.95)
	chk.NoError(err)
	chk.Equal(a1, a2)

	// Same values and size under another key resample with other indices.
	widths := map[float64]bool{a1.HalfWidth: true}
	for _, c := range []string{"cfgB", "cfgC", "cfgD", "cfgE"} {
		e, err := b.estimate(partitionKey{c, "X"}, values, 0.95)
		chk.NoError(err)
		chk.Equal(a1.Mean, e.Mean)
		widths[e.HalfWidth] = true
	}
	chk.Greater(len(widths), 1)
}
