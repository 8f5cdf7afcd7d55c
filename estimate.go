// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/perf/benchmath"
)

// Names of the supported interval estimators.
const (
	// EstimatorT is the Student-t confidence interval for the mean.
	EstimatorT = "t"

	// EstimatorBootstrap is a seeded percentile bootstrap of the mean.
	EstimatorBootstrap = "bootstrap"
)

const defaultBootstrapResamples = 1000

// An estimate is the center and symmetric half-width of one bar.
type estimate struct {
	Mean      float64
	HalfWidth float64
}

// An estimator computes an estimate from the replicate values of the
// partition key. Implementations must be deterministic and must not retain
// or modify values.
type estimator interface {
	estimate(key partitionKey, values []float64, confidence float64) (estimate, error)
}

func newEstimator(spec *ChartSpec) (estimator, error) {
	switch spec.Estimator {
	case "", EstimatorT:
		return tInterval{}, nil
	case EstimatorBootstrap:
		n := spec.BootstrapResamples
		if n == 0 {
			n = defaultBootstrapResamples
		}
		return bootstrap{resamples: n, seed: spec.BootstrapSeed}, nil
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", ErrConfig, spec.Estimator)
	}
}

type tInterval struct{}

func (tInterval) estimate(_ partitionKey, values []float64, confidence float64) (estimate, error) {
	e := estimate{Mean: stats.Mean(values)}
	if len(values) < 2 || slices.Min(values) == slices.Max(values) {
		return e, nil
	}

	// NewSample sorts in place.
	sample := benchmath.NewSample(slices.Clone(values), &benchmath.DefaultThresholds)
	summary := benchmath.AssumeNormal.Summary(sample, confidence)
	e.HalfWidth = (summary.Hi - summary.Lo) / 2
	if math.IsNaN(e.HalfWidth) || math.IsInf(e.HalfWidth, 0) {
		return e, fmt.Errorf("%w: interval for %d values is not finite", ErrData, len(values))
	}
	return e, nil
}

type bootstrap struct {
	resamples int
	seed      uint64
}

func (b bootstrap) estimate(key partitionKey, values []float64, confidence float64) (estimate, error) {
	e := estimate{Mean: stats.Mean(values)}
	if len(values) < 2 {
		return e, nil
	}

	// Each partition gets its own stream so results do not depend on the
	// order partitions are visited, and partitions of equal size do not
	// share resample indices.
	rng := rand.New(rand.NewPCG(b.seed, key.hash()))
	resample := make([]float64, len(values))
	means := make([]float64, b.resamples)
	for i := range means {
		for j := range resample {
			resample[j] = values[rng.IntN(len(values))]
		}
		means[i] = stats.Mean(resample)
	}
	slices.Sort(means)

	dist := stats.Sample{Xs: means, Sorted: true}
	alpha := (1 - confidence) / 2
	lo, hi := dist.Quantile(alpha), dist.Quantile(1-alpha)
	e.HalfWidth = (hi - lo) / 2
	return e, nil
}

// hash is a stable 64-bit FNV-1a hash of the key.
func (k partitionKey) hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(k.category)) //nolint:errcheck
	h.Write([]byte{0})          //nolint:errcheck
	h.Write([]byte(k.group))    //nolint:errcheck
	return h.Sum64()
}
