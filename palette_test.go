// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar_test

import (
	"image/color"
	"testing"

	"github.com/petenewcomb/cibar"
	"github.com/stretchr/testify/require"
)

func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

func TestRampIsMonotonic(t *testing.T) {
	for _, name := range []string{"Blues", "Greens", "Greys", "Blues_d"} {
		for n := 1; n <= 14; n++ {
			chk := require.New(t)

			colors, err := cibar.Ramp(name, n)
			chk.NoError(err)
			chk.Len(colors, n)
			for i := 1; i < n; i++ {
				chk.Less(luminance(colors[i]), luminance(colors[i-1]), "%s n=%d i=%d", name, n, i)
			}
		}
	}
}

func TestRampIsStable(t *testing.T) {
	chk := require.New(t)

	a, err := cibar.Ramp("Blues", 6)
	chk.NoError(err)
	b, err := cibar.Ramp("Blues", 6)
	chk.NoError(err)
	chk.Equal(a, b)
}

func TestRampDarkVariant(t *testing.T) {
	chk := require.New(t)

	light, err := cibar.Ramp("Blues", 6)
	chk.NoError(err)
	dark, err := cibar.Ramp("Blues_d", 6)
	chk.NoError(err)
	for i := range light {
		chk.Less(luminance(dark[i]), luminance(light[i]))
	}
}

func TestRampUnknownPalette(t *testing.T) {
	_, err := cibar.Ramp("Sparkles", 3)
	require.ErrorIs(t, err, cibar.ErrConfig)
}

func TestRampEmpty(t *testing.T) {
	colors, err := cibar.Ramp("Blues", 0)
	require.NoError(t, err)
	require.Empty(t, colors)
}
