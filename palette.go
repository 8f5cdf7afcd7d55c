// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot/palette/brewer"
)

// ColorBrewer sequential palettes come in 3 to 9 classes.
const (
	minBrewerColors = 3
	maxBrewerColors = 9

	// Scale applied to each channel of a "_d" ramp.
	darkFactor = 0.75
)

// Ramp returns n colors from the named sequential palette, ordered from
// lightest to darkest. The i'th color depends only on the palette name, n
// and i, so a group order always maps to the same shade sequence.
func Ramp(name string, n int) ([]color.Color, error) {
	if n <= 0 {
		return nil, nil
	}
	base, dark := strings.CutSuffix(name, "_d")

	var colors []color.Color
	switch {
	case n < minBrewerColors:
		stops, err := brewerColors(base, minBrewerColors)
		if err != nil {
			return nil, err
		}
		// Take the darkest entries so single bars stay visible.
		colors = stops[minBrewerColors-n:]
	case n <= maxBrewerColors:
		stops, err := brewerColors(base, n)
		if err != nil {
			return nil, err
		}
		colors = stops
	default:
		stops, err := brewerColors(base, maxBrewerColors)
		if err != nil {
			return nil, err
		}
		colors = interpolate(stops, n)
	}

	if dark {
		for i, c := range colors {
			colors[i] = darken(c, darkFactor)
		}
	}
	return colors, nil
}

func brewerColors(name string, n int) ([]color.Color, error) {
	p, err := brewer.GetPalette(brewer.TypeSequential, name, n)
	if err != nil {
		return nil, fmt.Errorf("%w: palette %q: %w", ErrConfig, name, err)
	}
	return append([]color.Color(nil), p.Colors()...), nil
}

// interpolate spreads n colors evenly along the piecewise-linear path through
// stops.
func interpolate(stops []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	span := float64(len(stops) - 1)
	for i := range out {
		t := float64(i) / float64(n-1) * span
		j := int(t)
		if j >= len(stops)-1 {
			out[i] = stops[len(stops)-1]
			continue
		}
		out[i] = lerp(stops[j], stops[j+1], t-float64(j))
	}
	return out
}

func lerp(a, b color.Color, t float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-t) + float64(y)*t) / 0x101)
	}
	return color.NRGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: mix(aa, ba)}
}

func darken(c color.Color, f float64) color.Color {
	r, g, b, a := c.RGBA()
	scale := func(x uint32) uint8 {
		return uint8(float64(x) * f / 0x101)
	}
	return color.NRGBA{R: scale(r), G: scale(g), B: scale(b), A: uint8(a / 0x101)}
}
