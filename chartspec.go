// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
)

// A Range is a closed interval on the value axis.
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// FontSizes holds text sizes in points. Zero values take the defaults.
type FontSizes struct {
	Title  float64 `yaml:"title"`
	Label  float64 `yaml:"label"`
	Tick   float64 `yaml:"tick"`
	Legend float64 `yaml:"legend"`
}

// A ChartSpec fully determines how a table is turned into a figure. Every
// styling choice lives here so that concurrent renders cannot interfere.
type ChartSpec struct {
	// Header columns holding the category, group and value of each record.
	CategoryField string `yaml:"categoryField"`
	GroupField    string `yaml:"groupField"`
	ValueField    string `yaml:"valueField"`

	// Confidence is the error bar confidence level in (0, 1). Zero means
	// 0.95.
	Confidence float64 `yaml:"confidence"`

	// Estimator is [EstimatorT] (the default) or [EstimatorBootstrap].
	Estimator          string `yaml:"estimator"`
	BootstrapResamples int    `yaml:"bootstrapResamples"`
	BootstrapSeed      uint64 `yaml:"bootstrapSeed"`

	// YLimit clips the value axis. Nil auto-scales to the data.
	YLimit *Range `yaml:"ylim"`

	Title       string `yaml:"title"`
	XLabel      string `yaml:"xlabel"`
	YLabel      string `yaml:"ylabel"` // defaults to ValueField
	LegendTitle string `yaml:"legendTitle"`

	// Palette is a ColorBrewer sequential palette name such as "Blues",
	// optionally suffixed with "_d" for a darker ramp. Empty means "Blues".
	Palette string `yaml:"palette"`

	// Width and Height are the canvas size in inches; zero means 5x3.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Fonts FontSizes `yaml:"fonts"`

	// LineWidth is the bar outline width in points; zero draws none.
	LineWidth float64 `yaml:"lineWidth"`

	// ErrorWidth is the error bar stroke width in points. Zero means 0.8.
	ErrorWidth float64 `yaml:"errorWidth"`

	// CapSize is the error bar cap width as a fraction of the bar width.
	// Zero means 0.5; negative draws no caps.
	CapSize float64 `yaml:"capSize"`

	// ShowValues labels each bar with its mean.
	ShowValues bool `yaml:"showValues"`
}

// Defaults used for zero-valued ChartSpec fields.
const (
	DefaultConfidence = 0.95
	DefaultPalette    = "Blues"
	DefaultWidth      = 5.0
	DefaultHeight     = 3.0
	DefaultErrorWidth = 0.8
	DefaultCapSize    = 0.5

	defaultTitleFont  = 12
	defaultLabelFont  = 10
	defaultTickFont   = 8
	defaultLegendFont = 8

	defaultHeadroom = 1.05
)

// Fields returns the table columns named by the spec.
func (s *ChartSpec) Fields() Fields {
	return Fields{Category: s.CategoryField, Group: s.GroupField, Value: s.ValueField}
}

// withDefaults returns a validated copy of s with zero values filled in.
func (s *ChartSpec) withDefaults() (ChartSpec, error) {
	if s == nil {
		return ChartSpec{}, fmt.Errorf("%w: nil chart spec", ErrConfig)
	}
	c := *s
	if c.YLimit != nil {
		ylim := *c.YLimit
		c.YLimit = &ylim
	}

	if c.Confidence == 0 {
		c.Confidence = DefaultConfidence
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return c, fmt.Errorf("%w: confidence %v is not in (0, 1)", ErrConfig, c.Confidence)
	}
	if c.BootstrapResamples < 0 {
		return c, fmt.Errorf("%w: bootstrap resamples must be positive, got %d", ErrConfig, c.BootstrapResamples)
	}
	if c.YLimit != nil && !(c.YLimit.Low < c.YLimit.High) {
		return c, fmt.Errorf("%w: y limit low %v is not below high %v", ErrConfig, c.YLimit.Low, c.YLimit.High)
	}
	if c.YLabel == "" {
		c.YLabel = c.ValueField
	}
	if c.Palette == "" {
		c.Palette = DefaultPalette
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Width < 0 || c.Height < 0 {
		return c, fmt.Errorf("%w: canvas size %vx%v is negative", ErrConfig, c.Width, c.Height)
	}
	if c.ErrorWidth == 0 {
		c.ErrorWidth = DefaultErrorWidth
	}
	if c.CapSize == 0 {
		c.CapSize = DefaultCapSize
	}
	setDefault := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	setDefault(&c.Fonts.Title, defaultTitleFont)
	setDefault(&c.Fonts.Label, defaultLabelFont)
	setDefault(&c.Fonts.Tick, defaultTickFont)
	setDefault(&c.Fonts.Legend, defaultLegendFont)
	return c, nil
}

func (s *ChartSpec) size() (w, h vg.Length) {
	return vg.Length(s.Width) * vg.Inch, vg.Length(s.Height) * vg.Inch
}

var vectorFormats = map[string]string{
	".svg": "svg",
	".pdf": "pdf",
	".eps": "eps",
}

// outputFormat maps an output path to a vector format understood by
// plot.WriterTo.
func outputFormat(path string) (string, error) {
	format, ok := vectorFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: output %q is not a vector format (svg, pdf, eps)", ErrConfig, path)
	}
	return format, nil
}
