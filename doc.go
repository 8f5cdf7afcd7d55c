// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cibar renders grouped bar charts with confidence-interval error
// bars from tables of repeated measurements, such as latency benchmarks run
// several times per configuration.
//
// An observation table holds (category, group, value) records. Categories are
// laid out along the horizontal axis in order of first appearance, and the
// groups within each category are drawn as adjacent bars in the order given
// by a [GroupOrder]. Each bar shows the mean of its replicate values and an
// error bar for the configured confidence level. Groups that are not part of
// the order are dropped and reported, never silently kept.
//
// [Render] draws one figure and writes it atomically to a vector graphics
// file. Calls share no state, so independent figures can be rendered
// concurrently; [RenderAll] does exactly that for a slice of [Panel]
// definitions, which may also be loaded from YAML with [LoadPanelFile].
package cibar
