// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"fmt"
	"slices"
)

// A GroupOrder lists group labels in left-to-right bar order. It also acts
// as a filter: observations of groups it does not name are dropped.
type GroupOrder []string

func (o GroupOrder) index() (map[string]int, error) {
	if len(o) == 0 {
		return nil, fmt.Errorf("%w: group order is empty", ErrConfig)
	}
	idx := make(map[string]int, len(o))
	for i, g := range o {
		if _, dup := idx[g]; dup {
			return nil, fmt.Errorf("%w: group %q appears twice in group order", ErrConfig, g)
		}
		idx[g] = i
	}
	return idx, nil
}

// A Bar is the aggregate of one group within one category.
type Bar struct {
	Group string

	// Position is the index of Group in the full group order. It selects the
	// bar's shade.
	Position int

	// Mean of the group's values and the symmetric half-width of its
	// confidence interval. HalfWidth is zero when N is one.
	Mean      float64
	HalfWidth float64
	N         int
}

// A Category is one position on the horizontal axis and its bars, ordered by
// group order.
type Category struct {
	Name string
	Bars []Bar
}

// An Aggregate is the data content of a figure: every category that has at
// least one bar, in order of first appearance.
type Aggregate struct {
	Categories []Category

	// Groups lists the groups that have at least one bar, in group order.
	Groups []string

	// DroppedRows counts observations whose group is not in the group order,
	// and DroppedByGroup breaks that count down by label.
	DroppedRows    int
	DroppedByGroup map[string]int

	// Confidence is the level the half-widths were computed at.
	Confidence float64
}

// Aggregate groups the table's observations by (category, group), filters
// them by order and estimates a mean and interval for each pair. It uses only
// the estimator, confidence and field settings of spec.
func (t *Table) Aggregate(spec *ChartSpec, order GroupOrder) (*Aggregate, error) {
	cfg, err := spec.withDefaults()
	if err != nil {
		return nil, err
	}
	return aggregate(t, &cfg, order)
}

type partitionKey struct {
	category string
	group    string
}

func aggregate(t *Table, cfg *ChartSpec, order GroupOrder) (*Aggregate, error) {
	position, err := order.index()
	if err != nil {
		return nil, err
	}
	est, err := newEstimator(cfg)
	if err != nil {
		return nil, err
	}

	a := &Aggregate{
		DroppedByGroup: map[string]int{},
		Confidence:     cfg.Confidence,
	}
	var categories []string
	seenCategory := map[string]bool{}
	values := map[partitionKey][]float64{}
	for i := range t.Len() {
		obs := t.At(i)
		if _, ok := position[obs.Group]; !ok {
			a.DroppedRows++
			a.DroppedByGroup[obs.Group]++
			continue
		}
		if !seenCategory[obs.Category] {
			seenCategory[obs.Category] = true
			categories = append(categories, obs.Category)
		}
		k := partitionKey{obs.Category, obs.Group}
		values[k] = append(values[k], obs.Value)
	}
	if len(values) == 0 {
		return a, fmt.Errorf("%w: none of %d observations belong to groups %q", ErrEmptyData, t.Len(), []string(order))
	}

	usedGroup := map[string]bool{}
	for _, name := range categories {
		c := Category{Name: name}
		for pos, group := range order {
			k := partitionKey{name, group}
			vs, ok := values[k]
			if !ok {
				continue
			}
			e, err := est.estimate(k, vs, cfg.Confidence)
			if err != nil {
				return a, fmt.Errorf("category %q group %q: %w", name, group, err)
			}
			c.Bars = append(c.Bars, Bar{
				Group:     group,
				Position:  pos,
				Mean:      e.Mean,
				HalfWidth: e.HalfWidth,
				N:         len(vs),
			})
			usedGroup[group] = true
		}
		a.Categories = append(a.Categories, c)
	}
	for _, group := range order {
		if usedGroup[group] {
			a.Groups = append(a.Groups, group)
		}
	}
	return a, nil
}

// Bar returns the bar for group in category, if there is one.
func (a *Aggregate) Bar(category, group string) (Bar, bool) {
	for _, c := range a.Categories {
		if c.Name != category {
			continue
		}
		i := slices.IndexFunc(c.Bars, func(b Bar) bool { return b.Group == group })
		if i < 0 {
			return Bar{}, false
		}
		return c.Bars[i], true
	}
	return Bar{}, false
}

// CategoryNames returns the category names in axis order.
func (a *Aggregate) CategoryNames() []string {
	names := make([]string, len(a.Categories))
	for i, c := range a.Categories {
		names[i] = c.Name
	}
	return names
}

// BarCount returns the total number of bars across all categories.
func (a *Aggregate) BarCount() int {
	n := 0
	for _, c := range a.Categories {
		n += len(c.Bars)
	}
	return n
}
