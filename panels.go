// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPanelFile reads panel definitions from the YAML file at path. Relative
// input and output paths are resolved against the file's directory.
//
// The file holds a single "panels" list. Panels that share styling can use
// YAML anchors and merge keys:
//
//	chart: &chart
//	  categoryField: config
//	  groupField: algs
//	  valueField: Latency(ms)
//	panels:
//	  - input: a.csv
//	    output: figs/a.pdf
//	    groupOrder: [X, Y]
//	    chart:
//	      <<: *chart
//	      title: Panel A
//
// Unknown keys are rejected so that misspelled options are not ignored.
func LoadPanelFile(path string) ([]Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	panels, err := ReadPanels(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return panels, nil
}

// ReadPanels decodes panel definitions from r. Relative paths are resolved
// against baseDir unless it is empty. See [LoadPanelFile] for the format.
func ReadPanels(r io.Reader, baseDir string) ([]Panel, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc struct {
		Panels []Panel `yaml:"panels"`

		// Chart is a conventional home for a shared anchor.
		Chart *ChartSpec `yaml:"chart"`
	}
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no panels defined", ErrConfig)
		}
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if len(doc.Panels) == 0 {
		return nil, fmt.Errorf("%w: no panels defined", ErrConfig)
	}

	resolve := func(p string) string {
		if p == "" || baseDir == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	for i := range doc.Panels {
		p := &doc.Panels[i]
		p.Input = resolve(p.Input)
		p.Output = resolve(p.Output)
	}
	return doc.Panels, nil
}
