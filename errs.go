// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import "errors"

type constError string

func (e constError) Error() string {
	return string(e)
}

// Error classes returned by this package. Returned errors wrap exactly one of
// these and can be tested with [errors.Is].
const (
	// ErrData reports malformed input, such as a non-numeric value cell.
	ErrData = constError("data error")

	// ErrEmptyData reports that no renderable observations remain after
	// filtering by group order.
	ErrEmptyData = constError("no renderable data")

	// ErrConfig reports an invalid chart configuration, group order or
	// panel definition, including field names missing from a table header.
	ErrConfig = constError("configuration error")

	// ErrIO reports a failure to read an input table or write a figure.
	ErrIO = constError("i/o error")
)

func isClassified(err error) bool {
	for _, class := range []error{ErrData, ErrEmptyData, ErrConfig, ErrIO} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}
