package render

import "errors"

var (
	// ErrTooFewStops indicates a colormap with fewer than two anchors.
	ErrTooFewStops = errors.New("render: colormap needs at least 2 stops")

	// ErrInvalidLUTSize indicates a lookup table size below one.
	ErrInvalidLUTSize = errors.New("render: lut size must be at least 1")

	// ErrEmptyLUT indicates Render was called without a lookup table.
	ErrEmptyLUT = errors.New("render: empty lut")

	// ErrShape indicates a slice whose value count does not match rows*cols.
	ErrShape = errors.New("render: slice shape mismatch")
)
