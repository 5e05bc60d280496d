package render

import "fmt"

// Slice is one timestep of a gridded field, row-major, Rows = latitude.
type Slice struct {
	Rows   int
	Cols   int
	Values []float32
}

func NewSlice(rows, cols int) Slice {
	return Slice{Rows: rows, Cols: cols, Values: make([]float32, rows*cols)}
}

func (s Slice) At(row, col int) float32 {
	return s.Values[row*s.Cols+col]
}

func (s Slice) Validate() error {
	if s.Rows < 0 || s.Cols < 0 || len(s.Values) != s.Rows*s.Cols {
		return fmt.Errorf("%w: %dx%d with %d values", ErrShape, s.Rows, s.Cols, len(s.Values))
	}
	return nil
}

// ValueRange is the color scale of one variable.
type ValueRange struct {
	Min float64
	Max float64
}

// Degenerate reports a range that cannot be divided by: no valid samples
// were found or every valid sample had the same value.
func (r ValueRange) Degenerate() bool {
	return !(r.Max > r.Min)
}

func (r ValueRange) Span() float64 {
	return r.Max - r.Min
}

func (r ValueRange) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}
