package dataset

import (
	"errors"
	"fmt"

	"github.com/san-kum/fieldviz/internal/render"
)

var (
	ErrFieldNotFound = errors.New("dataset: field not found")
	ErrStepRange     = errors.New("dataset: timestep out of range")
	ErrBadMagic      = errors.New("dataset: not an fgrid archive")
	ErrShape         = errors.New("dataset: inconsistent field shape")
)

// Series is one field over time.
type Series interface {
	render.SliceReader
	Shape() (rows, cols int)
	Close() error
}

// Source opens fields by name.
type Source interface {
	Open(field string) (Series, error)
}

type SourceFunc func(field string) (Series, error)

func (f SourceFunc) Open(field string) (Series, error) { return f(field) }

// MemSeries holds a whole field in memory. Data[t] is the row-major grid of
// timestep t.
type MemSeries struct {
	Field string
	Rows  int
	Cols  int
	Data  [][]float32
}

func NewMemSeries(field string, steps, rows, cols int) *MemSeries {
	data := make([][]float32, steps)
	for t := range data {
		data[t] = make([]float32, rows*cols)
	}
	return &MemSeries{Field: field, Rows: rows, Cols: cols, Data: data}
}

func (m *MemSeries) Steps() int { return len(m.Data) }

func (m *MemSeries) Shape() (int, int) { return m.Rows, m.Cols }

func (m *MemSeries) Slice(t int) (render.Slice, error) {
	if t < 0 || t >= len(m.Data) {
		return render.Slice{}, fmt.Errorf("%w: %d of %d", ErrStepRange, t, len(m.Data))
	}
	return render.Slice{Rows: m.Rows, Cols: m.Cols, Values: m.Data[t]}, nil
}

func (m *MemSeries) Close() error { return nil }

func (m *MemSeries) validate() error {
	for t, grid := range m.Data {
		if len(grid) != m.Rows*m.Cols {
			return fmt.Errorf("%w: %s step %d has %d values, want %d", ErrShape, m.Field, t, len(grid), m.Rows*m.Cols)
		}
	}
	return nil
}

// MemSource serves fields from memory. Series are shared, so they must not
// be modified after the source is handed to a pipeline.
type MemSource map[string]*MemSeries

func (s MemSource) Open(field string) (Series, error) {
	m, ok := s[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	return m, nil
}
