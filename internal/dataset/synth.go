package dataset

import (
	"math"
	"math/rand"
)

// FillValue is the netCDF default fill for float fields.
const FillValue float32 = 9.96921e36

type SynthOptions struct {
	Steps int
	Rows  int
	Cols  int
	Seed  int64
	// FillFraction of cells carry FillValue in every step, like a land mask.
	FillFraction float64
}

func DefaultSynthOptions() SynthOptions {
	return SynthOptions{Steps: 24, Rows: 120, Cols: 90, Seed: 1, FillFraction: 0.02}
}

// Synthesize builds one moving wave pattern per field. Each field gets its
// own base level and amplitude so that value ranges differ between fields.
func Synthesize(fields []string, opts SynthOptions) []*MemSeries {
	rng := rand.New(rand.NewSource(opts.Seed))

	mask := make([]bool, opts.Rows*opts.Cols)
	for i := range mask {
		mask[i] = rng.Float64() < opts.FillFraction
	}

	out := make([]*MemSeries, 0, len(fields))
	for k, name := range fields {
		m := NewMemSeries(name, opts.Steps, opts.Rows, opts.Cols)
		base := 10 * float64(k)
		amp := 5 + 3*float64(k)
		kx := 2 * math.Pi * (1 + rng.Float64()) / float64(max(opts.Cols, 1))
		ky := 2 * math.Pi * (1 + rng.Float64()) / float64(max(opts.Rows, 1))

		for t, grid := range m.Data {
			phase := 2 * math.Pi * float64(t) / float64(max(opts.Steps, 1))
			for y := 0; y < opts.Rows; y++ {
				for x := 0; x < opts.Cols; x++ {
					i := y*opts.Cols + x
					if mask[i] {
						grid[i] = FillValue
						continue
					}
					v := base + amp*math.Sin(kx*float64(x)+phase)*math.Cos(ky*float64(y)-phase/2)
					grid[i] = float32(v + 0.1*rng.NormFloat64())
				}
			}
		}
		out = append(out, m)
	}
	return out
}
