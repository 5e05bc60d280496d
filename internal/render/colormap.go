package render

import (
	"image/color"
	"math"
)

// DefaultLUTSize matches an 8-bit palette.
const DefaultLUTSize = 256

// ColorStop is one anchor color, channels in [0, 255].
type ColorStop [3]float64

// LUT is a precomputed colormap indexed by normalized value.
type LUT []color.RGBA

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// BuildLUT expands stops into size colors by piecewise linear interpolation
// between consecutive anchors. The first and last entries equal the first
// and last stops exactly.
func BuildLUT(stops []ColorStop, size int) (LUT, error) {
	if len(stops) < 2 {
		return nil, ErrTooFewStops
	}
	if size < 1 {
		return nil, ErrInvalidLUTSize
	}

	m := len(stops)
	lut := make(LUT, size)
	for i := range lut {
		// t = i/(size-1) scaled onto the m-1 segments; dividing last keeps
		// anchor positions exact.
		s := 0.0
		if size > 1 {
			s = float64(i*(m-1)) / float64(size-1)
		}
		idx := int(math.Floor(s))
		frac := s - float64(idx)

		var c [3]uint8
		for ch := 0; ch < 3; ch++ {
			v := stops[idx][ch]
			if idx+1 < m {
				v = lerp(stops[idx][ch], stops[idx+1][ch], frac)
			}
			c[ch] = channel(v)
		}
		lut[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
	}
	return lut, nil
}

// channel truncates toward zero and keeps the result in byte range.
func channel(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Index maps a normalized value to its LUT slot, clamped to the table.
func (l LUT) Index(norm float64) int {
	last := len(l) - 1
	if last <= 0 || math.IsNaN(norm) {
		return 0
	}
	idx := int(math.Round(norm * float64(last)))
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}

func (l LUT) At(norm float64) color.RGBA {
	return l[l.Index(norm)]
}
