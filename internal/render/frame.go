package render

import (
	"image"
	"math"
)

// Renderer maps slices to frames. Workers bounds the row bands of one
// Render call; zero means GOMAXPROCS.
type Renderer struct {
	Workers int
}

// Render colors every sample of s through lut, scaled by vr. Slice row 0 is
// the southernmost latitude and lands on the bottom row of the image.
//
// A degenerate vr paints every pixel with lut[0].
func (r Renderer) Render(s Slice, vr ValueRange, lut LUT) (*image.RGBA, error) {
	if len(lut) == 0 {
		return nil, ErrEmptyLUT
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, s.Cols, s.Rows))
	if s.Rows == 0 || s.Cols == 0 {
		return img, nil
	}

	if vr.Degenerate() {
		ParallelFor(s.Rows, r.Workers, func(start, end int) {
			fillRows(img, s, start, end, lut[0].R, lut[0].G, lut[0].B)
		})
		return img, nil
	}

	span := vr.Span()
	ParallelFor(s.Rows, r.Workers, func(start, end int) {
		for y := start; y < end; y++ {
			src := s.Values[y*s.Cols : (y+1)*s.Cols]
			off := img.PixOffset(0, s.Rows-1-y)
			dst := img.Pix[off : off+4*s.Cols]
			for x, raw := range src {
				c := lut[lut.Index(normalize(float64(raw), vr.Min, span))]
				dst[4*x] = c.R
				dst[4*x+1] = c.G
				dst[4*x+2] = c.B
				dst[4*x+3] = 255
			}
		}
	})
	return img, nil
}

func normalize(v, lo, span float64) float64 {
	n := (v - lo) / span
	switch {
	case math.IsNaN(n):
		return 0
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}

func fillRows(img *image.RGBA, s Slice, start, end int, r, g, b uint8) {
	for y := start; y < end; y++ {
		off := img.PixOffset(0, s.Rows-1-y)
		dst := img.Pix[off : off+4*s.Cols]
		for x := 0; x < s.Cols; x++ {
			dst[4*x] = r
			dst[4*x+1] = g
			dst[4*x+2] = b
			dst[4*x+3] = 255
		}
	}
}
