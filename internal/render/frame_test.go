package render

import (
	"errors"
	"image/color"
	"math"
	"sync/atomic"
	"testing"
)

func testLUT(t *testing.T) LUT {
	t.Helper()
	lut, err := BuildLUT(testStops, DefaultLUTSize)
	if err != nil {
		t.Fatalf("build lut: %v", err)
	}
	return lut
}

func pixel(img interface{ RGBAAt(x, y int) color.RGBA }, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestRenderEndpoints(t *testing.T) {
	lut := testLUT(t)
	s := Slice{Rows: 1, Cols: 4, Values: []float32{0, 10, 25, 5}}
	vr := ValueRange{Min: 0, Max: 10}

	img, err := Renderer{Workers: 2}.Render(s, vr, lut)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if got := pixel(img, 0, 0); got != lut[0] {
		t.Errorf("min value: expected %v, got %v", lut[0], got)
	}
	if got := pixel(img, 1, 0); got != lut[len(lut)-1] {
		t.Errorf("max value: expected %v, got %v", lut[len(lut)-1], got)
	}
	if got := pixel(img, 2, 0); got != lut[len(lut)-1] {
		t.Errorf("above max should clamp: got %v", got)
	}
	// 0.5 * 255 = 127.5 rounds to 128
	if got := pixel(img, 3, 0); got != lut[128] {
		t.Errorf("midpoint: expected %v, got %v", lut[128], got)
	}
}

func TestRenderBelowMinClamps(t *testing.T) {
	lut := testLUT(t)
	s := Slice{Rows: 1, Cols: 2, Values: []float32{-50, float32(math.NaN())}}
	img, err := Renderer{}.Render(s, ValueRange{Min: 0, Max: 1}, lut)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for x := 0; x < 2; x++ {
		if got := pixel(img, x, 0); got != lut[0] {
			t.Errorf("col %d: expected %v, got %v", x, lut[0], got)
		}
	}
}

func TestRenderDegenerateRange(t *testing.T) {
	lut := testLUT(t)
	s := NewSlice(5, 7)
	for i := range s.Values {
		s.Values[i] = float32(i)
	}

	ranges := []ValueRange{
		{Min: 3, Max: 3},
		{Min: 100, Max: -100},
	}
	for _, vr := range ranges {
		img, err := Renderer{Workers: 3}.Render(s, vr, lut)
		if err != nil {
			t.Fatalf("%v: render failed: %v", vr, err)
		}
		for y := 0; y < s.Rows; y++ {
			for x := 0; x < s.Cols; x++ {
				if got := pixel(img, x, y); got != lut[0] {
					t.Fatalf("%v: pixel (%d,%d) = %v, expected %v", vr, x, y, got, lut[0])
				}
			}
		}
	}
}

func TestRenderFlipsRows(t *testing.T) {
	lut := testLUT(t)
	const rows, cols = 6, 3
	s := NewSlice(rows, cols)
	for x := 0; x < cols; x++ {
		s.Values[x] = 1
	}

	img, err := Renderer{Workers: 4}.Render(s, ValueRange{Min: 0, Max: 1}, lut)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != cols || b.Dy() != rows {
		t.Fatalf("expected %dx%d frame, got %v", cols, rows, b)
	}
	for x := 0; x < cols; x++ {
		if got := pixel(img, x, rows-1); got != lut[len(lut)-1] {
			t.Errorf("col %d: slice row 0 not on bottom row, got %v", x, got)
		}
		if got := pixel(img, x, 0); got != lut[0] {
			t.Errorf("col %d: top row should hold slice row %d, got %v", x, rows-1, got)
		}
	}
}

func TestRenderWorkerCountsAgree(t *testing.T) {
	lut := testLUT(t)
	s := NewSlice(37, 11)
	for i := range s.Values {
		s.Values[i] = float32(math.Sin(float64(i)))
	}
	vr := ScanValues(s.Values, DefaultThreshold)

	ref, err := Renderer{Workers: 1}.Render(s, vr, lut)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, w := range []int{2, 3, 8, 64} {
		img, err := Renderer{Workers: w}.Render(s, vr, lut)
		if err != nil {
			t.Fatalf("workers %d: %v", w, err)
		}
		for i := range ref.Pix {
			if ref.Pix[i] != img.Pix[i] {
				t.Fatalf("workers %d: pixel byte %d differs", w, i)
			}
		}
	}
}

func TestRenderErrors(t *testing.T) {
	lut := testLUT(t)
	if _, err := (Renderer{}).Render(NewSlice(2, 2), ValueRange{Max: 1}, nil); !errors.Is(err, ErrEmptyLUT) {
		t.Errorf("expected ErrEmptyLUT, got %v", err)
	}
	bad := Slice{Rows: 2, Cols: 2, Values: []float32{1, 2, 3}}
	if _, err := (Renderer{}).Render(bad, ValueRange{Max: 1}, lut); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, tc := range []struct{ n, workers int }{{0, 4}, {1, 4}, {3, 8}, {10, 3}, {100, 7}, {5, 0}} {
		hits := make([]int32, tc.n)
		var bands atomic.Int32
		ParallelFor(tc.n, tc.workers, func(start, end int) {
			bands.Add(1)
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d workers=%d: index %d visited %d times", tc.n, tc.workers, i, h)
			}
		}
		if tc.workers > 0 && int(bands.Load()) > tc.workers {
			t.Errorf("n=%d workers=%d: %d bands", tc.n, tc.workers, bands.Load())
		}
	}
}
