// Package render turns scalar grids into false-color frames.
//
// The pipeline for one variable is:
//
//   - [ScanRange]: one pass over every timestep for the global value range
//   - [BuildLUT]: expand colormap anchors into a fixed size lookup table
//   - [Renderer.Render]: map one timestep to an RGBA frame, row bands in parallel
//
// # Example
//
//	vr, _ := render.ScanRange(series, render.DefaultThreshold, nil)
//	lut, _ := render.BuildLUT(stops, render.DefaultLUTSize)
//	r := render.Renderer{}
//	for t := 0; t < series.Steps(); t++ {
//		s, _ := series.Slice(t)
//		img, _ := r.Render(s, vr, lut)
//		// hand img to a sink
//	}
//
// # Thread Safety
//
// All inputs are read-only for the duration of a call. A LUT built once may
// be shared by any number of concurrent Render calls.
package render
