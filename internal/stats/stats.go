// Package stats summarizes a field per timestep.
package stats

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fieldviz/internal/render"
)

type Step struct {
	Min   float64
	Max   float64
	Mean  float64
	Valid int
	Total int
}

// Summarize computes per-step statistics of the samples inside th. Steps are
// read concurrently, at most workers at a time, so series must tolerate
// concurrent Slice calls. Steps without valid samples report NaN.
func Summarize(series render.SliceReader, th render.Threshold, workers int) ([]Step, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Step, series.Steps())

	var g errgroup.Group
	g.SetLimit(workers)
	for t := range out {
		g.Go(func() error {
			s, err := series.Slice(t)
			if err != nil {
				return err
			}
			out[t] = summarize(s.Values, th)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func summarize(values []float32, th render.Threshold) Step {
	st := Step{Min: math.Inf(1), Max: math.Inf(-1), Total: len(values)}
	sum := 0.0
	for _, raw := range values {
		v := float64(raw)
		if !th.Contains(v) {
			continue
		}
		st.Valid++
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	if st.Valid == 0 {
		return Step{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), Total: len(values)}
	}
	st.Mean = sum / float64(st.Valid)
	return st
}

// Series splits steps into plottable min, mean and max lines. NaN steps
// carry the previous value forward so plots stay continuous; leading NaN
// steps take the first valid step's values. With no valid step at all every
// line is zero.
func Series(steps []Step) (mins, means, maxs []float64) {
	mins = make([]float64, len(steps))
	means = make([]float64, len(steps))
	maxs = make([]float64, len(steps))

	first := -1
	for i, s := range steps {
		if s.Valid > 0 {
			first = i
			break
		}
	}
	if first < 0 {
		return mins, means, maxs
	}

	for i, s := range steps {
		switch {
		case i < first:
			s = steps[first]
		case s.Valid == 0:
			mins[i], means[i], maxs[i] = mins[i-1], means[i-1], maxs[i-1]
			continue
		}
		mins[i], means[i], maxs[i] = s.Min, s.Mean, s.Max
	}
	return mins, means, maxs
}
