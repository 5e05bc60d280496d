package render

import "fmt"

// Threshold bounds the samples that count towards a value range. Fill values
// and sentinels fall outside it.
type Threshold struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultThreshold keeps everything below the netCDF default fill value.
var DefaultThreshold = Threshold{Min: -9.0e36, Max: 9.0e36}

func (th Threshold) Contains(v float64) bool {
	return v >= th.Min && v <= th.Max
}

// SliceReader gives sequential access to the timesteps of a series.
type SliceReader interface {
	Steps() int
	Slice(t int) (Slice, error)
}

// StepObserver is told after each scanned timestep. It may be nil.
type StepObserver func(done, total int)

// ScanRange walks every timestep and returns the min and max of the samples
// inside th. When no sample qualifies the result stays at the threshold
// extremes with Min > Max, which Degenerate reports.
func ScanRange(series SliceReader, th Threshold, obs StepObserver) (ValueRange, error) {
	vr := ValueRange{Min: th.Max, Max: th.Min}
	steps := series.Steps()

	for t := 0; t < steps; t++ {
		s, err := series.Slice(t)
		if err != nil {
			return vr, fmt.Errorf("scan step %d: %w", t, err)
		}
		vr = accumulate(vr, s.Values, th)
		if obs != nil {
			obs(t+1, steps)
		}
	}
	return vr, nil
}

// ScanValues is ScanRange over an already materialized series.
func ScanValues(values []float32, th Threshold) ValueRange {
	return accumulate(ValueRange{Min: th.Max, Max: th.Min}, values, th)
}

func accumulate(vr ValueRange, values []float32, th Threshold) ValueRange {
	for _, raw := range values {
		v := float64(raw)
		if !th.Contains(v) {
			continue
		}
		if v < vr.Min {
			vr.Min = v
		}
		if v > vr.Max {
			vr.Max = v
		}
	}
	return vr
}
