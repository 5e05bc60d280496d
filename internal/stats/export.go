package stats

import (
	"encoding/json"
	"io"
	"math"
	"os"
)

type ExportStep struct {
	Step  int      `json:"step"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Mean  *float64 `json:"mean"`
	Valid int      `json:"valid"`
	Total int      `json:"total"`
}

type ExportData struct {
	Alias string       `json:"alias"`
	Field string       `json:"field"`
	Rows  int          `json:"rows"`
	Cols  int          `json:"cols"`
	Steps []ExportStep `json:"steps"`
}

// NewExport converts steps to their JSON form. Steps without valid samples
// encode min, max and mean as null.
func NewExport(alias, field string, rows, cols int, steps []Step) ExportData {
	data := ExportData{
		Alias: alias,
		Field: field,
		Rows:  rows,
		Cols:  cols,
		Steps: make([]ExportStep, len(steps)),
	}
	for i, s := range steps {
		data.Steps[i] = ExportStep{
			Step:  i,
			Min:   finite(s.Min),
			Max:   finite(s.Max),
			Mean:  finite(s.Mean),
			Valid: s.Valid,
			Total: s.Total,
		}
	}
	return data
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
