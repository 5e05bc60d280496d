package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/fieldviz/internal/render"
)

func TestMemSeriesSlice(t *testing.T) {
	m := NewMemSeries("t2m", 3, 2, 4)
	m.Data[1][5] = 42

	s, err := m.Slice(1)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if s.Rows != 2 || s.Cols != 4 {
		t.Errorf("expected 2x4, got %dx%d", s.Rows, s.Cols)
	}
	if s.At(1, 1) != 42 {
		t.Errorf("expected 42 at (1,1), got %v", s.At(1, 1))
	}

	if _, err := m.Slice(3); !errors.Is(err, ErrStepRange) {
		t.Errorf("expected ErrStepRange, got %v", err)
	}
}

func TestMemSourceMissingField(t *testing.T) {
	src := MemSource{"a": NewMemSeries("a", 1, 1, 1)}
	if _, err := src.Open("b"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestArchiveOpenField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fgrid")
	opts := SynthOptions{Steps: 4, Rows: 6, Cols: 5, Seed: 7, FillFraction: 0.1}
	fields := Synthesize([]string{"air_temperature_2m", "wind_speed_10m", "cloud_area_fraction"}, opts)

	if err := WriteArchiveFile(path, fields...); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	arc, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open archive failed: %v", err)
	}

	infos, err := arc.Fields()
	if err != nil {
		t.Fatalf("fields failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(infos))
	}
	if infos[1].Name != "wind_speed_10m" || infos[1].Steps != 4 || infos[1].Rows != 6 || infos[1].Cols != 5 {
		t.Errorf("unexpected field info: %+v", infos[1])
	}

	series, err := arc.Open("wind_speed_10m")
	if err != nil {
		t.Fatalf("open field failed: %v", err)
	}
	defer series.Close()

	if series.Steps() != 4 {
		t.Errorf("expected 4 steps, got %d", series.Steps())
	}
	for step := 0; step < series.Steps(); step++ {
		s, err := series.Slice(step)
		if err != nil {
			t.Fatalf("slice %d: %v", step, err)
		}
		want := fields[1].Data[step]
		for i := range want {
			if s.Values[i] != want[i] {
				t.Fatalf("step %d value %d: expected %v, got %v", step, i, want[i], s.Values[i])
			}
		}
	}
}

func TestArchiveMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fgrid")
	if err := WriteArchiveFile(path, NewMemSeries("a", 1, 2, 2)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	arc, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open archive failed: %v", err)
	}
	if _, err := arc.Open("b"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestOpenArchiveRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.fgrid")
	if err := os.WriteFile(path, []byte("not compressed at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenArchive(path); err == nil {
		t.Error("expected error for garbage file")
	}

	if _, err := OpenArchive(filepath.Join(t.TempDir(), "missing.fgrid")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestWriteArchiveRejectsRaggedSeries(t *testing.T) {
	m := NewMemSeries("bad", 2, 2, 2)
	m.Data[1] = m.Data[1][:3]

	var buf bytes.Buffer
	if err := WriteArchive(&buf, m); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestSynthesizeFillMask(t *testing.T) {
	opts := SynthOptions{Steps: 2, Rows: 20, Cols: 20, Seed: 3, FillFraction: 0.2}
	fields := Synthesize([]string{"x"}, opts)

	fills := 0
	for _, v := range fields[0].Data[0] {
		if v == FillValue {
			fills++
		}
	}
	if fills == 0 {
		t.Fatal("expected some fill values")
	}

	vr := render.ScanValues(fields[0].Data[0], render.DefaultThreshold)
	if vr.Degenerate() || vr.Max > 1e6 {
		t.Errorf("fill values leaked into range: %v", vr)
	}
}

// writeRawArchive writes one record with the given header followed by
// samples float32 values, bypassing the shape checks of WriteArchive.
func writeRawArchive(t *testing.T, name string, h recordHeader, samples int) string {
	t.Helper()
	var raw bytes.Buffer
	raw.Write(magic[:])
	binary.Write(&raw, binary.LittleEndian, uint32(1))
	binary.Write(&raw, binary.LittleEndian, uint16(len(name)))
	raw.WriteString(name)
	binary.Write(&raw, binary.LittleEndian, h)
	raw.Write(make([]byte, 4*samples))

	path := filepath.Join(t.TempDir(), "raw.fgrid")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write(raw.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArchiveRejectsOversizedHeader(t *testing.T) {
	tests := []struct {
		name string
		h    recordHeader
	}{
		{"everything huge", recordHeader{Steps: 0xFFFFFFFF, Rows: 0xFFFF, Cols: 0xFFFF}},
		{"too many steps", recordHeader{Steps: MaxSteps + 1, Rows: 2, Cols: 2}},
		{"grid too large", recordHeader{Steps: 1, Rows: 1 << 14, Cols: 1 << 14}},
		{"empty grid", recordHeader{Steps: 0xFFFFFFFF, Rows: 0, Cols: 7}},
	}

	for _, tt := range tests {
		arc, err := OpenArchive(writeRawArchive(t, "x", tt.h, 4))
		if err != nil {
			t.Fatalf("%s: open archive failed: %v", tt.name, err)
		}
		if _, err := arc.Open("x"); !errors.Is(err, ErrShape) {
			t.Errorf("%s: expected ErrShape from Open, got %v", tt.name, err)
		}
		if _, err := arc.Fields(); !errors.Is(err, ErrShape) {
			t.Errorf("%s: expected ErrShape from Fields, got %v", tt.name, err)
		}
	}
}

func TestArchiveTruncatedRecord(t *testing.T) {
	// three 2x2 steps promised, one delivered
	path := writeRawArchive(t, "x", recordHeader{Steps: 3, Rows: 2, Cols: 2}, 4)
	arc, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open archive failed: %v", err)
	}
	_, err = arc.Open("x")
	if err == nil {
		t.Fatal("expected error for truncated record")
	}
	if errors.Is(err, ErrFieldNotFound) {
		t.Errorf("truncation reported as missing field: %v", err)
	}
}
