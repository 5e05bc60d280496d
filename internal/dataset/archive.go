package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
)

var magic = [8]byte{'F', 'G', 'R', 'I', 'D', 0, 0, 1}

// Record headers beyond these bounds are treated as corrupt.
const (
	MaxSteps     = 1 << 20
	MaxStepCells = 1 << 26
)

type recordHeader struct {
	Steps uint32
	Rows  uint32
	Cols  uint32
}

func (h recordHeader) check(name string) error {
	cells := uint64(h.Rows) * uint64(h.Cols)
	switch {
	case h.Steps > MaxSteps:
		return fmt.Errorf("%w: %s has %d steps", ErrShape, name, h.Steps)
	case cells > MaxStepCells:
		return fmt.Errorf("%w: %s grid %dx%d too large", ErrShape, name, h.Rows, h.Cols)
	case cells == 0 && h.Steps > 0:
		return fmt.Errorf("%w: %s has an empty %dx%d grid", ErrShape, name, h.Rows, h.Cols)
	}
	return nil
}

// Archive is a Source backed by an .fgrid file. Every Open reads the file
// independently, so one Archive may serve concurrent jobs.
type Archive struct {
	path string
}

// OpenArchive checks that path is an .fgrid archive.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	if _, err := readMagic(dec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Archive{path: path}, nil
}

func (a *Archive) Path() string { return a.path }

// Open reads the named field into memory.
func (a *Archive) Open(field string) (Series, error) {
	var found *MemSeries
	err := a.walk(func(name string, h recordHeader, r io.Reader) (bool, error) {
		if name != field {
			return false, nil
		}
		m, err := readCube(name, h, r)
		if err != nil {
			return true, err
		}
		found = m
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, field, a.path)
	}
	return found, nil
}

// FieldInfo describes one record without reading its samples.
type FieldInfo struct {
	Name  string
	Steps int
	Rows  int
	Cols  int
}

func (a *Archive) Fields() ([]FieldInfo, error) {
	var out []FieldInfo
	err := a.walk(func(name string, h recordHeader, _ io.Reader) (bool, error) {
		out = append(out, FieldInfo{Name: name, Steps: int(h.Steps), Rows: int(h.Rows), Cols: int(h.Cols)})
		return false, nil
	})
	return out, err
}

// walk calls fn for each record. fn either consumes the record's samples
// and returns stop=true, or returns false and leaves them to be skipped.
func (a *Archive) walk(fn func(name string, h recordHeader, r io.Reader) (stop bool, err error)) error {
	f, err := os.Open(a.path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return err
	}
	defer dec.Close()

	count, err := readMagic(dec)
	if err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(dec, binary.LittleEndian, &nameLen); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(dec, name); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		var h recordHeader
		if err := binary.Read(dec, binary.LittleEndian, &h); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := h.check(string(name)); err != nil {
			return err
		}

		stop, err := fn(string(name), h, dec)
		if err != nil || stop {
			return err
		}
		n := int64(h.Steps) * int64(h.Rows) * int64(h.Cols) * 4
		if _, err := io.CopyN(io.Discard, dec, n); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
	}
	return nil
}

func readMagic(r io.Reader) (uint32, error) {
	var got [8]byte
	if _, err := io.ReadFull(r, got[:]); err != nil || got != magic {
		return 0, ErrBadMagic
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// readCube allocates one step at a time, so a header promising more data
// than the stream holds fails on the first short read.
func readCube(name string, h recordHeader, r io.Reader) (*MemSeries, error) {
	m := &MemSeries{Field: name, Rows: int(h.Rows), Cols: int(h.Cols)}
	buf := make([]byte, 4*m.Rows*m.Cols)
	for t := 0; t < int(h.Steps); t++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%s step %d: %w", name, t, err)
		}
		grid := make([]float32, m.Rows*m.Cols)
		for i := range grid {
			grid[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
		m.Data = append(m.Data, grid)
	}
	return m, nil
}

// WriteArchive encodes fields into w as an .fgrid stream.
func WriteArchive(w io.Writer, fields ...*MemSeries) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}

	if err := writeRecords(enc, fields); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func writeRecords(w io.Writer, fields []*MemSeries) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(fields))); err != nil {
		return err
	}

	for _, m := range fields {
		if err := m.validate(); err != nil {
			return err
		}
		if len(m.Field) > math.MaxUint16 {
			return fmt.Errorf("%w: field name too long", ErrShape)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(m.Field))); err != nil {
			return err
		}
		if _, err := bw.WriteString(m.Field); err != nil {
			return err
		}
		h := recordHeader{Steps: uint32(len(m.Data)), Rows: uint32(m.Rows), Cols: uint32(m.Cols)}
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return err
		}

		var b [4]byte
		for _, grid := range m.Data {
			for _, v := range grid {
				binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
				if _, err := bw.Write(b[:]); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// WriteArchiveFile writes fields to path, replacing any existing file.
func WriteArchiveFile(path string, fields ...*MemSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteArchive(f, fields...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
