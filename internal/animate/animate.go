// Package animate assembles per-timestep frames into an animated GIF.
package animate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultDelay is the pause between frames in hundredths of a second.
const DefaultDelay = 10

var ErrNoFrames = errors.New("animate: no frames match pattern")

// Assembler turns the frames matching pattern into one animation at output.
type Assembler interface {
	Assemble(ctx context.Context, pattern, output string, delay int) error
}

// Nop skips assembly.
type Nop struct{}

func (Nop) Assemble(context.Context, string, string, int) error { return nil }

// frameFiles expands pattern and orders the matches by timestep. Names end
// in _<step>, padded to two digits only, so v_100 must follow v_99.
func frameFiles(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, pattern)
	}
	sortFrames(files)
	return files, nil
}

func sortFrames(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		pi, ni := frameStep(files[i])
		pj, nj := frameStep(files[j])
		if pi != pj {
			return pi < pj
		}
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
}

// frameStep splits path into everything before the last underscore and the
// step number after it. Names without a numeric step sort by their stem and
// report step -1.
func frameStep(path string) (prefix string, step int) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	i := strings.LastIndexByte(stem, '_')
	if i < 0 {
		return stem, -1
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n < 0 {
		return stem, -1
	}
	return stem[:i], n
}
