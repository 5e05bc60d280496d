// Package progress reports per-variable pipeline progress.
//
// Observers are called from pool workers, possibly for several variables at
// once, so every implementation here is safe for concurrent use.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Phase int

const (
	PhaseQueued Phase = iota
	PhaseScanning
	PhaseRendering
	PhaseAssembling
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseScanning:
		return "scanning"
	case PhaseRendering:
		return "rendering"
	case PhaseAssembling:
		return "assembling"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

type Observer interface {
	Step(alias string, phase Phase, done, total int)
	Finished(alias string, err error)
}

type Nop struct{}

func (Nop) Step(string, Phase, int, int) {}
func (Nop) Finished(string, error)       {}

// Bar draws [=====>    ] style bars, width counting the inner cells.
func Bar(done, total, width int) string {
	frac := 0.0
	if total > 0 {
		frac = float64(done) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}
	pos := int(float64(width) * frac)

	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < width; i++ {
		switch {
		case i < pos:
			sb.WriteByte('=')
		case i == pos:
			sb.WriteByte('>')
		default:
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte(']')
	fmt.Fprintf(&sb, " %3d %%", int(frac*100))
	return sb.String()
}

// Printer writes one styled line per phase change and per quarter of a
// phase, so concurrent variables do not flood the terminal.
type Printer struct {
	mu   sync.Mutex
	w    io.Writer
	last map[string]int
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, last: make(map[string]int)}
}

func (p *Printer) Step(alias string, phase Phase, done, total int) {
	quarter := 0
	if total > 0 {
		quarter = 4 * done / total
	}
	key := int(phase)*10 + quarter

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[alias]; ok && prev == key {
		return
	}
	p.last[alias] = key
	fmt.Fprintf(p.w, "%s %s %s\n",
		AliasStyle.Render(fmt.Sprintf("%-18s", alias)),
		phaseStyle(phase).Render(fmt.Sprintf("%-10s", phase)),
		Bar(done, total, 30))
}

func (p *Printer) Finished(alias string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.last, alias)
	if err != nil {
		fmt.Fprintf(p.w, "%s %s %v\n",
			AliasStyle.Render(fmt.Sprintf("%-18s", alias)),
			StatusFailed.Render(fmt.Sprintf("%-10s", PhaseFailed)),
			err)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n",
		AliasStyle.Render(fmt.Sprintf("%-18s", alias)),
		StatusDone.Render(PhaseDone.String()))
}
