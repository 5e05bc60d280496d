package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/fieldviz/internal/animate"
	"github.com/san-kum/fieldviz/internal/config"
	"github.com/san-kum/fieldviz/internal/dataset"
	"github.com/san-kum/fieldviz/internal/export"
	"github.com/san-kum/fieldviz/internal/frames"
	"github.com/san-kum/fieldviz/internal/progress"
	"github.com/san-kum/fieldviz/internal/render"
	"github.com/san-kum/fieldviz/internal/taskpool"
)

type Options struct {
	Catalog   *config.Catalog
	Source    dataset.Source
	Sink      frames.Sink
	Assembler animate.Assembler
	Observer  progress.Observer
	Logger    *slog.Logger
	Renderer  render.Renderer
	LUTSize   int
	// FrameDelay is in hundredths of a second.
	FrameDelay int
	// Legend writes <alias>_legend.svg next to the frames.
	Legend bool
}

type Orchestrator struct {
	catalog   *config.Catalog
	source    dataset.Source
	sink      frames.Sink
	assembler animate.Assembler
	observer  progress.Observer
	logger    *slog.Logger
	renderer  render.Renderer
	lutSize   int
	delay     int
	legend    bool
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		catalog:   opts.Catalog,
		source:    opts.Source,
		sink:      opts.Sink,
		assembler: opts.Assembler,
		observer:  opts.Observer,
		logger:    opts.Logger,
		renderer:  opts.Renderer,
		lutSize:   opts.LUTSize,
		delay:     opts.FrameDelay,
		legend:    opts.Legend,
	}
	if o.assembler == nil {
		o.assembler = animate.Nop{}
	}
	if o.observer == nil {
		o.observer = progress.Nop{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.lutSize <= 0 {
		o.lutSize = render.DefaultLUTSize
	}
	if o.delay <= 0 {
		o.delay = animate.DefaultDelay
	}
	return o
}

// Report describes one finished variable.
type Report struct {
	Alias      string
	Field      string
	Range      render.ValueRange
	Degenerate bool
	Frames     int
	Dir        string
	Animation  string
	Legend     string
	// AssembleErr is set when the frames were written but the animation
	// could not be built. It does not fail the variable.
	AssembleErr error
	Elapsed     time.Duration
}

// RunVariable renders every timestep of alias and assembles the animation.
// ctx is consulted between timesteps; a frame that has started rendering
// always completes.
func (o *Orchestrator) RunVariable(ctx context.Context, alias string) (rep Report, err error) {
	start := time.Now()
	rep.Alias = alias
	defer func() {
		rep.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			// the pool turns the panic into the handle's error
			o.observer.Finished(alias, fmt.Errorf("pipeline: %s panicked: %v", alias, r))
			panic(r)
		}
		o.observer.Finished(alias, err)
	}()

	v, err := o.catalog.Lookup(alias)
	if err != nil {
		return rep, &InputError{Alias: alias, Err: err}
	}
	rep.Field = v.Field
	log := o.logger.With("alias", alias, "field", v.Field)

	series, err := o.source.Open(v.Field)
	if err != nil {
		return rep, &InputError{Alias: alias, Field: v.Field, Err: err}
	}
	defer series.Close()

	steps := series.Steps()
	if steps == 0 {
		return rep, &InputError{Alias: alias, Field: v.Field, Err: ErrNoTimesteps}
	}
	rows, cols := series.Shape()
	log.Info("pipeline: scanning range", "steps", steps, "rows", rows, "cols", cols)

	vr, err := render.ScanRange(series, v.Threshold, func(done, total int) {
		o.observer.Step(alias, progress.PhaseScanning, done, total)
	})
	if err != nil {
		return rep, &InputError{Alias: alias, Field: v.Field, Err: err}
	}
	rep.Range = vr
	rep.Degenerate = vr.Degenerate()
	if rep.Degenerate {
		log.Warn("pipeline: degenerate value range, frames use the first colormap entry",
			"range", vr.String(), "threshold_min", v.Threshold.Min, "threshold_max", v.Threshold.Max)
	}

	lut, err := render.BuildLUT(v.Stops, o.lutSize)
	if err != nil {
		return rep, fmt.Errorf("pipeline: %s colormap %s: %w", alias, v.Colormap, err)
	}

	dir, err := o.sink.Prepare(alias)
	if err != nil {
		return rep, fmt.Errorf("pipeline: %s prepare output: %w", alias, err)
	}
	rep.Dir = dir
	if o.legend {
		rep.Legend = o.writeLegend(log, dir, v, lut, vr)
	}

	log.Info("pipeline: rendering frames", "range", vr.String(), "colormap", v.Colormap)
	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		s, err := series.Slice(t)
		if err != nil {
			return rep, &InputError{Alias: alias, Field: v.Field, Err: fmt.Errorf("step %d: %w", t, err)}
		}
		img, err := o.renderer.Render(s, vr, lut)
		if err != nil {
			return rep, fmt.Errorf("pipeline: %s step %d: %w", alias, t, err)
		}
		if err := o.sink.Write(alias, frames.FrameName(alias, t), img); err != nil {
			return rep, fmt.Errorf("pipeline: %s step %d: %w", alias, t, err)
		}
		rep.Frames++
		o.observer.Step(alias, progress.PhaseRendering, t+1, steps)
	}

	o.observer.Step(alias, progress.PhaseAssembling, 0, 1)
	out := o.sink.AnimationPath(alias)
	if err := o.assembler.Assemble(ctx, o.sink.Pattern(alias), out, o.delay); err != nil {
		log.Error("pipeline: animation failed", "output", out, "err", err)
		rep.AssembleErr = err
	} else {
		rep.Animation = out
	}

	log.Info("pipeline: variable done", "frames", rep.Frames, "elapsed", time.Since(start).Round(time.Millisecond))
	return rep, nil
}

// writeLegend is best effort: a missing legend never fails the variable.
func (o *Orchestrator) writeLegend(log *slog.Logger, dir string, v config.Variable, lut render.LUT, vr render.ValueRange) string {
	path := filepath.Join(dir, v.Alias+"_legend.svg")
	svg := export.ColorbarToSVG(lut, vr, v.Field, 140, 400, 6)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		log.Warn("pipeline: legend not written", "path", path, "err", err)
		return ""
	}
	return path
}

// Outcome pairs an alias with the result of its run.
type Outcome struct {
	Alias  string
	Report Report
	Err    error
}

// RunAll submits one job per alias to pool and waits for all of them.
// Outcomes come back in the order of aliases; an empty list means every
// variable in the catalog.
func (o *Orchestrator) RunAll(ctx context.Context, pool *taskpool.Pool, aliases []string) []Outcome {
	if len(aliases) == 0 {
		aliases = o.catalog.Aliases()
	}

	outcomes := make([]Outcome, len(aliases))
	handles := make([]*taskpool.Handle[Report], len(aliases))
	for i, alias := range aliases {
		outcomes[i].Alias = alias
		o.observer.Step(alias, progress.PhaseQueued, 0, 0)

		h, err := taskpool.Submit(pool, func() (Report, error) {
			return o.RunVariable(ctx, alias)
		})
		if err != nil {
			outcomes[i].Err = err
			o.observer.Finished(alias, err)
			continue
		}
		handles[i] = h
	}

	for i, h := range handles {
		if h == nil {
			continue
		}
		outcomes[i].Report, outcomes[i].Err = h.Wait()
		if err := outcomes[i].Err; err != nil {
			o.logger.Error("pipeline: variable failed", "alias", aliases[i], "err", err)
		}
	}
	return outcomes
}

// Run renders aliases on a pool of workers that lives for this call only.
func (o *Orchestrator) Run(ctx context.Context, workers int, aliases []string) ([]Outcome, error) {
	pool, err := taskpool.New(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Shutdown()
	return o.RunAll(ctx, pool, aliases), nil
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, oc := range outcomes {
		if oc.Err != nil {
			out = append(out, oc)
		}
	}
	return out
}
