package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldviz/internal/animate"
	"github.com/san-kum/fieldviz/internal/config"
	"github.com/san-kum/fieldviz/internal/dataset"
	"github.com/san-kum/fieldviz/internal/fetch"
	"github.com/san-kum/fieldviz/internal/frames"
	"github.com/san-kum/fieldviz/internal/pipeline"
	"github.com/san-kum/fieldviz/internal/progress"
	"github.com/san-kum/fieldviz/internal/render"
)

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	selected, err := catalog.Select(variables)
	if err != nil {
		return err
	}
	aliases := make([]string, len(selected))
	for i, v := range selected {
		aliases[i] = v.Alias
	}

	sink := frames.New(cfg.Output)
	sink.Scale = cfg.Scale
	sink.Quality = cfg.Quality
	if err := sink.Init(); err != nil {
		return err
	}

	var logOut io.Writer = os.Stderr
	if useTUI {
		f, err := os.Create(filepath.Join(cfg.Output, "fieldviz.log"))
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !noDownload {
		if err := refresh(ctx, cfg, logger); err != nil {
			return err
		}
	}

	archive, err := dataset.OpenArchive(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}

	assembler, err := animate.New(cfg.Assembler)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Catalog:    catalog,
		Source:     archive,
		Sink:       sink,
		Assembler:  assembler,
		Logger:     logger,
		Renderer:   render.Renderer{Workers: cfg.RenderWorkers},
		LUTSize:    cfg.LUTSize,
		FrameDelay: cfg.FrameDelay,
		Legend:     cfg.Legend,
	}

	fmt.Printf("rendering %d variable(s) from %s with %d worker(s)\n", len(aliases), cfg.Input, cfg.Workers)
	start := time.Now()

	var outcomes []pipeline.Outcome
	if useTUI {
		dash := progress.NewDashboard("fieldviz "+filepath.Base(cfg.Input), aliases)
		opts.Observer = dash

		done := make(chan error, 1)
		go func() {
			var err error
			outcomes, err = pipeline.New(opts).Run(ctx, cfg.Workers, aliases)
			dash.Close()
			done <- err
		}()
		if err := dash.Run(); err != nil {
			logger.Warn("dashboard stopped", "err", err)
		}
		if err := <-done; err != nil {
			return err
		}
	} else {
		opts.Observer = progress.NewPrinter(os.Stdout)
		outcomes, err = pipeline.New(opts).Run(ctx, cfg.Workers, aliases)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\ncompleted in %v\n\n", time.Since(start).Round(time.Millisecond))
	if err := printOutcomes(outcomes); err != nil {
		return err
	}

	if failed := pipeline.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d variables failed", len(failed), len(outcomes))
	}
	return nil
}

// refresh makes sure the local dataset is current. A failed check is only
// fatal when there is no local copy to fall back on.
func refresh(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.DatasetURL == "" {
		logger.Debug("fetch: no dataset url, skipping freshness check")
		return nil
	}

	f := fetch.New(cfg.DatasetURL)
	f.Progress = downloadProgress()
	downloaded, err := f.DownloadIfNewer(ctx, cfg.Input)
	if err == nil {
		logger.Info("fetch: dataset checked", "path", cfg.Input, "downloaded", downloaded)
		return nil
	}

	if _, statErr := os.Stat(cfg.Input); statErr == nil {
		logger.Warn("fetch: freshness check failed, using local copy", "path", cfg.Input, "err", err)
		return nil
	}
	return fmt.Errorf("failed to fetch dataset: %w", err)
}

func downloadProgress() fetch.ProgressFunc {
	last := -1
	return func(received, total int64) {
		if total <= 0 {
			return
		}
		pct := int(100 * received / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Printf("\rdownloading %s", progress.Bar(int(received/1024), int(total/1024), 40))
		if received >= total {
			fmt.Println()
		}
	}
}

func printOutcomes(outcomes []pipeline.Outcome) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tFIELD\tFRAMES\tRANGE\tANIMATION\tSTATUS")

	for _, oc := range outcomes {
		status := progress.StatusDone.Render("ok")
		var ie *pipeline.InputError
		switch {
		case errors.As(oc.Err, &ie):
			status = progress.StatusFailed.Render("input: " + ie.Err.Error())
		case oc.Err != nil:
			status = progress.StatusFailed.Render(oc.Err.Error())
		case oc.Report.Degenerate:
			status = progress.StatusWaiting.Render("ok (no valid samples)")
		}

		anim := oc.Report.Animation
		if oc.Report.AssembleErr != nil {
			anim = progress.StatusFailed.Render("failed")
		}
		if anim == "" {
			anim = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			oc.Alias,
			oc.Report.Field,
			oc.Report.Frames,
			oc.Report.Range,
			anim,
			status,
		)
	}
	return w.Flush()
}
