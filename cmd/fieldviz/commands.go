package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldviz/internal/config"
	"github.com/san-kum/fieldviz/internal/dataset"
	"github.com/san-kum/fieldviz/internal/fetch"
	"github.com/san-kum/fieldviz/internal/progress"
	"github.com/san-kum/fieldviz/internal/stats"
)

func listVariables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tFIELD\tCOLORMAP\tTHRESHOLD")
	for _, alias := range catalog.Aliases() {
		v, _ := catalog.Lookup(alias)
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\n", v.Alias, v.Field, v.Colormap, v.Threshold.Min, v.Threshold.Max)
	}
	return w.Flush()
}

func plotStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	v, err := catalog.Lookup(args[0])
	if err != nil {
		return err
	}

	archive, err := dataset.OpenArchive(cfg.Input)
	if err != nil {
		return err
	}
	series, err := archive.Open(v.Field)
	if err != nil {
		return err
	}
	defer series.Close()

	steps, err := stats.Summarize(series, v.Threshold, cfg.RenderWorkers)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	rows, cols := series.Shape()
	if statsJSON != "" {
		data := stats.NewExport(v.Alias, v.Field, rows, cols, steps)
		if statsJSON == "-" {
			return stats.WriteJSON(os.Stdout, data)
		}
		return stats.ExportJSON(statsJSON, data)
	}

	fmt.Printf("%s\n", progress.TitleStyle.Render(v.Alias+" ("+v.Field+")"))
	fmt.Printf("timesteps: %d, grid: %dx%d\n\n", len(steps), rows, cols)

	mins, means, maxs := stats.Series(steps)
	graph := asciigraph.PlotMany([][]float64{mins, means, maxs},
		asciigraph.Height(plotHeight),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("min (blue), mean (green), max (red) per timestep"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMIN\tMEAN\tMAX\tVALID")
	for t, s := range steps {
		fmt.Fprintf(w, "%02d\t%.3f\t%.3f\t%.3f\t%d/%d\n", t, s.Min, s.Mean, s.Max, s.Valid, s.Total)
	}
	return w.Flush()
}

func synthesize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fields := make([]string, 0, len(cfg.Variables))
	for _, v := range cfg.Variables {
		fields = append(fields, v.Field)
	}

	opts := dataset.DefaultSynthOptions()
	opts.Steps, opts.Rows, opts.Cols, opts.Seed = synthSteps, synthRows, synthCols, synthSeed

	series := dataset.Synthesize(fields, opts)
	if err := dataset.WriteArchiveFile(cfg.Input, series...); err != nil {
		return err
	}
	fmt.Printf("wrote %d fields (%d steps, %dx%d) to %s\n", len(series), opts.Steps, opts.Rows, opts.Cols, cfg.Input)
	return nil
}

func fetchDataset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatasetURL == "" {
		return fetch.ErrNoURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := fetch.New(cfg.DatasetURL)
	f.Progress = downloadProgress()

	remote, err := f.RemoteModTime(ctx)
	if err != nil {
		return err
	}
	local, err := fetch.LocalModTime(cfg.Input)
	if err != nil {
		return err
	}
	fmt.Printf("local time: %v remote time: %v\n", local, remote)

	if !remote.After(local) {
		fmt.Println("dataset is current")
		return nil
	}
	if err := f.Download(ctx, cfg.Input); err != nil {
		return err
	}
	fmt.Printf("downloaded %s\n", cfg.Input)
	return nil
}

func writeDefaultConfig(cmd *cobra.Command, args []string) error {
	path := "fieldviz.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
