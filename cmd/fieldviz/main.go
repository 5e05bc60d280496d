package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldviz/internal/config"
)

var (
	configFile string
	inputPath  string
	logLevel   string

	// render
	variables     []string
	outputDir     string
	noDownload    bool
	datasetURL    string
	workers       int
	renderWorkers int
	assemblerName string
	scale         float64
	quality       int
	frameDelay    int
	useTUI        bool
	legend        bool

	// stats
	plotHeight int
	statsJSON  string

	// synth
	synthSteps int
	synthRows  int
	synthCols  int
	synthSeed  int64
)

// main wires the fieldviz commands. The root command renders; subcommands
// inspect the variable table and the dataset.
func main() {
	rootCmd := &cobra.Command{
		Use:           "fieldviz",
		Short:         "render gridded forecast fields into false-color frames and animations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRender,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", config.DefaultInput, "dataset archive (.fgrid)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringSliceVar(&variables, "var", nil, "variable alias to render, repeatable (default: all)")
	rootCmd.Flags().StringVar(&outputDir, "output", config.DefaultOutput, "output directory")
	rootCmd.Flags().BoolVar(&noDownload, "no_download", false, "skip the dataset freshness check")
	rootCmd.Flags().StringVar(&datasetURL, "url", "", "dataset url for the freshness check")
	rootCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "variables rendered concurrently")
	rootCmd.Flags().IntVar(&renderWorkers, "render-workers", 0, "row bands per frame (0: GOMAXPROCS)")
	rootCmd.Flags().StringVar(&assemblerName, "assembler", config.DefaultAssembler, "animation assembler (convert, gif, none)")
	rootCmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "frame downscale factor (1: full size)")
	rootCmd.Flags().IntVar(&quality, "quality", config.DefaultQuality, "jpeg quality")
	rootCmd.Flags().IntVar(&frameDelay, "delay", config.DefaultFrameDelay, "animation frame delay (1/100 s)")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "show a live progress dashboard")
	rootCmd.Flags().BoolVar(&legend, "legend", true, "write a colorbar svg per variable")

	varsCmd := &cobra.Command{
		Use:   "vars",
		Short: "list configured variables",
		RunE:  listVariables,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [alias]",
		Short: "plot per-timestep min, mean and max of a variable",
		Args:  cobra.ExactArgs(1),
		RunE:  plotStats,
	}
	statsCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	statsCmd.Flags().StringVar(&statsJSON, "json", "", "write statistics as json to this path (- for stdout)")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "write a synthetic dataset archive for every configured field",
		RunE:  synthesize,
	}
	synthCmd.Flags().IntVar(&synthSteps, "steps", 24, "timesteps")
	synthCmd.Flags().IntVar(&synthRows, "rows", 120, "grid rows (latitude)")
	synthCmd.Flags().IntVar(&synthCols, "cols", 90, "grid columns (longitude)")
	synthCmd.Flags().Int64Var(&synthSeed, "seed", 1, "random seed")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "download the dataset if the remote copy is newer",
		RunE:  fetchDataset,
	}
	fetchCmd.Flags().StringVar(&datasetURL, "url", "", "dataset url")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeDefaultConfig,
	}
	configCmd.AddCommand(configInitCmd)

	colormapsCmd := &cobra.Command{
		Use:   "colormaps",
		Short: "list built-in colormaps",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListColormaps() {
				stops, _ := config.GetColormap(name)
				fmt.Printf("  %-10s %d stops\n", name, len(stops))
			}
		},
	}

	rootCmd.AddCommand(varsCmd, statsCmd, synthCmd, fetchCmd, configCmd, colormapsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadConfig reads the config file, if any, and lets explicitly set flags
// override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") || configFile == "" {
		cfg.Input = inputPath
	}
	if flags.Lookup("output") != nil && (flags.Changed("output") || configFile == "") {
		cfg.Output = outputDir
	}
	if flags.Changed("url") {
		cfg.DatasetURL = datasetURL
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("render-workers") {
		cfg.RenderWorkers = renderWorkers
	}
	if flags.Changed("assembler") {
		cfg.Assembler = assemblerName
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	if flags.Changed("quality") {
		cfg.Quality = quality
	}
	if flags.Changed("delay") {
		cfg.FrameDelay = frameDelay
	}
	if flags.Changed("legend") {
		cfg.Legend = legend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
