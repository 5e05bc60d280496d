package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldviz/internal/render"
)

const (
	DefaultInput      = "forecast.fgrid"
	DefaultOutput     = "output"
	DefaultWorkers    = 4
	DefaultScale      = 0.3333
	DefaultQuality    = 90
	DefaultFrameDelay = 10
	DefaultAssembler  = "convert"
	DefaultColormap   = "viridis"
)

var (
	ErrUnknownAlias    = errors.New("config: unknown variable alias")
	ErrDuplicateAlias  = errors.New("config: duplicate variable alias")
	ErrMissingField    = errors.New("config: variable has no source field")
	ErrUnknownColormap = errors.New("config: unknown colormap")
	ErrInvalidValue    = errors.New("config: invalid value")
)

type Config struct {
	Input         string                        `yaml:"input"`
	Output        string                        `yaml:"output"`
	DatasetURL    string                        `yaml:"dataset_url"`
	Workers       int                           `yaml:"workers"`
	RenderWorkers int                           `yaml:"render_workers"`
	LUTSize       int                           `yaml:"lut_size"`
	Scale         float64                       `yaml:"scale"`
	Quality       int                           `yaml:"quality"`
	FrameDelay    int                           `yaml:"frame_delay"`
	Assembler     string                        `yaml:"assembler"`
	Legend        bool                          `yaml:"legend"`
	Threshold     render.Threshold              `yaml:"threshold"`
	Variables     []VariableConfig              `yaml:"variables"`
	Colormaps     map[string][]render.ColorStop `yaml:"colormaps,omitempty"`
}

type VariableConfig struct {
	Alias     string            `yaml:"alias"`
	Field     string            `yaml:"field"`
	Colormap  string            `yaml:"colormap,omitempty"`
	Threshold *render.Threshold `yaml:"threshold,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Input:      DefaultInput,
		Output:     DefaultOutput,
		Workers:    DefaultWorkers,
		LUTSize:    render.DefaultLUTSize,
		Scale:      DefaultScale,
		Quality:    DefaultQuality,
		FrameDelay: DefaultFrameDelay,
		Assembler:  DefaultAssembler,
		Legend:     true,
		Threshold:  render.DefaultThreshold,
		Variables:  DefaultVariables(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalidValue, c.Workers)
	}
	if c.LUTSize < 1 {
		return fmt.Errorf("%w: lut_size %d", ErrInvalidValue, c.LUTSize)
	}
	if c.Scale < 0 || c.Scale > 1 {
		return fmt.Errorf("%w: scale %g outside [0, 1]", ErrInvalidValue, c.Scale)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w: quality %d", ErrInvalidValue, c.Quality)
	}
	if c.FrameDelay < 0 {
		return fmt.Errorf("%w: frame_delay %d", ErrInvalidValue, c.FrameDelay)
	}
	if c.Threshold.Min > c.Threshold.Max {
		return fmt.Errorf("%w: threshold min %g above max %g", ErrInvalidValue, c.Threshold.Min, c.Threshold.Max)
	}
	_, err := c.Catalog()
	return err
}

// Catalog resolves the variable table against the colormaps. The result is
// independent of c and safe to share.
func (c *Config) Catalog() (*Catalog, error) {
	vars := make([]Variable, 0, len(c.Variables))
	for _, vc := range c.Variables {
		name := vc.Colormap
		if name == "" {
			name = DefaultColormap
		}
		stops, ok := c.colormap(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownColormap, name, vc.Alias)
		}
		th := c.Threshold
		if vc.Threshold != nil {
			th = *vc.Threshold
		}
		vars = append(vars, Variable{
			Alias:     vc.Alias,
			Field:     vc.Field,
			Colormap:  name,
			Stops:     stops,
			Threshold: th,
		})
	}
	return NewCatalog(vars)
}

func (c *Config) colormap(name string) ([]render.ColorStop, bool) {
	if stops, ok := c.Colormaps[name]; ok {
		return stops, true
	}
	return GetColormap(name)
}
