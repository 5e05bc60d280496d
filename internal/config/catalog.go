package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/fieldviz/internal/render"
)

// Variable is one renderable field of the dataset.
type Variable struct {
	Alias     string
	Field     string
	Colormap  string
	Stops     []render.ColorStop
	Threshold render.Threshold
}

// Catalog maps short aliases to dataset fields. It is built once at startup
// and never modified, so it can be handed to concurrent jobs as is.
type Catalog struct {
	byAlias map[string]Variable
	aliases []string
}

func NewCatalog(vars []Variable) (*Catalog, error) {
	c := &Catalog{
		byAlias: make(map[string]Variable, len(vars)),
		aliases: make([]string, 0, len(vars)),
	}
	for _, v := range vars {
		if v.Alias == "" {
			return nil, fmt.Errorf("%w: empty alias for field %q", ErrInvalidValue, v.Field)
		}
		if v.Field == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, v.Alias)
		}
		if _, dup := c.byAlias[v.Alias]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAlias, v.Alias)
		}
		if !(v.Threshold.Min <= v.Threshold.Max) {
			return nil, fmt.Errorf("%w: %s threshold min %g above max %g", ErrInvalidValue, v.Alias, v.Threshold.Min, v.Threshold.Max)
		}
		if len(v.Stops) < 2 {
			return nil, fmt.Errorf("%s: %w", v.Alias, render.ErrTooFewStops)
		}
		stops := make([]render.ColorStop, len(v.Stops))
		copy(stops, v.Stops)
		v.Stops = stops

		c.byAlias[v.Alias] = v
		c.aliases = append(c.aliases, v.Alias)
	}
	sort.Strings(c.aliases)
	return c, nil
}

func (c *Catalog) Lookup(alias string) (Variable, error) {
	v, ok := c.byAlias[alias]
	if !ok {
		return Variable{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownAlias, alias, c.aliases)
	}
	return v, nil
}

// Aliases returns every alias in sorted order.
func (c *Catalog) Aliases() []string {
	out := make([]string, len(c.aliases))
	copy(out, c.aliases)
	return out
}

func (c *Catalog) Len() int {
	return len(c.aliases)
}

// Select resolves the requested aliases, or every alias when none are given.
func (c *Catalog) Select(aliases []string) ([]Variable, error) {
	if len(aliases) == 0 {
		aliases = c.aliases
	}
	out := make([]Variable, 0, len(aliases))
	for _, a := range aliases {
		v, err := c.Lookup(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
