package export

import (
	"strings"
	"testing"

	"github.com/san-kum/fieldviz/internal/render"
)

func TestColorbarToSVG(t *testing.T) {
	lut, err := render.BuildLUT([]render.ColorStop{{0, 0, 0}, {255, 0, 0}}, 4)
	if err != nil {
		t.Fatal(err)
	}

	svg := ColorbarToSVG(lut, render.ValueRange{Min: 250, Max: 300}, "air_temperature_2m <K>", 120, 300, 3)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if n := strings.Count(svg, "<rect"); n != 4+1 {
		t.Errorf("expected background plus 4 bands, got %d rects", n)
	}
	for _, want := range []string{"#000000", "#ff0000", ">250<", ">275<", ">300<", "&lt;K&gt;"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestColorbarDegenerate(t *testing.T) {
	lut, _ := render.BuildLUT([]render.ColorStop{{0, 0, 0}, {255, 255, 255}}, 2)
	svg := ColorbarToSVG(lut, render.ValueRange{Min: 5, Max: 5}, "", 60, 100, 2)
	if !strings.Contains(svg, ">n/a<") {
		t.Error("expected n/a labels for a degenerate range")
	}
}

func TestColorbarEmpty(t *testing.T) {
	if ColorbarToSVG(nil, render.ValueRange{}, "", 10, 10, 2) != "" {
		t.Error("expected empty output for empty lut")
	}
}
