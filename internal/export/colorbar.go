package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/fieldviz/internal/render"
)

// ColorbarToSVG draws a vertical legend for lut over vr: a gradient strip
// with the maximum at the top and tick labels on the right.
func ColorbarToSVG(lut render.LUT, vr render.ValueRange, label string, width, height, ticks int) string {
	if len(lut) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	if ticks < 2 {
		ticks = 2
	}

	const pad = 10
	barW := width / 3
	barH := height - 2*pad
	if barH < 1 {
		barH = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// one horizontal band per LUT entry, last entry on top
	bandH := float64(barH) / float64(len(lut))
	for i, c := range lut {
		y := float64(pad) + float64(barH) - float64(i+1)*bandH
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%.2f" width="%d" height="%.2f" fill="#%02x%02x%02x"/>
`, pad, y, barW, bandH+0.5, c.R, c.G, c.B))
	}

	sb.WriteString(`<g fill="#cccccc" font-family="monospace" font-size="11">
`)
	for k := 0; k < ticks; k++ {
		frac := float64(k) / float64(ticks-1)
		y := float64(pad) + float64(barH)*(1-frac)
		text := "n/a"
		if !vr.Degenerate() {
			text = fmt.Sprintf("%.4g", vr.Min+frac*vr.Span())
		}
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" dominant-baseline="middle">%s</text>
`, pad+barW+6, y, text))
	}
	if label != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10">%s</text>
`, pad, height-2, html.EscapeString(label)))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
