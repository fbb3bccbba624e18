package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/episim/internal/epidemic"
)

// Curve colors follow the classic SIR chart: blue, red, green.
var curveColors = [3]string{"#1f77b4", "#d62728", "#2ca02c"}

var curveLabels = [3]string{"Susceptible", "Infected", "Recovered/Removed"}

// TrajectoryToSVG draws the valid prefix of tr as three polylines. The x axis
// spans the full step range and the y axis runs from 0 to 1.4*population.
func TrajectoryToSVG(tr *epidemic.Trajectory, population float64, width, height int) string {
	if tr == nil || tr.Len() == 0 || width <= 0 || height <= 0 {
		return ""
	}

	spanX := float64(tr.Len() - 1)
	if spanX == 0 {
		spanX = 1
	}
	spanY := population * 1.4
	if spanY <= 0 {
		spanY = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height))

	// Keep roughly two points per horizontal pixel.
	stride := tr.ValidLength / (2 * width)
	if stride < 1 {
		stride = 1
	}

	for c, series := range [][]float64{tr.S, tr.I, tr.R} {
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, curveColors[c]))
		last := -1
		for i := 0; i < tr.ValidLength; i += stride {
			writePoint(&sb, i, series[i], spanX, spanY, width, height, i == 0)
			last = i
		}
		if end := tr.ValidLength - 1; end > last {
			writePoint(&sb, end, series[end], spanX, spanY, width, height, last < 0)
		}
		sb.WriteString("\"/>\n")
	}

	for c, label := range curveLabels {
		y := 20 + c*18
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-family="sans-serif" font-size="12" fill="%s">%s</text>
`, width-150, y, curveColors[c], label))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePoint(sb *strings.Builder, step int, v, spanX, spanY float64, width, height int, first bool) {
	x := float64(step) / spanX * float64(width)
	y := float64(height) - v/spanY*float64(height)
	if !first {
		sb.WriteByte(' ')
	}
	sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
}
