package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/episim/internal/epidemic"
)

// plot draws S, I and R over the valid prefix of tr with the y axis starting at zero.
func plot(tr *epidemic.Trajectory, width, height int) string {
	v := tr.Valid()
	if v.ValidLength == 0 {
		return ""
	}

	series := [][]float64{v.S, v.I, v.R}
	if v.ValidLength == 1 {
		// asciigraph needs two points to draw a line
		for i, s := range series {
			series[i] = []float64{s[0], s[0]}
		}
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("time step"),
	)
}

// Plot renders tr for non-interactive output.
func Plot(tr *epidemic.Trajectory, width, height int) string {
	if tr == nil {
		return ""
	}
	return plot(tr, width, height)
}
