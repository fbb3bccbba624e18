package viz

import (
	"fmt"
	"strings"
)

// PhasePortrait scatters (xs[i], ys[i]) on a width x height character grid.
// Points are drawn as '.', 'o' or '●' for the early, middle and late thirds
// of the sequence.
func PhasePortrait(xs, ys []float64, width, height int) string {
	n := min(len(xs), len(ys))
	if n == 0 || width < 2 || height < 2 {
		return ""
	}

	xMin, xMax := bounds(xs[:n])
	yMin, yMax := bounds(ys[:n])
	xRange, yRange := xMax-xMin, yMax-yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i := 0; i < n; i++ {
		px := int(float64(width-1) * (xs[i] - xMin) / xRange)
		py := height - 1 - int(float64(height-1)*(ys[i]-yMin)/yRange)
		if px < 0 || px >= width || py < 0 || py >= height {
			continue
		}
		switch {
		case i < n/3:
			canvas[py][px] = '.'
		case i < 2*n/3:
			canvas[py][px] = 'o'
		default:
			canvas[py][px] = '●'
		}
	}

	var b strings.Builder
	rule := strings.Repeat("─", width)
	fmt.Fprintf(&b, "%8.4f ┌%s┐\n", yMax, rule)
	for i, row := range canvas {
		if i == height/2 {
			fmt.Fprintf(&b, "%8.4f │%s│\n", (yMax+yMin)/2, string(row))
		} else {
			fmt.Fprintf(&b, "%8s │%s│\n", "", string(row))
		}
	}
	fmt.Fprintf(&b, "%8.4f └%s┘\n", yMin, rule)
	fmt.Fprintf(&b, "%9s%-*.4f%.4f\n", "", width-4, xMin, xMax)
	return b.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}
