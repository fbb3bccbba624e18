// Package sweep runs independent SIR computations over a grid of
// transmission and recovery rates.
package sweep

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/episim/internal/epidemic"
	"golang.org/x/sync/errgroup"
)

// MaxPoints bounds the values a single Range may produce.
const MaxPoints = 10_000

type Grid struct {
	Transmission []float64
	Recovery     []float64
}

func (g Grid) Size() int {
	return len(g.Transmission) * len(g.Recovery)
}

// Point summarizes one grid cell.
type Point struct {
	Transmission   float64
	Recovery       float64
	R0             float64
	PeakInfected   float64
	PeakStep       int
	FinalRecovered float64
	ValidLength    int
	Truncated      bool
}

// Range returns from, from+step, ... up to and including to (within half a step).
func Range(from, to, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("sweep: step must be positive, got %g", step)
	}
	if math.IsNaN(from) || math.IsInf(from, 0) || math.IsNaN(to) || math.IsInf(to, 0) {
		return nil, fmt.Errorf("sweep: range bounds must be finite, got [%g, %g]", from, to)
	}
	if to < from {
		return nil, fmt.Errorf("sweep: empty range [%g, %g]", from, to)
	}

	count := math.Floor((to-from)/step+0.5) + 1
	if !(count <= MaxPoints) {
		return nil, fmt.Errorf("sweep: range [%g, %g] step %g exceeds %d points", from, to, step, MaxPoints)
	}
	n := int(count)
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out, nil
}

// Run computes every grid cell on up to workers goroutines. Each cell builds
// its own Params and Trajectory. Points come back in row-major grid order
// (transmission outer, recovery inner) regardless of completion order.
func Run(ctx context.Context, base epidemic.Request, grid Grid, workers int) ([]Point, error) {
	if workers < 1 {
		workers = 1
	}

	points := make([]Point, grid.Size())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, beta := range grid.Transmission {
		for j, gamma := range grid.Recovery {
			beta, gamma := beta, gamma
			idx := i*len(grid.Recovery) + j
			req := base
			req.TransmissionRate = beta
			req.RecoveryRate = gamma

			g.Go(func() error {
				p, err := epidemic.Build(req)
				if err != nil {
					return fmt.Errorf("sweep: beta=%g gamma=%g: %w", beta, gamma, err)
				}
				tr, err := epidemic.ComputeTrajectory(ctx, p)
				if err != nil {
					return err
				}
				points[idx] = Point{
					Transmission:   beta,
					Recovery:       gamma,
					R0:             p.R0(),
					PeakInfected:   tr.Metrics["peak_infected"],
					PeakStep:       int(tr.Metrics["peak_step"]),
					FinalRecovered: tr.Metrics["final_recovered"],
					ValidLength:    tr.ValidLength,
					Truncated:      tr.Truncated(),
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
