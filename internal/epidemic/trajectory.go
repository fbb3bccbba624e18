package epidemic

import (
	"context"

	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/models"
	"github.com/san-kum/episim/internal/sim"
)

// Trajectory holds the time-indexed S, I and R sequences of one run. All
// slices have MaxSteps+1 entries; entries at or after ValidLength are zero.
type Trajectory struct {
	Time        []int              `json:"time"`
	S           []float64          `json:"s"`
	I           []float64          `json:"i"`
	R           []float64          `json:"r"`
	ValidLength int                `json:"valid_length"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Len is the full buffer length.
func (t *Trajectory) Len() int { return len(t.Time) }

// Truncated reports whether integration stopped before MaxSteps.
func (t *Trajectory) Truncated() bool { return t.ValidLength < len(t.Time) }

// Valid returns a view of t restricted to its valid prefix. The slices alias t.
func (t *Trajectory) Valid() *Trajectory {
	n := t.ValidLength
	return &Trajectory{
		Time:        t.Time[:n],
		S:           t.S[:n],
		I:           t.I[:n],
		R:           t.R[:n],
		ValidLength: n,
		Metrics:     t.Metrics,
	}
}

// ComputeTrajectory integrates the SIR model for p. It expects Params from
// Build; a non-positive step size or negative step count is still rejected
// before any stepping happens.
func ComputeTrajectory(ctx context.Context, p Params) (*Trajectory, error) {
	dyn := models.NewSIR(p.TransmissionRate, p.RecoveryRate, p.Population)
	s := sim.New(dyn, integrators.NewEuler())
	for _, m := range metrics.Default(p.Population) {
		s.AddMetric(m)
	}

	x0 := sim.State{p.Population - p.InitialInfected, p.InitialInfected, 0}
	res, err := s.Run(ctx, x0, sim.Config{Dt: p.StepSize, Steps: p.MaxSteps})
	if err != nil {
		return nil, err
	}

	return &Trajectory{
		Time:        res.Steps,
		S:           res.Series[models.S],
		I:           res.Series[models.I],
		R:           res.Series[models.R],
		ValidLength: res.ValidLength,
		Metrics:     res.Metrics,
	}, nil
}
