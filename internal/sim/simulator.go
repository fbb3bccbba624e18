package sim

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	metrics    []Metric
}

func New(dyn Dynamics, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 for cfg.Steps fixed increments. The recurrence is
// sequential: step t+1 reads the state written by step t.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Trajectory, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: got %d components, want %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	tr := newTrajectory(cfg.Steps, len(x0))
	tr.ValidLength = cfg.Steps + 1

	constrained, _ := s.dyn.(Constrained)

	x := x0.Clone()
	for step := 0; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return nil, &SimError{Step: step, Wrapped: ctx.Err()}
		default:
		}

		tr.record(step, x)
		for _, m := range s.metrics {
			m.Observe(x, step)
		}

		next := s.integrator.Step(s.dyn, x, float64(step)*cfg.Dt, cfg.Dt)
		if !next.IsValid() || (constrained != nil && !constrained.Admissible(next)) {
			tr.ValidLength = step + 1
			break
		}
		x = next
	}

	for _, m := range s.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}

	return tr, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	return nil
}
