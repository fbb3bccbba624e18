package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/episim/internal/sim"
)

func TestPeakInfected(t *testing.T) {
	peak := NewPeakInfected()
	step := NewPeakStep()

	states := []sim.State{
		{0.99, 0.01, 0.00},
		{0.90, 0.08, 0.02},
		{0.70, 0.20, 0.10},
		{0.60, 0.20, 0.20},
		{0.55, 0.10, 0.35},
	}
	for i, x := range states {
		peak.Observe(x, i)
		step.Observe(x, i)
	}

	if peak.Value() != 0.20 {
		t.Errorf("expected peak 0.20, got %f", peak.Value())
	}
	if step.Value() != 2 {
		t.Errorf("expected first peak at step 2, got %f", step.Value())
	}

	peak.Reset()
	step.Reset()
	if peak.Value() != 0 || step.Value() != 0 {
		t.Error("expected zero values after reset")
	}
}

func TestFinal(t *testing.T) {
	rec := NewFinalRecovered()
	sus := NewFinalSusceptible()

	rec.Observe(sim.State{0.9, 0.1, 0.0}, 0)
	sus.Observe(sim.State{0.9, 0.1, 0.0}, 0)
	rec.Observe(sim.State{0.5, 0.1, 0.4}, 1)
	sus.Observe(sim.State{0.5, 0.1, 0.4}, 1)

	if rec.Value() != 0.4 {
		t.Errorf("expected final recovered 0.4, got %f", rec.Value())
	}
	if sus.Value() != 0.5 {
		t.Errorf("expected final susceptible 0.5, got %f", sus.Value())
	}
}

func TestConservationDrift(t *testing.T) {
	c := NewConservationDrift(1.0)

	c.Observe(sim.State{0.5, 0.25, 0.25}, 0)
	if c.Value() != 0 {
		t.Errorf("expected no drift, got %g", c.Value())
	}

	c.Observe(sim.State{0.5, 0.25, 0.3}, 1)
	c.Observe(sim.State{0.5, 0.25, 0.26}, 2)
	if math.Abs(c.Value()-0.05) > 1e-12 {
		t.Errorf("expected max drift 0.05, got %g", c.Value())
	}
}

func TestDefaultNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default(1.0) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
