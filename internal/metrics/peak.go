package metrics

import (
	"github.com/san-kum/episim/internal/models"
	"github.com/san-kum/episim/internal/sim"
)

type peakTracker struct {
	value float64
	step  int
	seen  bool
}

func (p *peakTracker) observe(v float64, step int) {
	if !p.seen || v > p.value {
		p.value, p.step, p.seen = v, step, true
	}
}

func (p *peakTracker) reset() { *p = peakTracker{} }

// PeakInfected tracks the largest infected fraction seen.
type PeakInfected struct{ peakTracker }

func NewPeakInfected() *PeakInfected { return &PeakInfected{} }

func (m *PeakInfected) Name() string                  { return "peak_infected" }
func (m *PeakInfected) Observe(x sim.State, step int) { m.observe(x[models.I], step) }
func (m *PeakInfected) Value() float64                { return m.value }
func (m *PeakInfected) Reset()                        { m.reset() }

// PeakStep is the first step index at which the infected peak occurs.
type PeakStep struct{ peakTracker }

func NewPeakStep() *PeakStep { return &PeakStep{} }

func (m *PeakStep) Name() string                  { return "peak_step" }
func (m *PeakStep) Observe(x sim.State, step int) { m.observe(x[models.I], step) }
func (m *PeakStep) Value() float64                { return float64(m.step) }
func (m *PeakStep) Reset()                        { m.reset() }
