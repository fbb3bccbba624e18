package metrics

import (
	"github.com/san-kum/episim/internal/models"
	"github.com/san-kum/episim/internal/sim"
)

// Final reports a compartment's value at the last recorded step.
type Final struct {
	name      string
	component int
	last      float64
}

func NewFinalRecovered() *Final {
	return &Final{name: "final_recovered", component: models.R}
}

func NewFinalSusceptible() *Final {
	return &Final{name: "final_susceptible", component: models.S}
}

func (f *Final) Name() string {
	return f.name
}

func (f *Final) Observe(x sim.State, step int) {
	f.last = x[f.component]
}

func (f *Final) Value() float64 {
	return f.last
}

func (f *Final) Reset() {
	f.last = 0
}
