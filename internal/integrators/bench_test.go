package integrators

import (
	"testing"

	"github.com/san-kum/episim/internal/sim"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 3 }
func (b *benchDynamics) Derivative(x sim.State, t float64) sim.State {
	flow := 3.2 * x[0] * x[1]
	return sim.State{-flow, flow - 0.23*x[1], 0.23 * x[1]}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchDynamics{}
	x := sim.State{0.99, 0.01, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.001)
	}
}
