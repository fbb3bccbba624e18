package sim

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

type Dynamics interface {
	Derivative(x State, t float64) State
	StateDim() int
}

// Constrained dynamics restrict which states are physically meaningful.
// The simulator stops advancing as soon as a step leaves the admissible set.
type Constrained interface {
	Admissible(x State) bool
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, step int)
	Value() float64
	Reset()
}

type Config struct {
	Dt    float64
	Steps int
}

// Trajectory is a fixed-length record of a run. Steps always holds 0..n;
// every series holds n+1 entries and positions at or after ValidLength keep
// their zero value.
type Trajectory struct {
	Steps       []int
	Series      [][]float64
	ValidLength int
	Metrics     map[string]float64
}

func newTrajectory(steps, dim int) *Trajectory {
	tr := &Trajectory{
		Steps:   make([]int, steps+1),
		Series:  make([][]float64, dim),
		Metrics: make(map[string]float64),
	}
	for i := range tr.Steps {
		tr.Steps[i] = i
	}
	for i := range tr.Series {
		tr.Series[i] = make([]float64, steps+1)
	}
	return tr
}

func (tr *Trajectory) record(step int, x State) {
	for i, v := range x {
		tr.Series[i][step] = v
	}
}

// Len is the buffer length, valid or not.
func (tr *Trajectory) Len() int { return len(tr.Steps) }
