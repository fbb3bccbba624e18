package models

import (
	"math"

	"github.com/san-kum/episim/internal/sim"
)

// Component indices of an SIR state vector.
const (
	S = iota
	I
	R
)

// SPrime is the rate of change of the susceptible compartment.
func SPrime(s, i, beta, n float64) float64 {
	return -(beta * s * i) / n
}

// IPrime is the rate of change of the infected compartment.
func IPrime(s, i, beta, gamma, n float64) float64 {
	return ((beta*s)/n - gamma) * i
}

// RPrime is the rate of change of the recovered compartment.
func RPrime(i, gamma float64) float64 {
	return gamma * i
}

// SIR is the classic Kermack–McKendrick model with frequency-dependent
// transmission. Rates are per unit time; Population normalizes the contact term.
type SIR struct {
	Transmission float64
	Recovery     float64
	Population   float64
}

func NewSIR(transmission, recovery, population float64) *SIR {
	return &SIR{
		Transmission: transmission,
		Recovery:     recovery,
		Population:   population,
	}
}

func (m *SIR) StateDim() int {
	return 3
}

func (m *SIR) Derivative(x sim.State, t float64) sim.State {
	s, i := x[S], x[I]
	return sim.State{
		SPrime(s, i, m.Transmission, m.Population),
		IPrime(s, i, m.Transmission, m.Recovery, m.Population),
		RPrime(i, m.Recovery),
	}
}

// Admissible rejects any state with a negative or non-finite compartment.
func (m *SIR) Admissible(x sim.State) bool {
	for _, v := range x {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
