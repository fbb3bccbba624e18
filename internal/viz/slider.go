package viz

import "math"

// Slider is a bounded value moved in fixed increments.
type Slider struct {
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Coarse  float64
	Initial float64
	Value   float64
}

func newSlider(label string, lo, hi, step, coarse, initial float64) Slider {
	s := Slider{Label: label, Min: lo, Max: hi, Step: step, Coarse: coarse, Initial: initial}
	s.Set(initial)
	return s
}

// Set moves the slider to v, snapped to the step grid and clamped to [Min, Max].
func (s *Slider) Set(v float64) {
	if math.IsNaN(v) {
		v = s.Initial
	}
	s.Value = math.Max(s.Min, math.Min(s.Max, s.snap(v)))
}

func (s *Slider) snap(v float64) float64 {
	switch {
	case s.Step <= 0:
		return v
	case s.Step < 1:
		// divide by the integral inverse so that 0.01 steps land on exact decimals
		k := math.Round(1 / s.Step)
		return s.Min + math.Round((v-s.Min)*k)/k
	default:
		return s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
}

// Nudge moves the slider by delta and reports whether the value changed.
func (s *Slider) Nudge(delta float64) bool {
	old := s.Value
	s.Set(s.Value + delta)
	return s.Value != old
}

func (s *Slider) Reset() { s.Set(s.Initial) }

// Fraction is the slider position in [0, 1].
func (s *Slider) Fraction() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}
