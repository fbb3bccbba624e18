package epidemic

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxStepsLimit bounds the buffer a single request may allocate.
const MaxStepsLimit = 1_000_000

// Request is a raw, unvalidated parameter set as it arrives from flags,
// files or the network.
type Request struct {
	Population       float64 `json:"population" validate:"gt=0"`
	InitialInfected  float64 `json:"initial_infected" validate:"gte=0,ltefield=Population"`
	TransmissionRate float64 `json:"transmission_rate" validate:"gte=0"`
	RecoveryRate     float64 `json:"recovery_rate" validate:"gte=0"`
	StepSize         float64 `json:"step_size" validate:"gt=0"`
	MaxSteps         int     `json:"max_steps" validate:"gte=0"`
}

// Params is a validated, immutable parameter set. Obtain one through Build.
type Params struct {
	Population       float64 `json:"population"`
	InitialInfected  float64 `json:"initial_infected"`
	TransmissionRate float64 `json:"transmission_rate"`
	RecoveryRate     float64 `json:"recovery_rate"`
	StepSize         float64 `json:"step_size"`
	MaxSteps         int     `json:"max_steps"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Build validates req and normalizes it into Params. MaxSteps above
// MaxStepsLimit is clamped; every other violation is a configuration error.
func Build(req Request) (Params, error) {
	if errs := checkFinite(req); len(errs) > 0 {
		return Params{}, join(errs)
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Params{}, err
		}
		errs := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, &ConfigError{Field: fe.Field(), Value: fe.Value(), Reason: reason(fe)})
		}
		return Params{}, join(errs)
	}

	steps := req.MaxSteps
	if steps > MaxStepsLimit {
		steps = MaxStepsLimit
	}

	return Params{
		Population:       req.Population,
		InitialInfected:  req.InitialInfected,
		TransmissionRate: req.TransmissionRate,
		RecoveryRate:     req.RecoveryRate,
		StepSize:         req.StepSize,
		MaxSteps:         steps,
	}, nil
}

func checkFinite(req Request) []error {
	fields := []struct {
		name  string
		value float64
	}{
		{"population", req.Population},
		{"initial_infected", req.InitialInfected},
		{"transmission_rate", req.TransmissionRate},
		{"recovery_rate", req.RecoveryRate},
		{"step_size", req.StepSize},
	}

	var errs []error
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			errs = append(errs, &ConfigError{Field: f.name, Value: f.value, Reason: "must be finite"})
		}
	}
	return errs
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "ltefield":
		return "must not exceed population"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func join(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// Request converts p back into a request, e.g. to tweak one field and rebuild.
func (p Params) Request() Request {
	return Request{
		Population:       p.Population,
		InitialInfected:  p.InitialInfected,
		TransmissionRate: p.TransmissionRate,
		RecoveryRate:     p.RecoveryRate,
		StepSize:         p.StepSize,
		MaxSteps:         p.MaxSteps,
	}
}

// R0 is the basic reproduction ratio of p.
func (p Params) R0() float64 {
	return ReproductionRatio(p.TransmissionRate, p.RecoveryRate)
}

// ReproductionRatio is beta/gamma. Float division yields +Inf when gamma is
// zero and NaN when both rates are zero.
func ReproductionRatio(beta, gamma float64) float64 {
	return beta / gamma
}

// Key is a canonical encoding of p, stable across processes.
func (p Params) Key() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		"n=" + f(p.Population),
		"i0=" + f(p.InitialInfected),
		"beta=" + f(p.TransmissionRate),
		"gamma=" + f(p.RecoveryRate),
		"dt=" + f(p.StepSize),
		"steps=" + strconv.Itoa(p.MaxSteps),
	}, ";")
}

// FormatR0 renders a reproduction ratio for display.
func FormatR0(r0 float64) string {
	switch {
	case math.IsNaN(r0):
		return "undefined"
	case math.IsInf(r0, 1):
		return "∞"
	default:
		return strconv.FormatFloat(r0, 'f', 2, 64)
	}
}
