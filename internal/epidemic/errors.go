package epidemic

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every parameter validation failure.
var ErrInvalidConfig = errors.New("epidemic: invalid configuration")

// ConfigError describes one rejected request field.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("epidemic: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// FieldErrors flattens err into the ConfigErrors it carries.
func FieldErrors(err error) []*ConfigError {
	var out []*ConfigError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		var ce *ConfigError
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		if errors.As(e, &ce) {
			out = append(out, ce)
		}
	}
	walk(err)
	return out
}
