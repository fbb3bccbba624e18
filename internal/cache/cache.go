// Package cache stores computed trajectories keyed by their parameters.
// Computations are deterministic, so a cached trajectory is identical to a
// fresh one for the same Params.
package cache

import (
	"context"

	"github.com/san-kum/episim/internal/epidemic"
)

type Cache interface {
	Get(ctx context.Context, p epidemic.Params) (*epidemic.Trajectory, bool, error)
	Set(ctx context.Context, p epidemic.Params, tr *epidemic.Trajectory) error
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, epidemic.Params) (*epidemic.Trajectory, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, epidemic.Params, *epidemic.Trajectory) error {
	return nil
}
