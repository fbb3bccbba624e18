// Package epidemic computes SIR epidemic trajectories.
//
// Callers describe a run with a [Request], turn it into validated [Params]
// with [Build], and integrate it with [ComputeTrajectory]:
//
//	p, err := epidemic.Build(epidemic.Request{
//		Population:       1.0,
//		InitialInfected:  0.01,
//		TransmissionRate: 3.2,
//		RecoveryRate:     0.23,
//		StepSize:         0.001,
//		MaxSteps:         10000,
//	})
//	tr, err := epidemic.ComputeTrajectory(ctx, p)
//
// The integration is forward Euler with a fixed step. It stops advancing as
// soon as a step would drive any compartment negative; the returned
// [Trajectory] keeps its full MaxSteps+1 length and marks the usable prefix
// with ValidLength.
//
// # Concurrency
//
// A single computation runs sequentially. Independent computations share no
// state and may run on separate goroutines.
package epidemic
