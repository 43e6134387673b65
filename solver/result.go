// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the two theta-step solvers described in
// spec.md section 4: a predictor-corrector linear solver (section 4.2) and
// a Newton-Raphson nonlinear solver operating on a scaled state vector
// (section 4.3). Neither solver ever returns an error for non-convergence;
// they report it through Result, and the orchestrator (package sim)
// decides whether and how to retry.
package solver

import "github.com/cpmech/tokatransport/profiles"

// FailureType classifies why the Newton solver reported NotConverged. The
// linear predictor-corrector solver only ever uses MaxIterations.
type FailureType int

const (
	// None is the zero value, used only on Converged results.
	None FailureType = iota
	// LinearSolverError means the linear-error check (||J*Delta+R||/||R||)
	// exceeded tolerance: the linear solve was unreliable.
	LinearSolverError
	// InvalidDescent means the Newton step was not a descent direction.
	InvalidDescent
	// MaxIterations means the iteration budget was exhausted without
	// meeting the per-variable convergence criteria.
	MaxIterations
)

func (f FailureType) String() string {
	switch f {
	case LinearSolverError:
		return "linear_solver_error"
	case InvalidDescent:
		return "invalid_descent"
	case MaxIterations:
		return "max_iterations"
	default:
		return "none"
	}
}

// Result is the tagged outcome of one theta-step solve: {Converged |
// NotConverged}. The orchestrator only inspects Converged; FailureType and
// Residual are diagnostic metadata.
type Result struct {
	Converged   bool
	Profiles    profiles.CoreProfiles
	Iterations  int
	Residual    float64
	FailureType FailureType
}
