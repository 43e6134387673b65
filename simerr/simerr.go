// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simerr declares the typed error values of spec.md section 7:
// ConfigurationInvalid, MeshDegenerate, InitialStateInvalid, ModelFailure,
// SolverNonConvergence (recovered locally, never surfaced directly),
// RetryExhausted, InvariantViolation and Cancelled. Each is an exported
// struct implementing error so callers can errors.As them instead of
// string-matching, following the teacher repository's chk.Err-wrapped
// sentinel style (fem/domain.go's many chk.Err(...) returns) but typed.
package simerr

import "fmt"

// ConfigurationInvalid reports a configuration that failed validation
// before a run could start (spec.md section 7: "fail at initialization,
// not at run time").
type ConfigurationInvalid struct {
	Reason string
}

func (e *ConfigurationInvalid) Error() string {
	return fmt.Sprintf("configuration invalid: %s", e.Reason)
}

// MeshDegenerate reports a mesh construction that failed validation
// (too few cells, non-positive radii, zero toroidal field).
type MeshDegenerate struct {
	Reason string
}

func (e *MeshDegenerate) Error() string {
	return fmt.Sprintf("mesh degenerate: %s", e.Reason)
}

// InitialStateInvalid reports an initial-condition specification that does
// not satisfy the core's profile invariants (positive temperatures, density
// at or above the floor).
type InitialStateInvalid struct {
	Reason string
}

func (e *InitialStateInvalid) Error() string {
	return fmt.Sprintf("initial state invalid: %s", e.Reason)
}

// ModelKind names which external collaborator a ModelFailure came from.
type ModelKind int

const (
	TransportModelKind ModelKind = iota
	SourceModelKind
	PedestalModelKind
)

func (k ModelKind) String() string {
	switch k {
	case TransportModelKind:
		return "transport"
	case SourceModelKind:
		return "source"
	case PedestalModelKind:
		return "pedestal"
	default:
		return "unknown"
	}
}

// ModelFailure wraps an error returned by a TransportModel, SourceModel or
// PedestalModel. Surfaced verbatim; the core never retries a model (spec.md
// section 7).
type ModelFailure struct {
	Kind ModelKind
	Err  error
}

func (e *ModelFailure) Error() string {
	return fmt.Sprintf("%s model failure: %v", e.Kind, e.Err)
}

func (e *ModelFailure) Unwrap() error { return e.Err }

// SolverNonConvergence reports a single solver attempt that did not meet
// its convergence criteria. It is recovered locally by the retry cascade
// (spec.md section 4.5) and is surfaced to callers only wrapped inside
// RetryExhausted, never on its own.
type SolverNonConvergence struct {
	SolverType string // "linear" or "newton_raphson"
	Iterations int
	Residual   float64
	FailureType string
}

func (e *SolverNonConvergence) Error() string {
	return fmt.Sprintf("%s solver did not converge after %d iterations (residual=%v, failure_type=%s)",
		e.SolverType, e.Iterations, e.Residual, e.FailureType)
}

// RetryExhausted reports that the dt-halving retry cascade ended without a
// converged solve (spec.md section 4.5, step 2): either the next halved dt
// would fall below dt_min, or the retry count ran out first.
type RetryExhausted struct {
	StepIndex   int
	Time        float64
	LastDt      float64
	DtMin       float64
	LastFailure *SolverNonConvergence
}

func (e *RetryExhausted) Error() string {
	return fmt.Sprintf("retry exhausted at step %d (t=%v): last dt=%v, dt_min=%v: %v",
		e.StepIndex, e.Time, e.LastDt, e.DtMin, e.LastFailure)
}

func (e *RetryExhausted) Unwrap() error { return e.LastFailure }

// InvariantReason classifies why InvariantViolation fired.
type InvariantReason int

const (
	NaN InvariantReason = iota
	Inf
	NonPositive
	ConservationDrift
)

func (r InvariantReason) String() string {
	switch r {
	case NaN:
		return "NaN"
	case Inf:
		return "Inf"
	case NonPositive:
		return "NonPositive"
	case ConservationDrift:
		return "ConservationDrift"
	default:
		return "unknown"
	}
}

// InvariantViolation reports a committed profile that violates a physical
// invariant. Never recovered: the run terminates immediately after this is
// constructed, carrying the full diagnostic spec.md section 7 requires
// (field identity, cell index, neighboring values, current dt, current
// step).
type InvariantViolation struct {
	Field        string
	Cell         int
	Reason       InvariantReason
	Value        float32
	LeftNeighbor  float32
	RightNeighbor float32
	Dt           float64
	StepIndex    int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: field %q at cell %d is %s (value=%v, neighbors=[%v,%v], dt=%v, step=%d)",
		e.Field, e.Cell, e.Reason, e.Value, e.LeftNeighbor, e.RightNeighbor, e.Dt, e.StepIndex)
}

// Cancelled records where a cancelled run stopped. Run has no separate
// error return: it reports cancellation through the Result's Status
// (StatusCancelled) and also places a *Cancelled in the Result's Err field.
type Cancelled struct {
	StepIndex int
	Time      float64
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("cancelled at step %d (t=%v)", e.StepIndex, e.Time)
}
