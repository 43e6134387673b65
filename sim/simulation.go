// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cpmech/tokatransport/config"
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/model"
	"github.com/cpmech/tokatransport/profiles"
	"github.com/cpmech/tokatransport/sawtooth"
	"github.com/cpmech/tokatransport/simerr"
	"github.com/cpmech/tokatransport/solver"
	"github.com/cpmech/tokatransport/timestep"
)

// concurrentModel is satisfied by a TransportModel or SourceModel that
// declares itself safe to evaluate concurrently with its counterpart
// (spec.md section 5 "(added)"). Models that don't implement it are always
// called sequentially.
type concurrentModel interface {
	Concurrent() bool
}

// Simulation is the orchestrator of spec.md section 4.8: it owns the
// mesh, the validated configuration, and the three external model
// collaborators, and drives the serial time loop described in section 2's
// data-flow paragraph. Simulation itself holds no mutable run state beyond
// what Run's local loop needs; a single Simulation value may be Run at most
// once concurrently (this matches "single-threaded cooperative at the
// orchestrator level", spec.md section 5).
type Simulation struct {
	Cfg       config.Config
	Mesh      *mesh.Mesh
	Transport model.TransportModel
	Source    model.SourceModel
	Pedestal  model.PedestalModel // optional; nil means no pedestal model

	Log *logrus.Logger // defaults to logrus.StandardLogger() if nil

	state State // current orchestrator state machine state (spec.md section 4.8)

	// solveOverride lets tests substitute a deterministic stand-in for
	// solveAt to exercise the retry cascade without depending on a real
	// solver's convergence behavior at a given dt. Left nil in production.
	solveOverride func(ctx context.Context, prev profiles.CoreProfiles, dt, t float64) (solver.Result, error)
}

// State returns the orchestrator's current state machine state.
func (s *Simulation) State() State { return s.state }

func (s *Simulation) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// New validates cfg, builds the mesh, and returns a Simulation ready to
// Run from the given initial profiles. Validation failures are returned as
// simerr.ConfigurationInvalid / simerr.MeshDegenerate /
// simerr.InitialStateInvalid, per spec.md section 7's "fail at
// initialization, not at run time" policy.
func New(cfg config.Config, initial profiles.CoreProfiles, transport model.TransportModel, source model.SourceModel, pedestal model.PedestalModel) (*Simulation, profiles.CoreProfiles, error) {
	if err := cfg.Validate(); err != nil {
		return nil, profiles.CoreProfiles{}, err
	}
	m, err := cfg.BuildMesh()
	if err != nil {
		return nil, profiles.CoreProfiles{}, err
	}
	if err := config.CheckInitialState(initial); err != nil {
		return nil, profiles.CoreProfiles{}, err
	}
	return &Simulation{Cfg: cfg, Mesh: m, Transport: transport, Source: source, Pedestal: pedestal}, initial, nil
}

// computeModels evaluates the transport and source models at (p, t),
// dispatching them concurrently via errgroup when both declare themselves
// Concurrent (spec.md section 5's "(added)" dispatch option), sequentially
// otherwise. Either failure is wrapped as simerr.ModelFailure.
func (s *Simulation) computeModels(ctx context.Context, p profiles.CoreProfiles, t float64) (profiles.TransportCoefficients, profiles.SourceTerms, error) {
	concurrent := modelDeclaresConcurrent(s.Transport) && modelDeclaresConcurrent(s.Source)
	if !concurrent {
		tc, err := s.Transport.Compute(ctx, p, s.Mesh, t)
		if err != nil {
			return profiles.TransportCoefficients{}, profiles.SourceTerms{}, &simerr.ModelFailure{Kind: simerr.TransportModelKind, Err: err}
		}
		st, err := s.Source.Compute(ctx, p, s.Mesh, t)
		if err != nil {
			return profiles.TransportCoefficients{}, profiles.SourceTerms{}, &simerr.ModelFailure{Kind: simerr.SourceModelKind, Err: err}
		}
		return tc, st, nil
	}

	var tc profiles.TransportCoefficients
	var st profiles.SourceTerms
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tc, err = s.Transport.Compute(gctx, p, s.Mesh, t)
		if err != nil {
			return &simerr.ModelFailure{Kind: simerr.TransportModelKind, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		st, err = s.Source.Compute(gctx, p, s.Mesh, t)
		if err != nil {
			return &simerr.ModelFailure{Kind: simerr.SourceModelKind, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return profiles.TransportCoefficients{}, profiles.SourceTerms{}, err
	}
	return tc, st, nil
}

func modelDeclaresConcurrent(m interface{}) bool {
	if m == nil {
		return false
	}
	c, ok := m.(concurrentModel)
	return ok && c.Concurrent()
}

// applyPedestal runs the optional PedestalModel over p, returning p
// unchanged if none is configured.
func (s *Simulation) applyPedestal(p profiles.CoreProfiles) profiles.CoreProfiles {
	if s.Pedestal == nil {
		return p
	}
	return s.Pedestal.Apply(p)
}

// solveAt runs one theta-step attempt at the given dt with the solver
// selected by configuration, then freezes any equation Cfg.Evolved does not
// select back to its pre-step value (spec.md section 6's "evolved-equation
// flags": an equation not evolved keeps its initial profile fixed for the
// whole run, as scenario S2 requires of Ne).
func (s *Simulation) solveAt(ctx context.Context, prev profiles.CoreProfiles, dt, t float64) (solver.Result, error) {
	var result solver.Result
	var err error
	switch s.Cfg.Solver {
	case config.SolverNewton:
		result, err = solver.Newton(ctx, solver.NewtonParams{
			Mesh: s.Mesh, Prev: prev, Transport: s.Transport, Source: s.Source,
			Theta: s.Cfg.Theta, Dt: dt, Time: t,
			MaxIter: s.Cfg.MaxIter, Tol: s.Cfg.Tolerances,
			EtaCoeff: s.Cfg.EtaCoeff, PsiInertia: s.Cfg.PsiInertia,
		})
	default:
		result, err = solver.Linear(ctx, solver.LinearParams{
			Mesh: s.Mesh, Prev: prev, Transport: s.Transport, Source: s.Source,
			Theta: s.Cfg.Theta, Dt: dt, Time: t,
			EtaCoeff: s.Cfg.EtaCoeff, PsiInertia: s.Cfg.PsiInertia,
		})
	}
	if err != nil {
		return result, err
	}
	result.Profiles = freezeNonEvolved(result.Profiles, prev, s.Cfg.Evolved)
	return result, nil
}

// freezeNonEvolved replaces each field solved not selected by flags with its
// pre-step value, so an un-evolved equation never advances.
func freezeNonEvolved(solved, prev profiles.CoreProfiles, flags config.EvolvedFlags) profiles.CoreProfiles {
	out := solved
	if !flags.Ti {
		out.Ti = prev.Ti
	}
	if !flags.Te {
		out.Te = prev.Te
	}
	if !flags.Ne {
		out.Ne = prev.Ne
	}
	if !flags.Psi {
		out.Psi = prev.Psi
	}
	return out
}

// solve dispatches to solveOverride when a test has set one, otherwise to
// the real solveAt.
func (s *Simulation) solve(ctx context.Context, prev profiles.CoreProfiles, dt, t float64) (solver.Result, error) {
	if s.solveOverride != nil {
		return s.solveOverride(ctx, prev, dt, t)
	}
	return s.solveAt(ctx, prev, dt, t)
}

// stepOutcome bundles what one successful attemptStep call produces for
// the caller to commit.
type stepOutcome struct {
	result solver.Result
	dt     float64
}

// attemptStep runs the dt-halving retry cascade of spec.md section 4.5
// using github.com/cenkalti/backoff to drive the "retry, then give up"
// control flow: each failed attempt halves dt and, if the halved dt would
// fall below dt_min, gives up immediately via backoff.Permanent wrapping a
// simerr.RetryExhausted (section 4.5 steps 1-2), otherwise retries up to
// Cfg.NRetry additional times (step 3) before giving up with the same
// error type.
func (s *Simulation) attemptStep(ctx context.Context, stepIdx int, prev profiles.CoreProfiles, candidateDt, t float64) (stepOutcome, error) {
	dt := candidateDt
	var last solver.Result
	var lastErr error

	op := func() error {
		select {
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		default:
		}
		result, err := s.solve(ctx, prev, dt, t)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = result
		if result.Converged {
			return nil
		}

		s.logger().WithFields(logrus.Fields{
			"step": stepIdx, "dt": dt, "iterations": result.Iterations,
			"failure_type": result.FailureType.String(),
		}).Warn("solver did not converge, retrying at smaller dt")

		nextDt := dt / 2
		if nextDt < s.Cfg.AdaptiveDt.DtMin {
			lastErr = &simerr.RetryExhausted{
				StepIndex: stepIdx, Time: t, LastDt: dt, DtMin: s.Cfg.AdaptiveDt.DtMin,
				LastFailure: &simerr.SolverNonConvergence{
					SolverType:  string(s.Cfg.Solver),
					Iterations:  result.Iterations,
					Residual:    result.Residual,
					FailureType: result.FailureType.String(),
				},
			}
			return backoff.Permanent(lastErr)
		}
		dt = nextDt
		return fmt.Errorf("retrying step %d at dt=%v", stepIdx, dt)
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(s.Cfg.NRetry))
	if err := backoff.Retry(op, bo); err != nil {
		if lastErr != nil {
			return stepOutcome{}, lastErr
		}
		if err == ctx.Err() {
			return stepOutcome{}, err
		}
		return stepOutcome{}, &simerr.RetryExhausted{
			StepIndex: stepIdx, Time: t, LastDt: dt, DtMin: s.Cfg.AdaptiveDt.DtMin,
			LastFailure: &simerr.SolverNonConvergence{
				SolverType:  string(s.Cfg.Solver),
				Iterations:  last.Iterations,
				Residual:    last.Residual,
				FailureType: last.FailureType.String(),
			},
		}
	}
	return stepOutcome{result: last, dt: dt}, nil
}

// checkInvariants re-implements profiles.CoreProfiles.CheckInvariants with
// the full diagnostic spec.md section 7 requires for InvariantViolation
// (field identity, cell index, neighboring values, current dt, current
// step), never recovered.
func checkInvariants(p profiles.CoreProfiles, stepIdx int, dt float64) error {
	check := func(name string, values []float32, positive, floorOK bool, floor float32) error {
		for i, v := range values {
			reason := simerr.InvariantReason(-1)
			switch {
			case v != v:
				reason = simerr.NaN
			case v > 3.4e38 || v < -3.4e38:
				reason = simerr.Inf
			case positive && v <= 0:
				reason = simerr.NonPositive
			case floorOK && v < floor:
				reason = simerr.NonPositive
			default:
				continue
			}
			var left, right float32
			if i > 0 {
				left = values[i-1]
			}
			if i+1 < len(values) {
				right = values[i+1]
			}
			return &simerr.InvariantViolation{
				Field: name, Cell: i, Reason: reason, Value: v,
				LeftNeighbor: left, RightNeighbor: right, Dt: dt, StepIndex: stepIdx,
			}
		}
		return nil
	}
	if err := check("Ti", p.Ti.Values, true, false, 0); err != nil {
		return err
	}
	if err := check("Te", p.Te.Values, true, false, 0); err != nil {
		return err
	}
	if err := check("Ne", p.Ne.Values, false, true, profiles.NFloor); err != nil {
		return err
	}
	if err := check("Psi", p.Psi.Values, false, false, 0); err != nil {
		return err
	}
	return nil
}

// maxTransportCoef returns the largest value across chi_i, chi_e and Dn,
// the quantity spec.md section 4.4's CFL limit is bounded by.
func maxTransportCoef(tc profiles.TransportCoefficients) float64 {
	m := float32(0)
	scan := func(arr []float32) {
		for _, v := range arr {
			if v > m {
				m = v
			}
		}
	}
	scan(tc.ChiI.Data())
	scan(tc.ChiE.Data())
	scan(tc.Dn.Data())
	return float64(m)
}
