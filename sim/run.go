// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cpmech/tokatransport/profiles"
	"github.com/cpmech/tokatransport/sawtooth"
	"github.com/cpmech/tokatransport/simerr"
	"github.com/cpmech/tokatransport/timestep"
)

// Run drives the serial time loop of spec.md section 2's data-flow
// paragraph and section 4.8's state machine from initial to Cfg.TEnd: at
// each step it requests transport coefficients for time-step sizing,
// proposes a growth-capped candidate dt, solves one theta-step (with the
// dt-halving retry cascade on non-convergence), checks invariants, runs the
// optional sawtooth pass, and commits. Run never mutates initial; it
// returns the accumulated Result regardless of how the run ended
// (Completed, Failed, or Cancelled), per spec.md section 5's "a cancelled
// run returns a partial result; no step is half-committed."
func (s *Simulation) Run(ctx context.Context, initial profiles.CoreProfiles, cb Callback) Result {
	log := s.logger()
	s.state = Initialized

	current := initial
	t := s.Cfg.TStart
	dtPrev := s.Cfg.AdaptiveDt.DtInitial
	lastCrashTime := math.Inf(-1)
	stepIdx := 0
	var snapshots []Snapshot

	sawtoothParams := sawtooth.Params{
		RhoMin:   s.Cfg.Sawtooth.RhoMin,
		SCrit:    s.Cfg.Sawtooth.SCrit,
		DtMinGap: s.Cfg.Sawtooth.DtMinGap,
		Kappa:    s.Cfg.Sawtooth.Kappa,
		M:        s.Cfg.Sawtooth.M,
		SPsi:     s.Cfg.Sawtooth.SPsi,
	}

	s.state = Stepping
	for t < s.Cfg.TEnd {
		select {
		case <-ctx.Done():
			return Result{Status: StatusCancelled, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: &simerr.Cancelled{StepIndex: stepIdx, Time: t}}
		default:
		}

		tc, _, err := s.computeModels(ctx, current, t)
		if err != nil {
			s.state = Failed
			return Result{Status: StatusFailed, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: err}
		}

		remaining := s.Cfg.TEnd - t
		dtParams := timestep.Params{
			C:        s.Cfg.AdaptiveDt.CFLConst,
			GMax:     s.Cfg.AdaptiveDt.GMax,
			DtMax:    minFloat(s.Cfg.AdaptiveDt.DtMax, remaining),
			DtMin:    s.Cfg.AdaptiveDt.DtMin,
			DrSquare: s.Mesh.DR * s.Mesh.DR,
		}
		candidateDt, diag := timestep.Calculate(dtParams, dtPrev, maxTransportCoef(tc), 1e-12)
		if diag.CapBound {
			log.WithFields(logrus.Fields{"step": stepIdx, "raw_dt": diag.RawDt, "capped_dt": diag.CappedDt}).
				Info("growth cap bound")
		}
		if t+candidateDt > s.Cfg.TEnd {
			candidateDt = s.Cfg.TEnd - t
		}

		outcome, err := s.attemptStep(ctx, stepIdx, current, candidateDt, t)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Result{Status: StatusCancelled, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: &simerr.Cancelled{StepIndex: stepIdx, Time: t}}
			}
			s.state = Failed
			log.WithFields(logrus.Fields{"step": stepIdx, "time": t, "dt": candidateDt}).WithError(err).Error("step failed permanently")
			return Result{Status: StatusFailed, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: err}
		}

		committed := s.applyPedestal(outcome.result.Profiles)
		if err := checkInvariants(committed, stepIdx, outcome.dt); err != nil {
			s.state = Failed
			log.WithFields(logrus.Fields{"step": stepIdx, "time": t}).WithError(err).Error("invariant violation")
			return Result{Status: StatusFailed, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: err}
		}

		sawtoothFired := false
		if s.Cfg.Sawtooth.Enabled {
			s.state = SawtoothPhase
			sinceCrash := (t + outcome.dt) - lastCrashTime
			trig := sawtooth.Evaluate(sawtoothParams, s.Mesh, committed.Psi.Values, sinceCrash)
			if trig.Fired {
				var res sawtooth.Result
				committed, res = sawtooth.Crash(sawtoothParams, s.Mesh, committed, trig)
				lastCrashTime = t + outcome.dt
				sawtoothFired = true
				log.WithFields(logrus.Fields{
					"step": stepIdx, "rho_q1": res.RhoQ1, "rho_mix": res.RhoMix,
					"ne_rel_err": res.NeRelErr,
				}).Info("sawtooth crash")
			}
			s.state = Stepping
		}

		t += outcome.dt
		stepIdx++
		current = committed
		dtPrev = outcome.dt

		snap := Snapshot{
			StepIndex: stepIdx, Time: t, Dt: outcome.dt,
			Iterations: outcome.result.Iterations, ResidualNorm: outcome.result.Residual,
			Converged: true, Profiles: current, SawtoothFired: sawtoothFired,
		}
		snapshots = append(snapshots, snap)

		if cb != nil && cb(snap) {
			return Result{Status: StatusCancelled, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx, Err: &simerr.Cancelled{StepIndex: stepIdx, Time: t}}
		}
	}

	s.state = Completed
	return Result{Status: StatusCompleted, Snapshots: snapshots, Final: current, Time: t, StepCount: stepIdx}
}

func minFloat(a, b float64) float64 {
	if math.IsInf(a, 1) {
		return b
	}
	if a < b {
		return a
	}
	return b
}
