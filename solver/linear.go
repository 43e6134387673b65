// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"context"
	"math"

	"github.com/cpmech/tokatransport/fvm"
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/model"
	"github.com/cpmech/tokatransport/profiles"
)

// LinearParams bundles the inputs to the predictor-corrector linear solver
// (spec.md section 4.2).
type LinearParams struct {
	Mesh      *mesh.Mesh
	Prev      profiles.CoreProfiles
	Transport model.TransportModel
	Source    model.SourceModel
	Theta     float64
	Dt        float64
	Time      float64

	K               int     // inner iteration count, default 2
	TauLin          float64 // relative L2 convergence tolerance, default 1e-6
	NFloor          float32
	EtaCoeff        float32
	PsiInertia      float32
	PereverzevCoeff float32 // optional inner-iteration stabilization term added to D
}

// applyDefaults fills zero-valued optional fields with their spec.md
// defaults.
func (p *LinearParams) applyDefaults() {
	if p.K <= 0 {
		p.K = 2
	}
	if p.TauLin <= 0 {
		p.TauLin = 1e-6
	}
	if p.NFloor <= 0 {
		p.NFloor = profiles.NFloor
	}
	if p.EtaCoeff <= 0 {
		p.EtaCoeff = fvm.DefaultEtaCoeff
	}
	if p.PsiInertia <= 0 {
		p.PsiInertia = fvm.DefaultPsiInertia
	}
}

// Linear runs the predictor-corrector solve of one theta-step: it
// re-evaluates transport coefficients at the latest profile estimate on
// each inner iteration and resolves each (decoupled) tridiagonal equation,
// terminating after K iterations or once the relative L2 change between
// iterations drops below TauLin.
func Linear(ctx context.Context, p LinearParams) (Result, error) {
	p.applyDefaults()

	iterate := p.Prev.Clone()
	var lastResidual float64

	for iter := 0; iter < p.K; iter++ {
		tc, err := p.Transport.Compute(ctx, iterate, p.Mesh, p.Time)
		if err != nil {
			return Result{}, err
		}
		if err := tc.Validate(p.Mesh.N + 1); err != nil {
			return Result{}, err
		}
		st, err := p.Source.Compute(ctx, iterate, p.Mesh, p.Time)
		if err != nil {
			return Result{}, err
		}
		if err := st.Validate(p.Mesh.N); err != nil {
			return Result{}, err
		}

		if p.PereverzevCoeff > 0 {
			// Stabilize copies so the model's own outputs are never mutated.
			tc.ChiI, tc.ChiE, tc.Dn = tc.ChiI.Clone(), tc.ChiE.Clone(), tc.Dn.Clone()
			stabilize(tc.ChiI.Data(), p.PereverzevCoeff)
			stabilize(tc.ChiE.Data(), p.PereverzevCoeff)
			stabilize(tc.Dn.Data(), p.PereverzevCoeff)
		}

		eqs := fvm.BuildAll(fvm.BuildAllParams{
			Mesh: p.Mesh, Prev: p.Prev, Transport: tc, Source: st,
			Theta: p.Theta, Dt: p.Dt, NFloor: p.NFloor,
			EtaCoeff: p.EtaCoeff, PsiInertia: p.PsiInertia,
		})

		next := iterate.Clone()
		next.Ti.Values = ThomasSolve(eqs.Ti)
		next.Te.Values = ThomasSolve(eqs.Te)
		next.Ne.Values = ThomasSolve(eqs.Ne)
		next.Psi.Values = ThomasSolve(eqs.Psi)

		lastResidual = relativeL2Change(iterate, next)
		iterate = next

		if lastResidual < p.TauLin {
			return Result{Converged: true, Profiles: iterate, Iterations: iter + 1, Residual: lastResidual}, nil
		}
	}

	converged := lastResidual < p.TauLin
	failure := None
	if !converged {
		failure = MaxIterations
	}
	return Result{
		Converged:   converged,
		Profiles:    iterate,
		Iterations:  p.K,
		Residual:    lastResidual,
		FailureType: failure,
	}, nil
}

// stabilize adds a constant Pereverzev term to a face-centered coefficient
// array in place.
func stabilize(arr []float32, coef float32) {
	for i := range arr {
		arr[i] += coef
	}
}

// relativeL2Change returns the relative L2 norm of the change between two
// profile sets, pooling all four fields.
func relativeL2Change(a, b profiles.CoreProfiles) float64 {
	num := sqSum(a.Ti.Values, b.Ti.Values) + sqSum(a.Te.Values, b.Te.Values) +
		sqSum(a.Ne.Values, b.Ne.Values) + sqSum(a.Psi.Values, b.Psi.Values)
	den := sqNorm(a.Ti.Values) + sqNorm(a.Te.Values) + sqNorm(a.Ne.Values) + sqNorm(a.Psi.Values)
	if den == 0 {
		return 0
	}
	return math.Sqrt(num / den)
}

func sqSum(a, b []float32) float64 {
	var s float64
	for i := range a {
		d := float64(b[i] - a[i])
		s += d * d
	}
	return s
}

func sqNorm(a []float32) float64 {
	var s float64
	for _, v := range a {
		s += float64(v) * float64(v)
	}
	return s
}
