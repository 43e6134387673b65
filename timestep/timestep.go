// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timestep implements the adaptive time-step calculator of
// spec.md section 4.4: a CFL-bounded candidate dt, clipped by the mandatory
// growth cap and the configured dt_max, generalizing the teacher
// repository's fem/dyncoefs.go dtMin floor to a full adaptive controller.
package timestep

import "math"

// Params bundles the time-step calculator's tunables, with spec.md's
// defaults as the zero-value fallback (see Calculate).
type Params struct {
	C        float64 // CFL constant, default 0.5
	GMax     float64 // growth cap, default 1.2 -- mandatory, not advisory
	DtMax    float64 // hard ceiling on dt
	DtMin    float64 // retry floor, default 1e-5 s
	DrSquare float64 // Delta r squared, from the mesh
}

func (p *Params) applyDefaults() {
	if p.C <= 0 {
		p.C = 0.5
	}
	if p.GMax <= 0 {
		p.GMax = 1.2
	}
	if p.DtMax <= 0 {
		p.DtMax = math.Inf(1)
	}
	if p.DtMin <= 0 {
		p.DtMin = 1e-5
	}
}

// Diagnostic is emitted whenever the growth cap binds (spec.md section
// 4.4: "Emit a diagnostic whenever the cap binds, reporting raw and capped
// dt").
type Diagnostic struct {
	CapBound bool
	RawDt    float64
	CappedDt float64
}

// Calculate computes the candidate dt from the CFL limit implied by the
// largest transport diffusivity present (chi or D; convection velocities
// are not included), then applies dt_next = min(dt_CFL, dt_prev*g_max, dt_max).
//
// maxCoef is max(chi_i, chi_e, Dn) over all faces for the step just
// computed; eps prevents a division by zero in a fully diffusion-free
// configuration (spec.md section 4.4: "dt_CFL = C * Delta_r^2 /
// max(chi,D,eps)").
func Calculate(p Params, dtPrev, maxCoef, eps float64) (dtNext float64, diag Diagnostic) {
	p.applyDefaults()
	if eps <= 0 {
		eps = 1e-12
	}
	denom := maxCoef
	if denom < eps {
		denom = eps
	}
	dtCFL := p.C * p.DrSquare / denom

	grown := dtPrev * p.GMax
	raw := math.Min(dtCFL, p.DtMax)

	dtNext = math.Min(raw, grown)
	diag = Diagnostic{RawDt: raw, CappedDt: dtNext}
	if grown < raw {
		diag.CapBound = true
	}
	return dtNext, diag
}
