// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sawtooth

import (
	"github.com/cpmech/tokatransport/conserve"
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// Params bundles the sawtooth operator's tunables, with spec.md section
// 4.7's defaults as the zero-value fallback (see applyDefaults).
type Params struct {
	RhoMin   float64 // trigger threshold on rho_q1, default 0.2
	SCrit    float64 // shear trigger threshold, default 0.2
	DtMinGap float64 // minimum elapsed time since the last crash, default 0.01s
	Kappa    float32 // core flattening factor (slightly > 1), default 1.01
	M        float64 // mixing-radius multiplier, default 1.5
	SPsi     float32 // psi core-gradient reduction factor, default 0.8
}

func (p *Params) applyDefaults() {
	if p.RhoMin <= 0 {
		p.RhoMin = 0.2
	}
	if p.SCrit <= 0 {
		p.SCrit = 0.2
	}
	if p.DtMinGap <= 0 {
		p.DtMinGap = 0.01
	}
	if p.Kappa <= 0 {
		p.Kappa = 1.01
	}
	if p.M <= 0 {
		p.M = 1.5
	}
	if p.SPsi <= 0 {
		p.SPsi = 0.8
	}
}

// Trigger reports whether the sawtooth crash conditions of spec.md section
// 4.7 are all met, and the crossing data needed by Crash if so.
type Trigger struct {
	Fired bool
	IQ1   int
	RhoQ1 float64
	Shear float64
}

// Evaluate computes q(rho), finds the innermost q=1 crossing, and checks
// the four trigger conditions: q(0)<1, rho_q1>RhoMin, shear at the
// crossing > SCrit, and time-since-last-crash >= DtMinGap.
func Evaluate(p Params, m *mesh.Mesh, psi []float32, timeSinceLastCrash float64) Trigger {
	p.applyDefaults()

	q := SafetyFactor(m, psi)
	if len(q) == 0 || q[0] >= 1 {
		return Trigger{}
	}

	iQ1, rhoQ1, found := FindQ1Crossing(q, m.Rho)
	if !found || rhoQ1 <= p.RhoMin {
		return Trigger{}
	}

	shear := Shear(q, m.Rho, iQ1, rhoQ1)
	if shear <= p.SCrit {
		return Trigger{}
	}

	if timeSinceLastCrash < p.DtMinGap {
		return Trigger{}
	}

	return Trigger{Fired: true, IQ1: iQ1, RhoQ1: rhoQ1, Shear: shear}
}

// mixIndex returns the cell index of rho_mix = m.M * rhoQ1, clamped to the
// last cell.
func mixIndex(msh *mesh.Mesh, rhoMix float64) int {
	n := msh.N
	i := 0
	for i = 0; i < n; i++ {
		if msh.Rho[i] >= rhoMix {
			break
		}
	}
	if i >= n {
		i = n - 1
	}
	if i < 1 {
		i = 1
	}
	return i
}

// flattenField replaces f over [0, iQ1] with a linear ramp from
// kappa*f[iQ1] at the axis to f[iQ1] at iQ1 (the index set includes iQ1 so
// the inner endpoint equals f[iQ1] exactly, per spec.md section 4.7), then
// blends linearly from f[iQ1] back toward the original values over
// (iQ1, iMix].
func flattenField(f []float32, iQ1, iMix int, kappa float32) {
	if iQ1 < 0 || iQ1 >= len(f) {
		return
	}
	edge := f[iQ1]
	axis := kappa * edge

	if iQ1 == 0 {
		f[0] = edge
	} else {
		for i := 0; i <= iQ1; i++ {
			frac := float32(i) / float32(iQ1)
			f[i] = axis + frac*(edge-axis)
		}
	}

	if iMix > iQ1 {
		original := make([]float32, iMix-iQ1)
		copy(original, f[iQ1+1:iMix+1])
		span := float32(iMix - iQ1)
		for i := iQ1 + 1; i <= iMix; i++ {
			frac := float32(i-iQ1) / span
			f[i] = edge + frac*(original[i-iQ1-1]-edge)
		}
	}
}

// Result reports the redistribution actually performed, for diagnostics
// and for the orchestrator's crash-time bookkeeping.
type Result struct {
	IQ1          int
	RhoQ1        float64
	IMix         int
	RhoMix       float64
	NeRelErr     float64
	TiEnergyErr  float64
	TeEnergyErr  float64
}

// Crash performs the redistribution of spec.md section 4.7 on a clone of
// prof (prof itself is left unchanged): flattens Ti, Te and Ne over the
// mixing region, then applies conservation (package conserve) over
// [0, iMix] -- density first, then energy using the already-conserved
// density, per section 4.6's ordering requirement. Psi is not flattened; it
// gets the core-gradient reduction (relaxPsiCore) that restores q(0) > 1 so
// the trigger does not fire every step thereafter.
func Crash(p Params, m *mesh.Mesh, prof profiles.CoreProfiles, t Trigger) (profiles.CoreProfiles, Result) {
	p.applyDefaults()
	out := prof.Clone()

	rhoMix := p.M * t.RhoQ1
	iMix := mixIndex(m, rhoMix)

	neTarget := conserve.Integral(prof.Ne.Values, m.G0, iMix)
	tiEnergyTarget := energyIntegral(prof.Ti.Values, prof.Ne.Values, m.G0, iMix)
	teEnergyTarget := energyIntegral(prof.Te.Values, prof.Ne.Values, m.G0, iMix)

	flattenField(out.Ti.Values, t.IQ1, iMix, p.Kappa)
	flattenField(out.Te.Values, t.IQ1, iMix, p.Kappa)
	flattenField(out.Ne.Values, t.IQ1, iMix, p.Kappa)

	neRelErr := conserve.RescaleDensity(out.Ne.Values, m.G0, iMix, neTarget)
	tiErr := conserve.RescaleEnergy(out.Ti.Values, out.Ne.Values, m.G0, iMix, tiEnergyTarget)
	teErr := conserve.RescaleEnergy(out.Te.Values, out.Ne.Values, m.G0, iMix, teEnergyTarget)

	relaxPsiCore(out.Psi.Values, m.Rho, t.IQ1, p.SPsi)

	return out, Result{
		IQ1: t.IQ1, RhoQ1: t.RhoQ1, IMix: iMix, RhoMix: rhoMix,
		NeRelErr: neRelErr, TiEnergyErr: tiErr, TeEnergyErr: teErr,
	}
}

// energyIntegral computes the pre-flattening g0-weighted integral of
// t*ne over [0, iMix], the conservation target RescaleEnergy is given.
func energyIntegral(t, ne []float32, g0Face []float64, iMix int) float64 {
	energy := make([]float32, len(t))
	for i := 0; i <= iMix; i++ {
		energy[i] = t[i] * ne[i]
	}
	return conserve.Integral(energy, g0Face, iMix)
}

// relaxPsiCore reduces the psi gradient inside rho_q1 by a factor sPsi,
// smoothly weighted from 1 at the axis to 0 at rho_q1 (spec.md section
// 4.7: "reduce the core psi-gradient by a factor s_psi ... smoothly from
// axis to rho_q1 ... preserving psi outside rho_q1"). Implemented by
// rescaling the deviation of each inner cell from the axis value by
// (1 - weight*(1-sPsi)), which lowers the local gradient without moving
// the axis value itself.
func relaxPsiCore(psi []float32, rho []float64, iQ1 int, sPsi float32) {
	if iQ1 <= 0 || iQ1 >= len(psi) {
		return
	}
	axis := psi[0]
	rhoQ1 := rho[iQ1]
	for i := 1; i <= iQ1; i++ {
		weight := float32(1 - rho[i]/rhoQ1)
		if weight < 0 {
			weight = 0
		}
		factor := 1 - weight*(1-sPsi)
		psi[i] = axis + factor*(psi[i]-axis)
	}
}
