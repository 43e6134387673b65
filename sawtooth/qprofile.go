// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sawtooth implements the MHD sawtooth-crash operator of spec.md
// section 4.7: safety-factor evaluation, q=1 crossing detection, the
// trigger criteria, core profile flattening, and the poloidal-flux
// adjustment that restores q(0) > 1 so the trigger does not fire every
// step thereafter.
package sawtooth

import "github.com/cpmech/tokatransport/mesh"

const qEps = 1e-12

// SafetyFactor computes q(rho) at cell centers from the poloidal flux
// profile psi and the mesh geometry: q ~ (2*pi*Btor*rminor^2*rho) /
// (Rmajor * dpsi/drho), the large-aspect-ratio circular approximation
// consistent with the glossary definition "ratio of toroidal to poloidal
// field-line turns per radial surface". Full 2-D equilibrium reconstruction
// is out of scope (spec.md section 1). At the axis cell psi is treated as
// even in rho, so dpsi/drho there is the central difference between cell 1
// and cell 0 mirrored to -Rho[0].
func SafetyFactor(m *mesh.Mesh, psi []float32) []float64 {
	n := m.N
	q := make([]float64, n)
	c := 2 * 3.141592653589793 * m.Btor * m.Rminor * m.Rminor / m.Rmajor
	for i := 0; i < n; i++ {
		grad := cellGradient(psi, m.Rho, i)
		if i == 0 && n > 1 {
			grad = float64(psi[1]-psi[0]) / (m.Rho[1] + m.Rho[0])
		}
		if grad < qEps && grad > -qEps {
			grad = qEps
		}
		q[i] = c * m.Rho[i] / grad
	}
	return q
}

// cellGradient returns d(values)/d(rho) at cell i using a central
// difference against neighbors, one-sided at the boundaries.
func cellGradient(values []float32, rho []float64, i int) float64 {
	n := len(values)
	switch {
	case n < 2:
		return 0
	case i == 0:
		return float64(values[1]-values[0]) / (rho[1] - rho[0])
	case i == n-1:
		return float64(values[n-1]-values[n-2]) / (rho[n-1] - rho[n-2])
	default:
		return float64(values[i+1]-values[i-1]) / (rho[i+1] - rho[i-1])
	}
}

// FindQ1Crossing finds the innermost index i such that q crosses 1 between
// cells i and i+1 (q[i] < 1 <= q[i+1]), and linearly interpolates the
// crossing position rhoQ1. found is false if q never crosses 1.
func FindQ1Crossing(q []float64, rho []float64) (i int, rhoQ1 float64, found bool) {
	for k := 0; k < len(q)-1; k++ {
		if q[k] < 1 && q[k+1] >= 1 {
			frac := (1 - q[k]) / (q[k+1] - q[k])
			return k, rho[k] + frac*(rho[k+1]-rho[k]), true
		}
	}
	return 0, 0, false
}

// Shear returns the magnetic shear s = (rho/q) dq/drho at the crossing,
// linearly interpolated between the two grid points bounding i_q1 (spec.md
// section 4.7).
func Shear(q []float64, rho []float64, iQ1 int, rhoQ1 float64) float64 {
	if iQ1+1 >= len(q) {
		return 0
	}
	dqdrho := (q[iQ1+1] - q[iQ1]) / (rho[iQ1+1] - rho[iQ1])
	frac := 0.0
	if rho[iQ1+1] != rho[iQ1] {
		frac = (rhoQ1 - rho[iQ1]) / (rho[iQ1+1] - rho[iQ1])
	}
	qAtCrossing := q[iQ1] + frac*(q[iQ1+1]-q[iQ1])
	if qAtCrossing == 0 {
		return 0
	}
	return (rhoQ1 / qAtCrossing) * dqdrho
}
