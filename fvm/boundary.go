// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import "github.com/cpmech/tokatransport/profiles"

// applyLeftBoundary folds the left (axis) face constraint into the
// already-built interior coefficients for cell i (= 0): Dirichlet modifies
// the neighbor coefficient and augments the explicit source; Neumann
// replaces the unknown flux with the prescribed gradient (cancelling it
// when the gradient is zero); Robin combines the two, per spec.md section
// 4.1.
func applyLeftBoundary(sys *EquationSystem, in Inputs, i int) {
	m := in.Mesh
	dist := float32(m.FaceDist[0])
	g1 := float32(m.G1[0])
	vol := float32(m.V[i])
	d := in.D[0]

	extraDiag, extraConst := leftBoundaryExtra(in.Left, g1, d, dist, vol)
	fold(sys, in, i, extraDiag, extraConst)
}

// applyRightBoundary is the mirror of applyLeftBoundary for the edge
// (rho=1) face.
func applyRightBoundary(sys *EquationSystem, in Inputs, i int) {
	m := in.Mesh
	n := m.N
	dist := float32(m.FaceDist[n])
	g1 := float32(m.G1[n])
	vol := float32(m.V[i])
	d := in.D[n]

	extraDiag, extraConst := rightBoundaryExtra(in.Right, g1, d, dist, vol)
	fold(sys, in, i, extraDiag, extraConst)
}

// leftBoundaryExtra returns the coefficient of P_0 and the constant term
// that the left (axis) boundary face contributes to L(P)_0, replacing the
// missing left-neighbor term. base = g1*D/V at the boundary face.
func leftBoundaryExtra(c profiles.Constraint, g1, d, dist, vol float32) (extraDiag, extraConst float32) {
	base := g1 * d / vol
	switch c.Kind {
	case profiles.Dirichlet:
		coef := base / dist
		extraDiag = -coef
		extraConst = coef * c.Value
	case profiles.Neumann:
		extraDiag = 0
		extraConst = -base * c.Grad
	case profiles.Robin:
		// a*P_face + b*grad = c, with P_face approximated by the cell value.
		extraDiag = base * c.A / c.B
		extraConst = -base * c.C / c.B
	}
	return
}

// rightBoundaryExtra is the mirror of leftBoundaryExtra for the edge
// (rho=1) face, replacing the missing right-neighbor term.
func rightBoundaryExtra(c profiles.Constraint, g1, d, dist, vol float32) (extraDiag, extraConst float32) {
	base := g1 * d / vol
	switch c.Kind {
	case profiles.Dirichlet:
		coef := base / dist
		extraDiag = -coef
		extraConst = coef * c.Value
	case profiles.Neumann:
		extraDiag = 0
		extraConst = base * c.Grad
	case profiles.Robin:
		extraDiag = -base * c.A / c.B
		extraConst = base * c.C / c.B
	}
	return
}

// fold applies an extra (diag, const) boundary contribution to L(P)_i into
// the already-assembled row i of sys, following the same theta-split used
// when BuildEquation assembled the interior coefficients.
func fold(sys *EquationSystem, in Inputs, i int, extraDiag, extraConst float32) {
	theta := float32(in.Theta)
	sys.Di[i] -= theta * extraDiag
	sys.Rhs[i] += (1-theta)*extraDiag*in.Prev[i] + extraConst
}
