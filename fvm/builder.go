// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// EquationSystem is the block-tridiagonal linear system for one evolved
// equation: Lo[i], Di[i], Up[i] are the sub-, main- and super-diagonal
// coefficients for row i (Lo[0] and Up[N-1] are unused), and Rhs is the
// right-hand side. Solving Lo/Di/Up * Pnext = Rhs gives the theta-implicit
// update for this equation alone; coupling between equations enters only
// through the source terms (spec.md section 9, "Coupling between
// equations").
type EquationSystem struct {
	Lo, Di, Up, Rhs []float32

	// Beta is the per-cell transient coefficient alpha/dt used to build
	// Di and Rhs. It is the natural scale of this equation's residual --
	// dividing a residual by Beta turns a flux-balance mismatch back into
	// a state-unit correction, which is what spec.md section 4.3's
	// per-variable tolerances are tuned against.
	Beta []float32
}

// Inputs bundles everything BuildEquation needs for one evolved field.
type Inputs struct {
	Mesh      *mesh.Mesh
	Prev      []float32      // P^n, cell-centered, length N
	Alpha     []float32      // transient coefficient, cell-centered, length N
	D         []float32      // diffusion coefficient, face-centered, length N+1
	V         []float32      // convection velocity, face-centered, length N+1
	Se        []float32      // explicit source, cell-centered, length N (already unit-converted)
	Si        []float32      // implicit source coefficient, cell-centered, length N (may be nil)
	Left      profiles.Constraint
	Right     profiles.Constraint
	Theta     float64
	Dt        float64
}

// spatialCoefs returns, for an interior cell i (one with a real neighbor on
// both sides), the coefficients of L(P)_i = cLeft*P[i-1] + cDiag*P[i] +
// cRight*P[i+1], per spec.md section 4.1.
func spatialCoefs(m *mesh.Mesh, D, V []float32, i int) (cLeft, cDiag, cRight float32) {
	dr := float32(m.DR)
	vol := float32(m.V[i])
	g1Left := float32(m.G1[i])
	g1Right := float32(m.G1[i+1])

	diffLeft := g1Left * D[i] / dr
	diffRight := g1Right * D[i+1] / dr
	convLeft := g1Left * V[i] * 0.5
	convRight := g1Right * V[i+1] * 0.5

	cLeft = (diffLeft + convLeft) / vol
	cRight = (diffRight - convRight) / vol
	cDiag = (-diffRight - diffLeft - convRight + convLeft) / vol
	return
}

// leftEdgeCoefs returns cDiag, cRight for cell 0, including only the real
// interior face to cell 1. The axis (left) face is not a cell-to-cell face
// at distance dr -- it is the boundary face at FaceDist[0] = dr/2 -- and its
// flux is supplied entirely by applyLeftBoundary's fold, not here.
func leftEdgeCoefs(m *mesh.Mesh, D, V []float32, i int) (cDiag, cRight float32) {
	dr := float32(m.DR)
	vol := float32(m.V[i])
	g1Right := float32(m.G1[i+1])

	diffRight := g1Right * D[i+1] / dr
	convRight := g1Right * V[i+1] * 0.5

	cRight = (diffRight - convRight) / vol
	cDiag = (-diffRight - convRight) / vol
	return
}

// rightEdgeCoefs is the mirror of leftEdgeCoefs for the last cell: only the
// real interior face to cell n-2 is included here. The edge (rho=1) face's
// flux, at FaceDist[n] = dr/2, is supplied entirely by applyRightBoundary's
// fold.
func rightEdgeCoefs(m *mesh.Mesh, D, V []float32, i int) (cLeft, cDiag float32) {
	dr := float32(m.DR)
	vol := float32(m.V[i])
	g1Left := float32(m.G1[i])

	diffLeft := g1Left * D[i] / dr
	convLeft := g1Left * V[i] * 0.5

	cLeft = (diffLeft + convLeft) / vol
	cDiag = (-diffLeft + convLeft) / vol
	return
}

// BuildEquation assembles the tridiagonal system for one evolved equation
// over the whole mesh, applying theta-splitting and the left/right boundary
// constraints. D, V, Se, Si, Alpha and Prev are all evaluated at whatever
// profile iterate the caller wants linearized about (the linear solver
// re-evaluates and re-calls this once per predictor-corrector iteration;
// the Newton solver calls this once per residual evaluation).
func BuildEquation(in Inputs) EquationSystem {
	n := in.Mesh.N
	sys := EquationSystem{
		Lo:   make([]float32, n),
		Di:   make([]float32, n),
		Up:   make([]float32, n),
		Rhs:  make([]float32, n),
		Beta: make([]float32, n),
	}
	theta := float32(in.Theta)
	invDt := float32(1.0 / in.Dt)

	for i := 0; i < n; i++ {
		alpha := in.Alpha[i]
		beta := alpha * invDt
		sys.Beta[i] = beta

		var cLeft, cDiag, cRight float32
		if i > 0 && i < n-1 {
			cLeft, cDiag, cRight = spatialCoefs(in.Mesh, in.D, in.V, i)
		} else if n == 1 {
			cLeft, cDiag, cRight = 0, 0, 0
		} else if i == 0 {
			cDiag, cRight = leftEdgeCoefs(in.Mesh, in.D, in.V, i)
			cLeft = 0
		} else {
			cLeft, cDiag = rightEdgeCoefs(in.Mesh, in.D, in.V, i)
			cRight = 0
		}

		lExplicit := float32(0)
		if i > 0 {
			lExplicit += cLeft * in.Prev[i-1]
		}
		lExplicit += cDiag * in.Prev[i]
		if i < n-1 {
			lExplicit += cRight * in.Prev[i+1]
		}

		si := float32(0)
		if in.Si != nil {
			si = in.Si[i]
		}

		// alpha/dt*(Pnext - Pn) = theta*L(Pnext) + (1-theta)*L(Pn) + Se + Si*Pnext
		sys.Di[i] = beta - theta*cDiag - si
		if i > 0 {
			sys.Lo[i] = -theta * cLeft
		}
		if i < n-1 {
			sys.Up[i] = -theta * cRight
		}
		sys.Rhs[i] = beta*in.Prev[i] + (1-theta)*lExplicit + in.Se[i]
	}

	applyLeftBoundary(&sys, in, 0)
	applyRightBoundary(&sys, in, n-1)
	return sys
}
