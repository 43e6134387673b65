// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fvm implements the finite-volume coefficient builder: from
// current profiles, transport coefficients, source terms and boundary
// constraints, it assembles the block-tridiagonal transient/diffusion/
// convection/source coefficients of the theta-discretized transport
// equations (spec.md section 4.1), generalizing the per-element residual
// assembly of the teacher repository's fem/e_diffu.go to a pure,
// mesh-level coefficient build with no shape functions.
package fvm

// faceEps prevents zero-division in vacuum cells when computing a harmonic
// mean; see spec.md section 4.1.
const faceEps = 1e-30

// HarmonicFace returns the harmonic mean of a and b using the reciprocal
// form 2/(1/a + 1/b) rather than the algebraically equivalent product form
// 2ab/(a+b). Under float32 and typical ne ~ 1e20, the product form
// overflows to +Inf; the reciprocal form stays in range. Used for
// diffusivities and particle diffusivity at faces (flux-continuity /
// series-resistance interpretation).
func HarmonicFace(a, b float32) float32 {
	return 2 / (1/(a+faceEps) + 1/(b+faceEps))
}

// harmonicFaceViaProduct is the textbook product-form harmonic mean. It is
// kept only for the property test that checks the two forms agree when
// values are small enough for the product not to overflow (spec.md section
// 8, property 1); production code must use HarmonicFace.
func harmonicFaceViaProduct(a, b float32) float32 {
	return 2 * a * b / (a + b + faceEps)
}

// ArithmeticFace returns the arithmetic mean of a and b, used for the
// advected scalar value at a face in the convection term (central
// differencing).
func ArithmeticFace(a, b float32) float32 {
	return 0.5 * (a + b)
}

// FaceArray builds the N+1 face-centered array for a cell-centered array of
// length N, using fn to combine neighboring cells and taking the boundary
// faces (0 and N) equal to the adjacent cell value, per the invariant in
// spec.md section 3 ("boundary faces take the adjacent cell value").
func FaceArray(cellVals []float32, fn func(a, b float32) float32) []float32 {
	n := len(cellVals)
	out := make([]float32, n+1)
	out[0] = cellVals[0]
	out[n] = cellVals[n-1]
	for i := 1; i < n; i++ {
		out[i] = fn(cellVals[i-1], cellVals[i])
	}
	return out
}
