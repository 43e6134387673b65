// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/tokatransport/fvm"
)

// JacobianAnalytic builds the 4N x 4N block-tridiagonal structural Jacobian
// of the *linear* spatial operator with coefficients frozen at the given
// EquationSet: each evolved variable's row of BuildEquation's Lo/Di/Up is
// already exactly that variable's contribution to dR/dP (the four
// equations are coupled only through source terms, per spec.md section 9,
// so off-diagonal blocks are zero here). This is the "hand-coded
// block-tridiagonal Jacobian for the linear terms" fallback spec.md
// section 9 names. It is a structural reference only: neither Newton nor
// the package tests call it, and Newton takes its whole Jacobian from
// JacobianFD.
func JacobianAnalytic(eqs fvm.EquationSet, scales Scales) *mat.Dense {
	n := len(eqs.Ti.Di)
	dim := 4 * n
	J := mat.NewDense(dim, dim, nil)
	blocks := []struct {
		sys   fvm.EquationSystem
		scale float64
	}{
		{eqs.Ti, scales.Ti}, {eqs.Te, scales.Te}, {eqs.Ne, scales.Ne}, {eqs.Psi, scales.Psi},
	}
	for b, blk := range blocks {
		off := b * n
		for i := 0; i < n; i++ {
			J.Set(off+i, off+i, float64(blk.sys.Di[i])*blk.scale)
			if i > 0 {
				J.Set(off+i, off+i-1, float64(blk.sys.Lo[i])*blk.scale)
			}
			if i < n-1 {
				J.Set(off+i, off+i+1, float64(blk.sys.Up[i])*blk.scale)
			}
		}
	}
	return J
}

// JacobianFD computes the full 4N x 4N Jacobian of residualFn at x by
// forward finite differences, using gonum's diff/fd package. This is the
// "finite-difference for nonlinear model outputs" half of spec.md section
// 9's sanctioned autodiff fallback; because the array kernel used here
// (gosl/gonum, both dense-array backends without a reverse-mode autodiff
// facility) cannot trace the transport/source model calls, the whole
// residual -- structural spatial operator included -- is differenced in
// one pass rather than splitting the call into an analytic part and an FD
// correction.
func JacobianFD(residualFn func([]float64) []float64, x []float64) *mat.Dense {
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(dst, xx []float64) {
		r := residualFn(xx)
		copy(dst, r)
	}, x, &fd.JacobianSettings{
		Formula: fd.Forward,
	})
	return jac
}
