// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "github.com/cpmech/tokatransport/fvm"

// ThomasSolve solves the tridiagonal system sys using the Thomas algorithm
// (Gaussian elimination specialized to a tridiagonal matrix) and returns the
// solution as a new slice; sys itself is not modified. The
// four evolved equations are coupled only through source terms (spec.md
// section 9), so each is a genuinely tridiagonal -- not block-tridiagonal
// -- system once the source terms are evaluated at a fixed linearization
// point; this is the "dense solve on the array kernel" of spec.md section
// 4.2 specialized to the structure the coefficient builder actually
// produces.
func ThomasSolve(sys fvm.EquationSystem) []float32 {
	n := len(sys.Di)
	cp := make([]float32, n)
	dp := make([]float32, n)

	cp[0] = sys.Up[0] / sys.Di[0]
	dp[0] = sys.Rhs[0] / sys.Di[0]
	for i := 1; i < n; i++ {
		m := sys.Di[i] - sys.Lo[i]*cp[i-1]
		if i < n-1 {
			cp[i] = sys.Up[i] / m
		}
		dp[i] = (sys.Rhs[i] - sys.Lo[i]*dp[i-1]) / m
	}

	x := make([]float32, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x
}
