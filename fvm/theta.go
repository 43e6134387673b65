// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import "github.com/cpmech/gosl/chk"

// ThetaCoefs computes the theta-method blending coefficients (the
// coefficient builder and the solvers take theta and dt as plain parameters
// and do not use this type), generalizing the teacher
// repository's fem/dyncoefs.go DynCoefs (which computed Newmark/HHT
// coefficients for structural dynamics) to the single theta in [0,1] this
// core's parabolic equations need: theta=0 explicit Euler, theta=1 implicit
// Euler, theta=0.5 Crank-Nicolson.
type ThetaCoefs struct {
	Theta float64
	DtMin float64 // retry floor; CalcBeta rejects dt below this
	Beta  float64 // 1/dt, cached by CalcBeta
}

// Init validates theta and stores the retry-floor dt.
func (o *ThetaCoefs) Init(theta, dtMin float64) {
	if theta < 0 || theta > 1 {
		chk.Panic("theta-method requires 0 <= theta <= 1 (theta = %v is incorrect)", theta)
	}
	o.Theta = theta
	o.DtMin = dtMin
}

// CalcBeta computes the transient coefficient multiplier 1/dt for the given
// step size, rejecting dt below the configured floor.
func (o *ThetaCoefs) CalcBeta(dt float64) error {
	if dt < o.DtMin {
		return chk.Err("theta-method requires dt >= %v (dt = %v is incorrect)", o.DtMin, dt)
	}
	o.Beta = 1.0 / dt
	return nil
}
