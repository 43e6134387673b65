// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conserve implements the conservation-enforcement layer of
// spec.md section 4.6: after a profile-redistributing operator (in
// practice, the sawtooth operator in package sawtooth) runs over a radial
// range, rescale the redistributed profile so the integrated particle
// count or internal energy over that range matches the pre-redistribution
// value to within tolerance. Density is conserved first; energy is then
// conserved using the already-conserved density, never the pre-flattening
// one.
package conserve

import "github.com/cpmech/gosl/chk"

// DefaultTolerance is the relative tolerance spec.md section 4.6 and
// section 8 (property 5) both specify: 1e-3.
const DefaultTolerance = 1e-3

// integral returns the g0-weighted cell sum over cells [0, iMix]:
// sum_i f_i * g0cell_i, with g0cell the mean of the two bounding face
// values. This is the midpoint-rule value of integral_0^rhoMix f*g0 drho
// divided by the (uniform) cell width; targets and rescaled values use the
// same sum, so rescale factors are unaffected.
func integral(f []float32, g0Face []float64, iMix int) float64 {
	sum := 0.0
	for i := 0; i <= iMix; i++ {
		g0cell := 0.5 * (g0Face[i] + g0Face[i+1])
		sum += float64(f[i]) * g0cell
	}
	return sum
}

// RescaleDensity rescales ne over [0, iMix] by a single multiplicative
// factor so its g0-weighted integral matches target exactly (up to
// float32 rounding), and reports the achieved relative error against
// target.
func RescaleDensity(ne []float32, g0Face []float64, iMix int, target float64) (relErr float64) {
	current := integral(ne, g0Face, iMix)
	if current == 0 {
		return 0
	}
	factor := float32(target / current)
	for i := 0; i <= iMix; i++ {
		ne[i] *= factor
	}
	newIntegral := integral(ne, g0Face, iMix)
	return relError(newIntegral, target)
}

// RescaleEnergy rescales a temperature field t over [0, iMix] -- using the
// *already-conserved* density neNew, per spec.md section 4.6 -- so the
// g0-weighted integral of t*neNew matches the pre-redistribution energy
// target exactly (up to float32 rounding).
func RescaleEnergy(t []float32, neNew []float32, g0Face []float64, iMix int, target float64) (relErr float64) {
	energyDensity := make([]float32, len(t))
	for i := 0; i <= iMix; i++ {
		energyDensity[i] = t[i] * neNew[i]
	}
	current := integral(energyDensity, g0Face, iMix)
	if current == 0 {
		return 0
	}
	factor := float32(target / current)
	for i := 0; i <= iMix; i++ {
		t[i] *= factor
	}
	newEnergy := make([]float32, len(t))
	for i := 0; i <= iMix; i++ {
		newEnergy[i] = t[i] * neNew[i]
	}
	newIntegral := integral(newEnergy, g0Face, iMix)
	return relError(newIntegral, target)
}

// Integral exposes the g0-weighted cell sum of integral for callers
// (sawtooth uses it to capture pre-redistribution targets before
// flattening).
func Integral(f []float32, g0Face []float64, iMix int) float64 {
	return integral(f, g0Face, iMix)
}

func relError(got, target float64) float64 {
	if target == 0 {
		if got == 0 {
			return 0
		}
		return 1
	}
	d := got - target
	if d < 0 {
		d = -d
	}
	return d / absf(target)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// CheckTolerance returns an error if relErr exceeds DefaultTolerance,
// identifying the quantity by name for diagnostics.
func CheckTolerance(name string, relErr float64) error {
	if relErr > DefaultTolerance {
		return chk.Err("conservation of %s violated: relative error %v exceeds tolerance %v", name, relErr, DefaultTolerance)
	}
	return nil
}
