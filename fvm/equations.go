// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"math"

	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// EtaCoeff scales the Spitzer-like resistive diffusivity used for the
// poloidal-flux equation: Dpsi = EtaCoeff / Te^1.5. Psi transport is not
// part of the TransportModel interface (spec.md section 6 lists only
// chi_i, chi_e, Dn, vn), so the core derives it internally from Te the way
// a resistive-MHD model would, scaled by this single tunable constant
// (exposed through config.Config).
const DefaultEtaCoeff = 1e-6

// PsiInertia is the cell-uniform inductive-inertia factor used as the
// transient coefficient alpha for the flux equation (spec.md section 4.1:
// "For psi it is the geometry-derived inertial factor"). Kept a tunable
// scalar rather than a full inductance model, consistent with the
// non-goal of full 2-D equilibrium solving.
const DefaultPsiInertia = 1.0

// EquationSet bundles the four per-variable tridiagonal systems built for
// one theta-step linearization point.
type EquationSet struct {
	Ti, Te, Ne, Psi EquationSystem
}

// BuildAllParams bundles the physical inputs shared by all four equations
// for one theta-step.
type BuildAllParams struct {
	Mesh       *mesh.Mesh
	Prev       profiles.CoreProfiles
	Transport  profiles.TransportCoefficients
	Source     profiles.SourceTerms
	Theta      float64
	Dt         float64
	NFloor     float32
	EtaCoeff   float32
	PsiInertia float32
}

// BuildAll assembles the tridiagonal systems for Ti, Te, Ne and Psi at the
// given linearization point (Prev may be the previous committed step, or a
// predictor-corrector/Newton iterate -- BuildAll is stateless).
func BuildAll(p BuildAllParams) EquationSet {
	n := p.Mesh.N
	alphaHeat := ClampAlpha(p.Prev.Ne.Values, p.NFloor)
	zeroFace := make([]float32, n+1)

	seTi := HeatSourceToInternalUnits(p.Source.Pi.Data())
	seTe := HeatSourceToInternalUnits(p.Source.Pe.Data())

	tiSys := BuildEquation(Inputs{
		Mesh: p.Mesh, Prev: p.Prev.Ti.Values, Alpha: alphaHeat,
		D: p.Transport.ChiI.Data(), V: zeroFace, Se: seTi,
		Left: p.Prev.Ti.Left, Right: p.Prev.Ti.Right, Theta: p.Theta, Dt: p.Dt,
	})
	teSys := BuildEquation(Inputs{
		Mesh: p.Mesh, Prev: p.Prev.Te.Values, Alpha: alphaHeat,
		D: p.Transport.ChiE.Data(), V: zeroFace, Se: seTe,
		Left: p.Prev.Te.Left, Right: p.Prev.Te.Right, Theta: p.Theta, Dt: p.Dt,
	})

	alphaNe := make([]float32, n)
	for i := range alphaNe {
		alphaNe[i] = 1
	}
	neSys := BuildEquation(Inputs{
		Mesh: p.Mesh, Prev: p.Prev.Ne.Values, Alpha: alphaNe,
		D: p.Transport.Dn.Data(), V: p.Transport.Vn.Data(), Se: p.Source.Sn.Data(),
		Left: p.Prev.Ne.Left, Right: p.Prev.Ne.Right, Theta: p.Theta, Dt: p.Dt,
	})

	dPsi := make([]float32, n+1)
	teFace := FaceArray(p.Prev.Te.Values, HarmonicFace)
	for i := range dPsi {
		te := teFace[i]
		if te < 1 {
			te = 1
		}
		dPsi[i] = p.EtaCoeff / pow15(te)
	}
	alphaPsi := make([]float32, n)
	for i := range alphaPsi {
		alphaPsi[i] = p.PsiInertia
	}
	psiSys := BuildEquation(Inputs{
		Mesh: p.Mesh, Prev: p.Prev.Psi.Values, Alpha: alphaPsi,
		D: dPsi, V: zeroFace, Se: p.Source.Ohm.Data(),
		Left: p.Prev.Psi.Left, Right: p.Prev.Psi.Right, Theta: p.Theta, Dt: p.Dt,
	})

	return EquationSet{Ti: tiSys, Te: teSys, Ne: neSys, Psi: psiSys}
}

func pow15(x float32) float32 {
	return float32(math.Pow(float64(x), 1.5))
}
