// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"context"

	"github.com/cpmech/tokatransport/fvm"
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// ConstantTransport is a TransportModel reporting fixed, profile-
// independent diffusivities and pinch velocity. It still produces genuinely
// face-centered arrays by taking the harmonic mean of two identical cell
// values, so it satisfies the same invariant a profile-dependent model
// would. Used by end-to-end scenarios S1, S2, S4 and S6 and by the solver
// tests.
type ConstantTransport struct {
	ChiI, ChiE, Dn, Vn float32
}

// Compute implements TransportModel.
func (c ConstantTransport) Compute(_ context.Context, p profiles.CoreProfiles, m *mesh.Mesh, _ float64) (profiles.TransportCoefficients, error) {
	n := m.N
	mkFace := func(v float32) []float32 {
		cell := make([]float32, n)
		for i := range cell {
			cell[i] = v
		}
		return fvm.FaceArray(cell, fvm.HarmonicFace)
	}
	return profiles.TransportCoefficients{
		ChiI: profiles.NewEvaluated(mkFace(c.ChiI)),
		ChiE: profiles.NewEvaluated(mkFace(c.ChiE)),
		Dn:   profiles.NewEvaluated(mkFace(c.Dn)),
		Vn:   profiles.NewEvaluated(mkFace(c.Vn)),
	}, nil
}

// CriticalGradientTransport is a TransportModel whose ion/electron heat
// diffusivity increases sharply once the normalized inverse temperature
// gradient length -(dT/drho)/T exceeds a critical value -- the "chi depends sharply on T" case
// spec.md section 4.3 names as the Newton solver's motivating scenario.
// Below threshold, chi is the floor value; above it, chi grows linearly
// with the excess over RLTCrit scaled by Stiffness.
type CriticalGradientTransport struct {
	ChiFloor   float32 // diffusivity below threshold [m^2/s]
	Stiffness  float32 // slope of chi growth above threshold
	RLTCrit    float32 // critical inverse gradient length R/LT
	Dn, Vn     float32 // particle transport kept simple/constant
}

// Compute implements TransportModel.
func (c CriticalGradientTransport) Compute(_ context.Context, p profiles.CoreProfiles, m *mesh.Mesh, _ float64) (profiles.TransportCoefficients, error) {
	n := m.N
	chiCell := func(t []float32) []float32 {
		out := make([]float32, n)
		for i := range t {
			rlt := gradientLength(t, m.Rho, i)
			if rlt <= c.RLTCrit {
				out[i] = c.ChiFloor
			} else {
				out[i] = c.ChiFloor + c.Stiffness*(rlt-c.RLTCrit)
			}
		}
		return out
	}
	dn := make([]float32, n)
	vn := make([]float32, n)
	for i := range dn {
		dn[i] = c.Dn
		vn[i] = c.Vn
	}
	return profiles.TransportCoefficients{
		ChiI: profiles.NewEvaluated(fvm.FaceArray(chiCell(p.Ti.Values), fvm.HarmonicFace)),
		ChiE: profiles.NewEvaluated(fvm.FaceArray(chiCell(p.Te.Values), fvm.HarmonicFace)),
		Dn:   profiles.NewEvaluated(fvm.FaceArray(dn, fvm.HarmonicFace)),
		Vn:   profiles.NewEvaluated(fvm.FaceArray(vn, fvm.HarmonicFace)),
	}, nil
}

// gradientLength estimates the normalized inverse gradient length
// -(dT/drho)/T at cell i using a centered difference against neighbors
// (one-sided at the boundaries); it returns 0 where T does not decrease.
func gradientLength(t []float32, rho []float64, i int) float32 {
	n := len(t)
	var dTdRho float32
	switch {
	case n < 2:
		return 0
	case i == 0:
		dTdRho = (t[1] - t[0]) / float32(rho[1]-rho[0])
	case i == n-1:
		dTdRho = (t[n-1] - t[n-2]) / float32(rho[n-1]-rho[n-2])
	default:
		dTdRho = (t[i+1] - t[i-1]) / float32(rho[i+1]-rho[i-1])
	}
	if dTdRho >= 0 || t[i] == 0 {
		return 0
	}
	return -dTdRho / t[i]
}

// ZeroSource is a SourceModel returning all-zero source densities.
type ZeroSource struct{}

// Compute implements SourceModel.
func (ZeroSource) Compute(_ context.Context, _ profiles.CoreProfiles, m *mesh.Mesh, _ float64) (profiles.SourceTerms, error) {
	n := m.N
	zero := func() profiles.Evaluated32 { return profiles.NewEvaluated(make([]float32, n)) }
	return profiles.SourceTerms{Pi: zero(), Pe: zero(), Sn: zero(), Ohm: zero()}, nil
}

// ConstantSource is a SourceModel reporting fixed, uniform source
// densities per equation.
type ConstantSource struct {
	Pi, Pe, Sn, Ohm float32
}

// Compute implements SourceModel.
func (c ConstantSource) Compute(_ context.Context, _ profiles.CoreProfiles, m *mesh.Mesh, _ float64) (profiles.SourceTerms, error) {
	n := m.N
	mk := func(v float32) profiles.Evaluated32 {
		arr := make([]float32, n)
		for i := range arr {
			arr[i] = v
		}
		return profiles.NewEvaluated(arr)
	}
	return profiles.SourceTerms{Pi: mk(c.Pi), Pe: mk(c.Pe), Sn: mk(c.Sn), Ohm: mk(c.Ohm)}, nil
}

// NoPedestal is a PedestalModel that leaves profiles (and therefore
// boundary conditions) unchanged.
type NoPedestal struct{}

// Apply implements PedestalModel.
func (NoPedestal) Apply(p profiles.CoreProfiles) profiles.CoreProfiles { return p }
