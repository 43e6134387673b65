// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profiles

import "github.com/cpmech/gosl/chk"

// TransportCoefficients holds the face-centered diffusivities and pinch
// velocity produced by a TransportModel for one evaluation of the profiles:
// ion and electron heat diffusivities, particle diffusivity, and particle
// pinch velocity. Every array has length N+1 (one value per mesh face).
type TransportCoefficients struct {
	ChiI Evaluated32 // ion heat diffusivity [m^2/s]
	ChiE Evaluated32 // electron heat diffusivity [m^2/s]
	Dn   Evaluated32 // particle diffusivity [m^2/s]
	Vn   Evaluated32 // particle pinch velocity [m/s]
}

// Validate checks that all four arrays have the expected face length and
// are finite, per the TransportModel interface contract (spec section 6:
// "pure; no side effects; result arrays are face-centered of length N+1;
// all finite").
func (t TransportCoefficients) Validate(nFaces int) error {
	for name, arr := range map[string]Evaluated32{"ChiI": t.ChiI, "ChiE": t.ChiE, "Dn": t.Dn, "Vn": t.Vn} {
		if arr.Len() != nFaces {
			return chk.Err("transport coefficient %q: expected length %d, got %d", name, nFaces, arr.Len())
		}
		for i, v := range arr.Data() {
			if isNaN32(v) || isInf32(v) {
				return chk.Err("transport coefficient %q: non-finite value %v at face %d", name, v, i)
			}
		}
	}
	return nil
}

// SourceTerms holds the cell-centered source densities produced by a
// SourceModel for the four evolved equations. Heat sources are in MW/m^3;
// the particle source is in m^-3/s. Positive values are sources into the
// plasma, per the SourceModel interface contract.
type SourceTerms struct {
	Pi  Evaluated32 // ion heat source density [MW/m^3]
	Pe  Evaluated32 // electron heat source density [MW/m^3]
	Sn  Evaluated32 // particle source density [m^-3/s]
	Ohm Evaluated32 // ohmic/current-drive source for the psi equation [Wb/(m^2 s)]-equivalent density
}

// Validate checks the cell length and finiteness of every source array.
func (s SourceTerms) Validate(nCells int) error {
	for name, arr := range map[string]Evaluated32{"Pi": s.Pi, "Pe": s.Pe, "Sn": s.Sn, "Ohm": s.Ohm} {
		if arr.Len() != nCells {
			return chk.Err("source term %q: expected length %d, got %d", name, nCells, arr.Len())
		}
		for i, v := range arr.Data() {
			if isNaN32(v) || isInf32(v) {
				return chk.Err("source term %q: non-finite value %v at cell %d", name, v, i)
			}
		}
	}
	return nil
}
