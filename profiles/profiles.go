// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profiles

import "github.com/cpmech/gosl/chk"

// CoreProfiles is the product of the four evolved fields: ion temperature
// Ti [eV], electron temperature Te [eV], electron density Ne [m^-3], and
// poloidal flux Psi [Wb]. Profiles are replaced wholesale at each committed
// step, never mutated in place; intermediate profiles produced inside a
// solver iteration must not escape the solver (see package solver).
type CoreProfiles struct {
	Ti  Field
	Te  Field
	Ne  Field
	Psi Field
}

// Clone returns an independent, deep copy of p.
func (p CoreProfiles) Clone() CoreProfiles {
	return CoreProfiles{
		Ti:  p.Ti.Clone(),
		Te:  p.Te.Clone(),
		Ne:  p.Ne.Clone(),
		Psi: p.Psi.Clone(),
	}
}

// CheckInvariants validates the "temperatures strictly positive, density at
// or above the floor, all values finite" invariants that must hold for any
// committed profile set. It returns the first violation found.
func (p CoreProfiles) CheckInvariants() error {
	if err := p.Ti.CheckFinite("Ti"); err != nil {
		return err
	}
	if err := p.Te.CheckFinite("Te"); err != nil {
		return err
	}
	if err := p.Ne.CheckFinite("Ne"); err != nil {
		return err
	}
	if err := p.Psi.CheckFinite("Psi"); err != nil {
		return err
	}
	for i, v := range p.Ti.Values {
		if v <= 0 {
			return fieldErr("Ti", i, v, "must be strictly positive")
		}
	}
	for i, v := range p.Te.Values {
		if v <= 0 {
			return fieldErr("Te", i, v, "must be strictly positive")
		}
	}
	for i, v := range p.Ne.Values {
		if v < NFloor {
			return fieldErr("Ne", i, v, "must be at or above the density floor")
		}
	}
	return nil
}

func fieldErr(name string, i int, v float32, reason string) error {
	return chk.Err("field %q at cell %d has value %v: %s", name, i, v, reason)
}
