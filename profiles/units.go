// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profiles

// EVPerMW is the conversion constant from MW/m^3 source densities to
// eV/(m^3*s), i.e. (eV per joule) * 1e6. Used exclusively by the FVM
// coefficient builder (package fvm) when folding a SourceModel's heat
// source densities into the internal eV-based energy equations. Display
// units and any other unit conversion are an external collaborator's
// concern (spec.md section 1 scope).
const EVPerMW = 6.242e24

// Units documents, in one place, the fixed internal unit system of the
// core: temperatures in eV, density in m^-3, poloidal flux in Wb, radius in
// normalized rho (dimensionless) with physical lengths in m, and time in
// seconds. It carries no behavior; it exists purely so other packages can
// refer to profiles.Units in doc comments instead of restating the table.
type Units struct{}
