// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import "github.com/cpmech/tokatransport/profiles"

// HeatSourceToInternalUnits converts a cell-centered heat source density
// from MW/m^3 (the unit SourceModel implementations report in) to
// eV/(m^3*s), the internal unit the heat equations are expressed in, per
// spec.md section 4.1.
func HeatSourceToInternalUnits(mwPerM3 []float32) []float32 {
	out := make([]float32, len(mwPerM3))
	for i, v := range mwPerM3 {
		out[i] = v * profiles.EVPerMW
	}
	return out
}

// ClampAlpha returns max(alpha, floor) cell-by-cell. The heat equations use
// Ne as the transient coefficient alpha; every division by alpha inside the
// solver must use this clamp to avoid dividing by a near-zero density, per
// spec.md section 4.1.
func ClampAlpha(ne []float32, floor float32) []float32 {
	out := make([]float32, len(ne))
	for i, v := range ne {
		if v < floor {
			out[i] = floor
		} else {
			out[i] = v
		}
	}
	return out
}
