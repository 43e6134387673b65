// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "github.com/cpmech/tokatransport/profiles"

// Scales holds the per-field reference values (typical axis value) used to
// scale the Newton solver's state vector: x~ = x / ref(x). This keeps
// float32 condition numbers tractable when fields differ by 20 orders of
// magnitude (Ti ~ 1e3, Ne ~ 1e20), per spec.md section 4.3. Newton derives
// the scales afresh from the step's previous profiles on every solve; they
// are not fixed once from the initial profiles of the run.
type Scales struct {
	Ti, Te, Ne, Psi float64
}

// NewScales derives reference scales from the axis (cell 0) value of each
// field in p, falling back to 1 if the axis value is zero or negative to
// avoid a zero scale.
func NewScales(p profiles.CoreProfiles) Scales {
	ref := func(f profiles.Field) float64 {
		if len(f.Values) == 0 {
			return 1
		}
		v := float64(f.Values[0])
		if v <= 0 {
			return 1
		}
		return v
	}
	return Scales{
		Ti:  ref(p.Ti),
		Te:  ref(p.Te),
		Ne:  ref(p.Ne),
		Psi: ref(p.Psi),
	}
}

// scaleVector packs four cell arrays into one scaled state vector x~ of
// length 4N, in Ti,Te,Ne,Psi order.
func (s Scales) scaleVector(p profiles.CoreProfiles) []float64 {
	n := len(p.Ti.Values)
	out := make([]float64, 4*n)
	for i := 0; i < n; i++ {
		out[i] = float64(p.Ti.Values[i]) / s.Ti
		out[n+i] = float64(p.Te.Values[i]) / s.Te
		out[2*n+i] = float64(p.Ne.Values[i]) / s.Ne
		out[3*n+i] = float64(p.Psi.Values[i]) / s.Psi
	}
	return out
}

// unscaleVector is the inverse of scaleVector, writing the unscaled fields
// into a fresh CoreProfiles built from template's boundary constraints.
func (s Scales) unscaleVector(x []float64, template profiles.CoreProfiles) profiles.CoreProfiles {
	n := len(template.Ti.Values)
	out := template.Clone()
	for i := 0; i < n; i++ {
		out.Ti.Values[i] = float32(x[i] * s.Ti)
		out.Te.Values[i] = float32(x[n+i] * s.Te)
		out.Ne.Values[i] = float32(x[2*n+i] * s.Ne)
		out.Psi.Values[i] = float32(x[3*n+i] * s.Psi)
	}
	return out
}
