// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model declares the external collaborator interfaces the core
// consumes -- TransportModel, SourceModel, PedestalModel -- generalizing
// the teacher repository's mdl package trait interfaces (e.g.
// mdl/diffusion/model.go's Model interface) to this core's transport
// equations, and provides a handful of reference implementations used by
// the end-to-end test scenarios.
package model

import (
	"context"

	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// TransportModel computes face-centered transport coefficients from the
// current profiles. Implementations must be pure (no side effects) and
// must return arrays of length N+1, all finite, per spec.md section 6.
type TransportModel interface {
	Compute(ctx context.Context, p profiles.CoreProfiles, m *mesh.Mesh, t float64) (profiles.TransportCoefficients, error)
}

// SourceModel computes cell-centered source densities for the four evolved
// equations. Implementations must be pure, return arrays of length N, and
// follow the sign convention "positive = source into the plasma", per
// spec.md section 6.
type SourceModel interface {
	Compute(ctx context.Context, p profiles.CoreProfiles, m *mesh.Mesh, t float64) (profiles.SourceTerms, error)
}

// PedestalModel optionally modifies the boundary conditions or clamps the
// edge region given the current profiles. A nil PedestalModel means no
// pedestal model is configured and boundary conditions are used unmodified.
type PedestalModel interface {
	Apply(p profiles.CoreProfiles) profiles.CoreProfiles
}
