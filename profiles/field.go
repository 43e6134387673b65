// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profiles defines the evolved-field container (CoreProfiles),
// face boundary constraints, and the derived data products (transport
// coefficients, source terms) that flow between the FVM coefficient
// builder, the solvers, and the orchestrator.
package profiles

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// NFloor is the physical plasma density floor (m^-3), both as a physical
// statement (vacuum regions do not truly reach zero density) and as a
// denominator-safety measure. The nE values themselves are not clamped: the
// heat equations' transient coefficient (a copy of nE) is clamped at or
// above it, and the invariant checks reject any nE value below it.
const NFloor = 1e18

// ConstraintKind tags which kind of face constraint a Constraint value
// carries.
type ConstraintKind int

const (
	// Dirichlet fixes the field value at the face.
	Dirichlet ConstraintKind = iota
	// Neumann fixes the field gradient (flux) at the face.
	Neumann
	// Robin combines value and gradient: a*f + b*df/drho = c.
	Robin
)

// Constraint is a tagged boundary condition applied at one face of a Field.
type Constraint struct {
	Kind    ConstraintKind
	Value   float32 // Dirichlet: the fixed value
	Grad    float32 // Neumann: the fixed gradient
	A, B, C float32 // Robin: a*f + b*df/drho = c
}

// DirichletBC returns a Dirichlet constraint fixed at value.
func DirichletBC(value float32) Constraint { return Constraint{Kind: Dirichlet, Value: value} }

// NeumannBC returns a Neumann constraint fixed at gradient grad.
func NeumannBC(grad float32) Constraint { return Constraint{Kind: Neumann, Grad: grad} }

// RobinBC returns a Robin constraint a*f + b*df/drho = c.
func RobinBC(a, b, c float32) Constraint { return Constraint{Kind: Robin, A: a, B: b, C: c} }

// Field is one evolved scalar quantity: N cell-centered values plus the
// boundary constraints at the left (axis, rho=0) and right (edge, rho=1)
// faces.
type Field struct {
	Values []float32 // [N] cell-centered values
	Left   Constraint
	Right  Constraint
}

// NewField returns a Field of n cells initialized to value, with the given
// boundary constraints.
func NewField(n int, value float32, left, right Constraint) Field {
	v := make([]float32, n)
	for i := range v {
		v[i] = value
	}
	return Field{Values: v, Left: left, Right: right}
}

// Clone returns an independent copy of f.
func (f Field) Clone() Field {
	v := make([]float32, len(f.Values))
	copy(v, f.Values)
	return Field{Values: v, Left: f.Left, Right: f.Right}
}

// CheckFinite returns a chk.Err error if any cell of f is NaN or Inf,
// reporting the offending cell and its neighbors for diagnosis; it does not
// panic.
func (f Field) CheckFinite(name string) error {
	for i, v := range f.Values {
		if isNaN32(v) || isInf32(v) {
			lo, hi := "-", "-"
			if i > 0 {
				lo = fmt.Sprintf("%v", f.Values[i-1])
			}
			if i+1 < len(f.Values) {
				hi = fmt.Sprintf("%v", f.Values[i+1])
			}
			return chk.Err("field %q: non-finite value %v at cell %d (neighbors: left=%s right=%s)", name, v, i, lo, hi)
		}
	}
	return nil
}

func isNaN32(v float32) bool { return v != v }
func isInf32(v float32) bool { return v > 3.4e38 || v < -3.4e38 }
