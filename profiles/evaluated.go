// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profiles

// Evaluated32 wraps a []float32 that is guaranteed materialized: nothing
// about its construction can defer computation past the call to
// NewEvaluated. Model outputs (transport coefficients and source terms),
// which may be computed on other goroutines, are Evaluated32 values. The
// committed profiles in a snapshot are a plain CoreProfiles of []float32
// fields, not Evaluated32; the snapshot callback runs synchronously on the
// goroutine that calls Run.
//
// This replaces the actor-wrapped "evaluated array" idiom of the reference
// implementation (see spec.md section 9) with a plain ownership-plus-
// invariant discipline: the array kernel here is CPU slices, not a lazy
// dispatch graph, so "materialize" degenerates to "copy or take ownership",
// but the type still documents and enforces the boundary at compile time.
type Evaluated32 struct {
	data []float32
}

// NewEvaluated takes ownership of data and returns it wrapped as evaluated.
// Callers must not retain a separate mutable reference to data afterwards.
func NewEvaluated(data []float32) Evaluated32 {
	return Evaluated32{data: data}
}

// Data returns the underlying slice. Callers must treat it as read-only;
// the core never mutates a committed Evaluated32 in place.
func (e Evaluated32) Data() []float32 { return e.data }

// Len returns the number of elements.
func (e Evaluated32) Len() int { return len(e.data) }

// Clone returns an Evaluated32 holding an independent copy of the data.
func (e Evaluated32) Clone() Evaluated32 {
	cp := make([]float32, len(e.data))
	copy(cp, e.data)
	return Evaluated32{data: cp}
}
