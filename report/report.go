// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report adapts the teacher repository's out.Splot/out.Plot/out.Draw
// plotting helpers (out/plotting.go) from FEM node/element time series to
// this core's radial profiles and committed-step history, using the same
// github.com/cpmech/gosl/plt wrapper. It is a downstream convenience, not
// part of the core's L0-L5 contract -- a caller of sim.Simulation.Run may
// use it to render the snapshots Run already produces, but the core itself
// never imports this package.
package report

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"

	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/sim"
)

// RadialProfile plots a single cell-centered field against the mesh's
// normalized radial coordinate, in the style of out.Plot's one-series-per-
// call convention (mdl/retention/plot.go's Plot/Gll/Save sequence).
func RadialProfile(m *mesh.Mesh, values []float32, label, dirout, fname string) error {
	y := make([]float64, len(values))
	for i, v := range values {
		y[i] = float64(v)
	}
	plt.Plot(m.Rho, y, io.Sf("'b.-', clip_on=0, label='%s'", label))
	plt.Gll("$\\rho$", io.Sf("$%s$", label), "")
	return plt.Save(dirout, fname)
}

// TimeSeries plots one scalar extracted from each snapshot (e.g. the axis
// value of Ti) against the committed time, letting a caller watch a run's
// evolution the way the teacher's out.Plot traces track a node's history
// across load steps.
func TimeSeries(snapshots []sim.Snapshot, extract func(sim.Snapshot) float64, label, dirout, fname string) error {
	x := make([]float64, len(snapshots))
	y := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		x[i] = snap.Time
		y[i] = extract(snap)
	}
	plt.Plot(x, y, io.Sf("'r-', clip_on=0, label='%s'", label))
	plt.Gll("$t$ [s]", io.Sf("$%s$", label), "")
	return plt.Save(dirout, fname)
}

// DtHistory plots the committed dt at each step, the quantity spec.md
// section 4.4's growth-cap diagnostic is about -- useful for visually
// confirming the cap binds the way a run's logs report.
func DtHistory(snapshots []sim.Snapshot, dirout, fname string) error {
	return TimeSeries(snapshots, func(s sim.Snapshot) float64 { return s.Dt }, "dt\\,[s]", dirout, fname)
}
