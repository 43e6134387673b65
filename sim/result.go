// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import "github.com/cpmech/tokatransport/profiles"

// Snapshot is the per-committed-step output the core emits (spec.md
// section 6): {t, dt, iterations, residual_norm, converged, profiles}. A
// sampling policy upstream of this package decides which snapshots reach
// the serializer; the core itself hands every committed snapshot to the
// Callback.
type Snapshot struct {
	StepIndex    int
	Time         float64
	Dt           float64
	Iterations   int
	ResidualNorm float64
	Converged    bool
	Profiles     profiles.CoreProfiles
	SawtoothFired bool
}

// Callback receives every committed snapshot. Returning stop=true asks the
// orchestrator to end the run early at the next suspension point -- the
// mechanism spec.md section 5 describes for externally supplied timeouts
// ("not imposed by the core; supplied externally via the progress callback
// returning a stop signal").
type Callback func(Snapshot) (stop bool)

// Result is what Run returns: the terminal Status, the final committed
// profiles, every snapshot emitted (for callers that did not consume them
// via Callback), the simulation-time accumulator, and -- on StatusFailed or
// StatusCancelled -- the typed error that ended the run (a
// *simerr.Cancelled for cancellation).
type Result struct {
	Status    Status
	Snapshots []Snapshot
	Final     profiles.CoreProfiles
	Time      float64
	StepCount int
	Err       error
}
