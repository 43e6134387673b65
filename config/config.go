// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config declares the typed, validated configuration struct the
// core consumes, following the teacher repository's inp.Data/inp.SolverData
// pattern (inp/sim.go): a plain struct with json tags, read by an external
// collaborator and validated once before a run starts. Hierarchical
// override resolution (CLI > environment > file > defaults) is that
// external collaborator's job, per spec.md section 6 -- this package only
// defines the shape and the validation the core itself requires before
// Initialized -> Stepping can proceed.
package config

import (
	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
	"github.com/cpmech/tokatransport/simerr"
	"github.com/cpmech/tokatransport/solver"
)

// SolverKind selects which solver.Solve variant the orchestrator uses.
type SolverKind string

const (
	SolverLinear SolverKind = "linear"
	SolverNewton SolverKind = "newton_raphson"
)

// MeshConfig mirrors the mesh construction parameters of spec.md section 6.
type MeshConfig struct {
	N        int               `json:"n"`
	Geometry mesh.GeometryType `json:"geometry"`
	Rmajor   float64           `json:"rmajor"`
	Rminor   float64           `json:"rminor"`
	Btor     float64           `json:"btor"`
}

// AdaptiveDtConfig mirrors spec.md section 4.4's growth-cap controller
// tunables.
type AdaptiveDtConfig struct {
	DtInitial float64 `json:"dt_initial"`
	DtMin     float64 `json:"dt_min"`
	DtMax     float64 `json:"dt_max"`
	GMax      float64 `json:"g_max"`
	CFLConst  float64 `json:"cfl_const"`
}

func (a *AdaptiveDtConfig) applyDefaults() {
	if a.DtMin <= 0 {
		a.DtMin = 1e-5
	}
	if a.GMax <= 0 {
		a.GMax = 1.2
	}
	if a.CFLConst <= 0 {
		a.CFLConst = 0.5
	}
}

// SawtoothConfig mirrors spec.md section 4.7's trigger and redistribution
// parameters.
type SawtoothConfig struct {
	Enabled  bool    `json:"enabled"`
	RhoMin   float64 `json:"rho_min"`   // default 0.2
	SCrit    float64 `json:"s_crit"`    // default 0.2
	DtMinGap float64 `json:"dt_min_gap"` // minimum elapsed time since last crash, default 0.01s
	Kappa    float32 `json:"kappa"`     // flattening factor, default 1.01
	M        float64 `json:"m"`         // mixing radius multiplier, default 1.5
	SPsi     float32 `json:"s_psi"`     // psi core-gradient reduction factor, default 0.8
}

func (s *SawtoothConfig) applyDefaults() {
	if s.RhoMin <= 0 {
		s.RhoMin = 0.2
	}
	if s.SCrit <= 0 {
		s.SCrit = 0.2
	}
	if s.DtMinGap <= 0 {
		s.DtMinGap = 0.01
	}
	if s.Kappa <= 0 {
		s.Kappa = 1.01
	}
	if s.M <= 0 {
		s.M = 1.5
	}
	if s.SPsi <= 0 {
		s.SPsi = 0.8
	}
}

// EvolvedFlags selects which of the four equations are actually time
// advanced; an equation not evolved keeps its initial profile fixed for the
// whole run (used e.g. by scenario S2, which fixes Ne and only evolves Ti).
type EvolvedFlags struct {
	Ti, Te, Ne, Psi bool
}

// Config is the complete, validated configuration for one simulation run.
type Config struct {
	Mesh       MeshConfig          `json:"mesh"`
	Solver     SolverKind          `json:"solver"`
	Theta      float64             `json:"theta"`
	Tolerances solver.VariableTolerances `json:"tolerances"`
	MaxIter    int                 `json:"max_iter"`
	NRetry     int                 `json:"n_retry"`
	TStart     float64             `json:"t_start"`
	TEnd       float64             `json:"t_end"`
	AdaptiveDt AdaptiveDtConfig    `json:"adaptive_dt"`
	Evolved    EvolvedFlags        `json:"evolved"`
	Sawtooth   SawtoothConfig      `json:"sawtooth"`
	EtaCoeff   float32             `json:"eta_coeff"`
	PsiInertia float32             `json:"psi_inertia"`
}

// applyDefaults fills in spec.md's documented defaults for any zero-valued
// optional field.
func (c *Config) applyDefaults() {
	if c.Theta <= 0 {
		c.Theta = 1.0
	}
	if c.MaxIter <= 0 {
		c.MaxIter = 20
	}
	if c.NRetry <= 0 {
		c.NRetry = 5
	}
	if c.Tolerances == (solver.VariableTolerances{}) {
		c.Tolerances = solver.DefaultTolerances()
	}
	c.AdaptiveDt.applyDefaults()
	c.Sawtooth.applyDefaults()
	if c.EtaCoeff <= 0 {
		c.EtaCoeff = 1e-6
	}
	if c.PsiInertia <= 0 {
		c.PsiInertia = 1.0
	}
}

// Validate applies defaults and checks every constraint the core requires
// before a run is allowed to reach the Stepping state, per spec.md section
// 7: "ConfigurationInvalid ... fail at initialization, not at run time."
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.Mesh.N < 4 {
		return &simerr.ConfigurationInvalid{Reason: "mesh.n must be >= 4"}
	}
	if c.Mesh.Rmajor <= 0 || c.Mesh.Rminor <= 0 {
		return &simerr.ConfigurationInvalid{Reason: "mesh.rmajor and mesh.rminor must be positive"}
	}
	if c.Mesh.Btor == 0 {
		return &simerr.ConfigurationInvalid{Reason: "mesh.btor must be nonzero"}
	}
	if c.Solver != SolverLinear && c.Solver != SolverNewton {
		return &simerr.ConfigurationInvalid{Reason: "solver must be \"linear\" or \"newton_raphson\""}
	}
	if c.Theta < 0 || c.Theta > 1 {
		return &simerr.ConfigurationInvalid{Reason: "theta must be in [0, 1]"}
	}
	if c.TEnd <= c.TStart {
		return &simerr.ConfigurationInvalid{Reason: "t_end must be greater than t_start"}
	}
	if c.AdaptiveDt.DtInitial <= 0 {
		return &simerr.ConfigurationInvalid{Reason: "adaptive_dt.dt_initial must be positive"}
	}
	if c.AdaptiveDt.DtInitial < c.AdaptiveDt.DtMin {
		return &simerr.ConfigurationInvalid{Reason: "adaptive_dt.dt_initial must be >= adaptive_dt.dt_min"}
	}
	if c.NRetry < 1 {
		return &simerr.ConfigurationInvalid{Reason: "n_retry must be >= 1"}
	}
	if !c.Evolved.Ti && !c.Evolved.Te && !c.Evolved.Ne && !c.Evolved.Psi {
		return &simerr.ConfigurationInvalid{Reason: "at least one evolved-equation flag must be set"}
	}
	return nil
}

// BuildMesh constructs the mesh.Mesh this configuration describes, wrapping
// any mesh.New error as simerr.MeshDegenerate.
func (c Config) BuildMesh() (*mesh.Mesh, error) {
	m, err := mesh.New(c.Mesh.N, c.Mesh.Geometry, c.Mesh.Rmajor, c.Mesh.Rminor, c.Mesh.Btor)
	if err != nil {
		return nil, &simerr.MeshDegenerate{Reason: err.Error()}
	}
	return m, nil
}

// CheckInitialState wraps profiles.CoreProfiles.CheckInvariants, reporting
// failures as simerr.InitialStateInvalid per spec.md section 7's
// "fail at initialization, not at run time" rule for the initial condition.
func CheckInitialState(p profiles.CoreProfiles) error {
	if err := p.CheckInvariants(); err != nil {
		return &simerr.InitialStateInvalid{Reason: err.Error()}
	}
	return nil
}
