// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/sirupsen/logrus"

	"github.com/cpmech/tokatransport/config"
	"github.com/cpmech/tokatransport/model"
	"github.com/cpmech/tokatransport/profiles"
	"github.com/cpmech/tokatransport/sim"
)

// inputFile is the on-disk shape main.go reads: Config plus the four
// initial profiles, the hierarchical-override resolution spec.md section 6
// leaves to an external collaborator -- here, the simplest one: one JSON
// file read whole.
type inputFile struct {
	Config  config.Config         `json:"config"`
	Initial profiles.CoreProfiles `json:"initial"`
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
		}
	}()
	defer utl.DoProf(false)()

	io.PfWhite("\ntokatransport -- tokamak transport simulation core\n\n")
	io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	flag.Parse()
	if len(flag.Args()) < 1 {
		chk.Panic("Please, provide a filename. Ex.: discharge.json")
	}
	fnamepath := flag.Arg(0)
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".json"
	}

	buf, err := io.ReadFile(fnamepath)
	if err != nil {
		chk.Panic("cannot read input file %q: %v", fnamepath, err)
	}
	var in inputFile
	if err := json.Unmarshal(buf, &in); err != nil {
		chk.Panic("cannot parse input file %q: %v", fnamepath, err)
	}

	s, initial, err := sim.New(in.Config, in.Initial, model.ConstantTransport{}, model.ZeroSource{}, model.NoPedestal{})
	if err != nil {
		chk.Panic("simulation setup failed: %v", err)
	}

	res := s.Run(context.Background(), initial, func(snap sim.Snapshot) bool {
		logrus.WithFields(logrus.Fields{
			"step": snap.StepIndex, "t": snap.Time, "dt": snap.Dt,
			"iterations": snap.Iterations, "sawtooth": snap.SawtoothFired,
		}).Info("step committed")
		return false
	})

	switch res.Status {
	case sim.StatusCompleted:
		io.Pfgreen("\nrun completed: %d steps, t=%v\n", res.StepCount, res.Time)
	case sim.StatusFailed:
		chk.Panic("run failed at t=%v: %v", res.Time, res.Err)
	case sim.StatusCancelled:
		io.Pfyel("\nrun cancelled at t=%v\n", res.Time)
	}
}
