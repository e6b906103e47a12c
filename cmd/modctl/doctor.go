// Copyright (C) 2024 stencil contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ficsit-tools/modctl/internal/graph"
	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/pkg/catalog"
)

// NewDoctorCommand returns a new urfave/cli.Command for the doctor
// command: it loads the current lockfile and manifest and runs
// graph.Diagnose against them without mutating either, reporting
// every invariant violation it finds instead of stopping at the
// first.
func NewDoctorCommand(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:        "doctor",
		Description: "checks the current lockfile for missing dependencies, version conflicts, and dangling entries",
		Action: func(_ context.Context, c *cli.Command) error {
			s, err := loadSession(c, log)
			if err != nil {
				return err
			}

			g := graph.LoadFromLockfile(s.Lockfile)
			for _, n := range g.All() {
				n.InManifest = n.ID == catalog.GameID
			}
			for _, e := range s.Manifest.Entries {
				if n, ok := g.Get(e.ID); ok {
					n.InManifest = true
				}
			}

			if err := g.Diagnose(); err != nil {
				fmt.Println("found problems with the current lockfile:")
				fmt.Println(err)
				return cli.Exit("", 1)
			}

			fmt.Println("the lockfile is internally consistent")
			return nil
		},
	}
}
