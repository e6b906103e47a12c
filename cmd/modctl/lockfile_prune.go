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

// NewLockfilePruneCommand returns a new urfave/cli.Command for the
// lockfile prune command. Unlike install/uninstall/update it never
// talks to the catalog: it only removes entries that are already
// dangling, re-deriving InManifest from the manifest on disk.
func NewLockfilePruneCommand(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:        "prune",
		Description: "removes lockfile entries that nothing in the manifest requires anymore",
		Action: func(_ context.Context, c *cli.Command) error {
			s, err := loadSession(c, log)
			if err != nil {
				return err
			}

			g := graph.LoadFromLockfile(s.Lockfile)
			if _, ok := g.Get(catalog.GameID); !ok {
				fmt.Println("no lockfile entries to prune")
				return nil
			}
			for _, n := range g.All() {
				n.InManifest = n.ID == catalog.GameID
			}
			for _, e := range s.Manifest.Entries {
				if n, ok := g.Get(e.ID); ok {
					n.InManifest = true
				}
			}

			removed := g.Cleanup()
			if len(removed) == 0 {
				fmt.Println("no changes made to lockfile")
				return nil
			}

			for _, id := range removed {
				fmt.Printf("pruning dangling entry %s from lockfile\n", id)
			}

			return g.ToLockfile().SaveFile(s.LockfilePath)
		},
	}
}
