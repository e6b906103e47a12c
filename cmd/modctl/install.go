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

	"github.com/ficsit-tools/modctl/internal/diffnotify"
	"github.com/ficsit-tools/modctl/internal/logging"
)

// NewInstallCommand returns a new urfave/cli.Command for the install
// command.
func NewInstallCommand(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "add a mod to the manifest and resolve a new lockfile",
		UsageText: "modctl install <mod-id> [constraint]",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("usage: modctl install <mod-id> [constraint]")
			}
			id := c.Args().Get(0)
			constraint := c.Args().Get(1)

			s, err := loadSession(c, log)
			if err != nil {
				return err
			}

			result, err := s.Command.Install(ctx, s.Lockfile, id, constraint)
			if err != nil {
				return fmt.Errorf("failed to install %s: %w", id, err)
			}

			summary, err := diffnotify.Summarize(result.Diff)
			if err != nil {
				return err
			}
			fmt.Print(summary)

			return s.save(result.Lockfile)
		},
	}
}
