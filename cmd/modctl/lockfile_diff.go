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

// NewLockfileDiffCommand returns a new urfave/cli.Command for the
// lockfile diff command: it re-resolves without persisting anything,
// and prints what would change.
func NewLockfileDiffCommand(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:        "diff",
		Description: "shows what a fresh resolve would install or uninstall, without writing anything",
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := loadSession(c, log)
			if err != nil {
				return err
			}

			result, err := s.Command.Update(ctx, s.Lockfile, nil)
			if err != nil {
				return fmt.Errorf("failed to resolve: %w", err)
			}

			summary, err := diffnotify.Summarize(result.Diff)
			if err != nil {
				return err
			}
			fmt.Print(summary)
			return nil
		},
	}
}
