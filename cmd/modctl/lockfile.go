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
	"github.com/urfave/cli/v3"

	"github.com/ficsit-tools/modctl/internal/logging"
)

// NewLockfileCommand returns a new urfave/cli.Command for the
// lockfile command set.
func NewLockfileCommand(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:  "lockfile",
		Usage: "inspect or repair the current lockfile",
		Commands: []*cli.Command{
			NewLockfilePruneCommand(log),
			NewLockfileDiffCommand(log),
		},
	}
}
