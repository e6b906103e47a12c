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

	"github.com/urfave/cli/v3"

	"github.com/ficsit-tools/modctl/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewModctl returns the root urfave/cli.Command for the modctl CLI.
func NewModctl(log logging.Logger) *cli.Command {
	return &cli.Command{
		Name:    "modctl",
		Usage:   "resolve and lock mod dependencies for a dedicated server or save",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug logging for resolution and catalog traffic",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "path to the manifest file (default: modctl.yaml in the current directory)",
			},
			&cli.StringFlag{
				Name:  "lockfile",
				Value: "modctl.lock.json",
				Usage: "path to the lockfile",
			},
			&cli.StringFlag{
				Name:  "catalog-url",
				Value: "https://api.ficsit.app",
				Usage: "base URL of the mod catalog service",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				log.SetLevel(logging.DebugLevel)
				log.Debug("debug logging enabled")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			NewInstallCommand(log),
			NewUninstallCommand(log),
			NewUpdateCommand(log),
			NewLockfileCommand(log),
			NewDoctorCommand(log),
		},
	}
}
