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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ficsit-tools/modctl/internal/actions"
	"github.com/ficsit-tools/modctl/internal/catalogclient"
	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/internal/modcache"
	"github.com/ficsit-tools/modctl/internal/resolver"
	"github.com/ficsit-tools/modctl/pkg/lockfile"
	"github.com/ficsit-tools/modctl/pkg/manifest"
)

// session bundles the state every manifest subcommand loads up front.
type session struct {
	Manifest     *manifest.Manifest
	ManifestPath string
	LockfilePath string
	Lockfile     lockfile.Lockfile
	Command      *actions.Command
}

// loadSession loads the manifest and lockfile named by c's global
// flags and wires a resolver.Resolver/actions.Command against a real
// HTTP catalog and on-disk mod cache.
func loadSession(c *cli.Command, log logging.Logger) (*session, error) {
	manifestPath := c.String("manifest")
	var m *manifest.Manifest
	var err error
	if manifestPath != "" {
		m, err = manifest.Load(manifestPath)
	} else {
		m, err = manifest.LoadDefault()
		manifestPath = "modctl.yaml"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	lockfilePath := c.String("lockfile")
	lock, err := lockfile.LoadFile(lockfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load lockfile: %w", err)
	}

	httpCatalog := catalogclient.New(c.String("catalog-url"), log)
	memoized := catalogclient.NewMemoized(httpCatalog, 5*time.Minute)

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	cache := modcache.New(filepath.Join(cacheDir, "modctl", "mods"), defaultURIResolver, log)

	r := resolver.New(memoized, cache, log)
	cmd := actions.New(m, r, log)

	return &session{
		Manifest:     m,
		ManifestPath: manifestPath,
		LockfilePath: lockfilePath,
		Lockfile:     lock,
		Command:      cmd,
	}, nil
}

// defaultURIResolver resolves a mod's archive location against the
// default catalog CDN layout. It does not consult the manifest's
// Replacements.
func defaultURIResolver(id, version string) (string, bool) {
	return fmt.Sprintf("https://cdn.ficsit.app/mods/%s/%s/download.zip", id, version), false
}

// save persists the manifest and lockfile after a successful
// operation.
func (s *session) save(l lockfile.Lockfile) error {
	if err := s.Manifest.Save(s.ManifestPath); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	if err := l.SaveFile(s.LockfilePath); err != nil {
		return fmt.Errorf("failed to save lockfile: %w", err)
	}
	return nil
}
