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

// Package actions implements the manifest-level operations (install,
// uninstall, update) that sit on top of the resolver core. It mirrors
// the orchestration stencil's internal/cmd/stencil.Command performs
// around its own module resolution: load state, mutate it, attempt a
// full re-resolve, and restore the prior state on any error rather
// than leaving a half-applied lockfile on disk.
package actions

import (
	"context"
	"fmt"

	"github.com/ficsit-tools/modctl/internal/graph"
	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/internal/resolver"
	"github.com/ficsit-tools/modctl/internal/semverx"
	"github.com/ficsit-tools/modctl/pkg/catalog"
	"github.com/ficsit-tools/modctl/pkg/lockfile"
	"github.com/ficsit-tools/modctl/pkg/manifest"
)

// Command bundles the collaborators every manifest operation needs,
// the same grouping stencil's Command struct uses for its manifest,
// lockfile, and logger fields.
type Command struct {
	Manifest *manifest.Manifest
	Resolver *resolver.Resolver
	Log      logging.Logger
}

// New constructs a Command. log may be nil.
func New(m *manifest.Manifest, r *resolver.Resolver, log logging.Logger) *Command {
	if log == nil {
		log = logging.Noop()
	}
	return &Command{Manifest: m, Resolver: r, Log: log}
}

// Result is what every manifest operation returns: the new lockfile
// to persist, and the diff against the lockfile that was current
// before the operation began.
type Result struct {
	Lockfile lockfile.Lockfile
	Diff     lockfile.DiffResult
}

// buildGraph reconstructs a graph.Graph from current, re-inserts the
// pinned game node, and re-derives InManifest flags from c.Manifest.
func (c *Command) buildGraph(current lockfile.Lockfile) (*graph.Graph, error) {
	g := graph.LoadFromLockfile(current)

	gameVersion, ok := semverx.Coerce(c.Manifest.GameVersion)
	if !ok {
		return nil, fmt.Errorf("manifest declares an invalid game version %q", c.Manifest.GameVersion)
	}
	g.Add(&graph.Node{ID: catalog.GameID, Version: gameVersion, InManifest: true})

	for _, n := range g.All() {
		n.InManifest = n.ID == catalog.GameID
	}
	for _, e := range c.Manifest.Entries {
		n, ok := g.Get(e.ID)
		if ok {
			n.InManifest = true
		}
	}

	return g, nil
}

// resolveFrom runs a full re-resolve of g and, on success, returns the
// resulting lockfile. On any error the caller's current lockfile is
// left untouched: the manifest mutation that produced g is never
// persisted.
func (c *Command) resolveFrom(ctx context.Context, g *graph.Graph, current lockfile.Lockfile) (Result, error) {
	if err := c.Resolver.ValidateAll(ctx, g); err != nil {
		return Result{}, err
	}

	g.Cleanup()

	if err := g.Diagnose(); err != nil {
		return Result{}, fmt.Errorf("resolved graph failed invariant checks: %w", err)
	}

	newLock := g.ToLockfile()
	return Result{Lockfile: newLock, Diff: lockfile.Diff(current, newLock)}, nil
}

// Install adds id (with constraint) to the manifest and re-resolves.
// constraint may be empty, meaning "the newest version satisfying
// everything else".
func (c *Command) Install(ctx context.Context, current lockfile.Lockfile, id, constraint string) (Result, error) {
	if id == catalog.GameID || id == catalog.LoaderID {
		return Result{}, &resolveerr.InvalidLockfileOperationError{
			Message: fmt.Sprintf("%s is managed automatically and cannot be installed directly", id),
		}
	}

	prior, hadPrior := c.Manifest.Find(id)
	var priorConstraint string
	if hadPrior {
		priorConstraint = prior.Constraint
	}
	c.Manifest.Upsert(id, constraint)

	var result Result
	g, err := c.buildGraph(current)
	if err == nil {
		if constraint == "" {
			constraint = ">=0.0.0"
		}
		result, err = c.installNode(ctx, g, current, id, constraint)
	}
	if err != nil {
		if hadPrior {
			c.Manifest.Upsert(id, priorConstraint)
		} else {
			c.Manifest.Remove(id)
		}
	}
	return result, err
}

// installNode resolves id for the first time by routing it through
// the resolver as though some synthetic root depended on it, then
// runs the full re-resolve.
func (c *Command) installNode(
	ctx context.Context, g *graph.Graph, current lockfile.Lockfile, id, constraint string,
) (Result, error) {
	game, _ := g.Get(catalog.GameID)
	synthetic := &graph.Node{ID: catalog.GameID, Version: game.Version, Dependencies: map[string]string{id: constraint}}
	if err := c.Resolver.Validate(ctx, g, synthetic); err != nil {
		return Result{}, err
	}
	if n, ok := g.Get(id); ok {
		n.InManifest = true
	}
	return c.resolveFrom(ctx, g, current)
}

// Uninstall removes id from the manifest and re-resolves, letting
// Cleanup drop anything that was only transitively required by it.
func (c *Command) Uninstall(ctx context.Context, current lockfile.Lockfile, id string) (Result, error) {
	if id == catalog.GameID || id == catalog.LoaderID {
		return Result{}, &resolveerr.InvalidLockfileOperationError{
			Message: fmt.Sprintf("%s is managed automatically and cannot be uninstalled directly", id),
		}
	}

	entry, ok := c.Manifest.Find(id)
	if !ok {
		return Result{}, &resolveerr.InvalidLockfileOperationError{
			Message: fmt.Sprintf("%s is not present in the manifest", id),
		}
	}
	c.Manifest.Remove(id)

	g, err := c.buildGraph(current)
	if err != nil {
		c.Manifest.Upsert(id, entry.Constraint)
		return Result{}, err
	}
	g.Remove(id)

	result, err := c.resolveFrom(ctx, g, current)
	if err != nil {
		c.Manifest.Upsert(id, entry.Constraint)
	}
	return result, err
}

// Update re-resolves every manifest entry against the newest catalog
// versions, without changing any manifest constraint. Passing an
// empty ids slice updates everything currently in the manifest.
func (c *Command) Update(ctx context.Context, current lockfile.Lockfile, ids []string) (Result, error) {
	g, err := c.buildGraph(current)
	if err != nil {
		return Result{}, err
	}

	targets := ids
	if len(targets) == 0 {
		for _, e := range c.Manifest.Entries {
			targets = append(targets, e.ID)
		}
	}
	for _, id := range targets {
		g.Remove(id)
		e, ok := c.Manifest.Find(id)
		if !ok {
			continue
		}
		constraint := e.Constraint
		if constraint == "" {
			constraint = ">=0.0.0"
		}
		synthetic := &graph.Node{ID: catalog.GameID, Version: c.Manifest.GameVersion, Dependencies: map[string]string{id: constraint}}
		if err := c.Resolver.Validate(ctx, g, synthetic); err != nil {
			return Result{}, err
		}
		if n, ok := g.Get(id); ok {
			n.InManifest = true
		}
	}

	return c.resolveFrom(ctx, g, current)
}
