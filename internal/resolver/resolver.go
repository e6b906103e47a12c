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

// Package resolver implements the backtracking dependency resolution
// algorithm (spec.md §4.5), grounded on the same shape as stencil's
// internal/modules.FetchModules/resolveModule: walk a node's declared
// dependencies in a deterministic order, reuse an already-resolved
// node when its version already satisfies the new constraint, and
// fall back to trying candidate versions newest-first, backtracking
// locally on failure. Unlike stencil's resolver, a conflict against a
// manifest-pinned node is never silently absorbed: it propagates
// immediately as a DependencyManifestMismatchError instead of being
// folded into the generic unsolvable-dependency path.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ficsit-tools/modctl/internal/graph"
	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/internal/semverx"
	"github.com/ficsit-tools/modctl/internal/slicesext"
	"github.com/ficsit-tools/modctl/pkg/catalog"
	"github.com/ficsit-tools/modctl/pkg/modcache"
)

// Resolver resolves dependency constraints against a catalog and mod
// cache, mutating a graph.Graph in place.
type Resolver struct {
	Catalog  catalog.Catalog
	ModCache modcache.ModCache
	Log      logging.Logger
}

// New constructs a Resolver. log may be nil, in which case a no-op
// logger is used.
func New(c catalog.Catalog, mc modcache.ModCache, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Noop()
	}
	return &Resolver{Catalog: c, ModCache: mc, Log: log}
}

// GetItemData is the §4.3 adapter between the catalog/mod cache and
// the graph's Node shape. SML's dependency on the game is synthesized
// rather than fetched, since the loader's archive does not itself
// declare it; SatisfactoryGame can never be resolved, since it is
// only ever inserted directly as a pinned node.
func (r *Resolver) GetItemData(ctx context.Context, id, version string) (*graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, &resolveerr.CancelledError{}
	}

	switch id {
	case catalog.GameID:
		return nil, &resolveerr.InvalidLockfileOperationError{
			Message: fmt.Sprintf("%s is a pinned node and cannot be fetched from a catalog", catalog.GameID),
		}

	case catalog.LoaderID:
		info, err := r.Catalog.GetLoaderInfo(ctx, version)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, &resolveerr.ModNotFoundError{ID: catalog.LoaderID, Version: version}
		}
		gameVersion, ok := semverx.Coerce(info.GameVersion)
		if !ok {
			return nil, fmt.Errorf("loader %s declared unparseable game version %q", version, info.GameVersion)
		}
		return &graph.Node{
			ID:      catalog.LoaderID,
			Version: version,
			Dependencies: map[string]string{
				catalog.GameID: ">=" + gameVersion,
			},
		}, nil

	default:
		meta, err := r.ModCache.GetMetadata(ctx, id, version)
		if err != nil {
			return nil, err
		}

		deps := make(map[string]string, len(meta.Dependencies)+1)
		for depID, constraint := range meta.Dependencies {
			deps[depID] = constraint
		}

		if meta.LoaderVersion != "" {
			coerced, ok := semverx.Coerce(meta.LoaderVersion)
			if !ok {
				return nil, fmt.Errorf("%s@%s declared unparseable loader version %q", id, version, meta.LoaderVersion)
			}
			constraint := ">=" + coerced
			if existing, ok := deps[catalog.LoaderID]; ok {
				deps[catalog.LoaderID] = existing + "," + constraint
			} else {
				deps[catalog.LoaderID] = constraint
			}
		}

		return &graph.Node{ID: id, Version: version, Dependencies: deps}, nil
	}
}

// Validate walks n's declared dependencies in deterministic (sorted)
// order, resolving each one against g, and recurses into any newly
// added node. It assumes n is already present in g.
func (r *Resolver) Validate(ctx context.Context, g *graph.Graph, n *graph.Node) error {
	if err := ctx.Err(); err != nil {
		return &resolveerr.CancelledError{}
	}

	for _, depID := range slicesext.SortedKeys(n.Dependencies) {
		constraint := n.Dependencies[depID]
		if err := r.satisfy(ctx, g, n, depID, constraint, 0, nil); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll resolves every manifest-pinned root except the game
// (see graph.Roots) in deterministic order. It is the entry point
// used by the install/uninstall/update orchestration layer.
func (r *Resolver) ValidateAll(ctx context.Context, g *graph.Graph) error {
	for _, n := range g.Roots() {
		if n.ID == catalog.GameID {
			continue
		}
		if err := r.Validate(ctx, g, n); err != nil {
			return err
		}
	}
	return nil
}

// satisfy ensures depID, as constrained by depender's declared
// constraint, is present in g and compatible with every other
// dependant. depth and history exist purely to render a readable
// UnsolvableDependencyError if resolution ultimately fails.
func (r *Resolver) satisfy(
	ctx context.Context, g *graph.Graph, depender *graph.Node, depID, constraint string,
	depth int, history []resolveerr.ResolutionAttempt,
) error {
	if err := ctx.Err(); err != nil {
		return &resolveerr.CancelledError{}
	}

	history = append(history, resolveerr.ResolutionAttempt{
		Depth:      depth,
		Wanter:     fmt.Sprintf("%s@%s", depender.ID, depender.Version),
		Constraint: constraint,
	})

	if depID == catalog.GameID {
		existing, ok := g.Get(catalog.GameID)
		if !ok {
			return &resolveerr.InvalidLockfileOperationError{Message: "SatisfactoryGame node missing from graph"}
		}
		ok2, err := semverx.Satisfies(existing.Version, constraint)
		if err != nil {
			return err
		}
		if !ok2 {
			return &resolveerr.DependencyManifestMismatchError{
				DepID: catalog.GameID, DepVersion: existing.Version,
				Depender: depender.ID, DependerVersion: depender.Version, Constraint: constraint,
			}
		}
		return nil
	}

	existing, ok := g.Get(depID)
	if !ok {
		return r.resolveNew(ctx, g, depID, []string{constraint}, depender.ID, depth, history)
	}

	ok2, err := semverx.Satisfies(existing.Version, constraint)
	if err != nil {
		return err
	}
	if ok2 {
		return nil
	}

	if existing.InManifest {
		return &resolveerr.DependencyManifestMismatchError{
			DepID: depID, DepVersion: existing.Version,
			Depender: depender.ID, DependerVersion: depender.Version, Constraint: constraint,
		}
	}

	return r.reresolve(ctx, g, depID, depender.ID, depth, history)
}

// reresolve is triggered when an already-installed, non-pinned node
// no longer satisfies a new constraint: it gathers every current
// dependant's constraint and tries to find a single version
// satisfying all of them.
func (r *Resolver) reresolve(
	ctx context.Context, g *graph.Graph, depID, depender string, depth int, history []resolveerr.ResolutionAttempt,
) error {
	var constraints []string
	for _, d := range g.DependantsOf(depID) {
		if c, ok := d.Dependencies[depID]; ok {
			constraints = append(constraints, c)
		}
	}
	return r.resolveNew(ctx, g, depID, constraints, depender, depth, history)
}

// resolveNew lists every catalog version of depID satisfying
// constraints, and tries them newest-first, backtracking locally on
// failure. A DependencyManifestMismatchError encountered while
// validating a candidate is propagated immediately rather than
// treated as just another failed candidate.
func (r *Resolver) resolveNew(
	ctx context.Context, g *graph.Graph, depID string, constraints []string, depender string,
	depth int, history []resolveerr.ResolutionAttempt,
) error {
	candidates, err := r.Catalog.ListMatchingVersions(ctx, depID, constraints)
	if err != nil {
		return err
	}
	semverx.SortAscending(candidates)

	prior, hadPrior := g.Get(depID)

	for i := len(candidates) - 1; i >= 0; i-- {
		version := candidates[i]

		node, err := r.GetItemData(ctx, depID, version)
		if err != nil {
			var cancelled *resolveerr.CancelledError
			if errors.As(err, &cancelled) {
				if hadPrior {
					g.Add(prior)
				} else {
					g.Remove(depID)
				}
				return err
			}
			r.Log.Debugf("skipping %s@%s: %v", depID, version, err)
			continue
		}

		g.Add(node)
		verr := r.Validate(ctx, g, node)
		if verr == nil {
			return nil
		}

		var mismatch *resolveerr.DependencyManifestMismatchError
		if errors.As(verr, &mismatch) {
			if hadPrior {
				g.Add(prior)
			} else {
				g.Remove(depID)
			}
			return verr
		}

		var cancelled *resolveerr.CancelledError
		if errors.As(verr, &cancelled) {
			if hadPrior {
				g.Add(prior)
			} else {
				g.Remove(depID)
			}
			return verr
		}

		r.Log.Debugf("backtracking: %s@%s did not satisfy its own dependencies: %v", depID, version, verr)
	}

	if hadPrior {
		g.Add(prior)
	} else {
		g.Remove(depID)
	}

	return &resolveerr.UnsolvableDependencyError{DepID: depID, Depender: depender, History: history}
}
