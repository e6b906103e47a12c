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

// Package graph implements the in-memory resolution graph: the
// multigraph of resolved items the resolver mutates while it works,
// and the invariant checks that keep it sane (spec.md §4.4). It
// replaces the linear []*Module scan stencil's module resolution uses
// with an id-keyed map, since lookups by id happen on every edge the
// resolver walks.
package graph

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/ficsit-tools/modctl/internal/semverx"
	"github.com/ficsit-tools/modctl/internal/slicesext"
	"github.com/ficsit-tools/modctl/pkg/catalog"
	"github.com/ficsit-tools/modctl/pkg/lockfile"
)

// Node is a single resolved item in the graph: an installed version
// plus the dependency constraints that version declared when it was
// fetched from the catalog.
type Node struct {
	// ID is the item's identifier. catalog.LoaderID ("SML") and
	// catalog.GameID ("SatisfactoryGame") are reserved.
	ID string

	// Version is the concrete installed version.
	Version string

	// Dependencies maps a required item id to the semver constraint
	// this node's version declares against it.
	Dependencies map[string]string

	// InManifest marks a node the user explicitly requested, rather
	// than one pulled in transitively. Manifest nodes are "sticky":
	// the resolver must not silently change or drop them (spec.md
	// §4.4's pinning invariant).
	InManifest bool
}

// Graph is the in-memory resolution graph. The zero value is not
// usable; construct one with New or LoadFromLockfile.
type Graph struct {
	nodes map[string]*Node
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{nodes: map[string]*Node{}}
}

// LoadFromLockfile reconstructs a Graph from a previously saved
// lockfile. None of the restored nodes are marked InManifest; callers
// are expected to re-derive that flag from the current manifest
// immediately afterward (spec.md §3).
func LoadFromLockfile(l lockfile.Lockfile) *Graph {
	g := New()
	for id, entry := range l {
		deps := make(map[string]string, len(entry.Dependencies))
		for depID, constraint := range entry.Dependencies {
			deps[depID] = constraint
		}
		g.nodes[id] = &Node{ID: id, Version: entry.Version, Dependencies: deps}
	}
	return g
}

// ToLockfile serializes the graph's current state into a lockfile.
func (g *Graph) ToLockfile() lockfile.Lockfile {
	l := make(lockfile.Lockfile, len(g.nodes))
	for id, n := range g.nodes {
		var deps map[string]string
		if len(n.Dependencies) > 0 {
			deps = make(map[string]string, len(n.Dependencies))
			for depID, constraint := range n.Dependencies {
				deps[depID] = constraint
			}
		}
		l[id] = lockfile.Entry{Version: n.Version, Dependencies: deps}
	}
	return l
}

// Add inserts n into the graph, overwriting any existing node with
// the same id. It reports whether a node with that id already
// existed.
func (g *Graph) Add(n *Node) bool {
	_, existed := g.nodes[n.ID]
	g.nodes[n.ID] = n
	return existed
}

// Remove deletes the node for id, if present.
func (g *Graph) Remove(id string) {
	delete(g.nodes, id)
}

// Get returns the node for id.
func (g *Graph) Get(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes currently in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// All returns every node in the graph, sorted by id for deterministic
// iteration.
func (g *Graph) All() []*Node {
	ids := slicesext.SortedKeys(g.nodes)
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// DependantsOf returns every node that declares a dependency on id,
// sorted by id.
func (g *Graph) DependantsOf(id string) []*Node {
	var out []*Node
	for _, n := range g.All() {
		if _, ok := n.Dependencies[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Roots returns every manifest-pinned node: SatisfactoryGame and any
// node the user explicitly requested. SML is not a root in its own
// right: it is only ever present because some root transitively
// requires it, so it can become dangling and be pruned like any other
// transitive dependency once nothing needs it anymore.
func (g *Graph) Roots() []*Node {
	var out []*Node
	for _, n := range g.All() {
		if n.ID == catalog.GameID || n.InManifest {
			out = append(out, n)
		}
	}
	return out
}

// IsDangling reports whether id is present in the graph but has no
// dependants and is not itself a root.
func (g *Graph) IsDangling(id string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if n.ID == catalog.GameID || n.InManifest {
		return false
	}
	return len(g.DependantsOf(id)) == 0
}

// Cleanup repeatedly removes dangling nodes until a fixed point is
// reached (removing one dangling node can make its own dependencies
// dangling in turn) and returns the ids removed, in removal order.
func (g *Graph) Cleanup() []string {
	var removed []string
	for {
		var dangling []string
		for _, n := range g.All() {
			if g.IsDangling(n.ID) {
				dangling = append(dangling, n.ID)
			}
		}
		if len(dangling) == 0 {
			return removed
		}
		for _, id := range dangling {
			g.Remove(id)
		}
		removed = append(removed, dangling...)
	}
}

// Diagnose sweeps the graph for invariant violations without mutating
// it, collecting every violation found rather than stopping at the
// first, mirroring the non-fail-fast diagnostics go-multierror gives
// stencil's own validation passes. It is the engine behind the
// "doctor" operation (spec.md's supplemented features).
func (g *Graph) Diagnose() error {
	var result *multierror.Error

	if _, ok := g.nodes[catalog.GameID]; !ok {
		result = multierror.Append(result, fmt.Errorf("missing required node %q", catalog.GameID))
	}

	for _, n := range g.All() {
		if n.ID == catalog.GameID && len(n.Dependencies) != 0 {
			result = multierror.Append(result, fmt.Errorf("%q must not declare dependencies", catalog.GameID))
		}

		depIDs := make([]string, 0, len(n.Dependencies))
		for depID := range n.Dependencies {
			depIDs = append(depIDs, depID)
		}
		sort.Strings(depIDs)

		for _, depID := range depIDs {
			constraint := n.Dependencies[depID]
			dep, ok := g.nodes[depID]
			if !ok {
				result = multierror.Append(result, fmt.Errorf(
					"%s depends on %s (%s), which is not present in the graph", n.ID, depID, constraint))
				continue
			}

			ok2, err := semverx.Satisfies(dep.Version, constraint)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf(
					"%s declares an unparseable constraint on %s: %w", n.ID, depID, err))
				continue
			}
			if !ok2 {
				result = multierror.Append(result, fmt.Errorf(
					"%s requires %s to satisfy %q, but %s is installed", n.ID, depID, constraint, dep.Version))
			}
		}

		if g.IsDangling(n.ID) {
			result = multierror.Append(result, fmt.Errorf("%s is installed but nothing depends on it", n.ID))
		}
	}

	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
