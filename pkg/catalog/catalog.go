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

// Package catalog defines the interface the resolver uses to discover
// mod versions and fetch their dependency metadata. Implementations
// live outside this package (internal/catalogclient for the real
// HTTP-backed one, internal/resolvertest for the in-memory fake used
// by tests); this core never constructs one itself.
package catalog

import "context"

// LoaderID and GameID are the two reserved item identifiers. LoaderID
// is the mod loader, whose versions live in the Catalog but whose
// dependency set is synthesized rather than fetched. GameID is the
// game itself; it is only ever inserted by the caller as a pinned
// node and never resolved.
const (
	LoaderID = "SML"
	GameID   = "SatisfactoryGame"
)

// LoaderInfo describes a single version of the mod loader.
type LoaderInfo struct {
	// Version is the loader's own semver-valid version.
	Version string

	// GameVersion is the minimum game version this loader version
	// requires. It may arrive as a bare integer from the catalog, in
	// which case callers should pass it through semverx.Coerce before
	// treating it as a constraint.
	GameVersion string
}

// ModMeta is the dependency metadata for a single (id, version) pair
// of a mod.
type ModMeta struct {
	// ID must equal the id that was requested.
	ID string

	// Version is the resolved version these dependencies apply to.
	Version string

	// Dependencies maps a dependency's item id to the exact constraint
	// string the mod declares for it. A missing/nil map is treated as
	// the empty map.
	Dependencies map[string]string

	// LoaderVersion is the minimum loader version this mod requires, if
	// declared. Empty if the mod does not depend on the loader
	// directly.
	LoaderVersion string
}

// Catalog enumerates available versions of an item matching a set of
// constraints, and fetches the dependency metadata of a single (item,
// version) pair. Catalog results are authoritative but potentially
// stale (see spec §7): the resolver never double-checks them, and a
// caller that needs freshness is expected to bypass any memoization
// the implementation performs.
type Catalog interface {
	// ListMatchingVersions returns every version of id that satisfies
	// every constraint in constraints, in no particular order (the
	// resolver sorts). It returns an empty slice, not an error, when id
	// is known but no version matches. It returns a
	// *resolveerr.ModNotFoundError when id has no published versions at
	// all.
	ListMatchingVersions(ctx context.Context, id string, constraints []string) ([]string, error)

	// GetModMetadata returns the dependency metadata for id at version.
	GetModMetadata(ctx context.Context, id, version string) (ModMeta, error)

	// ListLoaderVersions returns every published loader version.
	ListLoaderVersions(ctx context.Context) ([]LoaderInfo, error)

	// GetLoaderInfo returns the LoaderInfo for version, or nil if no
	// such loader version exists.
	GetLoaderInfo(ctx context.Context, version string) (*LoaderInfo, error)
}
