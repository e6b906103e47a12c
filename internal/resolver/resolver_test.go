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

package resolver_test

import (
	"context"
	"testing"

	"github.com/ficsit-tools/modctl/internal/graph"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/internal/resolver"
	"github.com/ficsit-tools/modctl/internal/resolvertest"
	"github.com/ficsit-tools/modctl/pkg/catalog"
	"gotest.tools/v3/assert"
)

// newFixture builds the standard fixture used across scenarios: a
// game pinned at 109000, three loader versions, and two mods.
//   - 6vQ6ckVYFiidDh is only ever published at 1.4.1, and requires
//     loader >=1.0.0.
//   - dummyMod1 is published at 1.0.0, 1.0.1, 1.0.2, and 1.0.3; 1.0.3
//     raises its loader requirement to >=2.0.0, while the earlier
//     three only require >=1.0.0.
func newFixture() (*resolvertest.FakeCatalog, *resolvertest.FakeModCache) {
	loaders := []catalog.LoaderInfo{
		{Version: "1.0.0", GameVersion: "109000"},
		{Version: "1.0.1", GameVersion: "109000"},
		{Version: "2.0.0", GameVersion: "109000"},
	}
	mods := []resolvertest.FakeMod{
		{ID: "6vQ6ckVYFiidDh", Version: "1.4.1", LoaderVersion: "1.0.0"},
		{ID: "dummyMod1", Version: "1.0.0", LoaderVersion: "1.0.0"},
		{ID: "dummyMod1", Version: "1.0.1", LoaderVersion: "1.0.0"},
		{ID: "dummyMod1", Version: "1.0.2", LoaderVersion: "1.0.0"},
		{ID: "dummyMod1", Version: "1.0.3", LoaderVersion: "2.0.0"},
	}
	fc := resolvertest.NewFakeCatalog(mods, loaders)
	return fc, &resolvertest.FakeModCache{Catalog: fc}
}

func newGraphWithGame() *graph.Graph {
	g := graph.New()
	g.Add(&graph.Node{ID: catalog.GameID, Version: "109000.0.0", InManifest: true})
	return g
}

func TestResolvesLoaderAndModTogether(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()

	mod := &graph.Node{ID: "6vQ6ckVYFiidDh", Version: "1.4.1",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true}
	g.Add(mod)

	assert.NilError(t, r.Validate(context.Background(), g, mod))

	loader, ok := g.Get(catalog.LoaderID)
	assert.Assert(t, ok)
	assert.Equal(t, loader.Version, "2.0.0")
	assert.NilError(t, g.Diagnose())
}

func TestReresolvesLoaderWhenSecondModNeedsNewerVersion(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()
	ctx := context.Background()

	// Pre-seed the loader at a version that satisfies the first mod but
	// not the second, as though it had been resolved in a prior run.
	g.Add(&graph.Node{ID: catalog.LoaderID, Version: "1.0.0",
		Dependencies: map[string]string{catalog.GameID: ">=109000.0.0"}})

	low := &graph.Node{ID: "dummyMod1", Version: "1.0.1",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true}
	g.Add(low)
	assert.NilError(t, r.Validate(ctx, g, low))

	loader, _ := g.Get(catalog.LoaderID)
	assert.Equal(t, loader.Version, "1.0.0", "the existing loader version already satisfies dummyMod1")

	needsNewer := &graph.Node{ID: "dummyMod1-followup", Version: "1.0.0",
		Dependencies: map[string]string{catalog.LoaderID: ">=2.0.0"}}
	g.Add(needsNewer)
	assert.NilError(t, r.Validate(ctx, g, needsNewer))

	loader, _ = g.Get(catalog.LoaderID)
	assert.Equal(t, loader.Version, "2.0.0", "reresolution should bump the loader to satisfy both dependants")
}

func TestManifestMismatchPropagatesImmediately(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()
	ctx := context.Background()

	// Pin the loader to a version too old for dummyMod1@1.0.3.
	g.Add(&graph.Node{ID: catalog.LoaderID, Version: "1.0.0",
		Dependencies: map[string]string{catalog.GameID: ">=109000.0.0"}, InManifest: true})

	mod := &graph.Node{ID: "dummyMod1", Version: "1.0.3",
		Dependencies: map[string]string{catalog.LoaderID: ">=2.0.0"}, InManifest: true}
	g.Add(mod)

	err := r.Validate(ctx, g, mod)
	var mismatch *resolveerr.DependencyManifestMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, mismatch.DepID, catalog.LoaderID)
	assert.Equal(t, mismatch.DepVersion, "1.0.0")
}

func TestUnsolvableDependencyWhenNoVersionSatisfies(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()
	ctx := context.Background()

	mod := &graph.Node{ID: "dummyMod1", Version: "1.0.0",
		Dependencies: map[string]string{catalog.LoaderID: ">=9.0.0"}, InManifest: true}
	g.Add(mod)

	err := r.Validate(ctx, g, mod)
	var unsolvable *resolveerr.UnsolvableDependencyError
	assert.ErrorAs(t, err, &unsolvable)
	assert.Equal(t, unsolvable.DepID, catalog.LoaderID)
	assert.Equal(t, unsolvable.Depender, "dummyMod1")
}

func TestGameNeverMutatedByDependency(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()
	ctx := context.Background()

	mod := &graph.Node{ID: "6vQ6ckVYFiidDh", Version: "1.4.1",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true}
	g.Add(mod)
	assert.NilError(t, r.Validate(ctx, g, mod))

	game, ok := g.Get(catalog.GameID)
	assert.Assert(t, ok)
	assert.Equal(t, game.Version, "109000.0.0")
}

func TestGetItemDataRejectsGameID(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	_, err := r.GetItemData(context.Background(), catalog.GameID, "109000.0.0")
	var invalid *resolveerr.InvalidLockfileOperationError
	assert.ErrorAs(t, err, &invalid)
}

func TestGetItemDataSynthesizesLoaderGameConstraint(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	n, err := r.GetItemData(context.Background(), catalog.LoaderID, "1.0.0")
	assert.NilError(t, err)
	assert.Equal(t, n.Dependencies[catalog.GameID], ">=109000.0.0")
}

func TestCancelledContextStopsResolution(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mod := &graph.Node{ID: "dummyMod1", Version: "1.0.0",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true}
	g.Add(mod)

	err := r.Validate(ctx, g, mod)
	var cancelled *resolveerr.CancelledError
	assert.ErrorAs(t, err, &cancelled)
}

func TestValidateAllResolvesEveryManifestEntry(t *testing.T) {
	fc, mc := newFixture()
	r := resolver.New(fc, mc, nil)
	g := newGraphWithGame()

	g.Add(&graph.Node{ID: "6vQ6ckVYFiidDh", Version: "1.4.1",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true})
	g.Add(&graph.Node{ID: "dummyMod1", Version: "1.0.1",
		Dependencies: map[string]string{catalog.LoaderID: ">=1.0.0"}, InManifest: true})

	assert.NilError(t, r.ValidateAll(context.Background(), g))
	assert.NilError(t, g.Diagnose())

	loader, ok := g.Get(catalog.LoaderID)
	assert.Assert(t, ok)
	assert.Equal(t, loader.Version, "2.0.0")
}
