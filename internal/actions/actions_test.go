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

package actions_test

import (
	"context"
	"testing"

	"github.com/ficsit-tools/modctl/internal/actions"
	"github.com/ficsit-tools/modctl/internal/resolver"
	"github.com/ficsit-tools/modctl/internal/resolvertest"
	"github.com/ficsit-tools/modctl/pkg/catalog"
	"github.com/ficsit-tools/modctl/pkg/lockfile"
	"github.com/ficsit-tools/modctl/pkg/manifest"
	"gotest.tools/v3/assert"
)

func newFixture() (*resolvertest.FakeCatalog, *resolvertest.FakeModCache) {
	loaders := []catalog.LoaderInfo{
		{Version: "1.0.0", GameVersion: "109000"},
		{Version: "2.0.0", GameVersion: "109000"},
	}
	mods := []resolvertest.FakeMod{
		{ID: "dummyMod1", Version: "1.0.0", LoaderVersion: "1.0.0"},
		{ID: "dummyMod1", Version: "1.0.3", LoaderVersion: "2.0.0"},
		{ID: "6vQ6ckVYFiidDh", Version: "1.4.1", LoaderVersion: "1.0.0"},
	}
	fc := resolvertest.NewFakeCatalog(mods, loaders)
	return fc, &resolvertest.FakeModCache{Catalog: fc}
}

func TestInstallAddsEntryAndResolvesTransitiveLoader(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{Name: "test", GameVersion: "109000"}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	result, err := cmd.Install(context.Background(), lockfile.Lockfile{}, "dummyMod1", "^1.0.0")
	assert.NilError(t, err)

	_, ok := result.Lockfile["dummyMod1"]
	assert.Assert(t, ok)
	_, ok = result.Lockfile[catalog.LoaderID]
	assert.Assert(t, ok)

	_, found := m.Find("dummyMod1")
	assert.Assert(t, found)

	assert.Equal(t, len(result.Diff.Uninstall), 0)
	assert.Assert(t, len(result.Diff.Install) > 0)
}

func TestInstallRollsBackManifestOnFailure(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{Name: "test", GameVersion: "109000"}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	_, err := cmd.Install(context.Background(), lockfile.Lockfile{}, "doesNotExist", "^1.0.0")
	assert.Assert(t, err != nil)

	_, found := m.Find("doesNotExist")
	assert.Assert(t, !found)
}

func TestUninstallRemovesDanglingDependencies(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{
		Name:        "test",
		GameVersion: "109000",
		Entries:     []*manifest.Entry{{ID: "dummyMod1", Constraint: "1.0.0"}},
	}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	installed, err := cmd.Install(context.Background(), lockfile.Lockfile{}, "dummyMod1", "1.0.0")
	assert.NilError(t, err)

	result, err := cmd.Uninstall(context.Background(), installed.Lockfile, "dummyMod1")
	assert.NilError(t, err)

	_, ok := result.Lockfile["dummyMod1"]
	assert.Assert(t, !ok)
	_, ok = result.Lockfile[catalog.LoaderID]
	assert.Assert(t, !ok, "loader should become dangling and be cleaned up")

	_, found := m.Find("dummyMod1")
	assert.Assert(t, !found)
}

func TestUninstallRejectsUnknownEntry(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{Name: "test", GameVersion: "109000"}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	_, err := cmd.Uninstall(context.Background(), lockfile.Lockfile{}, "neverInstalled")
	assert.ErrorContains(t, err, "not present")
}

func TestInstallRejectsReservedIDs(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{Name: "test", GameVersion: "109000"}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	_, err := cmd.Install(context.Background(), lockfile.Lockfile{}, catalog.LoaderID, "")
	assert.ErrorContains(t, err, "managed automatically")
}

func TestUpdateReresolvesWithoutChangingManifest(t *testing.T) {
	fc, mc := newFixture()
	m := &manifest.Manifest{
		Name:        "test",
		GameVersion: "109000",
		Entries:     []*manifest.Entry{{ID: "dummyMod1", Constraint: ">=1.0.0"}},
	}
	cmd := actions.New(m, resolver.New(fc, mc, nil), nil)

	installed, err := cmd.Install(context.Background(), lockfile.Lockfile{}, "dummyMod1", ">=1.0.0")
	assert.NilError(t, err)

	result, err := cmd.Update(context.Background(), installed.Lockfile, nil)
	assert.NilError(t, err)

	entry, ok := result.Lockfile["dummyMod1"]
	assert.Assert(t, ok)
	assert.Equal(t, entry.Version, "1.0.3", "update should move to the newest version satisfying the manifest constraint")
	assert.Equal(t, len(m.Entries), 1)
}
