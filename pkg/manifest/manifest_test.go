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

package manifest_test

import (
	"path/filepath"
	"testing"

	"github.com/ficsit-tools/modctl/pkg/manifest"
	"gotest.tools/v3/assert"
)

func TestLoadAndSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modctl.yaml")

	m := &manifest.Manifest{
		Name:        "my-save",
		GameVersion: "109000",
		Entries: []*manifest.Entry{
			{ID: "6vQ6ckVYFiidDh", Constraint: "1.4.1"},
		},
	}
	assert.NilError(t, m.Save(path))

	loaded, err := manifest.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Name, "my-save")
	assert.Equal(t, loaded.GameVersion, "109000")
	assert.Equal(t, len(loaded.Entries), 1)
	assert.Equal(t, loaded.Entries[0].ID, "6vQ6ckVYFiidDh")
}

func TestUpsertAddsNewEntry(t *testing.T) {
	m := &manifest.Manifest{Name: "test"}
	m.Upsert("dummyMod1", "^1.0.0")
	e, ok := m.Find("dummyMod1")
	assert.Assert(t, ok)
	assert.Equal(t, e.Constraint, "^1.0.0")
}

func TestUpsertUpdatesExistingEntry(t *testing.T) {
	m := &manifest.Manifest{Name: "test", Entries: []*manifest.Entry{{ID: "dummyMod1", Constraint: "1.0.0"}}}
	m.Upsert("dummyMod1", "1.0.1")
	assert.Equal(t, len(m.Entries), 1)
	e, _ := m.Find("dummyMod1")
	assert.Equal(t, e.Constraint, "1.0.1")
}

func TestRemove(t *testing.T) {
	m := &manifest.Manifest{Name: "test", Entries: []*manifest.Entry{{ID: "dummyMod1"}}}
	assert.Assert(t, m.Remove("dummyMod1"))
	assert.Equal(t, len(m.Entries), 0)
	assert.Assert(t, !m.Remove("dummyMod1"))
}

func TestLoadRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modctl.yaml")
	m := &manifest.Manifest{Name: "Not Valid!"}
	assert.NilError(t, m.Save(path))

	_, err := manifest.Load(path)
	assert.ErrorContains(t, err, "was invalid")
}
