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

// Package manifest implements configuration loading logic for the
// user-maintained manifest of desired mods and game/loader version.
// It is modeled directly on stencil's pkg/configuration package (a
// manifest read via gopkg.in/yaml.v3, validated on load), generalized
// from "template repositories" to mods.
package manifest

import (
	"fmt"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// validateNameRegexp restricts manifest names the same way stencil's
// ValidateNameRegexp does.
const validateNameRegexp = `^[_a-z][_a-z0-9-]*$`

// Entry is a single mod dependency declared by the user, pinned by a
// version constraint (spec.md §3's "Constraint").
type Entry struct {
	// ID is the mod's item identifier.
	ID string `yaml:"id"`

	// Constraint is a semver constraint or an exact version. Empty means
	// "latest".
	Constraint string `yaml:"constraint,omitempty"`
}

// Manifest is the user-edited list of mods the user explicitly wants
// installed, plus the game/loader versions to resolve against.
type Manifest struct {
	// Name identifies this manifest/profile, mirroring stencil's
	// Manifest.Name.
	Name string `yaml:"name"`

	// GameVersion pins the installed game version. A node for this
	// version is inserted by the caller as GameID and is never mutated
	// by the resolver.
	GameVersion string `yaml:"gameVersion"`

	// Entries are the mods the user has explicitly requested.
	Entries []*Entry `yaml:"mods,omitempty"`

	// Replacements maps an item id to an alternate source URI, the same
	// escape hatch stencil's Manifest.Replacements provides for local
	// modules during development. It is loaded and saved with the
	// manifest, but nothing in modctl reads it when resolving or
	// fetching mods.
	//
	// Expected format:
	// - local file: file:///path/to/mod
	// - remote archive: https://example.com/mods/foo.zip
	Replacements map[string]string `yaml:"replacements,omitempty"`
}

// Load reads a manifest from disk at path, parses it, and validates
// it.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m *Manifest
	if err := yaml.NewDecoder(f).Decode(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %q", path)
	}

	if !ValidateName(m.Name) {
		return nil, fmt.Errorf("name field in %q was invalid", path)
	}

	return m, nil
}

// LoadDefault loads a manifest from a set of default paths on disk, in
// order, mirroring stencil's NewDefaultManifest.
func LoadDefault() (*Manifest, error) {
	candidates := []string{"modctl.yaml", "modctl.yml"}
	for _, file := range candidates {
		if _, err := os.Stat(file); err == nil {
			return Load(file)
		}
	}

	return nil, fmt.Errorf("no manifest found (searched %v)", candidates)
}

// Save writes the manifest back to path as YAML.
func (m *Manifest) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(m)
}

// Find returns the entry for id, if present.
func (m *Manifest) Find(id string) (*Entry, bool) {
	for _, e := range m.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Upsert adds or updates the entry for id with the given constraint.
func (m *Manifest) Upsert(id, constraint string) {
	if e, ok := m.Find(id); ok {
		e.Constraint = constraint
		return
	}
	m.Entries = append(m.Entries, &Entry{ID: id, Constraint: constraint})
}

// Remove deletes the entry for id, if present. It reports whether an
// entry was removed.
func (m *Manifest) Remove(id string) bool {
	for i, e := range m.Entries {
		if e.ID == id {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// ValidateName ensures that the name of a manifest fits the criteria
// modctl requires, identical in spirit to stencil's ValidateName.
func ValidateName(name string) bool {
	acceptableName := regexp.MustCompile(validateNameRegexp)
	return acceptableName.MatchString(name)
}
