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

// Package lockfile implements the lockfile codec and the diff
// computation between two lockfiles (spec.md §4.6, §6). Unlike the
// rest of modctl's configuration surface, which follows stencil's
// YAML convention (pkg/manifest), the lockfile's wire format is fixed
// by spec.md as JSON, so this package is deliberately the one place
// that reaches for encoding/json instead of gopkg.in/yaml.v3 — see
// DESIGN.md for why no in-pack third-party JSON library applies here.
package lockfile

import (
	"encoding/json"
	"io"
	"os"
)

// Entry is the serialized form of a single resolved item: its
// installed version and the exact dependency constraints it declared
// at resolution time.
type Entry struct {
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Lockfile is the serialized mapping of every resolved item id to its
// Entry. Manifest membership is not part of this type: it is
// re-derived by the caller from the manifest when reloading (spec.md
// §3).
type Lockfile map[string]Entry

// Load parses a Lockfile from r.
func Load(r io.Reader) (Lockfile, error) {
	var l Lockfile
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, err
	}
	if l == nil {
		l = Lockfile{}
	}
	return l, nil
}

// LoadFile parses a Lockfile from the file at path. A missing file is
// treated as an empty lockfile so a first-time resolve has something
// to diff against; any other error is returned unwrapped.
func LoadFile(path string) (Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Lockfile{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Save writes the Lockfile to w as indented JSON.
func (l Lockfile) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// SaveFile writes the Lockfile to the file at path, creating or
// truncating it.
func (l Lockfile) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.Save(f)
}

// Clone returns a copy of l whose entries and dependency maps are
// independent of l's, so changing one never affects the other.
func (l Lockfile) Clone() Lockfile {
	out := make(Lockfile, len(l))
	for id, e := range l {
		deps := make(map[string]string, len(e.Dependencies))
		for k, v := range e.Dependencies {
			deps[k] = v
		}
		out[id] = Entry{Version: e.Version, Dependencies: deps}
	}
	return out
}

// DiffResult is the install/uninstall diff between two lockfiles
// (spec.md §4.6).
type DiffResult struct {
	// Install maps an item id to the version that should be installed.
	// It contains every id present in new that is either absent from
	// old or whose version differs.
	Install map[string]string

	// Uninstall contains every id present in old that is either absent
	// from new or whose version differs. A version change therefore
	// appears in both Install and Uninstall.
	Uninstall []string
}

// Diff computes the install/uninstall diff between old and new.
// Callers are expected to process Uninstall before Install.
func Diff(old, new Lockfile) DiffResult {
	result := DiffResult{
		Install:   map[string]string{},
		Uninstall: []string{},
	}

	for id, oldEntry := range old {
		newEntry, stillPresent := new[id]
		if !stillPresent || newEntry.Version != oldEntry.Version {
			result.Uninstall = append(result.Uninstall, id)
		}
	}

	for id, newEntry := range new {
		oldEntry, wasPresent := old[id]
		if !wasPresent || oldEntry.Version != newEntry.Version {
			result.Install[id] = newEntry.Version
		}
	}

	return result
}
