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

// Package resolvertest provides in-memory fakes for pkg/catalog.Catalog
// and pkg/modcache.ModCache, modeled on stencil's modulestest package:
// tests build a small fixture instead of hitting the network or a
// local git checkout.
package resolvertest

import (
	"context"
	"sort"

	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/internal/semverx"
	"github.com/ficsit-tools/modctl/pkg/catalog"
)

// FakeMod is one published (id, version) pair and its declared
// dependency metadata, as fed into NewFakeCatalog.
type FakeMod struct {
	ID            string
	Version       string
	Dependencies  map[string]string
	LoaderVersion string
}

// FakeCatalog is an in-memory catalog.Catalog built from a fixed set
// of mods and loader versions.
type FakeCatalog struct {
	mods   map[string]map[string]FakeMod
	loader map[string]catalog.LoaderInfo
}

// NewFakeCatalog builds a FakeCatalog from mods and loaders.
func NewFakeCatalog(mods []FakeMod, loaders []catalog.LoaderInfo) *FakeCatalog {
	c := &FakeCatalog{
		mods:   map[string]map[string]FakeMod{},
		loader: map[string]catalog.LoaderInfo{},
	}
	for _, m := range mods {
		if c.mods[m.ID] == nil {
			c.mods[m.ID] = map[string]FakeMod{}
		}
		c.mods[m.ID][m.Version] = m
	}
	for _, l := range loaders {
		c.loader[l.Version] = l
	}
	return c
}

// ListMatchingVersions implements catalog.Catalog.
func (c *FakeCatalog) ListMatchingVersions(_ context.Context, id string, constraints []string) ([]string, error) {
	versions, ok := c.mods[id]
	if !ok {
		if id == catalog.LoaderID {
			versions = map[string]FakeMod{}
			for v := range c.loader {
				versions[v] = FakeMod{}
			}
		} else {
			return nil, &resolveerr.ModNotFoundError{ID: id}
		}
	}

	var matching []string
	for v := range versions {
		ok, err := semverx.SatisfiesAll(v, constraints)
		if err != nil {
			return nil, err
		}
		if ok {
			matching = append(matching, v)
		}
	}
	sort.Strings(matching)
	return matching, nil
}

// GetModMetadata implements catalog.Catalog.
func (c *FakeCatalog) GetModMetadata(_ context.Context, id, version string) (catalog.ModMeta, error) {
	versions, ok := c.mods[id]
	if !ok {
		return catalog.ModMeta{}, &resolveerr.ModNotFoundError{ID: id}
	}
	m, ok := versions[version]
	if !ok {
		return catalog.ModMeta{}, &resolveerr.ModNotFoundError{ID: id, Version: version}
	}
	return catalog.ModMeta{
		ID:            m.ID,
		Version:       m.Version,
		Dependencies:  m.Dependencies,
		LoaderVersion: m.LoaderVersion,
	}, nil
}

// ListLoaderVersions implements catalog.Catalog.
func (c *FakeCatalog) ListLoaderVersions(_ context.Context) ([]catalog.LoaderInfo, error) {
	out := make([]catalog.LoaderInfo, 0, len(c.loader))
	for _, l := range c.loader {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetLoaderInfo implements catalog.Catalog.
func (c *FakeCatalog) GetLoaderInfo(_ context.Context, version string) (*catalog.LoaderInfo, error) {
	l, ok := c.loader[version]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// FakeModCache is an in-memory modcache.ModCache that defers directly
// to a FakeCatalog, since tests never need to exercise an actual
// download/unzip path.
type FakeModCache struct {
	Catalog *FakeCatalog
}

// GetMetadata implements modcache.ModCache.
func (c *FakeModCache) GetMetadata(ctx context.Context, id, version string) (catalog.ModMeta, error) {
	return c.Catalog.GetModMetadata(ctx, id, version)
}
