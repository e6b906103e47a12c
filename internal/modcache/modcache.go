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

// Package modcache implements the concrete on-disk mod cache:
// resolving a mod's storage URI, fetching its archive if not already
// cached, and parsing its manifest.json into a catalog.ModMeta. It is
// grounded on stencil's internal/modules.Module, which performs the
// same uriIsLocal/uriForModule split between a local filesystem
// checkout and a remote fetch, built on go-git/go-billy.
package modcache

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/pkg/catalog"
)

// manifestFile is the mod's own metadata file inside its archive or
// git checkout, the domain analogue of stencil's manifest.yaml.
const manifestFile = "manifest.json"

// URIResolver maps an (id, version) pair to a fetch location. The
// default resolver expects a CDN-style layout; callers with a
// different catalog backend can supply their own.
type URIResolver func(id, version string) (uri string, isGit bool)

// uriIsLocal reports whether uri is a local filesystem path, mirroring
// stencil's uriIsLocal.
func uriIsLocal(uri string) bool {
	return !strings.Contains(uri, "://") || strings.HasPrefix(uri, "file://")
}

// Cache is the concrete modcache.ModCache implementation.
type Cache struct {
	// CacheDir is the root directory downloaded archives are extracted
	// into, one subdirectory per (id, version).
	CacheDir string

	// Resolve maps an (id, version) pair to its fetch URI.
	Resolve URIResolver

	Log  logging.Logger
	http *retryablehttp.Client
}

// New constructs a Cache rooted at cacheDir. log may be nil.
func New(cacheDir string, resolve URIResolver, log logging.Logger) *Cache {
	if log == nil {
		log = logging.Noop()
	}
	return &Cache{CacheDir: cacheDir, Resolve: resolve, Log: log, http: retryablehttp.NewClient()}
}

// GetMetadata implements modcache.ModCache.
func (c *Cache) GetMetadata(ctx context.Context, id, version string) (catalog.ModMeta, error) {
	uri, isGit := c.Resolve(id, version)

	var fs billy.Filesystem
	var err error
	switch {
	case isGit:
		fs, err = c.fetchGit(ctx, uri)
	case uriIsLocal(uri):
		fs = osfs.New(strings.TrimPrefix(uri, "file://"))
	default:
		fs, err = c.fetchArchive(ctx, id, version, uri)
	}
	if err != nil {
		return catalog.ModMeta{}, err
	}

	f, err := fs.Open(manifestFile)
	if err != nil {
		return catalog.ModMeta{}, &resolveerr.ModNotFoundError{ID: id, Version: version}
	}
	defer f.Close()

	var meta catalog.ModMeta
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return catalog.ModMeta{}, fmt.Errorf("%s@%s has an invalid %s: %w", id, version, manifestFile, err)
	}
	meta.ID, meta.Version = id, version
	return meta, nil
}

// fetchGit clones uri into an in-memory filesystem, mirroring
// stencil's Module.GetFS for non-local modules.
func (c *Cache) fetchGit(ctx context.Context, uri string) (billy.Filesystem, error) {
	fs := memfs.New()
	_, err := gogit.CloneContext(ctx, memory.NewStorage(), fs, &gogit.CloneOptions{
		URL:   uri,
		Depth: 1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clone %s", uri)
	}
	return fs, nil
}

// fetchArchive downloads a zip archive for (id, version) from uri into
// CacheDir/id/version, reusing an existing extraction if present.
func (c *Cache) fetchArchive(ctx context.Context, id, version, uri string) (billy.Filesystem, error) {
	dest := filepath.Join(c.CacheDir, id, version)
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return osfs.New(dest), nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s@%s: %w", id, version, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &resolveerr.ModNotFoundError{ID: id, Version: version}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download of %s@%s returned status %d", id, version, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("%s@%s is not a valid archive: %w", id, version, err)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if err := extractOne(dest, f); err != nil {
			return nil, err
		}
	}

	return osfs.New(dest), nil
}

func extractOne(dest string, f *zip.File) error {
	path := filepath.Join(dest, f.Name)
	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
