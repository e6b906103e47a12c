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

// Package catalogclient implements pkg/catalog.Catalog against a
// remote HTTP catalog service. It uses
// github.com/hashicorp/go-retryablehttp for transient-failure retries,
// the same transport the rest of the retrieved pack pulls in for
// talking to flaky remote APIs, wrapped in a short-TTL memoizing
// decorator since the resolver may ask the same (id, constraints)
// question many times while backtracking (spec.md §5).
package catalogclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ficsit-tools/modctl/internal/logging"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"github.com/ficsit-tools/modctl/pkg/catalog"
)

// Client is an HTTP-backed catalog.Catalog.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New constructs a Client pointed at baseURL (e.g.
// "https://api.ficsit.app"). log may be nil.
func New(baseURL string, log logging.Logger) *Client {
	if log == nil {
		log = logging.Noop()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = retryableLogAdapter{log}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: rc}
}

// retryableLogAdapter adapts logging.Logger to retryablehttp's minimal
// leveled-logger interface.
type retryableLogAdapter struct{ log logging.Logger }

func (a retryableLogAdapter) Error(msg string, kv ...interface{}) { a.log.Errorf("%s %v", msg, kv) }
func (a retryableLogAdapter) Info(msg string, kv ...interface{})  { a.log.Infof("%s %v", msg, kv) }
func (a retryableLogAdapter) Debug(msg string, kv ...interface{}) { a.log.Debugf("%s %v", msg, kv) }
func (a retryableLogAdapter) Warn(msg string, kv ...interface{})  { a.log.Warnf("%s %v", msg, kv) }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &resolveerr.ModNotFoundError{}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request to %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ListMatchingVersions implements catalog.Catalog.
func (c *Client) ListMatchingVersions(ctx context.Context, id string, constraints []string) ([]string, error) {
	var versions []string
	query := url.Values{}
	for _, cst := range constraints {
		query.Add("constraint", cst)
	}
	if err := c.get(ctx, "/mods/"+url.PathEscape(id)+"/versions", query, &versions); err != nil {
		var notFound *resolveerr.ModNotFoundError
		if asModNotFound(err, &notFound) {
			notFound.ID = id
		}
		return nil, err
	}
	return versions, nil
}

// GetModMetadata implements catalog.Catalog.
func (c *Client) GetModMetadata(ctx context.Context, id, version string) (catalog.ModMeta, error) {
	var meta catalog.ModMeta
	path := "/mods/" + url.PathEscape(id) + "/versions/" + url.PathEscape(version)
	if err := c.get(ctx, path, nil, &meta); err != nil {
		var notFound *resolveerr.ModNotFoundError
		if asModNotFound(err, &notFound) {
			notFound.ID, notFound.Version = id, version
		}
		return catalog.ModMeta{}, err
	}
	return meta, nil
}

// ListLoaderVersions implements catalog.Catalog.
func (c *Client) ListLoaderVersions(ctx context.Context) ([]catalog.LoaderInfo, error) {
	var loaders []catalog.LoaderInfo
	if err := c.get(ctx, "/loader/versions", nil, &loaders); err != nil {
		return nil, err
	}
	return loaders, nil
}

// GetLoaderInfo implements catalog.Catalog.
func (c *Client) GetLoaderInfo(ctx context.Context, version string) (*catalog.LoaderInfo, error) {
	var info catalog.LoaderInfo
	err := c.get(ctx, "/loader/versions/"+url.PathEscape(version), nil, &info)
	var notFound *resolveerr.ModNotFoundError
	if asModNotFound(err, &notFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func asModNotFound(err error, target **resolveerr.ModNotFoundError) bool {
	nf, ok := err.(*resolveerr.ModNotFoundError)
	if !ok {
		return false
	}
	*target = nf
	return true
}

// memoEntry is a single cached response.
type memoEntry struct {
	expires time.Time
	value   any
	err     error
}

// Memoized wraps a catalog.Catalog and caches every call for ttl,
// keyed on the method and its arguments, so a resolve that revisits
// the same (id, constraints) pair while backtracking does not refetch
// it from the network every time (spec.md §5).
type Memoized struct {
	inner catalog.Catalog
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]memoEntry
}

// NewMemoized wraps inner with a ttl-based memoization layer.
func NewMemoized(inner catalog.Catalog, ttl time.Duration) *Memoized {
	return &Memoized{inner: inner, ttl: ttl, cache: map[string]memoEntry{}}
}

func memoKey(parts ...string) string { return strings.Join(parts, "\x00") }

func (m *Memoized) lookup(key string) (any, error, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, nil, false
	}
	return entry.value, entry.err, true
}

func (m *Memoized) store(key string, value any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = memoEntry{expires: time.Now().Add(m.ttl), value: value, err: err}
}

// ListMatchingVersions implements catalog.Catalog.
func (m *Memoized) ListMatchingVersions(ctx context.Context, id string, constraints []string) ([]string, error) {
	key := memoKey("ListMatchingVersions", id, strings.Join(constraints, ","))
	if v, err, ok := m.lookup(key); ok {
		versions, _ := v.([]string)
		return versions, err
	}
	versions, err := m.inner.ListMatchingVersions(ctx, id, constraints)
	m.store(key, versions, err)
	return versions, err
}

// GetModMetadata implements catalog.Catalog.
func (m *Memoized) GetModMetadata(ctx context.Context, id, version string) (catalog.ModMeta, error) {
	key := memoKey("GetModMetadata", id, version)
	if v, err, ok := m.lookup(key); ok {
		meta, _ := v.(catalog.ModMeta)
		return meta, err
	}
	meta, err := m.inner.GetModMetadata(ctx, id, version)
	m.store(key, meta, err)
	return meta, err
}

// ListLoaderVersions implements catalog.Catalog.
func (m *Memoized) ListLoaderVersions(ctx context.Context) ([]catalog.LoaderInfo, error) {
	key := memoKey("ListLoaderVersions")
	if v, err, ok := m.lookup(key); ok {
		loaders, _ := v.([]catalog.LoaderInfo)
		return loaders, err
	}
	loaders, err := m.inner.ListLoaderVersions(ctx)
	m.store(key, loaders, err)
	return loaders, err
}

// GetLoaderInfo implements catalog.Catalog.
func (m *Memoized) GetLoaderInfo(ctx context.Context, version string) (*catalog.LoaderInfo, error) {
	key := memoKey("GetLoaderInfo", version)
	if v, err, ok := m.lookup(key); ok {
		info, _ := v.(*catalog.LoaderInfo)
		return info, err
	}
	info, err := m.inner.GetLoaderInfo(ctx, version)
	m.store(key, info, err)
	return info, err
}
