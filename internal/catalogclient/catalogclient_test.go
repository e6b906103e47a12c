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

package catalogclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ficsit-tools/modctl/internal/catalogclient"
	"github.com/ficsit-tools/modctl/internal/resolveerr"
	"gotest.tools/v3/assert"
)

func TestGetModMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/mods/dummyMod1/versions/1.0.3")
		json.NewEncoder(w).Encode(map[string]any{
			"ID": "dummyMod1", "Version": "1.0.3", "LoaderVersion": "2.0.0",
		})
	}))
	defer srv.Close()

	c := catalogclient.New(srv.URL, nil)
	meta, err := c.GetModMetadata(context.Background(), "dummyMod1", "1.0.3")
	assert.NilError(t, err)
	assert.Equal(t, meta.LoaderVersion, "2.0.0")
}

func TestGetModMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := catalogclient.New(srv.URL, nil)
	_, err := c.GetModMetadata(context.Background(), "doesNotExist", "1.0.0")
	var notFound *resolveerr.ModNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, notFound.ID, "doesNotExist")
}

func TestMemoizedCachesWithinTTL(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		json.NewEncoder(w).Encode([]string{"1.0.0", "1.0.3"})
	}))
	defer srv.Close()

	inner := catalogclient.New(srv.URL, nil)
	c := catalogclient.NewMemoized(inner, time.Minute)

	for i := 0; i < 3; i++ {
		versions, err := c.ListMatchingVersions(context.Background(), "dummyMod1", []string{"^1.0.0"})
		assert.NilError(t, err)
		assert.Equal(t, len(versions), 2)
	}

	assert.Equal(t, atomic.LoadInt64(&calls), int64(1))
}
