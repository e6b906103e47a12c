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

// Package modcache defines the interface the resolver uses to obtain
// a mod's dependency metadata from the on-disk mod cache, downloading
// and unzipping it on miss. The concrete implementation
// (internal/modcache) is a supporting collaborator, not part of the
// resolver core.
package modcache

import (
	"context"

	"github.com/ficsit-tools/modctl/pkg/catalog"
)

// ModCache fetches a mod's metadata, downloading and unzipping the
// mod archive on a cache miss.
type ModCache interface {
	GetMetadata(ctx context.Context, id, version string) (catalog.ModMeta, error)
}
