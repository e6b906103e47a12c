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

// Package resolveerr defines the resolver's failure taxonomy as
// concrete error types, mirroring the way stencil's
// internal/modules.resolutionError wraps a base failure with
// resolution history instead of returning a bare string.
package resolveerr

import (
	"fmt"
	"strings"
)

// ModNotFoundError is returned when the catalog knows no such id, or
// no such (id, version) pair.
type ModNotFoundError struct {
	ID      string
	Version string
}

func (e *ModNotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("mod %q was not found in the catalog", e.ID)
	}
	return fmt.Sprintf("mod %q has no version %q in the catalog", e.ID, e.Version)
}

// InvalidLockfileOperationError indicates an illegal attempt such as
// resolving a node for the game item. It always indicates a logic
// bug in the caller, never a catalog/network condition.
type InvalidLockfileOperationError struct {
	Message string
}

func (e *InvalidLockfileOperationError) Error() string {
	return "invalid lockfile operation: " + e.Message
}

// DependencyManifestMismatchError is returned when satisfying a
// dependency would require changing a manifest-pinned node. It is
// reported verbatim to the user: they must manually adjust the
// conflicting manifest entry.
type DependencyManifestMismatchError struct {
	DepID           string
	DepVersion      string
	Depender        string
	DependerVersion string
	Constraint      string
}

func (e *DependencyManifestMismatchError) Error() string {
	return fmt.Sprintf(
		"%s@%s requires %s@%s, but %s is pinned in your manifest at %s; you must manually adjust %s",
		e.Depender, e.DependerVersion, e.DepID, e.Constraint, e.DepID, e.DepVersion, e.DepID,
	)
}

// ResolutionAttempt records one step of the constraint history that
// led to an UnsolvableDependencyError, for rendering a "Constraints:"
// tree the way stencil's resolutionError does.
type ResolutionAttempt struct {
	// Depth is how many levels deep this attempt was made, used purely
	// for indentation when rendering.
	Depth int

	// Wanter is who wanted the dependency (an item id, possibly with a
	// version suffix, or a top-level manifest label).
	Wanter string

	// Constraint is the constraint string the wanter asked for.
	Constraint string
}

// UnsolvableDependencyError is returned when no catalog version
// satisfies every conjoined constraint for a dependency.
type UnsolvableDependencyError struct {
	DepID    string
	Depender string
	History  []ResolutionAttempt
}

func (e *UnsolvableDependencyError) Error() string {
	msg := fmt.Sprintf("no compatible version found for %q (requested by %s)", e.DepID, e.Depender)
	if len(e.History) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	sb.WriteString("\n\nConstraints:\n")
	for _, h := range e.History {
		sb.WriteString(strings.Repeat(" ", h.Depth*2))
		sb.WriteString("└─ ")
		sb.WriteString(h.Wanter)
		sb.WriteString(" wants ")
		sb.WriteString(h.Constraint)
		sb.WriteString("\n")
	}
	return sb.String()
}

// CancelledError is returned when a caller-supplied cancellation
// token fires mid-resolution.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "resolution was cancelled" }
