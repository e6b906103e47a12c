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

// Package semverx implements version parsing, comparison, and
// constraint evaluation used across the resolver. It is a thin,
// functional layer over github.com/Masterminds/semver/v3, the same
// library stencil's internal/modules/resolver package builds its
// Criteria/Version types on; this package collapses that struct-based
// API into the small set of pure functions spec.md's VersionAlgebra
// calls for.
package semverx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// IsValid reports whether v parses as a valid semantic version.
func IsValid(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// Coerce tolerantly parses s into a canonical valid version, if
// possible. It accepts a bare integer (as used by the loader's
// declared game-version field, which may arrive as "109000" rather
// than "109000.0.0") by treating missing components as zero.
func Coerce(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	v, err := semver.NewVersion(s)
	if err == nil {
		return v.String(), true
	}

	// Bare major version, e.g. "109000" -> "109000.0.0".
	if matched, _ := regexp.MatchString(`^\d+$`, s); matched {
		v, err := semver.NewVersion(s + ".0.0")
		if err == nil {
			return v.String(), true
		}
	}

	return "", false
}

// Satisfies reports whether v satisfies constraint.
func Satisfies(v, constraint string) (bool, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", v, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}

	return c.Check(sv), nil
}

// SatisfiesAll reports whether v satisfies every constraint in
// constraints. An empty constraints slice is trivially satisfied.
func SatisfiesAll(v string, constraints []string) (bool, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", v, err)
	}

	for _, c := range constraints {
		constraint, err := semver.NewConstraint(c)
		if err != nil {
			return false, fmt.Errorf("invalid constraint %q: %w", c, err)
		}
		if !constraint.Check(sv) {
			return false, nil
		}
	}

	return true, nil
}

// Compare returns -1, 0, or 1 depending on whether a is less than,
// equal to, or greater than b, per semver precedence rules (including
// pre-release ordering).
func Compare(a, b string) (int, error) {
	av, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", a, err)
	}
	bv, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// SortAscending sorts versions in place in ascending semver order.
// Invalid entries sort before all valid ones, stably by string value,
// since the resolver only ever calls this with versions already
// returned by the catalog.
func SortAscending(versions []string) {
	parsed := make([]*semver.Version, len(versions))
	for i, v := range versions {
		parsed[i], _ = semver.NewVersion(v)
	}

	// Simple insertion sort: candidate lists returned by a catalog are
	// expected to be small (tens, not thousands, of versions).
	for i := 1; i < len(versions); i++ {
		for j := i; j > 0; j-- {
			if !lessVersion(parsed, versions, j, j-1) {
				break
			}
			parsed[j], parsed[j-1] = parsed[j-1], parsed[j]
			versions[j], versions[j-1] = versions[j-1], versions[j]
		}
	}
}

func lessVersion(parsed []*semver.Version, versions []string, i, j int) bool {
	switch {
	case parsed[i] == nil && parsed[j] == nil:
		return versions[i] < versions[j]
	case parsed[i] == nil || parsed[j] == nil:
		return parsed[i] == nil
	}
	return parsed[i].LessThan(parsed[j])
}
