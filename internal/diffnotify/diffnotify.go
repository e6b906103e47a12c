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

// Package diffnotify renders a lockfile.DiffResult as a human-readable
// summary for the CLI to print after an install/uninstall/update
// operation. It templates the summary with text/template plus sprig,
// the same templating stack stencil's codegen layer builds its own
// rendering on, generalized here from scaffolding files to a short
// plan summary.
package diffnotify

import (
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/ficsit-tools/modctl/pkg/lockfile"
)

const summaryTemplate = `{{- if .Uninstall }}Uninstalling:
{{- range .Uninstall }}
  - {{ . }}
{{- end }}
{{ end -}}
{{- if .Install }}Installing:
{{- range .Install }}
  - {{ .ID }}@{{ .Version }}
{{- end }}
{{ end -}}
{{- if not (or .Uninstall .Install) }}Nothing to do; the lockfile is already up to date.
{{ end -}}`

// installEntry is one row of the "Installing:" section, kept as a
// slice instead of a map so rendering order is deterministic.
type installEntry struct {
	ID      string
	Version string
}

type view struct {
	Uninstall []string
	Install   []installEntry
}

// Summarize renders diff as a short, human-readable plan of what will
// change.
func Summarize(diff lockfile.DiffResult) (string, error) {
	tmpl, err := template.New("diff").Funcs(sprig.TxtFuncMap()).Parse(summaryTemplate)
	if err != nil {
		return "", err
	}

	uninstall := append([]string(nil), diff.Uninstall...)
	sort.Strings(uninstall)

	install := make([]installEntry, 0, len(diff.Install))
	for id, version := range diff.Install {
		install = append(install, installEntry{ID: id, Version: version})
	}
	sort.Slice(install, func(i, j int) bool { return install[i].ID < install[j].ID })

	var sb strings.Builder
	if err := tmpl.Execute(&sb, view{Uninstall: uninstall, Install: install}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
