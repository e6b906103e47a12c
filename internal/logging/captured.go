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

package logging

import (
	"bytes"
	"testing"

	charmlog "github.com/charmbracelet/log"
)

// NewCapturedLogger returns a Logger that writes to an in-memory
// buffer instead of stderr, for asserting on log output in tests.
func NewCapturedLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := charmlog.NewWithOptions(&buf, charmlog.Options{
		Formatter: charmlog.TextFormatter,
		Level:     charmlog.DebugLevel,
	})
	handler.SetReportTimestamp(false)
	return &logger{newSlogLogger(handler), handler}, &buf
}

// NewTestLogger returns a Logger that writes to t.Log, so failures
// show logger output inline with the rest of a test's output.
func NewTestLogger(t *testing.T) Logger {
	t.Helper()
	handler := charmlog.NewWithOptions(testWriter{t}, charmlog.Options{
		Level: charmlog.DebugLevel,
	})
	return &logger{newSlogLogger(handler), handler}
}

// testWriter adapts testing.T.Log to an io.Writer.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
