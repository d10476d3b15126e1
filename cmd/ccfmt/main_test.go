// Copyright 2026 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unformatted = "cc_binary \"app\" {\nsrcs=[\"main.cc\"]\n}\n"
const formatted = "cc_binary \"app\" {\n  srcs = [\"main.cc\"]\n}\n"

func TestStdin(t *testing.T) {
	var out bytes.Buffer
	f := &formatter{options: options{stdout: true}, out: &out}
	f.run(nil, strings.NewReader(unformatted))

	assert.Equal(t, 0, f.exitCode)
	assert.Equal(t, formatted, out.String())
}

func TestListAndWrite(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "a", "BUILD.hcl")
	good := filepath.Join(dir, "b", "BUILD.hcl")
	other := filepath.Join(dir, "b", "notes.hcl")
	for file, content := range map[string]string{bad: unformatted, good: formatted, other: unformatted} {
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0777))
		require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	}

	var out bytes.Buffer
	f := &formatter{options: options{list: true, overwrite: true}, out: &out}
	f.run([]string{dir}, nil)

	assert.Equal(t, 0, f.exitCode)
	assert.Equal(t, bad+"\n", out.String())

	got, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(got))

	got, err = os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(got))
}

func TestDiff(t *testing.T) {
	var out bytes.Buffer
	f := &formatter{options: options{diff: true}, out: &out}
	require.NoError(t, f.processReader("BUILD.hcl", strings.NewReader(unformatted)))

	assert.Contains(t, out.String(), "--- BUILD.hcl")
	assert.Contains(t, out.String(), "+++ ccfmt/BUILD.hcl")
	assert.Contains(t, out.String(), "-srcs=[\"main.cc\"]")
	assert.Contains(t, out.String(), "+  srcs = [\"main.cc\"]")
}

func TestParseError(t *testing.T) {
	var out bytes.Buffer
	f := &formatter{options: options{stdout: true}, out: &out}
	f.run(nil, strings.NewReader("cc_binary \"app\" {"))
	assert.Equal(t, 2, f.exitCode)
	assert.Empty(t, out.String())
}
