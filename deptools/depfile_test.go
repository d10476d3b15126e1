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

package deptools

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	testCases := []struct {
		name   string
		target string
		deps   []string
		want   string
	}{
		{
			name:   "single",
			target: "build.ninja",
			deps:   []string{"BUILD.hcl"},
			want:   "build.ninja: \\\n BUILD.hcl\n",
		},
		{
			name:   "several",
			target: "out/build.ninja",
			deps:   []string{"BUILD.hcl", "a/BUILD.hcl", "ccgraph.yaml"},
			want:   "out/build.ninja: \\\n BUILD.hcl \\\n a/BUILD.hcl \\\n ccgraph.yaml\n",
		},
		{
			name:   "escaped",
			target: "build.ninja",
			deps:   []string{"my dir/BUILD.hcl", "a#b/BUILD.hcl"},
			want:   "build.ninja: \\\n my\\ dir/BUILD.hcl \\\n a\\#b/BUILD.hcl\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tc.target, tc.deps))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestWriteDepFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "build.ninja.d")
	require.NoError(t, WriteDepFile(file, "build.ninja", []string{"BUILD.hcl"}))

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "build.ninja: \\\n BUILD.hcl\n", string(got))

	assert.Error(t, WriteDepFile(filepath.Join(t.TempDir(), "missing", "x.d"), "t", nil))
}
