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

package buildfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	src := `cc_library "foo" {
srcs = ["foo.cc"]
    includes=["."]
}
`
	want := `cc_library "foo" {
  srcs     = ["foo.cc"]
  includes = ["."]
}
`
	got, err := Format([]byte(src), "BUILD.hcl")
	require.NoError(t, err)
	assert.Equal(t, want, string(got))

	again, err := Format(got, "BUILD.hcl")
	require.NoError(t, err)
	assert.Equal(t, want, string(again))

	_, err = Format([]byte(`cc_library "foo" {`), "BUILD.hcl")
	assert.Error(t, err)
}
