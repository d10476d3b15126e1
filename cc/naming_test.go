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

package cc

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestArtifactNames(t *testing.T) {
	testCases := []struct {
		name    string
		fn      func(name, ext string) string
		in, ext string
		want    string
	}{
		{"archive", ArchiveName, "foo", ".a", "libfoo.a"},
		{"archive lib prefix", ArchiveName, "libfoo", ".a", "libfoo.a"},
		{"archive library", ArchiveName, "library", ".a", "library.a"},
		{"shared", SharedObjectName, "foo", ".so", "libfoo.so"},
		{"shared lib prefix", SharedObjectName, "libfoo", ".so", "libfoo.so"},
		{"binary", BinaryName, "app", "", "app"},
		{"binary ext", BinaryName, "app", ".exe", "app.exe"},
		{"binary has ext", BinaryName, "app.exe", ".exe", "app.exe"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fn(tc.in, tc.ext))
		})
	}
}

func TestLinkName(t *testing.T) {
	assert.Equal(t, "-lfoo", LinkName("out/p/libfoo.so", ".so"))
	assert.Equal(t, "-l:plugin.so", LinkName("out/p/plugin.so", ".so"))
	assert.Equal(t, "-l:lib.so", LinkName("lib.so", ".so"))
	assert.Equal(t, "-l:libfoo.so.1", LinkName("libfoo.so.1", ".so"))
}

func TestUnitNodeNames(t *testing.T) {
	assert.Equal(t, "_foo#cc_p_sa_dcc", unitNodeName("foo", "p/a.cc"))
	assert.NotEqual(t, unitNodeName("foo", "p/a_b.cc"), unitNodeName("foo", "p/a/b.cc"))

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("distinct files get distinct units", prop.ForAll(
		func(a, b string) bool {
			return a == b || unitNodeName("t", a) != unitNodeName("t", b)
		},
		gen.AnyString(),
		gen.AnyString(),
	))
	properties.Property("unit names are stable", prop.ForAll(
		func(file string) bool {
			return unitNodeName("t", file) == unitNodeName("t", file)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestTargetKinds(t *testing.T) {
	for _, kind := range []TargetKind{KindLibrary, KindObject, KindBinary, KindSharedObject} {
		assert.True(t, kind.Implemented(), kind.String())
	}
	for _, kind := range []TargetKind{KindModule, KindStaticLibrary, KindTest} {
		assert.False(t, kind.Implemented(), kind.String())
	}
	assert.Equal(t, "cc_shared_object", KindSharedObject.String())
	assert.Equal(t, "TargetKind(42)", TargetKind(42).String())
	assert.False(t, TargetKind(42).Implemented())
}
