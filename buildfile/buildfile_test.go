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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/cc"
	"github.com/google/ccgraph/config"
	"github.com/google/ccgraph/pathtools"
	"github.com/google/ccgraph/toolchain/gcc"
)

const rootBuild = `
genrule "version" {
  outs = ["version.c"]
  cmd  = "gen-version > {outs}"
}

cc_library "foo" {
  srcs     = ["foo.cc", ":version"]
  hdrs     = ["foo.h"]
  includes = ["."]
  defines  = ["FOO"]
  linkopts = ["-lm"]
}
`

const appBuild = `
cc_binary "app" {
  srcs = ["main.cc"]
  deps = ["//:foo", "//gen:protos"]
}
`

const genBuild = `
genrule "protos_gen" {
  srcs = ["a.proto", "//:version"]
  outs = ["*.cc"]
  cmd  = "protoc --cpp_out={outdir} {srcs}"
}

cc_library "protos" {
  srcs = [":protos_gen"]
}
`

func testFs() pathtools.FileSystem {
	return pathtools.MockFs(map[string][]byte{
		"BUILD.hcl":     []byte(rootBuild),
		"foo.cc":        nil,
		"app/BUILD.hcl": []byte(appBuild),
		"gen/BUILD.hcl": []byte(genBuild),
		"gen/a.proto":   nil,
		"out/BUILD.hcl": []byte(`cc_library "stale" {}`),
		"docs/README":   nil,
	})
}

func TestFind(t *testing.T) {
	l := &Loader{Fs: testFs(), Skip: []string{"out"}}
	files, err := l.Find(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"BUILD.hcl", "app/BUILD.hcl", "gen/BUILD.hcl"}, files)

	l = &Loader{Fs: testFs(), FileName: "BUILD"}
	files, err = l.Find(".")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLoad(t *testing.T) {
	l := &Loader{Fs: testFs(), Skip: []string{"out"}}
	pkgs, err := l.Load(context.Background(), ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 3)

	assert.Equal(t, "", pkgs[0].Path)
	assert.Equal(t, "app", pkgs[1].Path)
	assert.Equal(t, "gen", pkgs[2].Path)

	root := pkgs[0].Decl
	require.Len(t, root.Genrules, 1)
	assert.Equal(t, "version", root.Genrules[0].Name)
	assert.Equal(t, []string{"version.c"}, root.Genrules[0].Outs)
	require.Len(t, root.Libraries, 1)
	assert.Equal(t, &cc.Target{
		Name:     "foo",
		Package:  "",
		Srcs:     []string{"foo.cc", ":version"},
		Hdrs:     []string{"foo.h"},
		Includes: []string{"."},
		Defines:  []string{"FOO"},
		Linkopts: []string{"-lm"},
	}, root.Libraries[0].Target(""))
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `cc_library "a" {`, "failed to parse"},
		{"unknown block", `java_library "a" {}`, "failed to decode"},
		{"unknown attribute", `cc_library "a" { sources = [] }`, "failed to decode"},
		{"missing label", `cc_binary { srcs = [] }`, "failed to decode"},
		{"missing cmd", `genrule "g" { outs = ["a"] }`, "failed to decode"},
		{"wrong type", `cc_library "a" { alwayslink = "yes please" }`, "failed to decode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.src), "BUILD.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDeclare(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	g := ccgraph.NewGraph()
	tc, err := gcc.FromConfig(cfg, "")
	require.NoError(t, err)
	composer, err := cc.NewComposer(g, cfg, tc)
	require.NoError(t, err)

	l := &Loader{Fs: testFs(), Skip: []string{cfg.BuildDir}}
	pkgs, err := l.Load(ctx, ".")
	require.NoError(t, err)

	d := &Declarer{Graph: g, Composer: composer, BuildDir: cfg.BuildDir}
	results, err := d.Declare(ctx, pkgs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "//:foo", results[0].Node.Name())
	assert.Equal(t, "//app:app", results[1].Node.Name())
	assert.Equal(t, "//gen:protos", results[2].Node.Name())

	require.NoError(t, ccgraph.Errors(g.ResolveDependencies()))
	require.NoError(t, g.Resolve(ctx, ccgraph.StaticOutputs{
		"//gen:protos_gen": {"out/gen/a.pb.cc", "out/gen/a.pb.h"},
	}))
	require.NoError(t, ccgraph.Errors(g.Finalize(ctx)))

	version, ok := g.Lookup("//:version")
	require.True(t, ok)
	assert.Equal(t, "mkdir -p out && gen-version > out/version.c", version.Command())

	protos, ok := g.Lookup("//gen:protos_gen")
	require.True(t, ok)
	assert.Equal(t, "mkdir -p out/gen && protoc --cpp_out=out/gen gen/a.proto out/version.c", protos.Command())

	unit, ok := g.Lookup("//gen:_protos#cc_out_sgen_sa_dpb_dcc")
	require.True(t, ok)
	assert.Contains(t, unit.Command(), "-c out/gen/a.pb.cc")

	app, ok := g.Lookup("//app:app")
	require.True(t, ok)
	assert.Contains(t, app.Command(), "out/app/_app#objs/libapp.a")
	assert.Contains(t, app.Command(), "out/libfoo.a out/gen/libprotos.a")
	assert.Contains(t, app.Command(), "-lm "+cc.BuildIDNone)
}

func TestDeclareGenrules(t *testing.T) {
	ctx := context.Background()
	g := ccgraph.NewGraph()

	l := &Loader{Fs: testFs(), Skip: []string{"out"}}
	pkgs, err := l.Load(ctx, ".")
	require.NoError(t, err)

	d := &Declarer{Graph: g, BuildDir: "out"}
	require.NoError(t, d.DeclareGenrules(ctx, pkgs))
	require.NoError(t, ccgraph.Errors(g.ResolveDependencies()))

	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name())
	}
	assert.ElementsMatch(t, []string{"//:version", "//gen:protos_gen"}, names)
}

func TestDeclareErrors(t *testing.T) {
	ctx := context.Background()
	g := ccgraph.NewGraph()
	tc, err := gcc.FromConfig(config.Default(), "")
	require.NoError(t, err)
	composer, err := cc.NewComposer(g, nil, tc)
	require.NoError(t, err)

	decl, err := Parse(strings.NewReader(`
genrule "empty" {
  cmd = "  "
}

cc_test "t" {
  srcs = ["t.cc"]
}

cc_library "ok" {
  srcs = ["ok.c"]
}
`), "BUILD.hcl")
	require.NoError(t, err)

	d := &Declarer{Graph: g, Composer: composer, BuildDir: "out"}
	_, err = d.Declare(ctx, []*Package{{Path: "p", File: "p/BUILD.hcl", Decl: decl}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cc.ErrNotImplemented), "got %v", err)
	assert.Contains(t, err.Error(), `genrule "empty": empty cmd`)

	_, ok := g.Lookup("//p:ok")
	assert.True(t, ok, "valid targets are still declared")
}
