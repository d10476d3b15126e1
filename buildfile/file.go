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

// Package buildfile reads BUILD.hcl declaration files and declares their
// targets in a graph.
//
// A declaration file holds one block per target, labelled with the target
// name:
//
//	genrule "version" {
//	  outs = ["version.c"]
//	  cmd  = "echo 'const char *version = \"1.0\";' > {outs}"
//	}
//
//	cc_library "foo" {
//	  srcs     = ["foo.cc", ":version"]
//	  hdrs     = ["foo.h"]
//	  includes = ["."]
//	}
//
//	cc_binary "app" {
//	  srcs = ["main.cc"]
//	  deps = [":foo"]
//	}
package buildfile

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/google/ccgraph/cc"
)

// DefaultFileName is the name of declaration files.
const DefaultFileName = "BUILD.hcl"

// A File is the decoded content of one declaration file.
type File struct {
	Genrules        []*Genrule     `hcl:"genrule,block"`
	Libraries       []*TargetBlock `hcl:"cc_library,block"`
	Objects         []*TargetBlock `hcl:"cc_object,block"`
	Binaries        []*TargetBlock `hcl:"cc_binary,block"`
	SharedObjects   []*TargetBlock `hcl:"cc_shared_object,block"`
	Modules         []*TargetBlock `hcl:"cc_module,block"`
	StaticLibraries []*TargetBlock `hcl:"cc_static_library,block"`
	Tests           []*TargetBlock `hcl:"cc_test,block"`
}

// A TargetBlock declares one C/C++ target.
type TargetBlock struct {
	Name string `hcl:"name,label"`

	Srcs        []string `hcl:"srcs,optional"`
	Hdrs        []string `hcl:"hdrs,optional"`
	TextualHdrs []string `hcl:"textual_hdrs,optional"`
	Deps        []string `hcl:"deps,optional"`
	Includes    []string `hcl:"includes,optional"`
	Defines     []string `hcl:"defines,optional"`
	Copts       []string `hcl:"copts,optional"`
	Linkopts    []string `hcl:"linkopts,optional"`
	PkgConfig   []string `hcl:"pkg_config,optional"`
	AlwaysLink  bool     `hcl:"alwayslink,optional"`
	Out         string   `hcl:"out,optional"`
	TestOnly    bool     `hcl:"testonly,optional"`
	Tags        []string `hcl:"tags,optional"`
}

// Target converts the block to a declaration in pkg.
func (b *TargetBlock) Target(pkg string) *cc.Target {
	return &cc.Target{
		Name:        b.Name,
		Package:     pkg,
		Srcs:        b.Srcs,
		Hdrs:        b.Hdrs,
		TextualHdrs: b.TextualHdrs,
		Deps:        b.Deps,
		Includes:    b.Includes,
		Defines:     b.Defines,
		Copts:       b.Copts,
		Linkopts:    b.Linkopts,
		PkgConfig:   b.PkgConfig,
		AlwaysLink:  b.AlwaysLink,
		Out:         b.Out,
		TestOnly:    b.TestOnly,
		Tags:        b.Tags,
	}
}

// A Genrule declares a node that runs a shell command to produce files.
// Outputs may be wildcards, in which case the produced files are only known
// once the command has run.
//
// In Cmd, {srcs} expands to the input files, {outs} to the declared
// outputs and {outdir} to the package's build directory.
type Genrule struct {
	Name string `hcl:"name,label"`

	Srcs         []string `hcl:"srcs,optional"`
	Outs         []string `hcl:"outs,optional"`
	OptionalOuts []string `hcl:"optional_outs,optional"`
	Deps         []string `hcl:"deps,optional"`
	Cmd          string   `hcl:"cmd"`
	TestOnly     bool     `hcl:"testonly,optional"`
	Tags         []string `hcl:"tags,optional"`
}

// Parse decodes a declaration file.  filename is only used in messages.
func Parse(r io.Reader, filename string) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	return &file, nil
}

// targets returns the file's declarations with their kinds, grouped by
// kind in a fixed order.
func (f *File) targets() []declaration {
	var ret []declaration
	add := func(kind cc.TargetKind, blocks []*TargetBlock) {
		for _, b := range blocks {
			ret = append(ret, declaration{kind: kind, block: b})
		}
	}
	add(cc.KindObject, f.Objects)
	add(cc.KindLibrary, f.Libraries)
	add(cc.KindSharedObject, f.SharedObjects)
	add(cc.KindBinary, f.Binaries)
	add(cc.KindModule, f.Modules)
	add(cc.KindStaticLibrary, f.StaticLibraries)
	add(cc.KindTest, f.Tests)
	return ret
}

type declaration struct {
	kind  cc.TargetKind
	block *TargetBlock
}
