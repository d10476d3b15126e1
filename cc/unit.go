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
	"fmt"
	"path"
	"strings"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/pathtools"
)

// UnitParams describe one translation unit.
type UnitParams struct {
	Target  string // the target the unit belongs to
	Package string

	// Src is a file relative to Package, or a reference to a node with a
	// single source output, optionally selected with "|output".
	Src string

	Hdrs   []string      // headers the unit may include, relative to Package
	Deps   []string      // references whose exported labels the unit sees
	Flags  []string      // compiler flags recorded as labels on the unit
	Labels []label.Label // extra labels of the unit

	// Out is the object file name relative to the package's build
	// directory.  By default objects go to "_<target>#objs".
	Out string
	// NodeName overrides the generated "_<target>#cc_<source>" name.
	NodeName string

	PIC      bool
	TestOnly bool
}

// unit is a translation unit after its source has been resolved to a file
// relative to the source root.
type unit struct {
	UnitParams

	file     string
	hdrs     []string // relative to the source root
	deps     []string
	provides map[string]string
}

// CompileUnit creates the compile node for one source file.  A source that
// names another node is only accepted when it picks out exactly one
// declared output of that node; sources known only after a node runs must
// go through a library, which expands them once they exist.
func (c *Composer) CompileUnit(p UnitParams) (*ccgraph.Node, error) {
	u, err := c.resolveUnit(p)
	if err != nil {
		return nil, err
	}
	return c.compile(u)
}

func (c *Composer) resolveUnit(p UnitParams) (unit, error) {
	u := unit{
		UnitParams: p,
		hdrs:       c.packagePaths(p.Package, p.Hdrs),
		deps:       append([]string(nil), p.Deps...),
	}

	if !ccgraph.IsReference(p.Src) {
		if p.Src == "" {
			return unit{}, fmt.Errorf("%w: %s: empty source", ErrInvalidTarget, p.Target)
		}
		u.file = path.Join(p.Package, p.Src)
		return u, nil
	}

	gen, file, err := c.resolveNodeSource(p.Src, p.Package)
	if err != nil {
		return unit{}, fmt.Errorf("%s: %w", p.Target, err)
	}
	u.file = file
	u.deps = append(u.deps, gen.Name())
	return u, nil
}

// resolveNodeSource picks the single file a node reference stands for.
func (c *Composer) resolveNodeSource(src, pkg string) (*ccgraph.Node, string, error) {
	ref, output := ccgraph.SplitReference(src)
	gen, err := c.g.LookupReference(ref, pkg)
	if err != nil {
		return nil, "", fmt.Errorf("%w %q: %w", ErrNodeSource, src, err)
	}
	if gen.HasDynamicOutputs() {
		return nil, "", fmt.Errorf("%w %q: outputs of %s are only known after it runs",
			ErrNodeSource, src, gen)
	}

	outs := gen.Outputs()
	var candidates []string
	if output != "" {
		candidates = matchOutput(outs, output)
	} else {
		candidates, _ = pathtools.FilterByExtension(outs, c.cfg.SourceExts)
		if len(candidates) == 0 {
			candidates = outs
		}
	}

	switch len(candidates) {
	case 0:
		return nil, "", fmt.Errorf("%w %q: %s declares no matching output", ErrNodeSource, src, gen)
	case 1:
		return gen, candidates[0], nil
	default:
		return nil, "", fmt.Errorf("%w: %q could be any of %s; select one with \"|<output>\"",
			ErrAmbiguousSource, src, strings.Join(candidates, ", "))
	}
}

// matchOutput returns the files in outs that are output or end in
// "/"+output.
func matchOutput(outs []string, output string) []string {
	var ret []string
	for _, out := range outs {
		if out == output || strings.HasSuffix(out, "/"+output) {
			ret = append(ret, out)
		}
	}
	return ret
}

// compile creates the compile node of a resolved unit.  The command is
// computed when the graph is finalized, from the unit's effective labels:
// its own compiler flags plus the include directories, defines and
// pkg-config cflags exported by the header nodes it depends on.
func (c *Composer) compile(u unit) (*ccgraph.Node, error) {
	name := u.NodeName
	if name == "" {
		name = unitNodeName(u.Target, u.file)
	}

	out := u.Out
	if out != "" {
		out = c.outputPath(u.Package, out)
	} else {
		out = path.Join(c.objectsDir(u.Package, u.Target),
			ccgraph.Mangle(u.file)+c.cfg.Extensions.Object)
	}

	labels := append([]label.Label(nil), u.Labels...)
	labels = append(labels, label.Of(label.CompilerFlag, u.Flags...)...)

	file, pic := u.file, u.PIC
	return c.g.CreateNode(ccgraph.NodeParams{
		Name:     name,
		Package:  u.Package,
		Kind:     ccgraph.KindCompile,
		Comment:  fmt.Sprintf("compile %s for %s", file, u.Target),
		Inputs:   append([]string{file}, u.hdrs...),
		Outputs:  []string{out},
		Deps:     u.deps,
		Requires: []string{CapHeaders},
		Provides: u.provides,
		Labels:   labels,
		TestOnly: u.TestOnly,
		Command: func(g *ccgraph.Graph, n *ccgraph.Node) (string, error) {
			cfg := g.EffectiveConfig(n)
			return c.tc.Compile(CompileArgs{
				Src:             file,
				Out:             out,
				PIC:             pic,
				IncludeDirs:     cfg.IncludeDirs,
				Defines:         cfg.Defines,
				Flags:           cfg.CompilerFlags,
				PkgConfigCflags: cfg.PkgConfigCflags,
			})
		},
	})
}

// packagePaths makes literal paths relative to the source root.  Node
// references are left out.
func (c *Composer) packagePaths(pkg string, paths []string) []string {
	var ret []string
	for _, p := range paths {
		if !ccgraph.IsReference(p) {
			ret = append(ret, path.Join(pkg, p))
		}
	}
	return ret
}
