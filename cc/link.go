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

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/pathtools"
)

// LinkParams describe one link.
type LinkParams struct {
	Name    string
	Package string

	Deps []string
	// Out is the file name relative to the package's build directory.
	Out string
	// Shared links a shared object, keeping every object of every archive.
	Shared bool
	// Binary marks the output as runnable.
	Binary bool

	Labels   []label.Label
	Provides map[string]string
	TestOnly bool
}

// Link creates a link node.  The command links every object and archive
// reachable through its dependencies as one group and applies the library
// paths, link flags, pkg-config libraries and always-link markers found in
// its effective labels.  Build IDs are always disabled.
func (c *Composer) Link(p LinkParams) (*ccgraph.Node, error) {
	if p.Out == "" {
		return nil, fmt.Errorf("%w: link %s has no output", ErrInvalidTarget, p.Name)
	}
	out := c.outputPath(p.Package, p.Out)
	shared := p.Shared
	sharedExt := c.cfg.Extensions.Shared

	kind := "binary"
	if shared {
		kind = "shared object"
	}

	return c.g.CreateNode(ccgraph.NodeParams{
		Name:     p.Name,
		Package:  p.Package,
		Kind:     ccgraph.KindLink,
		Comment:  fmt.Sprintf("link %s %s", kind, out),
		Outputs:  []string{out},
		Deps:     p.Deps,
		Requires: []string{CapCompiled},
		Provides: p.Provides,
		Labels:   p.Labels,
		Binary:   p.Binary,
		TestOnly: p.TestOnly,
		Command: func(g *ccgraph.Graph, n *ccgraph.Node) (string, error) {
			cfg := g.EffectiveConfig(n)
			in := c.gatherLinkInputs(n)

			alwaysLink := make(map[string]bool, len(cfg.AlwaysLink))
			for _, a := range cfg.AlwaysLink {
				alwaysLink[a] = true
			}
			var whole []string
			for _, a := range in.archives {
				if shared || alwaysLink[a] {
					whole = append(whole, a)
				}
			}

			var dirs, libs []string
			for _, lib := range cfg.LibraryPaths {
				dirs = append(dirs, path.Dir(lib))
				libs = append(libs, LinkName(lib, sharedExt))
			}

			flags := append([]string(nil), cfg.LinkFlags...)
			flags = append(flags, BuildIDNone)

			return c.tc.Link(LinkArgs{
				Out:           out,
				Shared:        shared,
				Objects:       in.objects,
				Archives:      in.archives,
				WholeArchive:  whole,
				LibraryDirs:   pathtools.FirstUniqueStrings(dirs),
				Libraries:     pathtools.FirstUniqueStrings(libs),
				Flags:         flags,
				PkgConfigLibs: cfg.PkgConfigLibs,
			})
		},
	})
}

type linkInputs struct {
	objects  []string
	archives []string
}

// gatherLinkInputs collects the objects and archives a link node consumes,
// depth first in dependency order.  Members of an archive are not
// collected again, and other link nodes contribute no inputs: shared
// objects are linked by name through their library-path labels.
func (c *Composer) gatherLinkInputs(n *ccgraph.Node) linkInputs {
	var in linkInputs
	visited := make(map[*ccgraph.Node]bool)

	var walk func(parent *ccgraph.Node)
	walk = func(parent *ccgraph.Node) {
		archived := c.archived[parent]
		for _, dep := range parent.Deps() {
			if visited[dep] || archived[dep] {
				continue
			}
			visited[dep] = true

			switch dep.Kind() {
			case ccgraph.KindCompile:
				in.objects = append(in.objects, dep.Files()...)
			case ccgraph.KindArchive:
				in.archives = append(in.archives, dep.Files()...)
				walk(dep)
			case ccgraph.KindPlaceholder, ccgraph.KindAlias:
				walk(dep)
			}
		}
	}
	walk(n)
	return in
}
