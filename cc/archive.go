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

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/pathtools"
)

// ArchiveParams describe one static archive.
type ArchiveParams struct {
	Name    string
	Package string

	// Members are the compile nodes and placeholders whose objects go into
	// the archive.  Objects of a placeholder are those of the compile nodes
	// it gains when it is expanded.
	Members []*ccgraph.Node
	// Deps are the libraries whose link labels the archive passes on.
	// Their objects are not archived.
	Deps []string
	// Inputs are prebuilt archives, relative to the source root.
	Inputs []string
	// Out is the archive file name relative to the package's build
	// directory.
	Out string

	Labels   []label.Label
	Provides map[string]string
	TestOnly bool
}

// Archive creates an archive node holding the objects of its Members plus
// the prebuilt Inputs.  The archive exports its labels, which is how link
// options reach whatever links it.
func (c *Composer) Archive(p ArchiveParams) (*ccgraph.Node, error) {
	if p.Out == "" {
		return nil, fmt.Errorf("%w: archive %s has no output", ErrInvalidTarget, p.Name)
	}
	out := c.outputPath(p.Package, p.Out)
	prebuilt := append([]string(nil), p.Inputs...)
	members := append([]*ccgraph.Node(nil), p.Members...)

	deps := append([]string(nil), p.Deps...)
	for _, m := range members {
		deps = append(deps, m.Name())
	}

	n, err := c.g.CreateNode(ccgraph.NodeParams{
		Name:         p.Name,
		Package:      p.Package,
		Kind:         ccgraph.KindArchive,
		Comment:      fmt.Sprintf("archive %s", out),
		Inputs:       prebuilt,
		Outputs:      []string{out},
		Deps:         deps,
		Requires:     []string{CapCompiled},
		Provides:     p.Provides,
		Labels:       p.Labels,
		ExportLabels: true,
		TestOnly:     p.TestOnly,
		Command: func(g *ccgraph.Graph, n *ccgraph.Node) (string, error) {
			return c.tc.Archive(ArchiveArgs{
				Out:    out,
				Inputs: pathtools.FirstUniqueStrings(append(memberObjects(members), prebuilt...)),
			})
		},
	})
	if err != nil {
		return nil, err
	}

	set := make(map[*ccgraph.Node]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	c.archived[n] = set
	return n, nil
}

// memberObjects returns the objects of an archive's members.
func memberObjects(members []*ccgraph.Node) []string {
	var ret []string
	for _, m := range members {
		switch m.Kind() {
		case ccgraph.KindCompile:
			ret = append(ret, m.Files()...)
		case ccgraph.KindPlaceholder:
			for _, child := range m.Deps() {
				if child.Kind() == ccgraph.KindCompile {
					ret = append(ret, child.Files()...)
				}
			}
		}
	}
	return ret
}
