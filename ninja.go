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

package ccgraph

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/ccgraph/ninja"
)

const (
	ninjaRule      = "ccgraph_cmd"
	regenerateRule = "ccgraph_regenerate"
)

// PhonyName returns the ninja target that stands for the node itself.
func PhonyName(n *Node) string {
	if n.pkg == "" {
		return "node:" + n.shortName
	}
	return "node:" + n.pkg + ":" + n.shortName
}

// WriteNinja writes a finalized graph as a Ninja manifest.  Each node with a
// command becomes a build statement running that command; each node gets a
// phony target named by PhonyName that depends on its outputs, so nodes
// without outputs can still be built and depended on.
func (g *Graph) WriteNinja(w io.StringWriter) error {
	if phase := g.Phase(); phase != PhaseFinalized {
		return fmt.Errorf("writing ninja manifest: %w (%s)", ErrPhase, phase)
	}

	nw := ninja.NewWriter(w)

	nw.Comment("This file is generated by ccgraph. Do not edit.")
	nw.BlankLine()
	nw.Assign("ninja_required_version", "1.7.0")
	nw.BlankLine()
	nw.Rule(ninjaRule)
	nw.ScopedAssign("command", "$cmd")
	nw.ScopedAssign("description", "$desc")
	nw.BlankLine()
	if err := nw.Err(); err != nil {
		return err
	}

	var roots []string
	for _, n := range g.Sorted() {
		if err := writeNinjaNode(nw, n); err != nil {
			return err
		}
		if len(n.reverseDeps) == 0 {
			roots = append(roots, ninja.EscapePath(PhonyName(n)))
		}
	}

	sort.Strings(roots)
	if len(roots) > 0 {
		if err := nw.Default(roots...); err != nil {
			return err
		}
	}
	return nw.Err()
}

func writeNinjaNode(nw *ninja.Writer, n *Node) error {
	outputs := ninja.EscapePaths(n.knownOutputs())
	phony := ninja.EscapePath(PhonyName(n))

	var implicits []string
	for _, dep := range n.allDeps() {
		implicits = append(implicits, ninja.EscapePath(PhonyName(dep)))
	}

	if n.command != "" {
		statementOutputs := outputs
		if len(statementOutputs) == 0 {
			statementOutputs = []string{phony}
		}
		err := nw.Build(ninja.Build{
			Comment:   n.comment,
			Rule:      ninjaRule,
			Outputs:   statementOutputs,
			Inputs:    ninja.EscapePaths(n.inputs),
			Implicits: implicits,
			Variables: map[string]string{
				"cmd":  ninja.Escape(n.command),
				"desc": ninja.Escape(n.kind.String() + " " + n.name),
			},
		})
		if err != nil {
			return err
		}
		if len(outputs) == 0 {
			return nw.BlankLine()
		}
		implicits = nil
	}

	targets := append(outputs, implicits...)
	if n.command == "" {
		targets = append(targets, ninja.EscapePaths(n.inputs)...)
	}
	if err := nw.Phony(phony, targets...); err != nil {
		return err
	}
	return nw.BlankLine()
}

// A Regeneration describes the build statement that rebuilds the manifest
// itself.
type Regeneration struct {
	Manifest string
	Command  string
	// Inputs are the files the manifest is generated from.
	Inputs []string
	// Nodes run before the manifest is regenerated, typically the nodes
	// whose outputs are only known after they run.
	Nodes []*Node
}

// WriteRegeneration writes a generator statement rebuilding r.Manifest.
// Ninja brings the manifest up to date before anything else and reloads
// it when it changed, so nodes listed in r.Nodes have run by the time the
// new manifest is generated.
func WriteRegeneration(w io.StringWriter, r Regeneration) error {
	nw := ninja.NewWriter(w)

	nw.Rule(regenerateRule)
	nw.ScopedAssign("command", "$cmd")
	nw.ScopedAssign("description", "regenerating $out")
	nw.ScopedAssign("generator", "1")
	nw.ScopedAssign("restat", "1")
	nw.BlankLine()
	if err := nw.Err(); err != nil {
		return err
	}

	var implicits []string
	for _, n := range r.Nodes {
		implicits = append(implicits, ninja.EscapePath(PhonyName(n)))
	}
	err := nw.Build(ninja.Build{
		Rule:      regenerateRule,
		Outputs:   []string{ninja.EscapePath(r.Manifest)},
		Inputs:    ninja.EscapePaths(r.Inputs),
		Implicits: implicits,
		Variables: map[string]string{"cmd": ninja.Escape(r.Command)},
	})
	if err != nil {
		return err
	}
	return nw.BlankLine()
}
