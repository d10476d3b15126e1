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
	"github.com/google/ccgraph/label"
)

// EffectiveLabels returns n's own labels followed by the labels of every
// node reachable from n through label-exporting dependencies, in
// depth-first dependency order.  Each contributing node is visited once, so
// a dependency shared by a diamond is applied once, but the label list of
// every node is kept intact, repeats included.  A dependency that does not
// export its labels hides its whole subgraph.
//
// The contributing nodes are memoised per node until the next
// AddDependency, so a chain of dependents never recomputes the walk below it.
func (g *Graph) EffectiveLabels(n *Node) []label.Label {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ret []label.Label
	for _, c := range g.labelSources(n) {
		ret = append(ret, c.labels...)
	}
	return ret
}

// EffectiveConfig returns the effective labels of n partitioned by kind.
func (g *Graph) EffectiveConfig(n *Node) label.Config {
	return label.Partition(g.EffectiveLabels(n))
}

// labelSources returns n followed by the exporting nodes below it, each once.
func (g *Graph) labelSources(n *Node) []*Node {
	if cached, ok := g.labelCache.Get(n); ok {
		g.metrics.LabelCacheLookup(true)
		return cached
	}
	g.metrics.LabelCacheLookup(false)

	ret := []*Node{n}
	seen := map[*Node]bool{n: true}
	for _, dep := range n.allDeps() {
		if !dep.exportLabels {
			continue
		}
		for _, c := range g.labelSources(dep) {
			if !seen[c] {
				seen[c] = true
				ret = append(ret, c)
			}
		}
	}

	g.labelCache.Add(n, ret)
	return ret
}
