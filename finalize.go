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
	"context"
	"fmt"
)

// Finalize resolves the outputs of every dynamic node, computes every
// node's command in dependency order and makes the graph read only.  All
// pre-build hooks must have run.
func (g *Graph) Finalize(ctx context.Context) (errs []error) {
	g.mu.Lock()
	if g.phase != PhaseResolving {
		phase := g.phase
		g.mu.Unlock()
		return []error{fmt.Errorf("finalizing graph: %w (%s)", ErrPhase, phase)}
	}
	for _, n := range g.nodeList {
		if n.preBuild != nil && !n.preBuildDone {
			errs = append(errs, nodeErrorf(n, "pre-build hook has not run: %w", ErrPhase))
		}
	}
	sorted := g.sortedNodes()
	g.mu.Unlock()

	if len(errs) > 0 {
		return errs
	}

	for _, n := range sorted {
		if n.HasDynamicOutputs() {
			if _, err := g.Outputs(ctx, n); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// Command functions read labels and outputs through the graph, so the
	// lock is not held while they run.
	for _, n := range sorted {
		if n.commandFunc == nil {
			continue
		}
		cmd, err := n.commandFunc(g, n)
		if err != nil {
			errs = append(errs, &NodeError{Node: n.name, Err: err})
			continue
		}
		n.command = cmd
	}
	if len(errs) > 0 {
		return errs
	}

	g.mu.Lock()
	g.sorted = sorted
	g.phase = PhaseFinalized
	g.mu.Unlock()
	return nil
}

// Files returns the files n produces as far as they are known: the
// resolved outputs of a dynamic node, once resolved, or the declared
// outputs otherwise.  Command functions use it to read the outputs of
// dependencies during Finalize.
func (n *Node) Files() []string {
	return append([]string(nil), n.knownOutputs()...)
}

// Sorted returns every node with dependencies before their dependents.
func (g *Graph) Sorted() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortedNodes()
}
