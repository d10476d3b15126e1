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
)

// ResolveDependencies turns every node's dependency references into edges,
// honouring requires/provides, checks for cycles and moves the graph into
// the resolving phase.  All problems found are returned, not just the first;
// the graph stays in the declaring phase if there are any.
func (g *Graph) ResolveDependencies() (errs []error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseDeclaring {
		return []error{fmt.Errorf("resolving dependencies: %w (%s)", ErrPhase, g.phase)}
	}

	for _, n := range g.nodeList {
		errs = append(errs, g.resolveProviders(n)...)
	}
	if len(errs) > 0 {
		return errs
	}

	for _, n := range g.nodeList {
		errs = append(errs, g.resolveNodeDeps(n)...)
	}
	if len(errs) > 0 {
		return errs
	}

	if errs = g.updateDependencies(); len(errs) > 0 {
		return errs
	}

	for _, n := range g.nodeList {
		g.linkReverseDeps(n)
	}

	g.phase = PhaseResolving
	return nil
}

func (g *Graph) resolveProviders(n *Node) (errs []error) {
	if len(n.provides) == 0 {
		return nil
	}
	n.providers = make(map[string]*Node, len(n.provides))
	for capability, ref := range n.provides {
		p, ok := g.nodes[ref]
		if !ok {
			errs = append(errs, nodeErrorf(n, "provides %q: %w %q", capability, ErrUnknownNode, ref))
			continue
		}
		n.providers[capability] = p
	}
	return errs
}

// resolveNodeDeps resolves n's dependency references.  When n requires a
// capability that a dependency provides, the edge goes to the provider; the
// first capability in n's Requires order wins.
func (g *Graph) resolveNodeDeps(n *Node) (errs []error) {
	seen := make(map[*Node]bool, len(n.depRefs))
	n.deps = n.deps[:0]
	for _, ref := range n.depRefs {
		dep, ok := g.nodes[ref]
		if !ok {
			errs = append(errs, nodeErrorf(n, "depends on %w %q", ErrUnknownNode, ref))
			continue
		}
		for _, capability := range n.requires {
			if p, ok := dep.providers[capability]; ok {
				dep = p
				break
			}
		}
		if dep == n {
			errs = append(errs, nodeErrorf(n, "%w: depends on itself", ErrDependencyCycle))
			continue
		}
		if dep.testOnly && !n.testOnly {
			errs = append(errs, nodeErrorf(n, "depends on test-only node %s", dep))
			continue
		}
		if !seen[dep] {
			seen[dep] = true
			n.deps = append(n.deps, dep)
		}
	}
	return errs
}

func (g *Graph) linkReverseDeps(n *Node) {
	for _, dep := range n.deps {
		dep.reverseDeps = append(dep.reverseDeps, n)
	}
}

// updateDependencies checks the dependency graph for cycles and computes
// g.sorted, in which every node comes after all of its dependencies.
func (g *Graph) updateDependencies() (errs []error) {
	visited := make(map[*Node]bool)  // nodes that were already checked
	checking := make(map[*Node]bool) // nodes actively being checked

	sorted := make([]*Node, 0, len(g.nodeList))

	var check func(n *Node) []*Node

	cycleError := func(cycle []*Node) {
		// We are the "start" of the cycle, so we're responsible
		// for generating the errors.  The cycle list is in
		// reverse order because all the 'check' calls append
		// their own node to the list.
		msg := "encountered dependency cycle:"
		cur := cycle[0]
		for i := len(cycle) - 1; i >= 0; i-- {
			next := cycle[i]
			msg += fmt.Sprintf("\n    %q depends on %q", cur.name, next.name)
			cur = next
		}
		errs = append(errs, &NodeError{
			Node: cycle[len(cycle)-1].name,
			Err:  fmt.Errorf("%w: %s", ErrDependencyCycle, msg),
		})
	}

	check = func(n *Node) []*Node {
		visited[n] = true
		checking[n] = true
		defer delete(checking, n)

		for _, dep := range n.allDeps() {
			if checking[dep] {
				// This is a cycle.
				return []*Node{dep, n}
			}

			if !visited[dep] {
				cycle := check(dep)
				if cycle != nil {
					if cycle[0] == n {
						// We are the "start" of the cycle, so we're responsible
						// for generating the errors.
						cycleError(cycle)

						// We can continue processing this node's children to
						// find more cycles.  Since all the nodes that were
						// part of the found cycle were marked as visited we
						// won't run into that cycle again.
					} else {
						// We're not the "start" of the cycle, so we just append
						// our node to the list and return it.
						return append(cycle, n)
					}
				}
			}
		}

		sorted = append(sorted, n)

		return nil
	}

	for _, n := range g.nodeList {
		if !visited[n] {
			cycle := check(n)
			if cycle != nil {
				if cycle[len(cycle)-1] != n {
					panic("inconceivable!")
				}
				cycleError(cycle)
			}
		}
	}

	g.sorted = sorted
	g.sortedStale = false

	return errs
}

// sortedNodes returns the nodes with dependencies first, recomputing the
// order if nodes or edges were added since it was last computed.
func (g *Graph) sortedNodes() []*Node {
	if g.sortedStale {
		if errs := g.updateDependencies(); len(errs) > 0 {
			// AddDependency refuses cycles, so this cannot happen.
			panic(Errors(errs))
		}
	}
	return append([]*Node(nil), g.sorted...)
}

// WalkDeps visits every transitive dependency of n depth first, each one
// once.  visit is called before descending into a dependency; returning
// false skips that dependency's own dependencies.
func (g *Graph) WalkDeps(n *Node, visit func(dep, parent *Node) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	walkDeps(n, visit)
}

func walkDeps(top *Node, visit func(dep, parent *Node) bool) {
	visited := make(map[*Node]bool)
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, dep := range n.allDeps() {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			if visit(dep, n) {
				walk(dep)
			}
		}
	}
	walk(top)
}
