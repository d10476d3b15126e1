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
	"errors"
	"fmt"

	"github.com/google/ccgraph/internal/ctxlog"
)

// Resolve runs every pending pre-build hook, each exactly once, with all of
// the hook node's dependencies already resolved.  Hooks may create nodes,
// including nodes with hooks of their own, which run in the same call.
// Outputs of dynamic nodes are answered by resolver.
//
// Resolve stops at the first failing hook; hooks that already ran are not
// run again by a later call.
func (g *Graph) Resolve(ctx context.Context, resolver OutputResolver) error {
	g.mu.Lock()
	if g.phase != PhaseResolving {
		phase := g.phase
		g.mu.Unlock()
		return fmt.Errorf("resolving graph: %w (%s)", ErrPhase, phase)
	}
	if resolver != nil {
		g.resolver = resolver
	}
	g.mu.Unlock()

	logger := ctxlog.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := g.nextPreBuild()
		if n == nil {
			return nil
		}

		logger.Debug("running pre-build hook", "node", n.name)
		err := n.preBuild(ctx, g, n)
		g.metrics.PreBuildHookRan(err)
		if err != nil {
			logger.Error("pre-build hook failed", "node", n.name, "error", err)
			var nodeErr *NodeError
			if errors.As(err, &nodeErr) && nodeErr.Node == n.name {
				return err
			}
			return &NodeError{Node: n.name, Err: err}
		}
	}
}

// nextPreBuild returns the first node in dependency order whose hook has
// not run yet, and marks it as run.
func (g *Graph) nextPreBuild() *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.sortedNodes() {
		if n.preBuild != nil && !n.preBuildDone {
			n.preBuildDone = true
			return n
		}
	}
	return nil
}

// Resolved reports whether every pre-build hook has run.
func (g *Graph) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.nodeList {
		if n.preBuild != nil && !n.preBuildDone {
			return false
		}
	}
	return true
}
