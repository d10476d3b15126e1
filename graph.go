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
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/metrics"
)

// A Phase is a stage in the life of a Graph.
type Phase int

const (
	// Nodes are being declared; dependencies are still references.
	PhaseDeclaring Phase = iota
	// Dependencies are resolved and pre-build hooks may expand the graph.
	PhaseResolving
	// Commands are computed and the graph is read only.
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclaring:
		return "declaring"
	case PhaseResolving:
		return "resolving"
	case PhaseFinalized:
		return "finalized"
	default:
		panic(fmt.Sprintf("unknown phase: %d", int(p)))
	}
}

const defaultLabelCacheSize = 4096

// A Graph holds every node of a build and moves through three phases:
//
//	     Phase                     Methods
//	-------------      ------------------------------------
//	1. Declaring       CreateNode, SetPreBuild
//	2. Resolving       ResolveDependencies, Resolve, AddDependency
//	3. Finalized       Finalize, WriteNinja
//
// Nodes may be created in the first two phases.  AddDependency is the only
// way to change an existing node and is allowed only while resolving.
type Graph struct {
	mu    sync.Mutex
	phase Phase

	nodes       map[string]*Node
	nodeList    []*Node // in creation order
	sorted      []*Node // dependencies before dependents
	sortedStale bool

	labelCache *lru.Cache[*Node, []*Node]
	metrics    *metrics.Registry

	resolver OutputResolver
}

// An Option configures a Graph.
type Option func(*Graph)

// WithMetrics records graph activity in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(g *Graph) {
		g.metrics = r
	}
}

// WithLabelCacheSize bounds the number of nodes whose effective label walk
// is memoised.
func WithLabelCacheSize(size int) Option {
	return func(g *Graph) {
		cache, err := lru.New[*Node, []*Node](size)
		if err != nil {
			panic(err)
		}
		g.labelCache = cache
	}
}

// NewGraph returns an empty Graph in the declaring phase.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.labelCache == nil {
		WithLabelCacheSize(defaultLabelCacheSize)(g)
	}
	return g
}

// Phase returns the current phase.
func (g *Graph) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// CreateNode adds a node to the graph.  While declaring, dependency
// references are kept as written and resolved by ResolveDependencies; while
// resolving they must name existing nodes and are resolved immediately.
func (g *Graph) CreateNode(params NodeParams) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseFinalized {
		return nil, fmt.Errorf("creating %s: %w (%s)", params.Name, ErrPhase, g.phase)
	}
	if err := validateName(params.Name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, err)
	}
	if err := validatePackage(params.Package); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, err)
	}

	name := NodeName(params.Package, params.Name)
	if _, exists := g.nodes[name]; exists {
		return nil, &NodeError{Node: name, Err: ErrDuplicateNode}
	}

	n := &Node{
		name:            name,
		shortName:       params.Name,
		pkg:             params.Package,
		kind:            params.Kind,
		comment:         params.Comment,
		inputs:          append([]string(nil), params.Inputs...),
		outputs:         append([]string(nil), params.Outputs...),
		optionalOutputs: append([]string(nil), params.OptionalOutputs...),
		requires:        append([]string(nil), params.Requires...),
		labels:          append([]label.Label(nil), params.Labels...),
		tags:            append([]string(nil), params.Tags...),
		exportLabels:    params.ExportLabels,
		binary:          params.Binary,
		testOnly:        params.TestOnly,
		commandFunc:     params.Command,
	}

	for _, ref := range params.Deps {
		canonical, err := Canonicalize(ref, params.Package)
		if err != nil {
			return nil, &NodeError{Node: name, Err: err}
		}
		n.depRefs = append(n.depRefs, canonical)
	}

	if len(params.Provides) > 0 {
		n.provides = make(map[string]string, len(params.Provides))
		for capability, ref := range params.Provides {
			canonical, err := Canonicalize(ref, params.Package)
			if err != nil {
				return nil, &NodeError{Node: name, Err: err}
			}
			n.provides[capability] = canonical
		}
	}

	if g.phase == PhaseResolving {
		errs := g.resolveProviders(n)
		errs = append(errs, g.resolveNodeDeps(n)...)
		if len(errs) > 0 {
			return nil, Errors(errs)
		}
		g.linkReverseDeps(n)
		g.sortedStale = true
	}

	g.nodes[name] = n
	g.nodeList = append(g.nodeList, n)
	g.metrics.NodeCreated(n.kind.String())

	return n, nil
}

// Lookup returns the node with the given canonical name.
func (g *Graph) Lookup(name string) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	return n, ok
}

// LookupReference canonicalizes ref relative to pkg and returns its node.
func (g *Graph) LookupReference(ref, pkg string) (*Node, error) {
	name, err := Canonicalize(ref, pkg)
	if err != nil {
		return nil, err
	}
	n, ok := g.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownNode, name)
	}
	return n, nil
}

// Nodes returns every node sorted by name.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	ret := append([]*Node(nil), g.nodeList...)
	sort.Slice(ret, func(i, j int) bool { return ret[i].name < ret[j].name })
	return ret
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodeList)
}

// SetPreBuild registers a hook to run on n during Resolve.  A node has at
// most one hook and it runs exactly once.
func (g *Graph) SetPreBuild(n *Node, hook PreBuildFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseFinalized {
		return nodeErrorf(n, "setting pre-build hook: %w (%s)", ErrPhase, g.phase)
	}
	if n.preBuild != nil {
		return nodeErrorf(n, "pre-build hook already set")
	}
	n.preBuild = hook
	return nil
}

// AddDependency makes child a dependency of parent.  It may only be called
// while resolving, typically from a pre-build hook, and refuses edges that
// would close a cycle.
func (g *Graph) AddDependency(parent, child *Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseResolving {
		return nodeErrorf(parent, "adding dependency on %s: %w (%s)", child, ErrPhase, g.phase)
	}
	if g.nodes[parent.name] != parent || g.nodes[child.name] != child {
		return nodeErrorf(parent, "adding dependency on %s: %w", child, ErrUnknownNode)
	}
	if reaches(child, parent) {
		return nodeErrorf(parent, "adding dependency on %s: %w", child, ErrDependencyCycle)
	}
	for _, dep := range parent.allDeps() {
		if dep == child {
			return nil
		}
	}

	parent.dynamicDeps = append(parent.dynamicDeps, child)
	child.reverseDeps = append(child.reverseDeps, parent)
	g.sortedStale = true
	g.labelCache.Purge()
	g.metrics.DynamicDependencyAdded()
	return nil
}

// Labels returns the node's own labels in their encoded string form,
// followed by its opaque tags.
func (g *Graph) Labels(n *Node) []string {
	return append(label.EncodeAll(n.labels), n.tags...)
}

// reaches reports whether to is from or a transitive dependency of from.
func reaches(from, to *Node) bool {
	visited := make(map[*Node]bool)
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n == to {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, dep := range n.allDeps() {
			if walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(from)
}
