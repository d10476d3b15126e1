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

	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/pathtools"
)

// A NodeKind says what sort of work a node represents.  The graph itself
// treats all kinds alike; rule generators use the kind to decide which
// outputs of a dependency they consume.
type NodeKind int

const (
	KindGeneric NodeKind = iota
	KindCompile
	KindPlaceholder
	KindArchive
	KindLink
	KindHeaders
	KindAlias
)

func (k NodeKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindCompile:
		return "compile"
	case KindPlaceholder:
		return "placeholder"
	case KindArchive:
		return "archive"
	case KindLink:
		return "link"
	case KindHeaders:
		return "headers"
	case KindAlias:
		return "alias"
	default:
		panic(fmt.Sprintf("unknown node kind: %d", int(k)))
	}
}

// A CommandFunc computes a node's command when the graph is finalized, at
// which point the node's effective labels and its dependencies' outputs are
// complete.
type CommandFunc func(g *Graph, n *Node) (string, error)

// A PreBuildFunc runs during Graph.Resolve once every dependency of its node
// has been resolved.  It may create nodes and add them as dependencies of n.
type PreBuildFunc func(ctx context.Context, g *Graph, n *Node) error

// A NodeParams object contains the set of parameters that make up a node.
type NodeParams struct {
	Name    string   // The short name, unique within Package.
	Package string   // The package (directory) the node belongs to.
	Kind    NodeKind // What the node does.
	Comment string   // The comment that will appear above the build statement.

	Inputs          []string // Literal input files.
	Outputs         []string // Declared outputs; may contain glob patterns.
	OptionalOutputs []string // Outputs that may be missing after the node runs.

	Deps     []string          // References to nodes this node depends on.
	Requires []string          // Capabilities wanted from dependencies.
	Provides map[string]string // Capability to reference of the node providing it.

	Labels       []label.Label // Typed compile/link metadata.
	Tags         []string      // Opaque labels owned by other rule sets.
	ExportLabels bool          // Whether dependents see Labels.

	Binary   bool // The node produces a runnable artifact.
	TestOnly bool // Only test nodes may depend on this node.

	Command CommandFunc
}

// A Node is a unit of work in the build graph.  Everything about a node is
// fixed when it is created except its dependency set, which may grow during
// Graph.Resolve.
type Node struct {
	name      string
	shortName string
	pkg       string
	kind      NodeKind
	comment   string

	inputs          []string
	outputs         []string
	optionalOutputs []string

	depRefs  []string
	requires []string
	provides map[string]string

	labels       []label.Label
	tags         []string
	exportLabels bool

	binary   bool
	testOnly bool

	commandFunc CommandFunc
	command     string

	// Filled in by ResolveDependencies and AddDependency.
	deps        []*Node
	dynamicDeps []*Node
	reverseDeps []*Node
	providers   map[string]*Node

	preBuild     PreBuildFunc
	preBuildDone bool

	resolvedOutputs []string
	outputsResolved bool
}

func (n *Node) String() string {
	return n.name
}

// Name returns the canonical "//pkg:name" identity of the node.
func (n *Node) Name() string { return n.name }

// ShortName returns the name of the node within its package.
func (n *Node) ShortName() string { return n.shortName }

// Package returns the package the node belongs to.
func (n *Node) Package() string { return n.pkg }

// Kind returns the kind of step the node stands for.
func (n *Node) Kind() NodeKind { return n.kind }

// Comment returns the comment written above the node's build statement.
func (n *Node) Comment() string { return n.comment }

// IsBinary reports whether the node's output is runnable.
func (n *Node) IsBinary() bool { return n.binary }

// IsTestOnly reports whether only test targets may depend on the node.
func (n *Node) IsTestOnly() bool { return n.testOnly }

// ExportsLabels reports whether dependents see the node's effective labels.
func (n *Node) ExportsLabels() bool { return n.exportLabels }

// HasPreBuild reports whether a pre-build hook is registered on the node.
func (n *Node) HasPreBuild() bool { return n.preBuild != nil }

// Inputs returns the source files the node reads, relative to the source
// root.
func (n *Node) Inputs() []string { return append([]string(nil), n.inputs...) }

// Requires returns the capabilities the node asks of its dependencies, in
// order of preference.
func (n *Node) Requires() []string { return append([]string(nil), n.requires...) }

// Tags returns the node's free-form tags.
func (n *Node) Tags() []string { return append([]string(nil), n.tags...) }

// Labels returns the node's own labels, without those of its dependencies.
func (n *Node) Labels() []label.Label { return append([]label.Label(nil), n.labels...) }

// Outputs returns the declared outputs, which may be glob patterns.  Use
// Graph.Outputs for the files a node actually produces.
func (n *Node) Outputs() []string { return append([]string(nil), n.outputs...) }

// OptionalOutputs returns the declared outputs the node may or may not
// produce.
func (n *Node) OptionalOutputs() []string {
	return append([]string(nil), n.optionalOutputs...)
}

// HasDynamicOutputs reports whether the files the node produces are only
// known after it runs.
func (n *Node) HasDynamicOutputs() bool {
	if len(n.outputs) == 0 && len(n.optionalOutputs) > 0 {
		return true
	}
	for _, out := range n.outputs {
		if pathtools.IsGlob(out) {
			return true
		}
	}
	return false
}

// Provides returns a copy of the node's capability map, capability to
// canonical node name.
func (n *Node) Provides() map[string]string {
	ret := make(map[string]string, len(n.provides))
	for k, v := range n.provides {
		ret[k] = v
	}
	return ret
}

// Provider returns the node providing capability, once dependencies are
// resolved.
func (n *Node) Provider(capability string) (*Node, bool) {
	p, ok := n.providers[capability]
	return p, ok
}

// Deps returns the node's dependencies: those declared, followed by those
// added during expansion.
func (n *Node) Deps() []*Node {
	ret := make([]*Node, 0, len(n.deps)+len(n.dynamicDeps))
	ret = append(ret, n.deps...)
	return append(ret, n.dynamicDeps...)
}

// DynamicDeps returns only the dependencies added during expansion.
func (n *Node) DynamicDeps() []*Node {
	return append([]*Node(nil), n.dynamicDeps...)
}

// Command returns the command computed by Graph.Finalize, or "" for nodes
// without one.
func (n *Node) Command() string { return n.command }

func (n *Node) allDeps() []*Node {
	if len(n.dynamicDeps) == 0 {
		return n.deps
	}
	return n.Deps()
}
