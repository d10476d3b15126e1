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
	"io"

	"gopkg.in/yaml.v3"

	"github.com/google/ccgraph/pathtools"
)

// An OutputResolver reports the files a node actually produced.  It is only
// consulted for nodes whose outputs are not fully declared.
type OutputResolver interface {
	ResolveOutputs(ctx context.Context, n *Node) ([]string, error)
}

// OutputResolverFunc adapts a function to OutputResolver.
type OutputResolverFunc func(ctx context.Context, n *Node) ([]string, error)

func (f OutputResolverFunc) ResolveOutputs(ctx context.Context, n *Node) ([]string, error) {
	return f(ctx, n)
}

// DeclaredOutputs resolves every node to its declared outputs.  It suits
// graphs without wildcard outputs.
var DeclaredOutputs OutputResolver = OutputResolverFunc(
	func(ctx context.Context, n *Node) ([]string, error) {
		return append(n.Outputs(), n.OptionalOutputs()...), nil
	})

// StaticOutputs maps canonical node names to the files they produced.
// Nodes missing from the map fall back to their declared outputs.
type StaticOutputs map[string][]string

func (s StaticOutputs) ResolveOutputs(ctx context.Context, n *Node) ([]string, error) {
	if outs, ok := s[n.Name()]; ok {
		return append([]string(nil), outs...), nil
	}
	return DeclaredOutputs.ResolveOutputs(ctx, n)
}

// LoadOutputManifest reads a YAML document mapping node names to output
// files, as written by a previous build, into a StaticOutputs.
func LoadOutputManifest(r io.Reader) (StaticOutputs, error) {
	var manifest map[string][]string
	if err := yaml.NewDecoder(r).Decode(&manifest); err != nil {
		if err == io.EOF {
			return StaticOutputs{}, nil
		}
		return nil, fmt.Errorf("parsing output manifest: %w", err)
	}
	ret := make(StaticOutputs, len(manifest))
	for ref, outs := range manifest {
		name, err := Canonicalize(ref, "")
		if err != nil {
			return nil, fmt.Errorf("parsing output manifest: %w", err)
		}
		ret[name] = outs
	}
	return ret, nil
}

// GlobOutputs resolves outputs by matching each declared output pattern
// against a FileSystem, after the node has run.  Optional outputs that do
// not exist are left out; literal outputs are reported as declared.
type GlobOutputs struct {
	Fs pathtools.FileSystem
}

func (r GlobOutputs) ResolveOutputs(ctx context.Context, n *Node) ([]string, error) {
	var ret []string
	for _, out := range n.Outputs() {
		if !pathtools.IsGlob(out) {
			ret = append(ret, out)
			continue
		}
		matches, err := r.Fs.Glob(out)
		if err != nil {
			return nil, nodeErrorf(n, "globbing output %q: %w", out, err)
		}
		ret = append(ret, matches...)
	}
	for _, out := range n.OptionalOutputs() {
		matches, err := r.Fs.Glob(out)
		if err != nil {
			return nil, nodeErrorf(n, "globbing optional output %q: %w", out, err)
		}
		ret = append(ret, matches...)
	}
	return pathtools.FirstUniqueStrings(ret), nil
}

// Outputs returns the files n produces.  For nodes with fully declared
// outputs that is the declared list; otherwise the graph's OutputResolver
// is asked, which is only possible during and after Resolve.  Answers are
// cached so every caller sees the same list.
func (g *Graph) Outputs(ctx context.Context, n *Node) ([]string, error) {
	g.mu.Lock()
	if n.outputsResolved {
		defer g.mu.Unlock()
		return append([]string(nil), n.resolvedOutputs...), nil
	}
	if !n.HasDynamicOutputs() {
		g.mu.Unlock()
		return n.Outputs(), nil
	}
	resolver := g.resolver
	g.mu.Unlock()

	if resolver == nil {
		return nil, nodeErrorf(n, "outputs are only known after the node runs: %w", ErrNoResolver)
	}

	outs, err := resolver.ResolveOutputs(ctx, n)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !n.outputsResolved {
		n.resolvedOutputs = append([]string(nil), outs...)
		n.outputsResolved = true
	}
	return append([]string(nil), n.resolvedOutputs...), nil
}

// knownOutputs returns the outputs of n as far as they are known without
// consulting the resolver.
func (n *Node) knownOutputs() []string {
	if n.outputsResolved {
		return n.resolvedOutputs
	}
	if n.HasDynamicOutputs() {
		return nil
	}
	return n.outputs
}

// DynamicNodes returns the nodes whose outputs are only known after they
// run, in dependency order.
func (g *Graph) DynamicNodes() []*Node {
	var ret []*Node
	for _, n := range g.Sorted() {
		if n.HasDynamicOutputs() {
			ret = append(ret, n)
		}
	}
	return ret
}
