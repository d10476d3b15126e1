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
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/config"
	"github.com/google/ccgraph/metrics"
)

// recorder is a toolchain that remembers the arguments of every command it
// was asked for, keyed by output file.
type recorder struct {
	mu       sync.Mutex
	compiles map[string]CompileArgs
	archives map[string]ArchiveArgs
	links    map[string]LinkArgs
}

func newRecorder() *recorder {
	return &recorder{
		compiles: make(map[string]CompileArgs),
		archives: make(map[string]ArchiveArgs),
		links:    make(map[string]LinkArgs),
	}
}

func (r *recorder) toolchain() *Toolchain {
	return &Toolchain{
		Name: "fake",
		Compile: func(a CompileArgs) (string, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.compiles[a.Out] = a
			return fmt.Sprintf("cc -c %s -o %s", a.Src, a.Out), nil
		},
		Archive: func(a ArchiveArgs) (string, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.archives[a.Out] = a
			return fmt.Sprintf("ar %s %s", a.Out, strings.Join(a.Inputs, " ")), nil
		},
		Link: func(a LinkArgs) (string, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.links[a.Out] = a
			return fmt.Sprintf("ld -o %s %s", a.Out, strings.Join(a.Flags, " ")), nil
		},
	}
}

type fixture struct {
	g       *ccgraph.Graph
	c       *Composer
	rec     *recorder
	metrics *metrics.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := metrics.NewRegistry()
	g := ccgraph.NewGraph(ccgraph.WithMetrics(reg))
	rec := newRecorder()
	c, err := NewComposer(g, config.Default(), rec.toolchain(), WithMetrics(reg))
	require.NoError(t, err)
	return &fixture{g: g, c: c, rec: rec, metrics: reg}
}

func (f *fixture) declare(t *testing.T, kind TargetKind, target Target) *Result {
	t.Helper()
	res, err := f.c.Declare(context.Background(), kind, &target)
	require.NoError(t, err)
	return res
}

func (f *fixture) generator(t *testing.T, name, pkg string, outputs ...string) *ccgraph.Node {
	t.Helper()
	n, err := f.g.CreateNode(ccgraph.NodeParams{
		Name:    name,
		Package: pkg,
		Outputs: outputs,
		Command: func(*ccgraph.Graph, *ccgraph.Node) (string, error) {
			return "gen " + name, nil
		},
	})
	require.NoError(t, err)
	return n
}

// build runs the remaining graph phases.
func (f *fixture) build(t *testing.T, resolver ccgraph.OutputResolver) {
	t.Helper()
	require.NoError(t, ccgraph.Errors(f.g.ResolveDependencies()))
	require.NoError(t, f.g.Resolve(context.Background(), resolver))
	require.NoError(t, ccgraph.Errors(f.g.Finalize(context.Background())))
}

func (f *fixture) node(t *testing.T, name string) *ccgraph.Node {
	t.Helper()
	n, ok := f.g.Lookup(name)
	require.True(t, ok, "no node %s", name)
	return n
}

func (f *fixture) countKind(kind ccgraph.NodeKind) int {
	count := 0
	for _, n := range f.g.Nodes() {
		if n.Kind() == kind {
			count++
		}
	}
	return count
}

func nodeNames(nodes []*ccgraph.Node) []string {
	ret := make([]string, len(nodes))
	for i, n := range nodes {
		ret[i] = n.Name()
	}
	return ret
}
