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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/metrics"
)

func mustCreate(t *testing.T, g *Graph, params NodeParams) *Node {
	t.Helper()
	n, err := g.CreateNode(params)
	require.NoError(t, err)
	return n
}

func mustResolveDeps(t *testing.T, g *Graph) {
	t.Helper()
	require.NoError(t, Errors(g.ResolveDependencies()))
}

func names(nodes []*Node) []string {
	ret := make([]string, len(nodes))
	for i, n := range nodes {
		ret[i] = n.Name()
	}
	return ret
}

func TestCreateNode(t *testing.T) {
	g := NewGraph()
	n := mustCreate(t, g, NodeParams{
		Name:    "foo",
		Package: "a/b",
		Kind:    KindCompile,
		Outputs: []string{"out/a/b/foo.o"},
	})

	assert.Equal(t, "//a/b:foo", n.Name())
	assert.Equal(t, "foo", n.ShortName())
	assert.Equal(t, "a/b", n.Package())
	assert.Equal(t, KindCompile, n.Kind())

	got, ok := g.Lookup("//a/b:foo")
	assert.True(t, ok)
	assert.Same(t, n, got)

	got, err := g.LookupReference(":foo", "a/b")
	require.NoError(t, err)
	assert.Same(t, n, got)

	_, err = g.LookupReference(":bar", "a/b")
	assert.True(t, errors.Is(err, ErrUnknownNode))

	_, err = g.CreateNode(NodeParams{Name: "foo", Package: "a/b"})
	assert.True(t, errors.Is(err, ErrDuplicateNode))

	_, err = g.CreateNode(NodeParams{Name: "bad name", Package: "a/b"})
	assert.True(t, errors.Is(err, ErrInvalidReference))

	_, err = g.CreateNode(NodeParams{Name: "x", Package: "/abs"})
	assert.True(t, errors.Is(err, ErrInvalidReference))

	_, err = g.CreateNode(NodeParams{Name: "y", Deps: []string{"a/b"}})
	assert.True(t, errors.Is(err, ErrInvalidReference))
}

func TestNodeAccessorsCopy(t *testing.T) {
	g := NewGraph()
	n := mustCreate(t, g, NodeParams{
		Name:     "foo",
		Outputs:  []string{"foo.o"},
		Provides: map[string]string{"cc": ":foo"},
	})
	n.Outputs()[0] = "changed"
	n.Provides()["cc"] = "changed"
	assert.Equal(t, []string{"foo.o"}, n.Outputs())
	assert.Equal(t, map[string]string{"cc": "//:foo"}, n.Provides())
}

func TestHasDynamicOutputs(t *testing.T) {
	testCases := []struct {
		params NodeParams
		want   bool
	}{
		{NodeParams{Outputs: []string{"a.o"}}, false},
		{NodeParams{Outputs: []string{"gen/*.cc"}}, true},
		{NodeParams{OptionalOutputs: []string{"maybe.cc"}}, true},
		{NodeParams{Outputs: []string{"a.o"}, OptionalOutputs: []string{"b.o"}}, false},
		{NodeParams{}, false},
	}
	g := NewGraph()
	for i, tc := range testCases {
		tc.params.Name = "n" + string(rune('a'+i))
		n := mustCreate(t, g, tc.params)
		assert.Equal(t, tc.want, n.HasDynamicOutputs(), "case %d", i)
	}
}

func TestResolveDependencies(t *testing.T) {
	g := NewGraph()
	a := mustCreate(t, g, NodeParams{Name: "a", Package: "p"})
	b := mustCreate(t, g, NodeParams{Name: "b", Package: "p", Deps: []string{":a", "a"}})
	c := mustCreate(t, g, NodeParams{Name: "c", Package: "q", Deps: []string{"//p:b", "//p:a"}})

	assert.Equal(t, PhaseDeclaring, g.Phase())
	mustResolveDeps(t, g)
	assert.Equal(t, PhaseResolving, g.Phase())

	assert.Equal(t, []*Node{a}, b.Deps(), "duplicate references collapse")
	assert.Equal(t, []*Node{b, a}, c.Deps())

	sorted := g.Sorted()
	assert.Equal(t, []string{"//p:a", "//p:b", "//q:c"}, names(sorted))

	errs := g.ResolveDependencies()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrPhase))
}

func TestResolveDependenciesErrors(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		g := NewGraph()
		mustCreate(t, g, NodeParams{Name: "a", Deps: []string{":missing", ":gone"}})
		errs := g.ResolveDependencies()
		require.Len(t, errs, 2)
		for _, err := range errs {
			assert.True(t, errors.Is(err, ErrUnknownNode))
			var nodeErr *NodeError
			require.True(t, errors.As(err, &nodeErr))
			assert.Equal(t, "//:a", nodeErr.Node)
		}
		assert.Equal(t, PhaseDeclaring, g.Phase())
	})

	t.Run("cycle", func(t *testing.T) {
		g := NewGraph()
		mustCreate(t, g, NodeParams{Name: "a", Deps: []string{":b"}})
		mustCreate(t, g, NodeParams{Name: "b", Deps: []string{":c"}})
		mustCreate(t, g, NodeParams{Name: "c", Deps: []string{":a"}})
		errs := g.ResolveDependencies()
		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], ErrDependencyCycle))
		assert.Contains(t, errs[0].Error(), `"//:a" depends on "//:b"`)
	})

	t.Run("self", func(t *testing.T) {
		g := NewGraph()
		mustCreate(t, g, NodeParams{Name: "a", Deps: []string{":a"}})
		errs := g.ResolveDependencies()
		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], ErrDependencyCycle))
	})

	t.Run("test only", func(t *testing.T) {
		g := NewGraph()
		mustCreate(t, g, NodeParams{Name: "testlib", TestOnly: true})
		mustCreate(t, g, NodeParams{Name: "test", TestOnly: true, Deps: []string{":testlib"}})
		mustCreate(t, g, NodeParams{Name: "prod", Deps: []string{":testlib"}})
		errs := g.ResolveDependencies()
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "test-only")
	})
}

func TestRequiresProvides(t *testing.T) {
	g := NewGraph()
	hdrs := mustCreate(t, g, NodeParams{Name: "_lib#hdrs"})
	archive := mustCreate(t, g, NodeParams{Name: "_lib#a"})
	mustCreate(t, g, NodeParams{
		Name: "lib",
		Deps: []string{":_lib#a"},
		Provides: map[string]string{
			"cc":      ":_lib#a",
			"cc_hdrs": ":_lib#hdrs",
		},
	})
	wantsHdrs := mustCreate(t, g, NodeParams{
		Name:     "tu",
		Deps:     []string{":lib"},
		Requires: []string{"cc_hdrs", "cc"},
	})
	wantsLib := mustCreate(t, g, NodeParams{
		Name:     "bin",
		Deps:     []string{":lib"},
		Requires: []string{"cc"},
	})
	plain := mustCreate(t, g, NodeParams{Name: "other", Deps: []string{":lib"}})
	mustResolveDeps(t, g)

	assert.Equal(t, []*Node{hdrs}, wantsHdrs.Deps(), "first required capability wins")
	assert.Equal(t, []*Node{archive}, wantsLib.Deps())
	assert.Equal(t, []string{"//:lib"}, names(plain.Deps()))

	lib, _ := g.Lookup("//:lib")
	p, ok := lib.Provider("cc")
	assert.True(t, ok)
	assert.Same(t, archive, p)
}

func TestRequiresProvidesUnknownProvider(t *testing.T) {
	g := NewGraph()
	mustCreate(t, g, NodeParams{Name: "lib", Provides: map[string]string{"cc": ":nope"}})
	errs := g.ResolveDependencies()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrUnknownNode))
}

func TestAddDependency(t *testing.T) {
	g := NewGraph()
	a := mustCreate(t, g, NodeParams{Name: "a"})
	b := mustCreate(t, g, NodeParams{Name: "b", Deps: []string{":a"}})

	err := g.AddDependency(a, b)
	assert.True(t, errors.Is(err, ErrPhase), "not allowed while declaring")

	mustResolveDeps(t, g)

	c := mustCreate(t, g, NodeParams{Name: "c"})
	require.NoError(t, g.AddDependency(a, c))
	require.NoError(t, g.AddDependency(a, c), "repeated edges are ignored")
	assert.Equal(t, []*Node{c}, a.Deps())
	assert.Equal(t, []*Node{c}, a.DynamicDeps())
	assert.Equal(t, []string{"//:c", "//:a", "//:b"}, names(g.Sorted()))

	err = g.AddDependency(c, b)
	assert.True(t, errors.Is(err, ErrDependencyCycle))
	err = g.AddDependency(c, c)
	assert.True(t, errors.Is(err, ErrDependencyCycle))

	other := NewGraph()
	stranger := mustCreate(t, other, NodeParams{Name: "stranger"})
	err = g.AddDependency(a, stranger)
	assert.True(t, errors.Is(err, ErrUnknownNode))

	require.Empty(t, g.Finalize(context.Background()))
	err = g.AddDependency(b, c)
	assert.True(t, errors.Is(err, ErrPhase), "not allowed once finalized")
	_, err = g.CreateNode(NodeParams{Name: "late"})
	assert.True(t, errors.Is(err, ErrPhase))
}

func TestCreateNodeWhileResolving(t *testing.T) {
	g := NewGraph()
	mustCreate(t, g, NodeParams{Name: "a"})
	mustResolveDeps(t, g)

	b := mustCreate(t, g, NodeParams{Name: "b", Deps: []string{":a"}})
	assert.Equal(t, []string{"//:a"}, names(b.Deps()))

	_, err := g.CreateNode(NodeParams{Name: "c", Deps: []string{":missing"}})
	assert.True(t, errors.Is(err, ErrUnknownNode))
	_, ok := g.Lookup("//:c")
	assert.False(t, ok, "failed nodes are not added")
}

func TestWalkDeps(t *testing.T) {
	g := NewGraph()
	mustCreate(t, g, NodeParams{Name: "leaf"})
	mustCreate(t, g, NodeParams{Name: "left", Deps: []string{":leaf"}})
	mustCreate(t, g, NodeParams{Name: "right", Deps: []string{":leaf"}})
	top := mustCreate(t, g, NodeParams{Name: "top", Deps: []string{":left", ":right"}})
	mustResolveDeps(t, g)

	var visited []string
	g.WalkDeps(top, func(dep, parent *Node) bool {
		visited = append(visited, dep.ShortName())
		return true
	})
	assert.Equal(t, []string{"left", "leaf", "right"}, visited)

	visited = nil
	g.WalkDeps(top, func(dep, parent *Node) bool {
		visited = append(visited, dep.ShortName())
		return dep.ShortName() != "left"
	})
	assert.Equal(t, []string{"left", "right", "leaf"}, visited)
}

func TestEffectiveLabels(t *testing.T) {
	reg := metrics.NewRegistry()
	g := NewGraph(WithMetrics(reg))

	inc := func(dir string) label.Label { return label.New(label.IncludeDir, dir) }

	// A diamond: top depends on left and right, both of which depend on base.
	mustCreate(t, g, NodeParams{Name: "base", ExportLabels: true, Labels: []label.Label{inc("base")}})
	mustCreate(t, g, NodeParams{Name: "left", ExportLabels: true, Deps: []string{":base"},
		Labels: []label.Label{inc("left")}})
	mustCreate(t, g, NodeParams{Name: "right", ExportLabels: true, Deps: []string{":base"},
		Labels: []label.Label{inc("right"), inc("base")}})
	mustCreate(t, g, NodeParams{Name: "private", Deps: []string{":base"},
		Labels: []label.Label{inc("private")}})
	top := mustCreate(t, g, NodeParams{Name: "top", Deps: []string{":left", ":right", ":private"},
		Labels: []label.Label{label.New(label.Define, "TOP")}})
	mustResolveDeps(t, g)

	want := []label.Label{
		label.New(label.Define, "TOP"),
		inc("left"),
		inc("base"),
		inc("right"),
		inc("base"),
	}
	if diff := cmp.Diff(want, g.EffectiveLabels(top)); diff != "" {
		t.Errorf("EffectiveLabels (-want +got):\n%s", diff)
	}

	cfg := g.EffectiveConfig(top)
	assert.Equal(t, []string{"left", "base", "right", "base"}, cfg.IncludeDirs)
	assert.Equal(t, []string{"TOP"}, cfg.Defines)

	hits := testutil.ToFloat64(reg.LabelCacheLookups.WithLabelValues("hit"))
	assert.Greater(t, hits, 0.0, "base is computed once and then reused")

	// Adding an edge invalidates memoised sets.
	extra := mustCreate(t, g, NodeParams{Name: "extra", ExportLabels: true,
		Labels: []label.Label{label.New(label.LinkFlag, "-lm")}})
	left, _ := g.Lookup("//:left")
	require.NoError(t, g.AddDependency(left, extra))
	assert.Contains(t, g.EffectiveLabels(top), label.New(label.LinkFlag, "-lm"))
}

func TestLabels(t *testing.T) {
	g := NewGraph()
	n := mustCreate(t, g, NodeParams{
		Name:   "a",
		Labels: []label.Label{label.New(label.IncludeDir, "inc"), label.New(label.Define, "A=1")},
		Tags:   []string{"go:foo"},
	})
	assert.Equal(t, []string{"cc:inc:inc", "cc:def:A=1", "go:foo"}, g.Labels(n))
}

func TestResolveRunsHooksOnceInDependencyOrder(t *testing.T) {
	ctx := context.Background()
	reg := metrics.NewRegistry()
	g := NewGraph(WithMetrics(reg))

	upstream := mustCreate(t, g, NodeParams{Name: "up"})
	placeholder := mustCreate(t, g, NodeParams{Name: "ph", Kind: KindPlaceholder, Deps: []string{":up"}})
	mustCreate(t, g, NodeParams{Name: "top", Deps: []string{":ph"}})

	var order []string
	require.NoError(t, g.SetPreBuild(upstream, func(ctx context.Context, g *Graph, n *Node) error {
		order = append(order, n.ShortName())
		return nil
	}))
	require.NoError(t, g.SetPreBuild(placeholder, func(ctx context.Context, g *Graph, n *Node) error {
		order = append(order, n.ShortName())
		child, err := g.CreateNode(NodeParams{Name: "child"})
		if err != nil {
			return err
		}
		if err := g.SetPreBuild(child, func(ctx context.Context, g *Graph, n *Node) error {
			order = append(order, n.ShortName())
			return nil
		}); err != nil {
			return err
		}
		return g.AddDependency(n, child)
	}))
	assert.Error(t, g.SetPreBuild(upstream, func(context.Context, *Graph, *Node) error { return nil }))

	errs := g.Finalize(ctx)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrPhase))

	assert.True(t, errors.Is(g.Resolve(ctx, nil), ErrPhase), "dependencies must be resolved first")

	mustResolveDeps(t, g)
	assert.False(t, g.Resolved())
	require.NoError(t, g.Resolve(ctx, nil))
	require.NoError(t, g.Resolve(ctx, nil))
	assert.True(t, g.Resolved())

	assert.Equal(t, []string{"up", "ph", "child"}, order)
	assert.Equal(t, 3.0, testutil.ToFloat64(reg.PreBuildHooks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.DynamicDependencies))

	require.Empty(t, g.Finalize(ctx))
	assert.Equal(t, PhaseFinalized, g.Phase())
}

func TestResolveHookError(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	n := mustCreate(t, g, NodeParams{Name: "bad"})
	hookErr := errors.New("boom")
	require.NoError(t, g.SetPreBuild(n, func(context.Context, *Graph, *Node) error { return hookErr }))
	mustResolveDeps(t, g)

	err := g.Resolve(ctx, nil)
	assert.True(t, errors.Is(err, hookErr))
	var nodeErr *NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "//:bad", nodeErr.Node)

	assert.NoError(t, g.Resolve(ctx, nil), "a failed hook is not retried")
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGraph()
	n := mustCreate(t, g, NodeParams{Name: "a"})
	require.NoError(t, g.SetPreBuild(n, func(context.Context, *Graph, *Node) error { return nil }))
	mustResolveDeps(t, g)
	assert.True(t, errors.Is(g.Resolve(ctx, nil), context.Canceled))
	assert.False(t, g.Resolved())
}

func TestFinalizeCommands(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	mustCreate(t, g, NodeParams{
		Name:         "obj",
		Kind:         KindCompile,
		Outputs:      []string{"out/obj.o"},
		ExportLabels: true,
		Labels:       []label.Label{label.New(label.LinkFlag, "-lz")},
		Command: func(g *Graph, n *Node) (string, error) {
			return "cc -c -o " + strings.Join(n.Files(), " "), nil
		},
	})
	link := mustCreate(t, g, NodeParams{
		Name:    "bin",
		Kind:    KindLink,
		Deps:    []string{":obj"},
		Outputs: []string{"out/bin"},
		Binary:  true,
		Command: func(g *Graph, n *Node) (string, error) {
			var objs []string
			for _, dep := range n.Deps() {
				objs = append(objs, dep.Files()...)
			}
			return "cc -o out/bin " + strings.Join(objs, " ") + " " +
				strings.Join(g.EffectiveConfig(n).LinkFlags, " "), nil
		},
	})
	failing := mustCreate(t, g, NodeParams{
		Name:    "failing",
		Command: func(*Graph, *Node) (string, error) { return "", errors.New("no toolchain") },
	})
	mustResolveDeps(t, g)

	errs := g.Finalize(ctx)
	require.Len(t, errs, 1)
	var nodeErr *NodeError
	require.True(t, errors.As(errs[0], &nodeErr))
	assert.Equal(t, failing.Name(), nodeErr.Node)
	assert.Equal(t, PhaseResolving, g.Phase())

	assert.Equal(t, "cc -o out/bin out/obj.o -lz", link.Command())
}
