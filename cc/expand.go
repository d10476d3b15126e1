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

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/internal/ctxlog"
	"github.com/google/ccgraph/pathtools"
)

// A deferredSource is a source naming another node, whose files are only
// known once that node has run.
type deferredSource struct {
	node   string // canonical name
	output string // optional "|output" selector
}

func parseDeferredSource(src, pkg string) (deferredSource, error) {
	ref, output := ccgraph.SplitReference(src)
	name, err := ccgraph.Canonicalize(ref, pkg)
	if err != nil {
		return deferredSource{}, fmt.Errorf("%w: source %q: %w", ErrInvalidTarget, src, err)
	}
	return deferredSource{node: name, output: output}, nil
}

// Expand creates a placeholder node that depends on the nodes named by
// srcs and registers a pre-build hook on it.  When the graph is resolved
// the hook turns every file those nodes produced into a compile node built
// from template, and makes each one a dependency of the placeholder.  Files
// that are not sources are made visible to the new units as headers.
//
// Depend on the returned placeholder, not on the files: the compile nodes
// do not exist until the hook has run.
func (c *Composer) Expand(template UnitParams, srcs []string) (*ccgraph.Node, error) {
	template.Src, template.Out, template.NodeName = "", "", ""

	var deferred []deferredSource
	var deps []string
	for _, src := range srcs {
		d, err := parseDeferredSource(src, template.Package)
		if err != nil {
			return nil, err
		}
		deferred = append(deferred, d)
		deps = append(deps, d.node)
	}

	placeholder, err := c.g.CreateNode(ccgraph.NodeParams{
		Name:     placeholderNodeName(template.Target),
		Package:  template.Package,
		Kind:     ccgraph.KindPlaceholder,
		Comment:  fmt.Sprintf("generated sources of %s", template.Target),
		Deps:     pathtools.FirstUniqueStrings(deps),
		TestOnly: template.TestOnly,
	})
	if err != nil {
		return nil, err
	}

	hook := func(ctx context.Context, g *ccgraph.Graph, n *ccgraph.Node) error {
		return c.expand(ctx, n, template, deferred)
	}
	if err := c.g.SetPreBuild(placeholder, hook); err != nil {
		return nil, err
	}
	return placeholder, nil
}

// expand is the pre-build hook of a placeholder.  Every upstream node must
// have produced at least one matching file, and at least one of the files
// must be a source; otherwise nothing is created.
func (c *Composer) expand(ctx context.Context, placeholder *ccgraph.Node,
	template UnitParams, deferred []deferredSource) error {

	logger := ctxlog.FromContext(ctx)

	var files, generators []string
	fileGenerator := make(map[string]string)
	for _, d := range deferred {
		gen, ok := c.g.Lookup(d.node)
		if !ok {
			return fmt.Errorf("%w %q", ccgraph.ErrUnknownNode, d.node)
		}
		outs, err := c.g.Outputs(ctx, gen)
		if err != nil {
			return err
		}
		if d.output != "" {
			outs = matchOutput(outs, d.output)
		}
		if len(outs) == 0 {
			what := "files"
			if d.output != "" {
				what = fmt.Sprintf("file matching %q", d.output)
			}
			return fmt.Errorf("%w: %s produced no %s", ccgraph.ErrEmptyUpstream, gen, what)
		}
		for _, out := range outs {
			if _, seen := fileGenerator[out]; !seen {
				fileGenerator[out] = gen.Name()
				files = append(files, out)
			}
		}
		generators = append(generators, gen.Name())
	}

	srcs, hdrs := pathtools.FilterByExtension(files, c.cfg.SourceExts)
	if len(srcs) == 0 {
		return fmt.Errorf("%w: %s produced no sources, only %s", ccgraph.ErrEmptyUpstream,
			strings.Join(generators, ", "), strings.Join(hdrs, ", "))
	}

	var units []*ccgraph.Node
	for _, file := range srcs {
		u := unit{
			UnitParams: template,
			file:       file,
			hdrs:       append(c.packagePaths(template.Package, template.Hdrs), hdrs...),
			deps:       append(append([]string(nil), template.Deps...), fileGenerator[file]),
		}
		tu, err := c.compile(u)
		if err != nil {
			return err
		}
		units = append(units, tu)
	}

	for _, tu := range units {
		if err := c.g.AddDependency(placeholder, tu); err != nil {
			return err
		}
	}

	c.metrics.SourcesExpanded(len(units))
	logger.Debug("expanded generated sources",
		"target", template.Target,
		"generators", generators,
		"units", len(units),
		"headers", len(hdrs))
	return nil
}
