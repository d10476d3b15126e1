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

package buildfile

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/cc"
	"github.com/google/ccgraph/internal/ctxlog"
	"github.com/google/ccgraph/ninja"
	"github.com/google/ccgraph/pathtools"
)

// A Declarer declares the content of decoded packages in a graph.
type Declarer struct {
	Graph    *ccgraph.Graph
	Composer *cc.Composer
	BuildDir string
}

// Declare declares the genrules of every package, then their C/C++
// targets, so that targets can name generated files of any package.
// Every package is processed; the errors are returned together.
func (d *Declarer) Declare(ctx context.Context, pkgs []*Package) ([]*cc.Result, error) {
	logger := ctxlog.FromContext(ctx)

	errs := d.genrules(pkgs)

	var results []*cc.Result
	for _, pkg := range pkgs {
		for _, decl := range pkg.Decl.targets() {
			res, err := d.Composer.Declare(ctx, decl.kind, decl.block.Target(pkg.Path))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", pkg.File, err))
				continue
			}
			results = append(results, res)
		}
	}

	if len(errs) > 0 {
		return nil, ccgraph.Errors(errs)
	}
	logger.Info("declared packages", "packages", len(pkgs), "targets", len(results))
	return results, nil
}

// DeclareGenrules declares only the genrules of pkgs.  A manifest of
// them runs every generator, which is what a clean tree needs before the
// files generated for its targets can be listed.  Genrules that depend on
// targets cannot be declared this way.
func (d *Declarer) DeclareGenrules(ctx context.Context, pkgs []*Package) error {
	if err := ccgraph.Errors(d.genrules(pkgs)); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("declared genrules", "packages", len(pkgs), "nodes", d.Graph.Len())
	return nil
}

func (d *Declarer) genrules(pkgs []*Package) []error {
	var errs []error
	for _, pkg := range pkgs {
		for _, gen := range pkg.Decl.Genrules {
			if _, err := d.genrule(pkg.Path, gen); err != nil {
				errs = append(errs, fmt.Errorf("%s: genrule %q: %w", pkg.File, gen.Name, err))
			}
		}
	}
	return errs
}

// genrule creates the generator node of gen.  Node references among its
// sources become dependencies whose files are passed to the command.
func (d *Declarer) genrule(pkg string, gen *Genrule) (*ccgraph.Node, error) {
	if strings.TrimSpace(gen.Cmd) == "" {
		return nil, fmt.Errorf("empty cmd")
	}

	var inputs, refs []string
	deps := append([]string(nil), gen.Deps...)
	for _, src := range gen.Srcs {
		if ccgraph.IsReference(src) {
			ref, _ := ccgraph.SplitReference(src)
			refs = append(refs, src)
			deps = append(deps, ref)
		} else {
			inputs = append(inputs, path.Join(pkg, src))
		}
	}

	outDir := path.Join(d.BuildDir, pkg)
	outs := pathtools.PrefixPaths(gen.Outs, outDir)
	optional := pathtools.PrefixPaths(gen.OptionalOuts, outDir)
	cmd := gen.Cmd

	return d.Graph.CreateNode(ccgraph.NodeParams{
		Name:            gen.Name,
		Package:         pkg,
		Kind:            ccgraph.KindGeneric,
		Comment:         fmt.Sprintf("genrule %s", gen.Name),
		Inputs:          inputs,
		Outputs:         outs,
		OptionalOutputs: optional,
		Deps:            deps,
		Tags:            gen.Tags,
		TestOnly:        gen.TestOnly,
		Command: func(g *ccgraph.Graph, n *ccgraph.Node) (string, error) {
			srcs := append([]string(nil), inputs...)
			for _, src := range refs {
				files, err := referencedFiles(g, src, pkg)
				if err != nil {
					return "", err
				}
				srcs = append(srcs, files...)
			}
			r := strings.NewReplacer(
				"{srcs}", strings.Join(ninja.ShellQuoteAll(srcs), " "),
				"{outs}", strings.Join(ninja.ShellQuoteAll(outs), " "),
				"{outdir}", ninja.ShellQuote(outDir),
			)
			return fmt.Sprintf("mkdir -p %s && %s", ninja.ShellQuote(outDir), r.Replace(cmd)), nil
		},
	})
}

// referencedFiles returns the files of the node src names, restricted to
// the selected output if there is one.
func referencedFiles(g *ccgraph.Graph, src, pkg string) ([]string, error) {
	ref, output := ccgraph.SplitReference(src)
	n, err := g.LookupReference(ref, pkg)
	if err != nil {
		return nil, err
	}
	files := n.Files()
	if output == "" {
		return files, nil
	}
	var ret []string
	for _, f := range files {
		if f == output || strings.HasSuffix(f, "/"+output) {
			ret = append(ret, f)
		}
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%s has no output %q", n, output)
	}
	return ret, nil
}
