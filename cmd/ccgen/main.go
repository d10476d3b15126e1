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

// ccgen reads the BUILD.hcl files of a source tree and writes a ninja
// manifest building their C and C++ targets.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/buildfile"
	"github.com/google/ccgraph/cc"
	"github.com/google/ccgraph/config"
	"github.com/google/ccgraph/deptools"
	"github.com/google/ccgraph/internal/ctxlog"
	"github.com/google/ccgraph/metrics"
	"github.com/google/ccgraph/ninja"
	"github.com/google/ccgraph/pathtools"
	"github.com/google/ccgraph/toolchain/gcc"
)

type options struct {
	root        string
	outFile     string
	depFile     string
	configFile  string
	envFile     string
	toolchain   string
	outputsFile string
	metricsFile string
	logLevel    string
	logFormat   string
	generated   bool

	self string // the ccgen executable, run again to regenerate the manifest
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.root, "root", ".", "the source root to search for "+buildfile.DefaultFileName+" files")
	fs.StringVar(&o.outFile, "o", "build.ninja", "the Ninja file to output, relative to the source root")
	fs.StringVar(&o.depFile, "d", "", "the dependency file to output")
	fs.StringVar(&o.configFile, "config", "", "the YAML configuration file")
	fs.StringVar(&o.envFile, "env", ".env", "file of environment overrides, ignored if missing")
	fs.StringVar(&o.toolchain, "toolchain", "", "the toolchain to use instead of the configured default")
	fs.StringVar(&o.outputsFile, "outputs", "", "YAML manifest of generated files; by default wildcard outputs are globbed")
	fs.StringVar(&o.metricsFile, "metrics", "", "write Prometheus metrics to file")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&o.generated, "generated", false,
		"the generators have run: missing generated sources are an error instead of a reason to write a bootstrap manifest")
}

// command returns the ccgen invocation that regenerates the manifest from
// the source root.
func (o *options) command(generated bool) string {
	self := o.self
	if self == "" {
		self = "ccgen"
	}
	args := []string{self, "-root", ".", "-o", o.outFile, "-env=" + o.envFile}
	for _, f := range []struct{ name, value string }{
		{"-d", o.depFile},
		{"-config", o.configFile},
		{"-toolchain", o.toolchain},
		{"-outputs", o.outputsFile},
		{"-metrics", o.metricsFile},
		{"-log-level", o.logLevel},
		{"-log-format", o.logFormat},
	} {
		if f.value != "" {
			args = append(args, f.name, f.value)
		}
	}
	if generated {
		args = append(args, "-generated")
	}
	return strings.Join(ninja.ShellQuoteAll(args), " ")
}

func main() {
	var opts options
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts.register(fs)
	fs.Parse(os.Args[1:])
	if self, err := os.Executable(); err == nil {
		opts.self = self
	} else {
		opts.self = os.Args[0]
	}

	logger := ctxlog.New(opts.logLevel, opts.logFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	if err := run(ctx, &opts); err != nil {
		fatalf("%s", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprint(os.Stderr, "\n")
	os.Exit(1)
}

// run generates the manifest.  Paths in the manifest are relative to the
// source root, so everything after loading the configuration happens
// there.
//
// Sources generated by nodes with wildcard outputs can only be listed once
// those nodes have run.  When they are missing and -generated is not set,
// run writes a bootstrap manifest holding only the genrules, whose
// regeneration statement depends on them: ninja runs the generators, then
// ccgen again with -generated, and continues with the full manifest.
func run(ctx context.Context, opts *options) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.Chdir(opts.root); err != nil {
		return err
	}

	if err := config.LoadEnv(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	tc, err := gcc.FromConfig(cfg, opts.toolchain)
	if err != nil {
		return err
	}

	loader := &buildfile.Loader{Fs: pathtools.OsFs, Skip: []string{cfg.BuildDir}}
	pkgs, err := loader.Load(ctx, ".")
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no %s files found in %s", buildfile.DefaultFileName, opts.root)
	}

	resolver, err := outputResolver(opts.outputsFile)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	g, err := fullGraph(ctx, reg, cfg, tc, pkgs, resolver)
	bootstrap := false
	if errors.Is(err, ccgraph.ErrEmptyUpstream) && opts.outputsFile == "" && !opts.generated {
		logger.Info("generated sources are missing, writing a manifest that runs the generators first",
			"reason", err)
		reg = metrics.NewRegistry()
		g, err = genruleGraph(ctx, reg, cfg, pkgs, resolver)
		bootstrap = true
	}
	if err != nil {
		return err
	}
	if errs := g.Finalize(ctx); len(errs) > 0 {
		return ccgraph.Errors(errs)
	}

	deps := manifestDeps(opts, pkgs)
	regen := ccgraph.Regeneration{
		Manifest: opts.outFile,
		Command:  opts.command(bootstrap),
		Inputs:   deps,
	}
	if opts.outputsFile == "" {
		regen.Nodes = g.DynamicNodes()
	}

	buf := &bytes.Buffer{}
	if err := g.WriteNinja(buf); err != nil {
		return err
	}
	if err := ccgraph.WriteRegeneration(buf, regen); err != nil {
		return err
	}
	if err := writeFileIfChanged(opts.outFile, buf.Bytes()); err != nil {
		return fmt.Errorf("error writing %s: %w", opts.outFile, err)
	}
	logger.Info("wrote ninja manifest", "file", opts.outFile, "nodes", g.Len(), "bootstrap", bootstrap)

	if opts.depFile != "" {
		if err := deptools.WriteDepFile(opts.depFile, opts.outFile, deps); err != nil {
			return fmt.Errorf("error writing depfile: %w", err)
		}
	}

	if opts.metricsFile != "" {
		f, err := os.Create(opts.metricsFile)
		if err != nil {
			return err
		}
		werr := reg.WriteText(f)
		if err := f.Close(); werr == nil {
			werr = err
		}
		if werr != nil {
			return fmt.Errorf("error writing metrics: %w", werr)
		}
	}
	return nil
}

// fullGraph declares every genrule and target of pkgs and expands their
// generated sources.
func fullGraph(ctx context.Context, reg *metrics.Registry, cfg *config.Config, tc *cc.Toolchain,
	pkgs []*buildfile.Package, resolver ccgraph.OutputResolver) (*ccgraph.Graph, error) {

	g := ccgraph.NewGraph(ccgraph.WithMetrics(reg))
	composer, err := cc.NewComposer(g, cfg, tc, cc.WithMetrics(reg))
	if err != nil {
		return nil, err
	}
	declarer := &buildfile.Declarer{Graph: g, Composer: composer, BuildDir: cfg.BuildDir}
	if _, err := declarer.Declare(ctx, pkgs); err != nil {
		return nil, err
	}
	if errs := g.ResolveDependencies(); len(errs) > 0 {
		return nil, ccgraph.Errors(errs)
	}
	if err := g.Resolve(ctx, resolver); err != nil {
		return nil, err
	}
	return g, nil
}

// genruleGraph declares only the genrules of pkgs.
func genruleGraph(ctx context.Context, reg *metrics.Registry, cfg *config.Config,
	pkgs []*buildfile.Package, resolver ccgraph.OutputResolver) (*ccgraph.Graph, error) {

	g := ccgraph.NewGraph(ccgraph.WithMetrics(reg))
	declarer := &buildfile.Declarer{Graph: g, BuildDir: cfg.BuildDir}
	if err := declarer.DeclareGenrules(ctx, pkgs); err != nil {
		return nil, err
	}
	if errs := g.ResolveDependencies(); len(errs) > 0 {
		return nil, ccgraph.Errors(errs)
	}
	if err := g.Resolve(ctx, resolver); err != nil {
		return nil, err
	}
	return g, nil
}

// manifestDeps returns the files the manifest is generated from.
func manifestDeps(opts *options, pkgs []*buildfile.Package) []string {
	var deps []string
	for _, pkg := range pkgs {
		deps = append(deps, pkg.File)
	}
	for _, f := range []string{opts.configFile, opts.envFile, opts.outputsFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err == nil {
			deps = append(deps, f)
		}
	}
	return deps
}

func outputResolver(file string) (ccgraph.OutputResolver, error) {
	if file == "" {
		return ccgraph.GlobOutputs{Fs: pathtools.OsFs}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ccgraph.LoadOutputManifest(f)
}

// writeFileIfChanged leaves file untouched when it already holds data, so
// ninja does not see a new manifest and regenerate everything.
func writeFileIfChanged(file string, data []byte) error {
	old, err := os.ReadFile(file)
	if err == nil && bytes.Equal(old, data) {
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	return os.WriteFile(file, data, 0666)
}
