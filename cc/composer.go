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
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/google/ccgraph"
	"github.com/google/ccgraph/config"
	"github.com/google/ccgraph/internal/ctxlog"
	"github.com/google/ccgraph/label"
	"github.com/google/ccgraph/metrics"
)

var validate = validator.New()

// A Composer declares C/C++ targets in a graph using one toolchain.
type Composer struct {
	g       *ccgraph.Graph
	cfg     *config.Config
	tc      *Toolchain
	metrics *metrics.Registry

	archived map[*ccgraph.Node]map[*ccgraph.Node]bool // archive -> members
}

// An Option configures a Composer.
type Option func(*Composer)

// WithMetrics records expansion activity in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Composer) {
		c.metrics = r
	}
}

// NewComposer returns a Composer declaring targets in g.  The toolchain is
// checked here, so a missing binding is reported before any target is
// declared.
func NewComposer(g *ccgraph.Graph, cfg *config.Config, tc *Toolchain, opts ...Option) (*Composer, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Composer{
		g:        g,
		cfg:      cfg,
		tc:       tc,
		archived: make(map[*ccgraph.Node]map[*ccgraph.Node]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Declare declares a target of the given kind.  Kinds that are not
// implemented return ErrNotImplemented without touching the graph.
func (c *Composer) Declare(ctx context.Context, kind TargetKind, t *Target) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil %s", ErrInvalidTarget, kind)
	}

	if !kind.Implemented() {
		if _, known := targetKindNames[kind]; !known {
			return nil, fmt.Errorf("%w: unknown target kind %s", ErrInvalidTarget, kind)
		}
		return nil, fmt.Errorf("%s %q: %w", kind, t.Name, ErrNotImplemented)
	}

	var res *Result
	var err error
	switch kind {
	case KindLibrary:
		res, err = c.Library(ctx, t)
	case KindObject:
		res, err = c.Object(ctx, t)
	case KindBinary:
		res, err = c.Binary(ctx, t)
	case KindSharedObject:
		res, err = c.SharedObject(ctx, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, t.Name, err)
	}
	ctxlog.FromContext(ctx).Debug("declared target",
		"kind", kind.String(),
		"target", res.Node.Name(),
		"objects", len(res.Artifacts.Objects),
		"deferred", res.Artifacts.Placeholder != nil)
	return res, nil
}

func validateTarget(t *Target) error {
	if t == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidTarget)
	}
	if err := validate.Struct(t); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		var msgs []string
		for _, e := range validationErrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Field(), e.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidTarget, strings.Join(msgs, ", "))
	}
	return nil
}

// sources are a library's srcs sorted by how they are built.
type sources struct {
	compiled []string // files relative to the package
	deferred []string // node references
	headers  []string // private headers, relative to the package
	archives []string // prebuilt archives, relative to the source root
}

func (c *Composer) classifySources(t *Target) (sources, error) {
	var s sources
	for _, src := range t.Srcs {
		switch {
		case ccgraph.IsReference(src):
			if _, err := parseDeferredSource(src, t.Package); err != nil {
				return sources{}, err
			}
			s.deferred = append(s.deferred, src)
		case c.cfg.IsSource(src):
			s.compiled = append(s.compiled, src)
		case c.cfg.IsHeader(src):
			s.headers = append(s.headers, src)
		case strings.HasSuffix(src, c.cfg.Extensions.Archive):
			s.archives = append(s.archives, path.Join(t.Package, src))
		default:
			return sources{}, fmt.Errorf("%w: unknown extension for source %q", ErrInvalidTarget, src)
		}
	}
	return s, nil
}

// checkNames fails with ErrDuplicateNode if any of names is taken in pkg
// or repeated.
func (c *Composer) checkNames(pkg string, names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		full := ccgraph.NodeName(pkg, name)
		if _, ok := c.g.Lookup(full); ok || seen[full] {
			return &ccgraph.NodeError{Node: full, Err: ccgraph.ErrDuplicateNode}
		}
		seen[full] = true
	}
	return nil
}

// library is the library transition shared by libraries, binaries and
// shared objects: a header node, one compile node per literal source, a
// placeholder for generated sources, and an archive of all of them.
// Intermediate nodes are named after base; the archive is named archiveOut
// in the package's build directory.  Every source is resolved and every
// name checked, including the caller's extra names, before the first node
// is created, so a failing target leaves the graph as it was.
func (c *Composer) library(t *Target, base, archiveOut string, pic bool, extra ...string) (*Artifacts, error) {
	srcs, err := c.classifySources(t)
	if err != nil {
		return nil, err
	}

	template := UnitParams{
		Target:   base,
		Package:  t.Package,
		Hdrs:     srcs.headers,
		Deps:     append([]string{":" + headersNodeName(base)}, t.Deps...),
		Flags:    t.Copts,
		PIC:      pic,
		TestOnly: t.TestOnly,
	}

	names := append([]string{headersNodeName(base), archiveNodeName(base)}, extra...)
	var units []unit
	for _, src := range srcs.compiled {
		p := template
		p.Src = src
		u, err := c.resolveUnit(p)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
		names = append(names, unitNodeName(base, u.file))
	}
	if len(srcs.deferred) > 0 {
		names = append(names, placeholderNodeName(base))
	}
	if err := c.checkNames(t.Package, names...); err != nil {
		return nil, err
	}

	hdrs, err := c.headers(t, base)
	if err != nil {
		return nil, err
	}
	art := &Artifacts{Headers: hdrs}

	var members []*ccgraph.Node
	for _, u := range units {
		tu, err := c.compile(u)
		if err != nil {
			return nil, err
		}
		art.Objects = append(art.Objects, tu)
		members = append(members, tu)
	}

	if len(srcs.deferred) > 0 {
		placeholder, err := c.Expand(template, srcs.deferred)
		if err != nil {
			return nil, err
		}
		art.Placeholder = placeholder
		members = append(members, placeholder)
	}

	archivePath := c.outputPath(t.Package, archiveOut)
	labels := label.Of(label.LinkFlag, t.Linkopts...)
	labels = append(labels, label.Of(label.PkgConfigLib, t.PkgConfig...)...)
	if t.AlwaysLink {
		labels = append(labels, label.New(label.AlwaysLink, archivePath))
	}

	art.Archive, err = c.Archive(ArchiveParams{
		Name:     archiveNodeName(base),
		Package:  t.Package,
		Members:  members,
		Deps:     t.Deps,
		Inputs:   srcs.archives,
		Out:      archiveOut,
		Labels:   labels,
		TestOnly: t.TestOnly,
	})
	if err != nil {
		return nil, err
	}
	return art, nil
}

// headers creates the node carrying a target's public headers and the
// include directories, defines and pkg-config cflags its dependents
// compile with.  It depends on the header nodes of the target's
// dependencies, so those labels are exported transitively.
func (c *Composer) headers(t *Target, base string) (*ccgraph.Node, error) {
	var includes []string
	for _, inc := range t.Includes {
		includes = append(includes, path.Join(t.Package, inc))
	}

	labels := label.Of(label.IncludeDir, includes...)
	labels = append(labels, label.Of(label.Define, t.Defines...)...)
	labels = append(labels, label.Of(label.PkgConfigCflag, t.PkgConfig...)...)

	var deps []string
	for _, h := range append(append([]string(nil), t.Hdrs...), t.TextualHdrs...) {
		if ccgraph.IsReference(h) {
			ref, _ := ccgraph.SplitReference(h)
			deps = append(deps, ref)
		}
	}
	deps = append(deps, t.Deps...)

	return c.g.CreateNode(ccgraph.NodeParams{
		Name:         headersNodeName(base),
		Package:      t.Package,
		Kind:         ccgraph.KindHeaders,
		Comment:      fmt.Sprintf("headers of %s", t.Name),
		Inputs:       append(c.packagePaths(t.Package, t.Hdrs), c.packagePaths(t.Package, t.TextualHdrs)...),
		Deps:         deps,
		Requires:     []string{CapHeaders},
		Labels:       labels,
		ExportLabels: true,
		TestOnly:     t.TestOnly,
		Tags:         t.Tags,
	})
}

// Library declares a static library: its header node and archive are
// exposed through an alias named after the target.
func (c *Composer) Library(ctx context.Context, t *Target) (*Result, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}

	out := t.Out
	if out == "" {
		out = ArchiveName(t.Name, c.cfg.Extensions.Archive)
	}
	art, err := c.library(t, t.Name, out, false, t.Name)
	if err != nil {
		return nil, err
	}

	provides := ProvidesMap{
		CapCompiled: art.Archive,
		CapHeaders:  art.Headers,
	}
	alias, err := c.g.CreateNode(ccgraph.NodeParams{
		Name:         t.Name,
		Package:      t.Package,
		Kind:         ccgraph.KindAlias,
		Deps:         []string{art.Archive.Name(), art.Headers.Name()},
		Provides:     provides.Refs(),
		ExportLabels: true,
		TestOnly:     t.TestOnly,
		Tags:         t.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Node: alias, Provides: provides, Artifacts: *art}, nil
}

// Object declares a single object file built from exactly one source.
func (c *Composer) Object(ctx context.Context, t *Target) (*Result, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	if len(t.Srcs) != 1 {
		return nil, fmt.Errorf("%w: an object needs exactly one source, got %d", ErrInvalidTarget, len(t.Srcs))
	}

	out := t.Out
	if out == "" {
		out = t.Name + c.cfg.Extensions.Object
	}
	u, err := c.resolveUnit(UnitParams{
		Target:   t.Name,
		Package:  t.Package,
		Src:      t.Srcs[0],
		Deps:     append([]string{":" + headersNodeName(t.Name)}, t.Deps...),
		Flags:    t.Copts,
		Out:      out,
		NodeName: t.Name,
		TestOnly: t.TestOnly,
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkNames(t.Package, t.Name, headersNodeName(t.Name)); err != nil {
		return nil, err
	}

	hdrs, err := c.headers(t, t.Name)
	if err != nil {
		return nil, err
	}
	u.provides = map[string]string{CapHeaders: hdrs.Name()}
	tu, err := c.compile(u)
	if err != nil {
		return nil, err
	}

	return &Result{
		Node: tu,
		Provides: ProvidesMap{
			CapCompiled: tu,
			CapHeaders:  hdrs,
		},
		Artifacts: Artifacts{Headers: hdrs, Objects: []*ccgraph.Node{tu}},
	}, nil
}

// linked is the part shared by binaries and shared objects: an internal
// library of the target's own sources, if it has any, and a link node
// depending on it and on the target's dependencies.  Extra names the
// caller creates afterwards are checked along with the rest.
func (c *Composer) linked(t *Target, link LinkParams, pic bool, extra ...string) (*Artifacts, error) {
	art := &Artifacts{}
	deps := append([]string(nil), t.Deps...)
	names := append([]string{link.Name}, extra...)

	if len(t.Srcs) > 0 || len(t.Hdrs) > 0 || len(t.TextualHdrs) > 0 {
		archiveOut := path.Join("_"+t.Name+"#objs", ArchiveName(t.Name, c.cfg.Extensions.Archive))
		internal, err := c.library(t, t.Name, archiveOut, pic, append(names, internalLibName(t.Name))...)
		if err != nil {
			return nil, err
		}
		art = internal

		lib, err := c.g.CreateNode(ccgraph.NodeParams{
			Name:    internalLibName(t.Name),
			Package: t.Package,
			Kind:    ccgraph.KindAlias,
			Deps:    []string{art.Archive.Name(), art.Headers.Name()},
			Provides: ProvidesMap{
				CapCompiled: art.Archive,
				CapHeaders:  art.Headers,
			}.Refs(),
			ExportLabels: true,
			TestOnly:     t.TestOnly,
		})
		if err != nil {
			return nil, err
		}
		deps = append([]string{lib.Name()}, deps...)
	} else if err := c.checkNames(t.Package, names...); err != nil {
		return nil, err
	}

	link.Package = t.Package
	link.Deps = deps
	link.TestOnly = t.TestOnly
	n, err := c.Link(link)
	if err != nil {
		return nil, err
	}
	art.Link = n
	return art, nil
}

// Binary declares an executable.  Its sources, if any, are built as an
// internal library, and everything is linked statically.
func (c *Composer) Binary(ctx context.Context, t *Target) (*Result, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	if _, err := c.classifySources(t); err != nil {
		return nil, err
	}

	name := t.Out
	if name == "" {
		name = t.Name
	}
	link := LinkParams{
		Name:   t.Name,
		Out:    BinaryName(name, c.cfg.Extensions.Binary),
		Binary: true,
	}
	if len(t.Srcs) > 0 || len(t.Hdrs) > 0 || len(t.TextualHdrs) > 0 {
		link.Provides = map[string]string{CapHeaders: ":" + headersNodeName(t.Name)}
	}

	art, err := c.linked(t, link, false)
	if err != nil {
		return nil, err
	}

	provides := ProvidesMap{CapCompiled: art.Link}
	if art.Headers != nil {
		provides[CapHeaders] = art.Headers
	}
	return &Result{Node: art.Link, Provides: provides, Artifacts: *art}, nil
}

// SharedObject declares a shared object.  Its sources are compiled as
// position independent code and linked with every object kept.  The
// visible node carries an include directory for the target's package and
// a library path naming the shared object, so dependents find its headers
// and link against it by name.
func (c *Composer) SharedObject(ctx context.Context, t *Target) (*Result, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	if _, err := c.classifySources(t); err != nil {
		return nil, err
	}

	out := t.Out
	if out == "" {
		out = SharedObjectName(t.Name, c.cfg.Extensions.Shared)
	}
	art, err := c.linked(t, LinkParams{
		Name:   sharedLinkNodeName(t.Name),
		Out:    out,
		Shared: true,
	}, true, t.Name)
	if err != nil {
		return nil, err
	}

	pkgDir := t.Package
	if pkgDir == "" {
		pkgDir = "."
	}
	deps := []string{art.Link.Name()}
	if art.Headers != nil {
		deps = append(deps, art.Headers.Name())
	}
	alias, err := c.g.CreateNode(ccgraph.NodeParams{
		Name:    t.Name,
		Package: t.Package,
		Kind:    ccgraph.KindAlias,
		Deps:    deps,
		Labels: []label.Label{
			label.New(label.IncludeDir, pkgDir),
			label.New(label.LibraryPath, c.outputPath(t.Package, out)),
		},
		ExportLabels: true,
		TestOnly:     t.TestOnly,
		Tags:         t.Tags,
	})
	if err != nil {
		return nil, err
	}

	// Dependents need the alias for both capabilities: it carries the
	// labels that locate the shared object and its headers.
	provides := ProvidesMap{
		CapCompiled: alias,
		CapHeaders:  alias,
	}
	return &Result{Node: alias, Provides: provides, Artifacts: *art}, nil
}
