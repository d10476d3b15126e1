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

// Package cc turns C and C++ target declarations into compile, archive and
// link nodes of a ccgraph.Graph.
//
// A Composer is the entry point.  Each target kind is decomposed into a
// fixed pipeline: one compile node per translation unit, an archive of the
// objects and, for binaries and shared objects, a link node.  Sources that
// are outputs of other nodes are expanded into compile nodes by a pre-build
// hook once those nodes have run.
//
// Compile and link configuration travels as typed labels: a library's
// header node exports its include directories and defines, and its archive
// exports its link options, so every dependent sees them through
// Graph.EffectiveLabels without the options being passed down explicitly.
package cc

import (
	"errors"
	"fmt"

	"github.com/google/ccgraph"
)

var (
	// ErrNodeSource is returned when a source that names another node
	// cannot be compiled directly, because the node is unknown or its
	// outputs are only known after it runs.
	ErrNodeSource = errors.New("source is a node reference")

	// ErrAmbiguousSource is returned when a node reference used as a
	// single source names a node with several outputs and does not select
	// one with "|output".
	ErrAmbiguousSource = errors.New("node reference resolves to multiple files")

	// ErrNotImplemented is returned for target kinds that are declared but
	// not supported.
	ErrNotImplemented = errors.New("target kind not implemented")

	// ErrMissingToolchain is returned when the toolchain does not bind
	// every compile, archive and link function.
	ErrMissingToolchain = errors.New("toolchain is missing a required function")

	// ErrInvalidTarget is returned for malformed target declarations.
	ErrInvalidTarget = errors.New("invalid target")
)

// Capabilities a C/C++ target provides to its dependents.
const (
	// CapCompiled selects the node whose outputs are linked: an archive,
	// an object or a linked artifact.
	CapCompiled = "cc"
	// CapHeaders selects the node carrying the headers, include
	// directories and defines a dependent compiles against.
	CapHeaders = "cc_hdrs"
)

// A ProvidesMap maps a capability to the node that satisfies it for one
// target.  It is created once per declaration and never changed.
type ProvidesMap map[string]*ccgraph.Node

// Refs returns the map in the form taken by ccgraph.NodeParams.Provides.
func (p ProvidesMap) Refs() map[string]string {
	ret := make(map[string]string, len(p))
	for capability, n := range p {
		ret[capability] = n.Name()
	}
	return ret
}

// A TargetKind is one of the closed set of C/C++ target kinds.
type TargetKind int

const (
	KindLibrary TargetKind = iota
	KindObject
	KindBinary
	KindSharedObject
	KindModule
	KindStaticLibrary
	KindTest
)

var targetKindNames = map[TargetKind]string{
	KindLibrary:       "cc_library",
	KindObject:        "cc_object",
	KindBinary:        "cc_binary",
	KindSharedObject:  "cc_shared_object",
	KindModule:        "cc_module",
	KindStaticLibrary: "cc_static_library",
	KindTest:          "cc_test",
}

func (k TargetKind) String() string {
	if name, ok := targetKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// Implemented reports whether targets of this kind can be declared.
func (k TargetKind) Implemented() bool {
	switch k {
	case KindLibrary, KindObject, KindBinary, KindSharedObject:
		return true
	default:
		return false
	}
}

// A Target is the declaration of one logical C/C++ target.  Paths are
// relative to Package; sources and headers may instead be node references
// ("//pkg:name", ":name", optionally followed by "|output").
type Target struct {
	Name    string `validate:"required,excludesall=#:0x7C/"`
	Package string `validate:"excludesall=:0x7C$"`

	Srcs        []string `validate:"dive,required"`
	Hdrs        []string `validate:"dive,required"`
	TextualHdrs []string `validate:"dive,required"`
	Deps        []string `validate:"dive,required"`

	Includes []string // Include directories exported to dependents.
	Defines  []string // Preprocessor defines exported to dependents.
	Copts    []string // Compiler flags for this target's sources only.
	Linkopts []string // Link flags exported to whatever links this target.

	// PkgConfig names pkg-config packages whose cflags and libs are
	// exported to dependents.
	PkgConfig []string `validate:"dive,required"`

	// AlwaysLink links every object of the archive even if unreferenced.
	AlwaysLink bool

	// Out overrides the default output file name.
	Out string `validate:"excludesall=/"`

	TestOnly bool
	Tags     []string
}

// Artifacts are the intermediate nodes of one declaration.  Only the ones
// relevant to the target kind are set.
type Artifacts struct {
	Headers     *ccgraph.Node
	Objects     []*ccgraph.Node
	Placeholder *ccgraph.Node
	Archive     *ccgraph.Node
	Link        *ccgraph.Node
}

// A Result is what a declaration produced: the externally visible node,
// the capabilities it provides and its intermediate nodes.
type Result struct {
	Node      *ccgraph.Node
	Provides  ProvidesMap
	Artifacts Artifacts
}
