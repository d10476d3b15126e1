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

// Package label carries compiler and linker metadata between build graph
// nodes.  Each piece of metadata is a Label: a Kind plus a payload.  Labels
// are stored on nodes in typed form and can be rendered to, and recovered
// from, the "cc:<kind>:<payload>" string form used by the build engine's
// opaque tag channel.
package label

import (
	"fmt"
	"strings"
)

// Namespace is the prefix shared by every label this package encodes.
const Namespace = "cc"

const separator = ":"

// A Kind identifies what a label's payload means.
type Kind int

const (
	KindInvalid Kind = iota
	// A raw flag passed to the linker.
	LinkFlag
	// A pkg-config package whose --libs go to the linker and --cflags to the
	// compiler.
	PkgConfigLib
	// A pkg-config package whose --cflags go to the compiler only.
	PkgConfigCflag
	// A directory added to the include search path.
	IncludeDir
	// A preprocessor define, NAME or NAME=VALUE.
	Define
	// An archive that must be linked whole.
	AlwaysLink
	// The path of a shared library dependents link against.
	LibraryPath
	// A flag passed to the compiler for one translation unit.  Compile nodes
	// never export their labels, so these stay local.
	CompilerFlag
)

var kindNames = map[Kind]string{
	LinkFlag:       "ld",
	PkgConfigLib:   "pc",
	PkgConfigCflag: "pc_cflag",
	IncludeDir:     "inc",
	Define:         "def",
	AlwaysLink:     "alwayslink",
	LibraryPath:    "lib_path",
	CompilerFlag:   "cflag",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{LinkFlag, PkgConfigLib, PkgConfigCflag, IncludeDir, Define,
		AlwaysLink, LibraryPath, CompilerFlag}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// A Label is one piece of typed compile or link configuration.
type Label struct {
	Kind  Kind
	Value string
}

// New returns a Label of the given kind.
func New(kind Kind, value string) Label {
	return Label{Kind: kind, Value: value}
}

// String renders the label in its encoded string form.
func (l Label) String() string {
	return Encode(l.Kind, l.Value)
}

// Encode renders kind and payload as "cc:<kind>:<payload>".  It panics if
// kind is not a defined kind, which can only happen through a programming
// error.
func Encode(kind Kind, payload string) string {
	name, ok := kindNames[kind]
	if !ok {
		panic(fmt.Errorf("label: cannot encode invalid kind %d", int(kind)))
	}
	return Namespace + separator + name + separator + payload
}

// Decode parses a string produced by Encode.  Strings outside the cc
// namespace, and cc strings with an unknown kind, return false so callers
// can scan a node's full label list and skip tags that belong to someone
// else.  Only the namespace and kind are split off; the payload is
// everything after the second separator, so it may itself contain ':'.
func Decode(s string) (Label, bool) {
	rest := strings.TrimPrefix(s, Namespace+separator)
	if len(rest) == len(s) {
		return Label{}, false
	}
	i := strings.Index(rest, separator)
	if i < 0 {
		return Label{}, false
	}
	kind, ok := kindsByName[rest[:i]]
	if !ok {
		return Label{}, false
	}
	return Label{Kind: kind, Value: rest[i+len(separator):]}, true
}

// DecodeAll decodes every recognised label in tags and returns the rest
// untouched, in their original order.
func DecodeAll(tags []string) (labels []Label, foreign []string) {
	for _, tag := range tags {
		if l, ok := Decode(tag); ok {
			labels = append(labels, l)
		} else {
			foreign = append(foreign, tag)
		}
	}
	return labels, foreign
}

// EncodeAll renders every label in labels.
func EncodeAll(labels []Label) []string {
	ret := make([]string, len(labels))
	for i, l := range labels {
		ret[i] = l.String()
	}
	return ret
}

// Of returns one label of kind for every value.
func Of(kind Kind, values ...string) []Label {
	ret := make([]Label, len(values))
	for i, v := range values {
		ret[i] = Label{Kind: kind, Value: v}
	}
	return ret
}
