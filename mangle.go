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
	"fmt"
	"strings"
)

// Mangle folds an arbitrary string, typically a source path, into the
// alphabet allowed in node names.  Unlike a plain substitution the result is
// injective: '_' is doubled, '/' becomes "_s", '.' becomes "_d" and every
// other byte outside [A-Za-z0-9-] becomes "_x" plus two hex digits, so no
// two different inputs share a mangled form.
func Mangle(s string) string {
	var ret strings.Builder
	ret.Grow(len(s) + len(s)/4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-':
			ret.WriteByte(c)
		case c == '_':
			ret.WriteString("__")
		case c == '/':
			ret.WriteString("_s")
		case c == '.':
			ret.WriteString("_d")
		default:
			fmt.Fprintf(&ret, "_x%02x", c)
		}
	}
	return ret.String()
}

// validateName checks a node's short name.  The characters reserved by the
// reference syntax are rejected; '#' is allowed so that generated nodes can
// be named "_<target>#<suffix>".
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	for i, r := range name {
		valid := (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			(r == '_') ||
			(r == '-') ||
			(r == '.') ||
			(r == '+') ||
			(r == '#')
		if !valid {
			return fmt.Errorf("%q contains an invalid name character "+
				"%q at byte offset %d", name, r, i)
		}
	}
	return nil
}

func validatePackage(pkg string) error {
	if strings.HasPrefix(pkg, "/") || strings.HasSuffix(pkg, "/") {
		return fmt.Errorf("package %q must be relative and have no trailing slash", pkg)
	}
	for i, r := range pkg {
		if r == ':' || r == '|' || r == ' ' || r == '$' {
			return fmt.Errorf("package %q contains an invalid character %q at byte offset %d",
				pkg, r, i)
		}
	}
	return nil
}

// NodeName returns the canonical name of the node called name in pkg.
func NodeName(pkg, name string) string {
	return "//" + pkg + ":" + name
}

// SplitReference separates a reference into its node part and the named
// output selected after '|', if any.
func SplitReference(ref string) (node, output string) {
	if i := strings.IndexByte(ref, '|'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// IsReference reports whether s names a node rather than a file.
func IsReference(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, ":")
}

// Canonicalize turns a reference into the canonical "//pkg:name" identity
// of a node.  Accepted forms are "//pkg:name", "//pkg" (meaning
// "//pkg:<last element of pkg>"), ":name" and a bare "name", the last two
// relative to pkg.  A named output suffix ("|out") is not part of the
// identity and is rejected here; use SplitReference first.
func Canonicalize(ref, pkg string) (string, error) {
	if strings.ContainsRune(ref, '|') {
		return "", fmt.Errorf("%w %q: named output not allowed", ErrInvalidReference, ref)
	}

	var refPkg, name string
	switch {
	case strings.HasPrefix(ref, "//"):
		rest := ref[2:]
		if i := strings.LastIndexByte(rest, ':'); i >= 0 {
			refPkg, name = rest[:i], rest[i+1:]
		} else {
			refPkg = rest
			name = rest[strings.LastIndexByte(rest, '/')+1:]
		}
	case strings.HasPrefix(ref, ":"):
		refPkg, name = pkg, ref[1:]
	case strings.ContainsAny(ref, ":/"):
		return "", fmt.Errorf("%w %q", ErrInvalidReference, ref)
	default:
		refPkg, name = pkg, ref
	}

	if err := validatePackage(refPkg); err != nil {
		return "", fmt.Errorf("%w %q: %s", ErrInvalidReference, ref, err)
	}
	if err := validateName(name); err != nil {
		return "", fmt.Errorf("%w %q: %s", ErrInvalidReference, ref, err)
	}
	return NodeName(refPkg, name), nil
}
