// Copyright 2014 Google Inc. All rights reserved.
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

package pathtools

import (
	"path/filepath"
	"strings"
)

// PrefixPaths returns a list of paths consisting of prefix joined with each
// element of paths.  The resulting paths are "clean" in the filepath.Clean
// sense.
func PrefixPaths(paths []string, prefix string) []string {
	result := make([]string, len(paths))
	for i, path := range paths {
		result[i] = filepath.Join(prefix, path)
	}
	return result
}

// HasAnyExtension reports whether path ends in one of exts.  Extensions are
// given with their leading dot.
func HasAnyExtension(path string, exts []string) bool {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// FilterByExtension splits paths into those ending in one of exts and the
// rest, preserving order.
func FilterByExtension(paths []string, exts []string) (matched, rest []string) {
	for _, path := range paths {
		if HasAnyExtension(path, exts) {
			matched = append(matched, path)
		} else {
			rest = append(rest, path)
		}
	}
	return matched, rest
}

// FirstUniqueStrings returns all unique elements of a slice of strings,
// keeping the first copy of each.
func FirstUniqueStrings(list []string) []string {
	seen := make(map[string]bool, len(list))
	ret := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			ret = append(ret, s)
		}
	}
	return ret
}

// SplitPath is filepath.Split with the trailing separator trimmed and "."
// returned for an empty directory.
func SplitPath(path string) (dir, file string) {
	dir, file = filepath.Split(path)
	switch dir {
	case "":
		dir = "."
	case "/":
		// Nothing
	default:
		dir = dir[:len(dir)-1]
	}
	return dir, file
}
