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
	"sort"
	"strings"
)

// IsGlob reports whether pattern contains any glob metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// glob expands pattern one path element at a time so that wildcards are
// allowed in directory names as well as the file name.  Directories are
// never returned as matches.
func glob(fs FileSystem, pattern string) ([]string, error) {
	matches, err := globPaths(fs, filepath.Clean(pattern))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if !fs.isDir(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func globPaths(fs FileSystem, pattern string) ([]string, error) {
	if !IsGlob(pattern) {
		// If there are no wilds in the pattern, just return whether the file at the pattern
		// exists or not.
		exists, _, err := fs.Exists(pattern)
		if err != nil || !exists {
			return nil, err
		}
		return []string{pattern}, nil
	}

	dir, file := SplitPath(pattern)
	if !IsGlob(dir) {
		return fs.match(pattern)
	}

	dirMatches, err := globPaths(fs, dir)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, m := range dirMatches {
		if !fs.isDir(m) {
			continue
		}
		newMatches, err := fs.match(filepath.Join(m, file))
		if err != nil {
			return nil, err
		}
		matches = append(matches, newMatches...)
	}
	return matches, nil
}
