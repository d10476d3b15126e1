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
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/ccgraph/internal/ctxlog"
	"github.com/google/ccgraph/pathtools"
)

// A Loader finds and decodes the declaration files of a source tree.
type Loader struct {
	Fs pathtools.FileSystem
	// FileName defaults to DefaultFileName.
	FileName string
	// Skip lists directories, relative to the root, that are not searched,
	// such as the build directory.
	Skip []string
}

// A Package is one decoded declaration file.
type Package struct {
	Path string // directory relative to the root, "" for the root itself
	File string // the declaration file as opened
	Decl *File
}

func (l *Loader) fileName() string {
	if l.FileName == "" {
		return DefaultFileName
	}
	return l.FileName
}

func (l *Loader) fs() pathtools.FileSystem {
	if l.Fs == nil {
		return pathtools.OsFs
	}
	return l.Fs
}

// Find returns the declaration files below root, sorted.
func (l *Loader) Find(root string) ([]string, error) {
	dirs, err := l.fs().ListDirsRecursive(root)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", root, err)
	}

	var files []string
	for _, dir := range dirs {
		rel, err := relPackage(root, dir)
		if err != nil {
			return nil, err
		}
		if l.skipped(rel) {
			continue
		}
		file := filepath.Join(dir, l.fileName())
		exists, isDir, err := l.fs().Exists(file)
		if err != nil {
			return nil, err
		}
		if exists && !isDir {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) skipped(pkg string) bool {
	for _, skip := range l.Skip {
		skip = path.Clean(skip)
		if pkg == skip || strings.HasPrefix(pkg, skip+"/") {
			return true
		}
	}
	return false
}

// Load decodes every declaration file below root.
func (l *Loader) Load(ctx context.Context, root string) ([]*Package, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.Find(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("found declaration files", "root", root, "count", len(files))

	var pkgs []*Package
	for _, file := range files {
		pkg, err := l.loadFile(root, file)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded declaration file",
			"file", file,
			"genrules", len(pkg.Decl.Genrules),
			"targets", len(pkg.Decl.targets()))
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func (l *Loader) loadFile(root, file string) (*Package, error) {
	pkg, err := relPackage(root, filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	r, err := l.fs().Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	decl, err := Parse(r, file)
	if err != nil {
		return nil, err
	}
	return &Package{Path: pkg, File: file, Decl: decl}, nil
}

// relPackage returns dir as a package path relative to root.
func relPackage(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside of %s", dir, root)
	}
	return rel, nil
}
