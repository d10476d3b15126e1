// Copyright 2016 Google Inc. All rights reserved.
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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OsFs is the FileSystem backed by the local disk.
var OsFs FileSystem = osFs{}

// MockFs returns an in-memory FileSystem holding files.  Every parent
// directory of a file exists implicitly.
func MockFs(files map[string][]byte) FileSystem {
	fs := &mockFs{
		files: make(map[string][]byte, len(files)),
		dirs:  make(map[string]bool),
	}

	for f, b := range files {
		fs.files[filepath.Clean(f)] = b
		dir := filepath.Dir(f)
		for dir != "." && dir != "/" {
			fs.dirs[dir] = true
			dir = filepath.Dir(dir)
		}
		fs.dirs[dir] = true
	}

	for f := range fs.files {
		fs.all = append(fs.all, f)
	}
	for d := range fs.dirs {
		fs.all = append(fs.all, d)
	}
	sort.Strings(fs.all)

	return fs
}

// A FileSystem is the view of the disk used to find declaration files and
// to discover what generator nodes actually produced.
type FileSystem interface {
	Open(name string) (io.ReadCloser, error)
	// Exists returns whether name exists and whether it is a directory.
	Exists(name string) (exists bool, isDir bool, err error)
	// Glob returns the files matching pattern, sorted.  Patterns may use
	// the filepath.Match syntax in any path element.
	Glob(pattern string) (matches []string, err error)
	// ListDirsRecursive returns name and every directory below it, skipping
	// hidden directories.
	ListDirsRecursive(name string) (dirs []string, err error)

	match(pattern string) ([]string, error)
	isDir(name string) bool
}

type osFs struct{}

func (osFs) Open(name string) (io.ReadCloser, error) { return os.Open(name) }

func (osFs) Exists(name string) (bool, bool, error) {
	stat, err := os.Stat(name)
	if err == nil {
		return true, stat.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, false, nil
	} else {
		return false, false, err
	}
}

func (fs osFs) Glob(pattern string) ([]string, error) {
	return glob(fs, pattern)
}

func (osFs) match(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (osFs) isDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

func (osFs) ListDirsRecursive(name string) (dirs []string, err error) {
	err = filepath.Walk(name, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsDir() {
			name := info.Name()
			if name[0] == '.' && name != "." {
				return filepath.SkipDir
			}

			dirs = append(dirs, path)
		}
		return nil
	})

	return dirs, err
}

type mockFs struct {
	files map[string][]byte
	dirs  map[string]bool
	all   []string
}

func (m *mockFs) Open(name string) (io.ReadCloser, error) {
	if f, ok := m.files[filepath.Clean(name)]; ok {
		return io.NopCloser(bytes.NewReader(f)), nil
	}

	return nil, &os.PathError{
		Op:   "open",
		Path: name,
		Err:  os.ErrNotExist,
	}
}

func (m *mockFs) Exists(name string) (bool, bool, error) {
	name = filepath.Clean(name)
	if _, ok := m.files[name]; ok {
		return true, false, nil
	}
	if _, ok := m.dirs[name]; ok {
		return true, true, nil
	}
	return false, false, nil
}

func (m *mockFs) Glob(pattern string) ([]string, error) {
	return glob(m, pattern)
}

func (m *mockFs) match(pattern string) ([]string, error) {
	var matches []string
	for _, f := range m.all {
		match, err := filepath.Match(pattern, f)
		if err != nil {
			return nil, err
		}
		if f == "." && f != pattern {
			// filepath.Glob won't return "." unless the pattern was "."
			match = false
		}
		if match {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

func (m *mockFs) isDir(name string) bool {
	return m.dirs[filepath.Clean(name)]
}

func (m *mockFs) ListDirsRecursive(name string) (dirs []string, err error) {
	name = filepath.Clean(name)
	dirs = append(dirs, name)
	if name == "." {
		name = ""
	} else if name != "/" {
		name = name + "/"
	}
	for _, f := range m.all {
		if _, isDir := m.dirs[f]; isDir && f != "." && filepath.Base(f)[0] != '.' {
			if strings.HasPrefix(f, name) &&
				strings.HasPrefix(f, "/") == strings.HasPrefix(name, "/") &&
				f+"/" != name && f != name {
				dirs = append(dirs, f)
			}
		}
	}

	return dirs, nil
}
