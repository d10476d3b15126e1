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
	"path"
	"strings"

	"github.com/google/ccgraph"
)

// ArchiveName returns the default archive file name for a target:
// "lib<name><ext>", or "<name><ext>" when name already starts with "lib".
func ArchiveName(name, ext string) string {
	return libName(name, ext)
}

// SharedObjectName applies the ArchiveName rule to shared objects.
func SharedObjectName(name, ext string) string {
	return libName(name, ext)
}

func libName(name, ext string) string {
	if strings.HasPrefix(name, "lib") {
		return name + ext
	}
	return "lib" + name + ext
}

// BinaryName returns the default binary file name: name, with ext appended
// unless name already ends with it.
func BinaryName(name, ext string) string {
	if ext == "" || strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}

// LinkName returns the linker arguments that link the shared library at
// libPath: "-l<name>" for "lib<name><ext>" and "-l:<file>" otherwise.
func LinkName(libPath, ext string) string {
	base := path.Base(libPath)
	if strings.HasPrefix(base, "lib") && strings.HasSuffix(base, ext) && len(base) > len("lib")+len(ext) {
		return "-l" + strings.TrimSuffix(strings.TrimPrefix(base, "lib"), ext)
	}
	return "-l:" + base
}

// Names of the nodes generated for a target.  Intermediate nodes start with
// "_" and contain "#", which target names may not, so they never collide
// with declared targets.

func headersNodeName(target string) string     { return "_" + target + "#hdrs" }
func placeholderNodeName(target string) string { return "_" + target + "#srcs" }
func archiveNodeName(target string) string     { return "_" + target + "#a" }
func internalLibName(target string) string     { return "_" + target + "#lib" }
func sharedLinkNodeName(target string) string  { return "_" + target + "#so" }

// unitNodeName names the compile node of file, a path relative to the
// source root, within target.  Mangling is injective, so distinct files
// never share a node.
func unitNodeName(target, file string) string {
	return "_" + target + "#cc_" + ccgraph.Mangle(file)
}

// objectsDir is the directory, relative to the source root, holding the
// objects of target.
func (c *Composer) objectsDir(pkg, target string) string {
	return path.Join(c.cfg.BuildDir, pkg, "_"+target+"#objs")
}

// outputPath places file in the build directory mirror of pkg.
func (c *Composer) outputPath(pkg, file string) string {
	return path.Join(c.cfg.BuildDir, pkg, file)
}
