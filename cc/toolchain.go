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

import "fmt"

// BuildIDNone is passed to every link so that identical inputs produce
// byte-identical outputs.
const BuildIDNone = "-Wl,--build-id=none"

// CompileArgs describe one compilation.  All paths are relative to the
// source root.
type CompileArgs struct {
	Src string
	Out string
	PIC bool

	IncludeDirs     []string
	Defines         []string
	Flags           []string
	PkgConfigCflags []string
}

// ArchiveArgs describe one static archive.
type ArchiveArgs struct {
	Out    string
	Inputs []string // objects and prebuilt archives, in order
}

// LinkArgs describe one link.  Objects and Archives are linked as a group;
// WholeArchive lists the members of Archives whose every object is kept.
type LinkArgs struct {
	Out    string
	Shared bool

	Objects      []string
	Archives     []string
	WholeArchive []string

	LibraryDirs   []string // "-L" directories
	Libraries     []string // "-l" arguments, as returned by LinkName
	Flags         []string
	PkgConfigLibs []string
}

// A Toolchain binds the functions that turn compile, archive and link
// arguments into shell commands.  Which nodes exist and which labels they
// see is decided by the Composer; a toolchain only spells the commands.
type Toolchain struct {
	Name    string
	Compile func(CompileArgs) (string, error)
	Archive func(ArchiveArgs) (string, error)
	Link    func(LinkArgs) (string, error)
}

// Validate checks that every function is bound.
func (t *Toolchain) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: no toolchain", ErrMissingToolchain)
	}
	var missing []string
	if t.Compile == nil {
		missing = append(missing, "Compile")
	}
	if t.Archive == nil {
		missing = append(missing, "Archive")
	}
	if t.Link == nil {
		missing = append(missing, "Link")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: toolchain %q has no %v", ErrMissingToolchain, t.Name, missing)
	}
	return nil
}
