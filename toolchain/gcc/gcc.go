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

// Package gcc spells compile, archive and link commands for GCC-compatible
// drivers (gcc, clang) and GNU ar.
package gcc

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/ccgraph/cc"
	"github.com/google/ccgraph/config"
	"github.com/google/ccgraph/ninja"
)

// Files compiled with the C driver rather than the C++ one.
var cExts = map[string]bool{
	".c": true,
	".S": true,
	".s": true,
}

// New returns a toolchain running the programs named in tc.
func New(name string, tc config.Toolchain) *cc.Toolchain {
	g := &gcc{Toolchain: tc}
	return &cc.Toolchain{
		Name:    name,
		Compile: g.compile,
		Archive: g.archive,
		Link:    g.link,
	}
}

// FromConfig returns the named toolchain of cfg, or its default toolchain
// for "".
func FromConfig(cfg *config.Config, name string) (*cc.Toolchain, error) {
	if name == "" {
		name = cfg.DefaultToolchain
	}
	tc, err := cfg.Toolchain(name)
	if err != nil {
		return nil, err
	}
	return New(name, tc), nil
}

type gcc struct {
	config.Toolchain
}

type command struct {
	args []string
}

func (c *command) add(args ...string) {
	c.args = append(c.args, ninja.ShellQuoteAll(args)...)
}

// addRaw appends shell text that must not be quoted.
func (c *command) addRaw(args ...string) {
	c.args = append(c.args, args...)
}

func (c *command) addPrefixed(prefix string, args []string) {
	for _, a := range args {
		c.add(prefix + a)
	}
}

func (c *command) String() string {
	return strings.Join(c.args, " ")
}

func pkgConfig(what string, pkgs []string) string {
	return fmt.Sprintf("$(pkg-config %s %s)", what, strings.Join(ninja.ShellQuoteAll(pkgs), " "))
}

func (g *gcc) compile(a cc.CompileArgs) (string, error) {
	if a.Src == "" || a.Out == "" {
		return "", fmt.Errorf("compile: source and output are required")
	}

	driver, defaults := g.CXX, g.CXXFlags
	if cExts[path.Ext(a.Src)] {
		driver, defaults = g.CC, g.CFlags
	}

	cmd := &command{}
	cmd.addRaw(driver)
	cmd.add("-MMD", "-MF", a.Out+".d")
	cmd.add(defaults...)
	if a.PIC {
		cmd.add("-fPIC")
	}
	cmd.add(a.Flags...)
	cmd.addPrefixed("-I", a.IncludeDirs)
	cmd.addPrefixed("-D", a.Defines)
	if len(a.PkgConfigCflags) > 0 {
		cmd.addRaw(pkgConfig("--cflags", a.PkgConfigCflags))
	}
	cmd.add("-c", a.Src, "-o", a.Out)
	return cmd.String(), nil
}

func (g *gcc) archive(a cc.ArchiveArgs) (string, error) {
	if a.Out == "" {
		return "", fmt.Errorf("archive: output is required")
	}
	// ar appends to an existing archive, so start from scratch.
	cmd := &command{}
	cmd.add("rm", "-f", a.Out)
	cmd.addRaw("&&", g.AR)
	cmd.add("rcs", a.Out)
	cmd.add(a.Inputs...)
	return cmd.String(), nil
}

func (g *gcc) link(a cc.LinkArgs) (string, error) {
	if a.Out == "" {
		return "", fmt.Errorf("link: output is required")
	}

	whole := make(map[string]bool, len(a.WholeArchive))
	for _, w := range a.WholeArchive {
		whole[w] = true
	}

	cmd := &command{}
	cmd.addRaw(g.LD)
	cmd.add(g.LDFlags...)
	if a.Shared {
		cmd.add("-shared")
	}
	cmd.add("-o", a.Out)
	cmd.add(a.Objects...)
	if len(a.Archives) > 0 {
		cmd.add("-Wl,--start-group")
		for _, archive := range a.Archives {
			if whole[archive] {
				cmd.add("-Wl,--whole-archive", archive, "-Wl,--no-whole-archive")
			} else {
				cmd.add(archive)
			}
		}
		cmd.add("-Wl,--end-group")
	}
	cmd.addPrefixed("-L", a.LibraryDirs)
	cmd.addPrefixed("-Wl,-rpath=", a.LibraryDirs)
	cmd.add(a.Libraries...)
	cmd.add(a.Flags...)
	if len(a.PkgConfigLibs) > 0 {
		cmd.addRaw(pkgConfig("--libs", a.PkgConfigLibs))
	}
	return cmd.String(), nil
}
