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

// Package config holds the settings shared by every target declaration in a
// build: where outputs go, file extensions and the compiler toolchains.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// A Config holds all of the data that's unique to this build instance.
type Config struct {
	BuildDir         string               `yaml:"build_dir" validate:"required"`
	DefaultToolchain string               `yaml:"default_toolchain" validate:"required"`
	Extensions       Extensions           `yaml:"extensions"`
	SourceExts       []string             `yaml:"source_exts" validate:"min=1,dive,startswith=."`
	HeaderExts       []string             `yaml:"header_exts" validate:"dive,startswith=."`
	Toolchains       map[string]Toolchain `yaml:"toolchains" validate:"min=1,dive"`
}

// Extensions are the suffixes given to generated files, including the dot.
// Binary is usually empty.
type Extensions struct {
	Object  string `yaml:"object" validate:"required,startswith=."`
	Archive string `yaml:"archive" validate:"required,startswith=."`
	Shared  string `yaml:"shared" validate:"required,startswith=."`
	Binary  string `yaml:"binary" validate:"omitempty,startswith=."`
}

// A Toolchain names the programs and default flags of one compiler family.
type Toolchain struct {
	CC       string   `yaml:"cc" validate:"required"`
	CXX      string   `yaml:"cxx" validate:"required"`
	AR       string   `yaml:"ar" validate:"required"`
	LD       string   `yaml:"ld" validate:"required"`
	CFlags   []string `yaml:"cflags"`
	CXXFlags []string `yaml:"cxxflags"`
	LDFlags  []string `yaml:"ldflags"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BuildDir:         "out",
		DefaultToolchain: "gcc",
		Extensions: Extensions{
			Object:  ".o",
			Archive: ".a",
			Shared:  ".so",
		},
		SourceExts: []string{".c", ".cc", ".cpp", ".cxx", ".c++", ".C", ".S"},
		HeaderExts: []string{".h", ".hh", ".hpp", ".hxx", ".inc"},
		Toolchains: map[string]Toolchain{
			"gcc": {
				CC:       "gcc",
				CXX:      "g++",
				AR:       "ar",
				LD:       "g++",
				CFlags:   []string{"-Wall", "-std=c99", "-O2"},
				CXXFlags: []string{"-Wall", "-std=c++11", "-O2"},
			},
			"clang": {
				CC:       "clang",
				CXX:      "clang++",
				AR:       "llvm-ar",
				LD:       "clang++",
				CFlags:   []string{"-Wall", "-std=c99", "-O2"},
				CXXFlags: []string{"-Wall", "-std=c++11", "-O2"},
			},
		},
	}
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result.  An empty path loads only defaults
// and environment.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(Default())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads YAML configuration from r, as Load does.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	// Maps are merged by yaml, so a file listing toolchains adds to the
	// defaults.
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return finish(c)
}

func finish(c *Config) (*Config, error) {
	c.applyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads variables from the given dotenv files, or ".env" when none
// are given, without overriding variables that are already set.  Missing
// files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

// applyEnv overrides settings from the environment.  CC, CXX, AR and LD
// replace the programs of the default toolchain.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("CCGRAPH_BUILD_DIR"); ok {
		c.BuildDir = v
	}
	if v, ok := get("CCGRAPH_TOOLCHAIN"); ok {
		c.DefaultToolchain = v
	}

	tc, ok := c.Toolchains[c.DefaultToolchain]
	if !ok {
		return
	}
	if v, ok := get("CC"); ok {
		tc.CC = v
	}
	if v, ok := get("CXX"); ok {
		tc.CXX = v
	}
	if v, ok := get("AR"); ok {
		tc.AR = v
	}
	if v, ok := get("LD"); ok {
		tc.LD = v
	}
	c.Toolchains[c.DefaultToolchain] = tc
}

// Validate checks the struct constraints and that the default toolchain is
// defined.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if _, ok := c.Toolchains[c.DefaultToolchain]; !ok {
		return fmt.Errorf("default_toolchain: %q is not defined in toolchains", c.DefaultToolchain)
	}
	return nil
}

// Toolchain returns the named toolchain, or the default one for "".
func (c *Config) Toolchain(name string) (Toolchain, error) {
	if name == "" {
		name = c.DefaultToolchain
	}
	tc, ok := c.Toolchains[name]
	if !ok {
		return Toolchain{}, fmt.Errorf("unknown toolchain %q", name)
	}
	return tc, nil
}

// IsSource reports whether path has one of the source extensions.
func (c *Config) IsSource(path string) bool {
	return hasSuffix(path, c.SourceExts)
}

// IsHeader reports whether path has one of the header extensions.
func (c *Config) IsHeader(path string) bool {
	return hasSuffix(path, c.HeaderExts)
}

func hasSuffix(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var msgs []string
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must have at least %s entries", field, e.Param()))
		case "startswith":
			msgs = append(msgs, fmt.Sprintf("%s: must start with %q", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
