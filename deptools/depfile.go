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

// Package deptools writes gcc-style dependency files, which let ninja
// regenerate the manifest when a declaration or configuration file changes.
package deptools

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var depEscaper = strings.NewReplacer(" ", `\ `, "#", `\#`, "$", "$$")

// Write writes a depfile stating that target depends on deps.
func Write(w io.Writer, target string, deps []string) error {
	escaped := make([]string, len(deps))
	for i, d := range deps {
		escaped[i] = depEscaper.Replace(d)
	}
	_, err := fmt.Fprintf(w, "%s: \\\n %s\n", depEscaper.Replace(target),
		strings.Join(escaped, " \\\n "))
	return err
}

// WriteDepFile creates filename and writes a depfile stating that target
// depends on deps.
func WriteDepFile(filename, target string, deps []string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(f, target, deps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
