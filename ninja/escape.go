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

package ninja

import "strings"

var (
	valueEscaper = strings.NewReplacer("$", "$$")
	pathEscaper  = strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:", "\n", "$\n")

	singleQuoteReplacer = strings.NewReplacer(`'`, `'\''`)
)

// Escape escapes the characters ninja treats specially in variable values,
// so that a shell command reaches the shell unchanged.
func Escape(s string) string {
	return valueEscaper.Replace(s)
}

// EscapePath escapes a path for use in a build or default statement.
func EscapePath(s string) string {
	return pathEscaper.Replace(s)
}

// EscapePaths escapes each path, returning a new slice.
func EscapePaths(paths []string) []string {
	ret := make([]string, len(paths))
	for i, p := range paths {
		ret[i] = EscapePath(p)
	}
	return ret
}

func shellSafe(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z',
		'a' <= r && r <= 'z',
		'0' <= r && r <= '9':
		return true
	}
	return strings.ContainsRune("_+-=.,/@%:", r)
}

// ShellQuote wraps s in single quotes if it contains anything the shell
// would interpret, replacing inner single quotes with '\''.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool { return !shellSafe(r) }) == -1 {
		return s
	}
	return `'` + singleQuoteReplacer.Replace(s) + `'`
}

// ShellQuoteAll quotes each argument, returning a new slice.
func ShellQuoteAll(args []string) []string {
	ret := make([]string, len(args))
	for i, a := range args {
		ret[i] = ShellQuote(a)
	}
	return ret
}
