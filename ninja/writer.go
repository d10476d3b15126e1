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

// Package ninja writes Ninja build manifests.
package ninja

import (
	"io"
	"sort"
	"strings"
	"unicode"
)

const (
	indentWidth = 4
	lineWidth   = 80
)

var indent = strings.Repeat(" ", indentWidth)

// A Build describes one build statement.  Paths must already be escaped
// with EscapePath; variable values are written as given.
type Build struct {
	Comment         string
	Rule            string
	Outputs         []string
	ImplicitOutputs []string
	Inputs          []string
	Implicits       []string
	OrderOnly       []string
	Validations     []string
	Variables       map[string]string
}

// A Writer emits Ninja statements, wrapping long lines with "$".
type Writer struct {
	w io.StringWriter

	err       error
	blankLine bool // the last thing written was a blank line
}

func NewWriter(w io.StringWriter) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error, if any.  Once a write fails every
// later call is a no-op.
func (n *Writer) Err() error {
	return n.err
}

func (n *Writer) write(ss ...string) {
	for _, s := range ss {
		if n.err != nil {
			return
		}
		_, n.err = n.w.WriteString(s)
	}
}

// Comment writes comment as "#" lines no wider than the line width.
// Embedded newlines are kept.
func (n *Writer) Comment(comment string) error {
	n.blankLine = false

	const maxLineLen = lineWidth - len("# ")

	var lineStart, lastSplitPoint int
	for i, r := range comment {
		if unicode.IsSpace(r) {
			lastSplitPoint = i + 1
		}

		var line string
		switch {
		case r == '\n':
			// Only the right is trimmed so comments keep their indentation.
			line = strings.TrimRightFunc(comment[lineStart:i], unicode.IsSpace)
		case i-lineStart > maxLineLen && lastSplitPoint > lineStart:
			line = strings.TrimSpace(comment[lineStart:lastSplitPoint])
		default:
			continue
		}
		n.write(strings.TrimSpace("# "+line), "\n")
		lineStart = lastSplitPoint
	}

	if lineStart != len(comment) {
		n.write("# ", strings.TrimSpace(comment[lineStart:]), "\n")
	}
	return n.err
}

// Rule starts a rule; its variables follow as ScopedAssign calls.
func (n *Writer) Rule(name string) error {
	n.blankLine = false
	n.write("rule ", name, "\n")
	return n.err
}

// Assign writes a top level variable.
func (n *Writer) Assign(name, value string) error {
	n.blankLine = false
	n.write(name, " = ", value, "\n")
	return n.err
}

// ScopedAssign writes a variable belonging to the preceding rule or build.
func (n *Writer) ScopedAssign(name, value string) error {
	n.blankLine = false
	n.write(indent, name, " = ", value, "\n")
	return n.err
}

// Build writes a build statement followed by its variables in name order.
func (n *Writer) Build(b Build) error {
	n.blankLine = false

	if b.Comment != "" {
		if err := n.Comment(b.Comment); err != nil {
			return err
		}
	}

	wrapper := n.wrapper()
	wrapper.WriteString("build")
	wrapper.list("", b.Outputs)
	wrapper.list("|", b.ImplicitOutputs)
	wrapper.WriteString(":")
	wrapper.WriteStringWithSpace(b.Rule)
	wrapper.list("", b.Inputs)
	wrapper.list("|", b.Implicits)
	wrapper.list("||", b.OrderOnly)
	wrapper.list("|@", b.Validations)
	if err := wrapper.Flush(); err != nil {
		return err
	}

	names := make([]string, 0, len(b.Variables))
	for name := range b.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := n.ScopedAssign(name, b.Variables[name]); err != nil {
			return err
		}
	}
	return nil
}

// Phony writes a phony build statement aliasing targets as name.
func (n *Writer) Phony(name string, targets ...string) error {
	return n.Build(Build{
		Rule:    "phony",
		Outputs: []string{name},
		Inputs:  targets,
	})
}

// Default writes the default statement.
func (n *Writer) Default(targets ...string) error {
	n.blankLine = false
	wrapper := n.wrapper()
	wrapper.WriteString("default")
	wrapper.list("", targets)
	return wrapper.Flush()
}

// BlankLine writes an empty line, never two in a row.
func (n *Writer) BlankLine() error {
	if !n.blankLine {
		n.blankLine = true
		n.write("\n")
	}
	return n.err
}

func (n *Writer) wrapper() *lineWrapper {
	return &lineWrapper{
		Writer:     n,
		maxLineLen: lineWidth - len(" $"),
	}
}

type lineWrapper struct {
	*Writer
	maxLineLen int
	writtenLen int
}

func (l *lineWrapper) writeString(s string, space bool) {
	if l.err != nil {
		return
	}

	spaceLen := 0
	if space {
		spaceLen = 1
	}

	if l.writtenLen+len(s)+spaceLen > l.maxLineLen {
		l.write(" $\n", indent, indent)
		l.writtenLen = indentWidth * 2
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	} else if space {
		l.write(" ")
		l.writtenLen++
	}

	l.write(s)
	l.writtenLen += len(s)
}

func (l *lineWrapper) WriteString(s string) {
	l.writeString(s, false)
}

func (l *lineWrapper) WriteStringWithSpace(s string) {
	l.writeString(s, true)
}

// list writes sep, if non-empty, followed by items, or nothing when there
// are no items.
func (l *lineWrapper) list(sep string, items []string) {
	if len(items) == 0 {
		return
	}
	if sep != "" {
		l.WriteStringWithSpace(sep)
	}
	for _, item := range items {
		l.WriteStringWithSpace(item)
	}
}

func (l *lineWrapper) Flush() error {
	l.write("\n")
	return l.err
}
