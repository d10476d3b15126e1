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

// ccfmt formats BUILD.hcl declaration files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/google/ccgraph/buildfile"
)

type options struct {
	list      bool
	overwrite bool
	stdout    bool
	diff      bool
}

type formatter struct {
	options
	out      io.Writer
	exitCode int
}

func (f *formatter) report(err error) {
	fmt.Fprintln(os.Stderr, err)
	f.exitCode = 2
}

func (f *formatter) processFile(filename string) error {
	in, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer in.Close()

	return f.processReader(filename, in)
}

func (f *formatter) processReader(filename string, in io.Reader) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	res, err := buildfile.Format(src, filename)
	if err != nil {
		return err
	}

	if !bytes.Equal(src, res) {
		if f.list {
			fmt.Fprintln(f.out, filename)
		}
		if f.overwrite {
			if err := os.WriteFile(filename, res, 0644); err != nil {
				return err
			}
		}
		if f.diff {
			data, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(src)),
				B:        difflib.SplitLines(string(res)),
				FromFile: filename,
				ToFile:   "ccfmt/" + filename,
				Context:  3,
			})
			if err != nil {
				return fmt.Errorf("computing diff: %w", err)
			}
			fmt.Fprint(f.out, data)
		}
	}

	if !f.list && !f.overwrite && !f.diff {
		_, err = f.out.Write(res)
	}
	return err
}

func (f *formatter) walkDir(path string) {
	visitFile := func(path string, info os.FileInfo, err error) error {
		if err == nil && info.Name() == buildfile.DefaultFileName {
			err = f.processFile(path)
		}
		if err != nil {
			f.report(err)
		}
		return nil
	}

	filepath.Walk(path, visitFile)
}

func (f *formatter) run(args []string, stdin io.Reader) {
	if len(args) == 0 {
		if err := f.processReader("<standard input>", stdin); err != nil {
			f.report(err)
		}
		return
	}

	for _, path := range args {
		switch dir, err := os.Stat(path); {
		case err != nil:
			f.report(err)
		case dir.IsDir():
			f.walkDir(path)
		default:
			if err := f.processFile(path); err != nil {
				f.report(err)
			}
		}
	}
}

func usageViolation(fs *flag.FlagSet, violation string) {
	fmt.Fprintln(os.Stderr, violation)
	fmt.Fprintln(os.Stderr, "usage: ccfmt [flags] [path ...]")
	fs.PrintDefaults()
	os.Exit(2)
}

func main() {
	f := &formatter{out: os.Stdout}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.BoolVar(&f.list, "l", false, "list files whose formatting differs from ccfmt's")
	fs.BoolVar(&f.overwrite, "w", false, "write result to (source) file")
	fs.BoolVar(&f.stdout, "o", false, "write result to stdout")
	fs.BoolVar(&f.diff, "d", false, "display diffs instead of rewriting files")
	fs.Parse(os.Args[1:])

	if !f.stdout && !f.overwrite && !f.diff && !f.list {
		usageViolation(fs, "one of -d, -l, -o, or -w is required")
	}
	if fs.NArg() == 0 && f.overwrite {
		fmt.Fprintln(os.Stderr, "error: cannot use -w with standard input")
		os.Exit(2)
	}

	f.run(fs.Args(), os.Stdin)
	os.Exit(f.exitCode)
}
