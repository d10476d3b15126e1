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

package label

// Config is the typed view of a label list that command builders consume.
// Every field keeps the order the labels were merged in.
type Config struct {
	IncludeDirs     []string
	Defines         []string
	CompilerFlags   []string
	LinkFlags       []string
	PkgConfigLibs   []string
	PkgConfigCflags []string
	AlwaysLink      []string
	LibraryPaths    []string
}

// Partition sorts labels into a Config by kind.  Labels of an invalid kind
// are ignored.
func Partition(labels []Label) Config {
	var c Config
	for _, l := range labels {
		switch l.Kind {
		case IncludeDir:
			c.IncludeDirs = append(c.IncludeDirs, l.Value)
		case Define:
			c.Defines = append(c.Defines, l.Value)
		case CompilerFlag:
			c.CompilerFlags = append(c.CompilerFlags, l.Value)
		case LinkFlag:
			c.LinkFlags = append(c.LinkFlags, l.Value)
		case PkgConfigLib:
			c.PkgConfigLibs = append(c.PkgConfigLibs, l.Value)
		case PkgConfigCflag:
			c.PkgConfigCflags = append(c.PkgConfigCflags, l.Value)
		case AlwaysLink:
			c.AlwaysLink = append(c.AlwaysLink, l.Value)
		case LibraryPath:
			c.LibraryPaths = append(c.LibraryPaths, l.Value)
		}
	}
	return c
}
