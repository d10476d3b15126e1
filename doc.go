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

// Ccgraph is a build graph for generating C and C++ build rules.  A Graph
// holds Nodes, each a unit of work with inputs, outputs, a command and a
// set of typed labels (include directories, defines, flags and link
// options) that are inherited by dependents through label-exporting nodes.
//
// A Graph is used in three phases.  First, rule generators such as the
// ones in the cc package declare nodes, naming their dependencies by
// reference ("//pkg:name", ":name" or "name").  ResolveDependencies then
// turns references into edges and checks for cycles.  Second, Resolve
// runs pre-build hooks in dependency order; a hook can see the outputs of
// the nodes it depends on, create new nodes and attach them with
// AddDependency.  This is how sources produced by other nodes are turned
// into one compile node per file.  Finally, Finalize computes every
// node's command from its effective labels and the outputs of its
// dependencies, after which the graph can be written out with WriteNinja.
//
// Node outputs that are only known after a node runs, such as the files
// matched by a glob, are answered by an OutputResolver.  GlobOutputs asks
// a file system; StaticOutputs and LoadOutputManifest replay the outputs
// recorded by a previous build.
package ccgraph
