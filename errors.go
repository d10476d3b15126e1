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

package ccgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPhase is returned when an operation is attempted in a graph phase
	// that does not allow it, e.g. adding a dependency after the graph was
	// finalized.
	ErrPhase = errors.New("operation not allowed in this graph phase")

	// ErrUnknownNode is returned when a reference names no node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrInvalidReference is returned for references that cannot be
	// canonicalized.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrDependencyCycle is returned when the dependency edges form a
	// cycle.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrEmptyUpstream is returned when a node whose outputs feed a
	// deferred expansion turns out to have produced nothing.
	ErrEmptyUpstream = errors.New("upstream node produced no outputs")

	// ErrNoResolver is returned when outputs of a node are only known after
	// it runs and no OutputResolver is available.
	ErrNoResolver = errors.New("no output resolver")
)

// A NodeError describes a problem related to a particular node.
type NodeError struct {
	Node string // canonical name of the node
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func nodeErrorf(n *Node, format string, args ...interface{}) error {
	return &NodeError{Node: n.name, Err: fmt.Errorf(format, args...)}
}

// Errors joins a list of errors returned by one of the graph phases into a
// single error, or returns nil for an empty list.
func Errors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return multiError(errs)
	}
}

type multiError []error

func (m multiError) Error() string {
	msgs := make([]string, len(m))
	for i, err := range m {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (m multiError) Unwrap() []error {
	return m
}
