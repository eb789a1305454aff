// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package solver defines the composite keys used by the fixpoint solver to
// index program points under the chosen context abstraction.
package solver

import (
	"fmt"

	"github.com/formal-methods-js/jsflow/internal/pkg/flowgraph"
)

// Context is a call context under the configured context-sensitivity
// abstraction. Implementations must be immutable.
type Context interface {
	Equals(Context) bool
	Hash() int
	String() string
}

// NodeAndContext is a pair of an abstract node and a call context, used as a
// map key in the solver's worklist and lattice element tables.
type NodeAndContext struct {
	node flowgraph.Node
	ctx  Context
}

// NewNodeAndContext constructs a new pair.
func NewNodeAndContext(node flowgraph.Node, ctx Context) NodeAndContext {
	return NodeAndContext{node: node, ctx: ctx}
}

// Node returns the node.
func (nc NodeAndContext) Node() flowgraph.Node {
	return nc.node
}

// Context returns the context.
func (nc NodeAndContext) Context() Context {
	return nc.ctx
}

// Equals checks whether this pair and the given pair are equal. Nodes are
// compared by identity, contexts by Context equality.
func (nc NodeAndContext) Equals(other NodeAndContext) bool {
	return nc.node == other.node && nc.ctx.Equals(other.ctx)
}

// Hash computes the hash code for this pair.
func (nc NodeAndContext) Hash() int {
	return nc.node.Index()*13 + nc.ctx.Hash()*3
}

func (nc NodeAndContext) String() string {
	return fmt.Sprintf("node %d, context %s", nc.node.Index(), nc.ctx)
}
