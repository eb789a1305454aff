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

// Package flowgraph defines the flow graph carriers referenced by the
// solver: nodes, basic blocks, functions, and flow graph fragments.
package flowgraph

import "fmt"

// NoValue marks an unassigned register.
const NoValue = -1

// SourceLocation identifies a position in the analyzed source file.
type SourceLocation struct {
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// A Node is a node of the flow graph. Nodes are identified by their index,
// which is unique within a flow graph.
type Node interface {
	Index() int
	Location() SourceLocation
	String() string
}

// BaseNode carries the parts common to all node implementations.
type BaseNode struct {
	index    int
	location SourceLocation
}

// NewBaseNode creates a node base at the given location. The index is
// assigned when the node is added to a flow graph.
func NewBaseNode(location SourceLocation) BaseNode {
	return BaseNode{index: NoValue, location: location}
}

// Index returns the node index.
func (n *BaseNode) Index() int {
	return n.index
}

// SetIndex sets the node index.
func (n *BaseNode) SetIndex(index int) {
	n.index = index
}

// Location returns the source location.
func (n *BaseNode) Location() SourceLocation {
	return n.location
}

// A BasicBlock is a maximal straight-line sequence of nodes.
type BasicBlock struct {
	index int
	nodes []Node
}

// NewBasicBlock creates an empty block with the given index.
func NewBasicBlock(index int) *BasicBlock {
	return &BasicBlock{index: index}
}

// Index returns the block index.
func (b *BasicBlock) Index() int {
	return b.index
}

// Nodes returns the nodes of the block in order.
func (b *BasicBlock) Nodes() []Node {
	return b.nodes
}

// AddNode appends a node to the block.
func (b *BasicBlock) AddNode(n Node) {
	b.nodes = append(b.nodes, n)
}

// A Function is a JavaScript function in the flow graph.
type Function struct {
	name  string
	entry *BasicBlock
}

// NewFunction creates a function with the given name and entry block.
// The name is "" for anonymous functions and the top-level code.
func NewFunction(name string, entry *BasicBlock) *Function {
	return &Function{name: name, entry: entry}
}

// Name returns the function name, "" if anonymous.
func (f *Function) Name() string {
	return f.name
}

// Entry returns the entry block.
func (f *Function) Entry() *BasicBlock {
	return f.entry
}

func (f *Function) String() string {
	if f.name == "" {
		return "<anonymous>"
	}
	return f.name
}
