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

// Package jsnodes contains the JavaScript-level flow graph node types.
package jsnodes

import (
	"fmt"

	"github.com/formal-methods-js/jsflow/internal/pkg/flowgraph"
)

// EnterWithNode marks entry into the body of a with statement. The object
// register holds the value that is pushed onto the scope chain.
type EnterWithNode struct {
	flowgraph.BaseNode
	objectRegister int
}

// NewEnterWithNode constructs an enter-with node.
func NewEnterWithNode(objectRegister int, location flowgraph.SourceLocation) *EnterWithNode {
	return &EnterWithNode{BaseNode: flowgraph.NewBaseNode(location), objectRegister: objectRegister}
}

// ObjectRegister returns the object register.
func (n *EnterWithNode) ObjectRegister() int {
	return n.objectRegister
}

// SetObjectRegister sets the object register.
func (n *EnterWithNode) SetObjectRegister(objectRegister int) {
	n.objectRegister = objectRegister
}

func (n *EnterWithNode) String() string {
	return fmt.Sprintf("enter-with[v%d]", n.objectRegister)
}

// CanThrowExceptions reports whether the node can raise a language-level exception.
func (n *EnterWithNode) CanThrowExceptions() bool {
	return true
}

// Check validates the node after flow graph construction.
func (n *EnterWithNode) Check(b *flowgraph.BasicBlock) error {
	if n.objectRegister == flowgraph.NoValue {
		return fmt.Errorf("invalid object register: %s", n)
	}
	return nil
}
