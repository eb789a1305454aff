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

package lattice

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an object label by the class of the allocated object.
type Kind int

const (
	KindObject Kind = iota
	KindFunction
	KindArray
	KindRegexp
	KindDate
	KindString
	KindBoolean
	KindNumber
	KindArguments
	KindError
	KindMath
)

var kindNames = [...]string{"obj", "fun", "arr", "regexp", "date", "str", "bool", "num", "args", "err", "math"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// An ObjectLabel identifies the abstract objects from an allocation site
// under the chosen heap-context abstraction. User objects are identified by
// the flow graph index of their allocation site; host (native) objects are
// identified by name. A label is either a singleton, describing exactly one
// concrete object, or a summary, describing any number of them.
//
// ObjectLabel is a comparable value type and can be used as a map key.
type ObjectLabel struct {
	node      int    // allocation site node index, -1 for host objects
	host      string // host object name, "" for user objects
	kind      Kind
	singleton bool
}

// MakeObjectLabel creates a singleton label for the allocation site with the
// given node index.
func MakeObjectLabel(node int, kind Kind) ObjectLabel {
	return ObjectLabel{node: node, kind: kind, singleton: true}
}

// MakeHostObjectLabel creates a singleton label for the named host object.
func MakeHostObjectLabel(name string, kind Kind) ObjectLabel {
	return ObjectLabel{node: -1, host: name, kind: kind, singleton: true}
}

// Node returns the allocation site node index, or -1 for host objects.
func (l ObjectLabel) Node() int {
	return l.node
}

// HostName returns the host object name, or "" for user objects.
func (l ObjectLabel) HostName() string {
	return l.host
}

// Kind returns the label kind.
func (l ObjectLabel) Kind() Kind {
	return l.kind
}

// IsSingleton returns true if this label describes at most one concrete object.
func (l ObjectLabel) IsSingleton() bool {
	return l.singleton
}

// Summary returns the summary variant of this label.
func (l ObjectLabel) Summary() ObjectLabel {
	l.singleton = false
	return l
}

// Singleton returns the singleton variant of this label.
func (l ObjectLabel) Singleton() ObjectLabel {
	l.singleton = true
	return l
}

// Hash computes the hash code for this label.
func (l ObjectLabel) Hash() int {
	h := l.node*31 + int(l.kind)*17 + stringHash(l.host)*7
	if l.singleton {
		h += 3
	}
	return h
}

func (l ObjectLabel) String() string {
	var b strings.Builder
	if l.host != "" {
		b.WriteString(l.host)
	} else {
		fmt.Fprintf(&b, "%s#%d", l.kind, l.node)
	}
	if !l.singleton {
		b.WriteString("*")
	}
	return b.String()
}

// sortedLabels returns the labels of the given set in deterministic order.
func sortedLabels(labels map[ObjectLabel]bool) []ObjectLabel {
	res := make([]ObjectLabel, 0, len(labels))
	for l := range labels {
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].String() < res[j].String() })
	return res
}

// labelSetHash computes an order-independent hash of a label set.
func labelSetHash(labels map[ObjectLabel]bool) int {
	h := 0
	for l := range labels {
		h += l.Hash()
	}
	return h
}

// stringHash computes the hash code of a string, compatible across runs.
func stringHash(s string) int {
	h := 0
	for i := 0; i < len(s); i++ {
		h = h*31 + int(s[i])
	}
	return h
}

// Summarized is a witness describing which object labels have transitioned
// from singleton to summary abstraction, for example at recursive calls or
// when an allocation site is revisited.
//
// A label is maybe summarized if some concrete object denoted by the
// singleton may now be denoted by the summary, and definitely summarized if
// all of them are.
type Summarized struct {
	maybeSummarized      map[ObjectLabel]bool
	definitelySummarized map[ObjectLabel]bool
}

// NewSummarized creates an empty witness.
func NewSummarized() *Summarized {
	return &Summarized{
		maybeSummarized:      make(map[ObjectLabel]bool),
		definitelySummarized: make(map[ObjectLabel]bool),
	}
}

// AddMaybeSummarized records that l may have been summarized.
func (s *Summarized) AddMaybeSummarized(l ObjectLabel) {
	s.maybeSummarized[l] = true
}

// AddDefinitelySummarized records that l has definitely been summarized.
// Definitely summarized implies maybe summarized.
func (s *Summarized) AddDefinitelySummarized(l ObjectLabel) {
	s.definitelySummarized[l] = true
	s.maybeSummarized[l] = true
}

// IsMaybeSummarized returns true if l may have been summarized.
func (s *Summarized) IsMaybeSummarized(l ObjectLabel) bool {
	return s.maybeSummarized[l]
}

// IsDefinitelySummarized returns true if l has definitely been summarized.
func (s *Summarized) IsDefinitelySummarized(l ObjectLabel) bool {
	return s.definitelySummarized[l]
}
