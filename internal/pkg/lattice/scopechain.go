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

import "strings"

// A ScopeChain is an immutable sequence of object label sets describing
// nested lexical environments, innermost frame first. A nil *ScopeChain is
// the empty chain. Chains may share tail segments; all operations preserve
// that sharing where possible.
type ScopeChain struct {
	obj  map[ObjectLabel]bool
	next *ScopeChain
}

// NewScopeChain creates a chain with the given innermost frame in front of
// next. The label set is copied.
func NewScopeChain(labels map[ObjectLabel]bool, next *ScopeChain) *ScopeChain {
	obj := make(map[ObjectLabel]bool, len(labels))
	for l := range labels {
		obj[l] = true
	}
	return &ScopeChain{obj: obj, next: next}
}

// Obj returns the innermost frame's label set. Callers must not modify it.
func (s *ScopeChain) Obj() map[ObjectLabel]bool {
	return s.obj
}

// Next returns the rest of the chain, nil if this is the outermost frame.
func (s *ScopeChain) Next() *ScopeChain {
	return s.next
}

// Frames returns the frames of the chain in order, innermost first.
// Callers must not modify the returned sets.
func (s *ScopeChain) Frames() []map[ObjectLabel]bool {
	var frames []map[ObjectLabel]bool
	for c := s; c != nil; c = c.next {
		frames = append(frames, c.obj)
	}
	return frames
}

// Equals checks whether the two chains have framewise equal label sets.
func (s *ScopeChain) Equals(o *ScopeChain) bool {
	for ; s != nil && o != nil; s, o = s.next, o.next {
		if s == o {
			return true
		}
		if len(s.obj) != len(o.obj) {
			return false
		}
		for l := range s.obj {
			if !o.obj[l] {
				return false
			}
		}
	}
	return s == nil && o == nil
}

// Hash computes the hash code for this chain. Structurally equal chains hash
// equally.
func (s *ScopeChain) Hash() int {
	h := 0
	for c := s; c != nil; c = c.next {
		h = h*31 + labelSetHash(c.obj) + 1
	}
	return h
}

func (s *ScopeChain) String() string {
	var b strings.Builder
	b.WriteString("[")
	first := true
	for c := s; c != nil; c = c.next {
		if !first {
			b.WriteString(",")
		}
		first = false
		b.WriteString("{")
		for i, l := range sortedLabels(c.obj) {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(l.String())
		}
		b.WriteString("}")
	}
	b.WriteString("]")
	return b.String()
}

// AddScopeChain joins the two chains framewise. Frames beyond the length of
// the shorter chain are taken from the longer one unchanged. A nil operand
// acts as the neutral element.
func AddScopeChain(a, b *ScopeChain) *ScopeChain {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	union := make(map[ObjectLabel]bool, len(a.obj)+len(b.obj))
	for l := range a.obj {
		union[l] = true
	}
	for l := range b.obj {
		union[l] = true
	}
	return &ScopeChain{obj: union, next: AddScopeChain(a.next, b.next)}
}

// Summarize applies the witness to every frame of the chain.
func (s *ScopeChain) Summarize(sum *Summarized) *ScopeChain {
	if s == nil {
		return nil
	}
	obj := make(map[ObjectLabel]bool, len(s.obj))
	for l := range s.obj {
		addSummarizedLabel(obj, l, sum)
	}
	return &ScopeChain{obj: obj, next: s.next.Summarize(sum)}
}

// addSummarizedLabel inserts the summarized image of l into the set.
func addSummarizedLabel(set map[ObjectLabel]bool, l ObjectLabel, sum *Summarized) {
	if l.IsSingleton() && sum.IsMaybeSummarized(l) {
		set[l.Summary()] = true
		if !sum.IsDefinitelySummarized(l) {
			set[l] = true
		}
	} else {
		set[l] = true
	}
}

// ReplaceObjectLabel replaces oldlabel by newlabel in every frame. The cache
// deduplicates rewrites of shared chain suffixes; pass the same cache to all
// rewrites belonging to one renaming.
func (s *ScopeChain) ReplaceObjectLabel(oldlabel, newlabel ObjectLabel, cache map[*ScopeChain]*ScopeChain) *ScopeChain {
	if s == nil {
		return nil
	}
	if c, ok := cache[s]; ok {
		return c
	}
	obj := make(map[ObjectLabel]bool, len(s.obj))
	for l := range s.obj {
		if l == oldlabel {
			obj[newlabel] = true
		} else {
			obj[l] = true
		}
	}
	res := &ScopeChain{obj: obj, next: s.next.ReplaceObjectLabel(oldlabel, newlabel, cache)}
	cache[s] = res
	return res
}

// ReplaceObjectLabels replaces labels in every frame according to the map.
// Labels not in the key set are unchanged. The cache works as in
// ReplaceObjectLabel.
func (s *ScopeChain) ReplaceObjectLabels(m map[ObjectLabel]ObjectLabel, cache map[*ScopeChain]*ScopeChain) *ScopeChain {
	if s == nil {
		return nil
	}
	if c, ok := cache[s]; ok {
		return c
	}
	obj := make(map[ObjectLabel]bool, len(s.obj))
	for l := range s.obj {
		if nl, ok := m[l]; ok {
			obj[nl] = true
		} else {
			obj[l] = true
		}
	}
	res := &ScopeChain{obj: obj, next: s.next.ReplaceObjectLabels(m, cache)}
	cache[s] = res
	return res
}

// RemoveScopeChain removes the labels of b from a, framewise. It is assumed
// that a subsumes b.
func RemoveScopeChain(a, b *ScopeChain) *ScopeChain {
	if a == nil || b == nil {
		return a
	}
	obj := make(map[ObjectLabel]bool, len(a.obj))
	for l := range a.obj {
		if !b.obj[l] {
			obj[l] = true
		}
	}
	return &ScopeChain{obj: obj, next: RemoveScopeChain(a.next, b.next)}
}
