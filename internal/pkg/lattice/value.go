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
	"strconv"
	"strings"
)

type valueFlags uint32

const (
	flagUndef valueFlags = 1 << iota
	flagNull
	flagTrue
	flagFalse
	flagAnyNum
	flagNumConst // the num field holds the constant
	flagAnyStr
	flagStrConst // the str field holds the constant
	flagAbsent
	flagModified
	flagUnknown // top marker, all other bits clear when set
)

const flagPresent = flagUndef | flagNull | flagTrue | flagFalse | flagAnyNum | flagNumConst | flagAnyStr | flagStrConst

// A Value is an element of the value lattice: a set of primitive facets, an
// optional constant number or string, a set of object labels, and the
// absent and modified facets. The special unknown element is the marker used
// by the lazy propagation machinery for slots that have not been propagated
// to the current location.
//
// Values are immutable; all operations return new values and the receiver is
// never changed. Values may be freely aliased.
type Value struct {
	flags     valueFlags
	num       float64
	str       string
	objlabels map[ObjectLabel]bool // nil when empty
}

var (
	theNone           = &Value{}
	theUnknown        = &Value{flags: flagUnknown}
	theAbsent         = &Value{flags: flagAbsent}
	theAbsentModified = &Value{flags: flagAbsent | flagModified}
)

// MakeNoneValue returns the bottom element.
func MakeNoneValue() *Value {
	return theNone
}

// MakeUnknownValue returns the unknown (not yet propagated) element.
func MakeUnknownValue() *Value {
	return theUnknown
}

// MakeAbsentValue returns the element describing a definitely absent property.
func MakeAbsentValue() *Value {
	return theAbsent
}

// MakeAbsentModifiedValue returns the absent element with the modified facet set.
func MakeAbsentModifiedValue() *Value {
	return theAbsentModified
}

// MakeUndefValue returns the element describing the undefined value.
func MakeUndefValue() *Value {
	return &Value{flags: flagUndef}
}

// MakeNullValue returns the element describing the null value.
func MakeNullValue() *Value {
	return &Value{flags: flagNull}
}

// MakeBoolValue returns the element describing the given boolean constant.
func MakeBoolValue(b bool) *Value {
	if b {
		return &Value{flags: flagTrue}
	}
	return &Value{flags: flagFalse}
}

// MakeAnyNumValue returns the element describing any number.
func MakeAnyNumValue() *Value {
	return &Value{flags: flagAnyNum}
}

// MakeNumValue returns the element describing the given number constant.
func MakeNumValue(n float64) *Value {
	return &Value{flags: flagNumConst, num: n}
}

// MakeAnyStrValue returns the element describing any string.
func MakeAnyStrValue() *Value {
	return &Value{flags: flagAnyStr}
}

// MakeStrValue returns the element describing the given string constant.
func MakeStrValue(s string) *Value {
	return &Value{flags: flagStrConst, str: s}
}

// MakeObjectValue returns the element describing a reference to the objects
// denoted by the given labels.
func MakeObjectValue(labels ...ObjectLabel) *Value {
	objlabels := make(map[ObjectLabel]bool, len(labels))
	for _, l := range labels {
		objlabels[l] = true
	}
	return &Value{objlabels: objlabels}
}

// IsUnknown returns true for the unknown element.
func (v *Value) IsUnknown() bool {
	return v.flags&flagUnknown != 0
}

// IsNone returns true for the bottom element.
func (v *Value) IsNone() bool {
	return v.flags == 0 && len(v.objlabels) == 0
}

// IsMaybePresent returns true if the value may describe a present property.
// The unknown element is not considered present.
func (v *Value) IsMaybePresent() bool {
	return v.flags&flagPresent != 0 || len(v.objlabels) > 0
}

// IsMaybeAbsent returns true if the value may describe an absent property.
func (v *Value) IsMaybeAbsent() bool {
	return v.flags&flagAbsent != 0
}

// IsMaybePresentOrUnknown returns true if the value may be present or is unknown.
func (v *Value) IsMaybePresentOrUnknown() bool {
	return v.IsMaybePresent() || v.IsUnknown()
}

// IsMaybeModified returns true if the modified facet is set.
func (v *Value) IsMaybeModified() bool {
	return v.flags&flagModified != 0
}

// RestrictToNotModified returns this value with the modified facet cleared.
func (v *Value) RestrictToNotModified() *Value {
	if v.flags&flagModified == 0 {
		return v
	}
	w := v.shallowCopy()
	w.flags &^= flagModified
	return w
}

// RestrictToNotAbsent returns this value with the absent facet cleared.
func (v *Value) RestrictToNotAbsent() *Value {
	if v.flags&flagAbsent == 0 {
		return v
	}
	w := v.shallowCopy()
	w.flags &^= flagAbsent
	return w
}

// JoinModified returns this value with the modified facet set.
func (v *Value) JoinModified() *Value {
	if v.flags&flagModified != 0 {
		return v
	}
	w := v.shallowCopy()
	w.flags |= flagModified
	return w
}

// Join returns the least upper bound of the two values. Joining the unknown
// element is the responsibility of the enclosing state and fails here.
func (v *Value) Join(o *Value) *Value {
	if v.IsUnknown() || o.IsUnknown() {
		analysisError("joining 'unknown' values")
	}
	w := &Value{flags: v.flags | o.flags}
	// Reconcile constant facets.
	switch {
	case v.flags&flagNumConst != 0 && o.flags&flagNumConst != 0:
		if v.num == o.num {
			w.num = v.num
		} else {
			w.flags = w.flags&^flagNumConst | flagAnyNum
		}
	case v.flags&flagNumConst != 0:
		w.num = v.num
	case o.flags&flagNumConst != 0:
		w.num = o.num
	}
	if w.flags&flagAnyNum != 0 {
		w.flags &^= flagNumConst
		w.num = 0
	}
	switch {
	case v.flags&flagStrConst != 0 && o.flags&flagStrConst != 0:
		if v.str == o.str {
			w.str = v.str
		} else {
			w.flags = w.flags&^flagStrConst | flagAnyStr
		}
	case v.flags&flagStrConst != 0:
		w.str = v.str
	case o.flags&flagStrConst != 0:
		w.str = o.str
	}
	if w.flags&flagAnyStr != 0 {
		w.flags &^= flagStrConst
		w.str = ""
	}
	if len(v.objlabels) > 0 || len(o.objlabels) > 0 {
		w.objlabels = make(map[ObjectLabel]bool, len(v.objlabels)+len(o.objlabels))
		for l := range v.objlabels {
			w.objlabels[l] = true
		}
		for l := range o.objlabels {
			w.objlabels[l] = true
		}
	}
	return w
}

// Summarize rewrites the object labels of this value according to the
// witness. The modified facet is preserved.
func (v *Value) Summarize(s *Summarized) *Value {
	if v.IsUnknown() || len(v.objlabels) == 0 {
		return v
	}
	objlabels := make(map[ObjectLabel]bool, len(v.objlabels))
	for l := range v.objlabels {
		addSummarizedLabel(objlabels, l, s)
	}
	w := v.shallowCopy()
	w.objlabels = objlabels
	return w
}

// ReplaceObjectLabel returns this value with all occurrences of oldlabel
// replaced by newlabel. The modified facet is preserved; the unknown element
// is returned unchanged.
func (v *Value) ReplaceObjectLabel(oldlabel, newlabel ObjectLabel) *Value {
	if v.IsUnknown() || !v.objlabels[oldlabel] {
		return v
	}
	objlabels := make(map[ObjectLabel]bool, len(v.objlabels))
	for l := range v.objlabels {
		if l == oldlabel {
			objlabels[newlabel] = true
		} else {
			objlabels[l] = true
		}
	}
	w := v.shallowCopy()
	w.objlabels = objlabels
	return w
}

// ReplaceObjectLabels returns this value with labels replaced according to
// the map. Labels not in the key set are unchanged.
func (v *Value) ReplaceObjectLabels(m map[ObjectLabel]ObjectLabel) *Value {
	if v.IsUnknown() || len(v.objlabels) == 0 {
		return v
	}
	hit := false
	for l := range v.objlabels {
		if _, ok := m[l]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return v
	}
	objlabels := make(map[ObjectLabel]bool, len(v.objlabels))
	for l := range v.objlabels {
		if nl, ok := m[l]; ok {
			objlabels[nl] = true
		} else {
			objlabels[l] = true
		}
	}
	w := v.shallowCopy()
	w.objlabels = objlabels
	return w
}

// Trim reduces this value according to the given reference value: if the
// reference is unknown, the information has not been propagated along this
// edge and the result is unknown; otherwise this value is kept.
func (v *Value) Trim(o *Value) *Value {
	if o.IsUnknown() {
		return theUnknown
	}
	return v
}

// Remove removes the facets and object labels of o from this value. It is
// assumed that this value subsumes o. Unknown operands leave the receiver
// unchanged.
func (v *Value) Remove(o *Value) *Value {
	if v.IsUnknown() || o.IsUnknown() {
		return v
	}
	oflags := o.flags
	// An any-number or any-string operand covers the constant facets.
	if oflags&flagAnyNum != 0 {
		oflags |= flagNumConst
	}
	if oflags&flagAnyStr != 0 {
		oflags |= flagStrConst
	}
	w := &Value{flags: v.flags &^ oflags}
	if v.flags&flagNumConst != 0 {
		if o.flags&flagNumConst != 0 && o.flags&flagAnyNum == 0 && v.num != o.num {
			w.flags |= flagNumConst
		}
		if w.flags&flagNumConst != 0 {
			w.num = v.num
		}
	}
	if v.flags&flagStrConst != 0 {
		if o.flags&flagStrConst != 0 && o.flags&flagAnyStr == 0 && v.str != o.str {
			w.flags |= flagStrConst
		}
		if w.flags&flagStrConst != 0 {
			w.str = v.str
		}
	}
	if len(v.objlabels) > 0 {
		objlabels := make(map[ObjectLabel]bool, len(v.objlabels))
		for l := range v.objlabels {
			if !o.objlabels[l] {
				objlabels[l] = true
			}
		}
		if len(objlabels) > 0 {
			w.objlabels = objlabels
		}
	}
	return w
}

// GetObjectLabels returns the object labels referenced by this value. The
// unknown element references no labels. Callers must not modify the result.
func (v *Value) GetObjectLabels() map[ObjectLabel]bool {
	if v.IsUnknown() {
		return nil
	}
	return v.objlabels
}

// Equals checks whether the two values are structurally equal.
func (v *Value) Equals(o *Value) bool {
	if v == o {
		return true
	}
	if v.flags != o.flags || v.num != o.num || v.str != o.str {
		return false
	}
	if len(v.objlabels) != len(o.objlabels) {
		return false
	}
	for l := range v.objlabels {
		if !o.objlabels[l] {
			return false
		}
	}
	return true
}

// Hash computes the hash code for this value. Structurally equal values hash
// equally.
func (v *Value) Hash() int {
	h := int(v.flags) * 17
	if v.flags&flagNumConst != 0 {
		h += int(int64(v.num)) * 5
	}
	if v.flags&flagStrConst != 0 {
		h += stringHash(v.str) * 19
	}
	h += labelSetHash(v.objlabels) * 13
	return h
}

// Diff appends a description of the difference from the old value to this
// one. It is assumed that the old value is less than this value.
func (v *Value) Diff(old *Value, b *strings.Builder) {
	b.WriteString(v.String())
	if v.IsMaybeModified() && !old.IsMaybeModified() {
		b.WriteString(" (now modified)")
	}
}

func (v *Value) String() string {
	if v.IsUnknown() {
		return "?"
	}
	var parts []string
	if v.flags&flagUndef != 0 {
		parts = append(parts, "Undef")
	}
	if v.flags&flagNull != 0 {
		parts = append(parts, "Null")
	}
	if v.flags&flagTrue != 0 {
		parts = append(parts, "true")
	}
	if v.flags&flagFalse != 0 {
		parts = append(parts, "false")
	}
	if v.flags&flagAnyNum != 0 {
		parts = append(parts, "Num")
	}
	if v.flags&flagNumConst != 0 {
		parts = append(parts, strconv.FormatFloat(v.num, 'g', -1, 64))
	}
	if v.flags&flagAnyStr != 0 {
		parts = append(parts, "Str")
	}
	if v.flags&flagStrConst != 0 {
		parts = append(parts, strconv.Quote(v.str))
	}
	for _, l := range sortedLabels(v.objlabels) {
		parts = append(parts, l.String())
	}
	if v.flags&flagAbsent != 0 {
		parts = append(parts, "absent")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// shallowCopy returns a mutable copy sharing the label set.
func (v *Value) shallowCopy() *Value {
	w := *v
	return &w
}
