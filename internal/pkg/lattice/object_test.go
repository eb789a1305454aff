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

package lattice_test

import (
	"os"
	"strings"
	"testing"

	"github.com/formal-methods-js/jsflow/internal/pkg/config"
	"github.com/formal-methods-js/jsflow/internal/pkg/lattice"
)

func TestMain(m *testing.M) {
	// Copy-on-write enabled, as in production.
	config.SetConfig(&config.Config{})
	os.Exit(m.Run())
}

// expectAnalysisError fails the test unless f aborts with an analysis
// invariant violation.
func expectAnalysisError(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected an analysis invariant violation")
			return
		}
		if _, ok := r.(*lattice.AnalysisError); !ok {
			panic(r)
		}
	}()
	f()
}

func TestFactories(t *testing.T) {
	if o := lattice.MakeUnknownObj(); !o.IsUnknown() {
		t.Errorf("MakeUnknownObj is not unknown: %s", o)
	}
	if o := lattice.MakeNoneObj(); !o.IsNone() {
		t.Errorf("MakeNoneObj is not none: %s", o)
	}
	o := lattice.MakeAbsentModifiedObj()
	if o.IsNone() || o.IsUnknown() {
		t.Errorf("MakeAbsentModifiedObj misclassified: %s", o)
	}
	for _, v := range []*lattice.Value{o.DefaultArrayProperty(), o.DefaultNonArrayProperty(), o.InternalPrototype(), o.InternalValue()} {
		if !v.IsMaybeAbsent() || !v.IsMaybeModified() {
			t.Errorf("MakeAbsentModifiedObj slot is not absent+modified: %s", v)
		}
	}
	if o.IsScopeChainUnknown() || o.GetScopeChain() != nil {
		t.Errorf("MakeAbsentModifiedObj scope should be empty")
	}
}

// Scenario: default fallback for reads of properties not explicitly present.
func TestGetPropertyDefaultFallback(t *testing.T) {
	o := lattice.MakeAbsentModifiedObj()
	length := lattice.MakeNumValue(3).JoinModified()
	o.SetProperty("length", length)

	if got := o.GetProperty("length"); !got.Equals(length) {
		t.Errorf("GetProperty(length) = %s, want %s", got, length)
	}
	if got := o.GetProperty("x"); !got.Equals(o.DefaultNonArrayProperty()) {
		t.Errorf("GetProperty(x) = %s, want the nonarray default", got)
	}
	if got := o.GetProperty("0"); !got.Equals(o.DefaultArrayProperty()) {
		t.Errorf("GetProperty(0) = %s, want the array default", got)
	}
	// Reads are idempotent.
	if got1, got2 := o.GetProperty("x"), o.GetProperty("x"); !got1.Equals(got2) {
		t.Errorf("repeated reads disagree: %s vs %s", got1, got2)
	}
}

func TestCopyEquivalence(t *testing.T) {
	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeNumValue(1))
	o.SetDefaultNonArrayProperty(lattice.MakeAbsentValue())
	o.SetScopeChain(lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(1, lattice.KindObject)), nil))

	c := lattice.NewObjCopy(o)
	if !c.Equals(o) || !o.Equals(c) {
		t.Errorf("copy is not equal to the original")
	}
	if c.Hash() != o.Hash() {
		t.Errorf("copy hashes differently")
	}
}

// Scenario: copy-on-write isolation and the makeWritable counter.
func TestCopyOnWrite(t *testing.T) {
	v1 := lattice.MakeNumValue(1)
	v2 := lattice.MakeNumValue(2)

	a := lattice.MakeNoneObj()
	a.SetProperty("p", v1)

	before := lattice.GetNumberOfMakeWritablePropertiesCalls()
	b := lattice.NewObjCopy(a)
	b.SetProperty("p", v2)
	after := lattice.GetNumberOfMakeWritablePropertiesCalls()

	if got := a.GetProperty("p"); !got.Equals(v1) {
		t.Errorf("write through the copy leaked into the original: %s", got)
	}
	if got := b.GetProperty("p"); !got.Equals(v2) {
		t.Errorf("copy lost its write: %s", got)
	}
	if after-before != 1 {
		t.Errorf("expected exactly one property map clone, got %d", after-before)
	}
}

func TestCopyOnWriteDisabled(t *testing.T) {
	config.SetConfig(&config.Config{CopyOnWriteDisabled: true})
	defer config.SetConfig(&config.Config{})

	a := lattice.MakeNoneObj()
	a.SetProperty("p", lattice.MakeNumValue(1))

	before := lattice.GetNumberOfMakeWritablePropertiesCalls()
	b := lattice.NewObjCopy(a)
	b.SetProperty("p", lattice.MakeNumValue(2))

	if got := a.GetProperty("p"); !got.Equals(lattice.MakeNumValue(1)) {
		t.Errorf("eager clone leaked a write into the original: %s", got)
	}
	if got := lattice.GetNumberOfMakeWritablePropertiesCalls(); got != before {
		t.Errorf("eagerly cloned maps should not count as makeWritable calls")
	}
}

func TestCounters(t *testing.T) {
	lattice.ResetCounters()
	if lattice.GetNumberOfObjsCreated() != 0 {
		t.Fatalf("reset did not clear the construction counter")
	}
	lattice.MakeNoneObj()
	if got := lattice.GetNumberOfObjsCreated(); got != 1 {
		t.Errorf("one construction should count once, got %d", got)
	}
	lattice.NewObjCopy(lattice.MakeAbsentModifiedObj())
	if got := lattice.GetNumberOfObjsCreated(); got != 3 {
		t.Errorf("copies count as constructions, got %d", got)
	}
}

func TestSetDefaultPropertyInvariant(t *testing.T) {
	o := lattice.MakeNoneObj()
	// Legal: unknown, none, and anything maybe-absent.
	o.SetDefaultArrayProperty(lattice.MakeUnknownValue())
	o.SetDefaultArrayProperty(lattice.MakeNoneValue())
	o.SetDefaultArrayProperty(lattice.MakeUndefValue().Join(lattice.MakeAbsentValue()))
	o.SetDefaultNonArrayProperty(lattice.MakeAbsentModifiedValue())

	// Illegal: definitely present.
	expectAnalysisError(t, func() {
		o.SetDefaultArrayProperty(lattice.MakeNumValue(1))
	})
	expectAnalysisError(t, func() {
		o.SetDefaultNonArrayProperty(lattice.MakeStrValue("x"))
	})
}

// Scenario: demand-driven merge of non-modified parts.
func TestReplaceNonModifiedParts(t *testing.T) {
	vxMod := lattice.MakeNumValue(1).JoinModified()
	vyClean := lattice.MakeNumValue(2)
	vxB := lattice.MakeStrValue("xb")
	vyB := lattice.MakeStrValue("yb")
	vzB := lattice.MakeStrValue("zb")
	dB := lattice.MakeAbsentValue().JoinModified()

	a := lattice.MakeNoneObj()
	a.SetProperty("x", vxMod)
	a.SetProperty("y", vyClean)
	a.SetDefaultNonArrayProperty(lattice.MakeAbsentValue())
	a.SetDefaultArrayProperty(lattice.MakeAbsentValue())

	b := lattice.MakeNoneObj()
	b.SetProperty("x", vxB)
	b.SetProperty("y", vyB)
	b.SetProperty("z", vzB)
	b.SetDefaultNonArrayProperty(dB)
	b.SetDefaultArrayProperty(dB)

	a.ReplaceNonModifiedParts(b)

	if got := a.GetProperty("x"); !got.Equals(vxMod) {
		t.Errorf("modified property was replaced: %s", got)
	}
	if got := a.GetProperty("y"); !got.Equals(vyB) {
		t.Errorf("non-modified property was not replaced: %s", got)
	}
	if got := a.GetProperty("z"); !got.Equals(vzB) {
		t.Errorf("property covered by a non-modified default was not adopted: %s", got)
	}
	if got := a.DefaultNonArrayProperty(); !got.Equals(dB) {
		t.Errorf("non-modified default was not replaced: %s", got)
	}
}

func TestReplaceNonModifiedPartsDropsVanishedProperties(t *testing.T) {
	a := lattice.MakeNoneObj()
	a.SetProperty("p", lattice.MakeNumValue(1))
	a.SetDefaultNonArrayProperty(lattice.MakeAbsentModifiedValue())

	b := lattice.MakeNoneObj()
	b.SetDefaultNonArrayProperty(lattice.MakeAbsentModifiedValue())

	a.ReplaceNonModifiedParts(b)
	if a.NumberOfProperties() != 0 {
		t.Errorf("non-modified property missing from other should fall back to other's default")
	}
}

func TestReplaceNonModifiedPartsInternalsAndScope(t *testing.T) {
	proto := lattice.MakeObjectValue(lattice.MakeHostObjectLabel("Object.prototype", lattice.KindObject))
	chain := lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(3, lattice.KindFunction)), nil)

	a := lattice.MakeUnknownObj()
	b := lattice.MakeNoneObj()
	b.SetInternalPrototype(proto)
	b.SetScopeChain(chain)

	// Unknown values are not modified, so everything is adopted from b.
	a.ReplaceNonModifiedParts(b)
	if !a.InternalPrototype().Equals(proto) {
		t.Errorf("internal prototype not adopted: %s", a.InternalPrototype())
	}
	if a.IsScopeChainUnknown() {
		t.Errorf("unknown scope should adopt the peer's known scope")
	}
	if !a.GetScopeChain().Equals(chain) {
		t.Errorf("scope not adopted: %s", a.GetScopeChain())
	}

	// Modified slots stay.
	c := lattice.MakeNoneObj()
	mod := lattice.MakeNumValue(7).JoinModified()
	c.SetInternalValue(mod)
	c.ReplaceNonModifiedParts(b)
	if !c.InternalValue().Equals(mod) {
		t.Errorf("modified internal value was replaced: %s", c.InternalValue())
	}
}

func TestClearModifiedIdempotent(t *testing.T) {
	o := lattice.MakeAbsentModifiedObj()
	o.SetProperty("p", lattice.MakeNumValue(1).JoinModified())

	o.ClearModified()
	once := lattice.NewObjCopy(o)
	o.ClearModified()
	if !o.Equals(once) {
		t.Errorf("ClearModified is not idempotent")
	}
	if o.GetProperty("p").IsMaybeModified() || o.DefaultArrayProperty().IsMaybeModified() {
		t.Errorf("modified facets survived ClearModified")
	}
}

// Scenario: summarization rewrites labels everywhere and keeps modified facets.
func TestSummarize(t *testing.T) {
	l1 := lattice.MakeObjectLabel(1, lattice.KindObject)
	s := lattice.NewSummarized()
	s.AddDefinitelySummarized(l1)

	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeObjectValue(l1).JoinModified())
	o.SetInternalPrototype(lattice.MakeObjectValue(l1))
	o.SetScopeChain(lattice.NewScopeChain(labelSet(l1), nil))

	o.Summarize(s)

	p := o.GetProperty("p")
	if !p.IsMaybeModified() {
		t.Errorf("summarize dropped the modified facet")
	}
	if labels := p.GetObjectLabels(); !labels[l1.Summary()] || labels[l1] {
		t.Errorf("property labels not summarized: %v", labels)
	}
	if labels := o.InternalPrototype().GetObjectLabels(); !labels[l1.Summary()] {
		t.Errorf("internal prototype not summarized")
	}
	if frames := o.GetScopeChain().Frames(); !frames[0][l1.Summary()] || frames[0][l1] {
		t.Errorf("scope chain not summarized: %v", frames[0])
	}
}

func TestReplaceObjectLabel(t *testing.T) {
	l1 := lattice.MakeObjectLabel(1, lattice.KindObject)
	l2 := lattice.MakeObjectLabel(2, lattice.KindObject)

	o := lattice.MakeNoneObj()
	modified := lattice.MakeObjectValue(l1).JoinModified()
	o.SetProperty("p", modified)
	o.SetDefaultNonArrayProperty(lattice.MakeObjectValue(l1).Join(lattice.MakeAbsentValue()))
	o.SetScopeChain(lattice.NewScopeChain(labelSet(l1), nil))

	cache := make(map[*lattice.ScopeChain]*lattice.ScopeChain)
	o.ReplaceObjectLabel(l1, l2, cache)

	if labels := o.GetProperty("p").GetObjectLabels(); labels[l1] || !labels[l2] {
		t.Errorf("property label not replaced: %v", labels)
	}
	if !o.GetProperty("p").IsMaybeModified() {
		t.Errorf("replacement must not touch modified facets")
	}
	if labels := o.DefaultNonArrayProperty().GetObjectLabels(); labels[l1] || !labels[l2] {
		t.Errorf("default label not replaced: %v", labels)
	}
	if frames := o.GetScopeChain().Frames(); frames[0][l1] || !frames[0][l2] {
		t.Errorf("scope label not replaced: %v", frames[0])
	}
}

func TestReplaceObjectLabels(t *testing.T) {
	l1 := lattice.MakeObjectLabel(1, lattice.KindObject)
	l2 := lattice.MakeObjectLabel(2, lattice.KindObject)
	l3 := lattice.MakeObjectLabel(3, lattice.KindObject)

	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeObjectValue(l1, l3))
	m := map[lattice.ObjectLabel]lattice.ObjectLabel{l1: l2}
	o.ReplaceObjectLabels(m, make(map[*lattice.ScopeChain]*lattice.ScopeChain))

	labels := o.GetProperty("p").GetObjectLabels()
	if labels[l1] || !labels[l2] || !labels[l3] {
		t.Errorf("labels not mapped: %v", labels)
	}
}

func TestEqualsAndHashByDifferentRoutes(t *testing.T) {
	l := lattice.MakeObjectLabel(1, lattice.KindObject)

	a := lattice.MakeNoneObj()
	a.SetProperty("p", lattice.MakeUndefValue().Join(lattice.MakeObjectValue(l)))
	a.SetDefaultArrayProperty(lattice.MakeAbsentValue())

	b := lattice.MakeAbsentModifiedObj()
	b.SetDefaultNonArrayProperty(lattice.MakeNoneValue())
	b.SetDefaultArrayProperty(lattice.MakeAbsentValue())
	b.SetInternalPrototype(lattice.MakeNoneValue())
	b.SetInternalValue(lattice.MakeNoneValue())
	b.SetProperty("p", lattice.MakeObjectValue(l).Join(lattice.MakeUndefValue()))

	if !a.Equals(b) {
		t.Fatalf("objects with the same field set compared unequal:\n%s\n%s", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Errorf("equal objects must hash equally: %d vs %d", a.Hash(), b.Hash())
	}
}

func TestEqualsDistinguishesScopeStates(t *testing.T) {
	a := lattice.MakeNoneObj()
	b := lattice.MakeNoneObj()
	b.SetScopeChain(lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(1, lattice.KindObject)), nil))
	if a.Equals(b) {
		t.Errorf("empty and non-empty scope compared equal")
	}
	if a.Equals(lattice.MakeUnknownObj()) {
		t.Errorf("none and unknown compared equal")
	}
}

func TestScopeStateMachine(t *testing.T) {
	o := lattice.MakeNoneObj()
	if o.IsScopeChainUnknown() || o.GetScopeChain() != nil {
		t.Fatalf("expected the empty scope state")
	}

	chain := lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(1, lattice.KindObject)), nil)
	o.SetScopeChain(chain)
	if o.GetScopeChain() == nil {
		t.Fatalf("expected the known scope state")
	}

	// Adding the same chain again does not change it.
	if o.AddToScopeChain(chain) {
		t.Errorf("adding an equal chain should report no change")
	}
	wider := lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(2, lattice.KindObject)), nil)
	if !o.AddToScopeChain(wider) {
		t.Errorf("adding a wider chain should report a change")
	}

	o.SetScopeChain(nil)
	if o.GetScopeChain() != nil || o.IsScopeChainUnknown() {
		t.Errorf("expected the empty scope state after SetScopeChain(nil)")
	}

	u := lattice.MakeUnknownObj()
	expectAnalysisError(t, func() { u.GetScopeChain() })
	expectAnalysisError(t, func() { u.AddToScopeChain(chain) })
}

func TestIsSomeNonArrayPropertyUnknown(t *testing.T) {
	o := lattice.MakeNoneObj()
	if o.IsSomeNonArrayPropertyUnknown() {
		t.Errorf("none object misreported an unknown non-array property")
	}
	o.SetProperty("0", lattice.MakeUnknownValue())
	if o.IsSomeNonArrayPropertyUnknown() {
		t.Errorf("array index properties must be ignored")
	}
	o.SetProperty("x", lattice.MakeUnknownValue())
	if !o.IsSomeNonArrayPropertyUnknown() {
		t.Errorf("unknown explicit non-array property not detected")
	}

	d := lattice.MakeNoneObj()
	d.SetDefaultNonArrayProperty(lattice.MakeUnknownValue())
	if !d.IsSomeNonArrayPropertyUnknown() {
		t.Errorf("unknown nonarray default not detected")
	}
}

func TestGetSetValueDispatch(t *testing.T) {
	o := lattice.MakeAbsentModifiedObj()
	num := lattice.MakeNumValue(3)
	str := lattice.MakeAnyStrValue()
	proto := lattice.MakeObjectValue(lattice.MakeHostObjectLabel("Object.prototype", lattice.KindObject))
	absent := lattice.MakeAbsentValue()

	o.SetValue(lattice.MakePropertyReference("p"), num)
	o.SetValue(lattice.MakeInternalValuePropertyReference(), str)
	o.SetValue(lattice.MakeInternalPrototypePropertyReference(), proto)
	o.SetValue(lattice.MakeDefaultArrayPropertyReference(), absent)
	o.SetValue(lattice.MakeDefaultNonArrayPropertyReference(), absent)

	if got := o.GetValue(lattice.MakePropertyReference("p")); !got.Equals(num) {
		t.Errorf("ordinary dispatch failed: %s", got)
	}
	if got := o.GetValue(lattice.MakeInternalValuePropertyReference()); !got.Equals(str) {
		t.Errorf("[[Value]] dispatch failed: %s", got)
	}
	if got := o.GetValue(lattice.MakeInternalPrototypePropertyReference()); !got.Equals(proto) {
		t.Errorf("[[Prototype]] dispatch failed: %s", got)
	}
	if got := o.GetValue(lattice.MakeDefaultArrayPropertyReference()); !got.Equals(absent) {
		t.Errorf("default array dispatch failed: %s", got)
	}
	if got := o.GetValue(lattice.MakeDefaultNonArrayPropertyReference()); !got.Equals(absent) {
		t.Errorf("default nonarray dispatch failed: %s", got)
	}
	// Reads of absent ordinary names consult the defaults.
	if got := o.GetValue(lattice.MakePropertyReference("17")); !got.Equals(absent) {
		t.Errorf("ordinary dispatch did not consult the array default: %s", got)
	}

	expectAnalysisError(t, func() {
		lattice.MakeDefaultArrayPropertyReference().PropertyName()
	})
}

func TestTrim(t *testing.T) {
	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeNumValue(1))
	o.SetProperty("q", lattice.MakeNumValue(2))
	o.SetScopeChain(lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(1, lattice.KindObject)), nil))

	ref := lattice.MakeNoneObj()
	ref.SetProperty("p", lattice.MakeUnknownValue())
	ref.SetDefaultNonArrayProperty(lattice.MakeAbsentValue())

	o.Trim(ref)
	if !o.GetProperty("p").IsUnknown() {
		t.Errorf("property unknown in ref should be trimmed to unknown")
	}
	if !o.GetProperty("q").Equals(lattice.MakeNumValue(2)) {
		t.Errorf("property known in ref should be kept: %s", o.GetProperty("q"))
	}
	if o.IsScopeChainUnknown() {
		t.Errorf("scope should stay known when ref's scope is known")
	}

	u := lattice.MakeNoneObj()
	u.SetScopeChain(lattice.NewScopeChain(labelSet(lattice.MakeObjectLabel(2, lattice.KindObject)), nil))
	u.Trim(lattice.MakeUnknownObj())
	if !u.IsScopeChainUnknown() {
		t.Errorf("unknown scope in ref should coarsen the scope to unknown")
	}
	if !u.IsUnknown() {
		t.Errorf("trimming against the unknown object should yield the unknown object: %s", u)
	}
}

func TestRemove(t *testing.T) {
	l1 := lattice.MakeObjectLabel(1, lattice.KindObject)
	l2 := lattice.MakeObjectLabel(2, lattice.KindObject)

	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeUndefValue().Join(lattice.MakeNumValue(3)))
	o.SetScopeChain(lattice.NewScopeChain(labelSet(l1, l2), nil))

	ref := lattice.MakeNoneObj()
	ref.SetProperty("p", lattice.MakeUndefValue())
	ref.SetScopeChain(lattice.NewScopeChain(labelSet(l1), nil))

	o.Remove(ref)
	if got := o.GetProperty("p"); got.String() != "3" {
		t.Errorf("remove left %s, want 3", got)
	}
	frames := o.GetScopeChain().Frames()
	if frames[0][l1] || !frames[0][l2] {
		t.Errorf("scope remove failed: %v", frames[0])
	}
}

func TestGetAllObjectLabels(t *testing.T) {
	l1 := lattice.MakeObjectLabel(1, lattice.KindObject)
	l2 := lattice.MakeObjectLabel(2, lattice.KindFunction)
	l3 := lattice.MakeHostObjectLabel("global", lattice.KindObject)

	o := lattice.MakeNoneObj()
	o.SetProperty("p", lattice.MakeObjectValue(l1))
	o.SetProperty("u", lattice.MakeUnknownValue()) // unknown values contribute nothing
	o.SetInternalPrototype(lattice.MakeObjectValue(l2))
	o.SetScopeChain(lattice.NewScopeChain(labelSet(l3), nil))

	labels := o.GetAllObjectLabels()
	if len(labels) != 3 || !labels[l1] || !labels[l2] || !labels[l3] {
		t.Errorf("GetAllObjectLabels = %v", labels)
	}
}

func TestDiff(t *testing.T) {
	old := lattice.MakeNoneObj()
	old.SetProperty("x", lattice.MakeNumValue(3))

	o := lattice.NewObjCopy(old)
	o.SetProperty("x", lattice.MakeNumValue(3).Join(lattice.MakeAnyStrValue()))
	o.SetProperty("y", lattice.MakeUndefValue())

	var b strings.Builder
	o.Diff(old, &b)
	got := b.String()
	want := "\n        changed property: x: 3|Str was: 3\n        new property: y"
	if got != want {
		t.Errorf("Diff = %q, want %q", got, want)
	}
}

func TestPropertyNamesSorted(t *testing.T) {
	o := lattice.MakeNoneObj()
	for _, k := range []string{"b", "a", "10", "2"} {
		o.SetProperty(k, lattice.MakeUndefValue())
	}
	got := o.PropertyNames()
	want := []string{"10", "2", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PropertyNames = %v, want %v", got, want)
		}
	}
}
