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
	"sort"
	"strings"

	"github.com/formal-methods-js/jsflow/internal/pkg/config"
	"github.com/formal-methods-js/jsflow/internal/pkg/utils"
)

// An Obj is the abstract object: a sound over-approximation of the concrete
// objects that may appear at a program point. It maps explicit property names
// to values; all other property names are covered by the two default
// properties, split into array index names and the rest. The internal
// [[Prototype]], [[Value]] and [[Scope]] properties are carried separately.
//
// Obj is mutable. Instances are shared between states through the
// copy-on-write discipline on the property map: the map may be aliased by
// several objects and must only be written through makeWritableProperties.
type Obj struct {
	properties         map[string]*Value
	writableProperties bool // copy-on-write: true if this instance owns the map

	defaultArrayProperty    *Value // all other properties that are valid array indices
	defaultNonArrayProperty *Value // all other properties

	internalPrototype *Value // the [[Prototype]] property
	internalValue     *Value // the [[Value]] property

	scope        *ScopeChain // the [[Scope]] property, nil if empty or unknown
	scopeUnknown bool        // if set, scope is not used
}

var numberOfObjsCreated int
var numberOfMakeWritableProperties int

func newObj() *Obj {
	numberOfObjsCreated++
	return &Obj{}
}

// NewObjCopy creates a new abstract object as a copy of the given.
func NewObjCopy(x *Obj) *Obj {
	o := newObj()
	o.SetTo(x)
	return o
}

// SetTo sets this object to be a copy of the given. Unless copy-on-write is
// disabled, the property map becomes shared between the two objects.
func (o *Obj) SetTo(x *Obj) {
	o.defaultNonArrayProperty = x.defaultNonArrayProperty
	o.defaultArrayProperty = x.defaultArrayProperty
	o.internalPrototype = x.internalPrototype
	o.internalValue = x.internalValue
	o.scope = x.scope
	o.scopeUnknown = x.scopeUnknown
	if copyOnWriteDisabled() {
		o.properties = copyProperties(x.properties)
		o.writableProperties = true
		x.writableProperties = true
	} else {
		o.properties = x.properties
		o.writableProperties = false
		x.writableProperties = false
	}
}

// MakeAbsentModifiedObj constructs an abstract object where all properties
// are absent but modified and the scope is empty.
func MakeAbsentModifiedObj() *Obj {
	o := newObj()
	o.properties = make(map[string]*Value)
	o.writableProperties = true
	v := MakeAbsentModifiedValue()
	o.defaultNonArrayProperty = v
	o.defaultArrayProperty = v
	o.internalPrototype = v
	o.internalValue = v
	return o
}

// MakeNoneObj constructs an abstract object where all properties are none
// and the scope is empty.
func MakeNoneObj() *Obj {
	o := newObj()
	o.properties = make(map[string]*Value)
	o.writableProperties = true
	v := MakeNoneValue()
	o.defaultNonArrayProperty = v
	o.defaultArrayProperty = v
	o.internalPrototype = v
	o.internalValue = v
	return o
}

// MakeUnknownObj constructs an abstract object where all properties,
// including the scope, are unknown.
func MakeUnknownObj() *Obj {
	o := newObj()
	o.properties = make(map[string]*Value)
	o.writableProperties = true
	v := MakeUnknownValue()
	o.defaultNonArrayProperty = v
	o.defaultArrayProperty = v
	o.internalPrototype = v
	o.internalValue = v
	o.scopeUnknown = true
	return o
}

// IsUnknown checks whether all properties have the unknown value.
func (o *Obj) IsUnknown() bool {
	for _, v := range o.properties {
		if !v.IsUnknown() {
			return false
		}
	}
	return o.defaultArrayProperty.IsUnknown() && o.defaultNonArrayProperty.IsUnknown() &&
		o.internalPrototype.IsUnknown() && o.internalValue.IsUnknown() && o.scopeUnknown
}

// IsNone checks whether all properties have the none value.
func (o *Obj) IsNone() bool {
	for _, v := range o.properties {
		if !v.IsNone() {
			return false
		}
	}
	return o.defaultArrayProperty.IsNone() && o.defaultNonArrayProperty.IsNone() &&
		o.internalPrototype.IsNone() && o.internalValue.IsNone() && !o.scopeUnknown && o.scope == nil
}

// Summarize summarizes the object labels in this object.
func (o *Obj) Summarize(s *Summarized) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.Summarize(s)
	}
	o.properties = newproperties
	o.writableProperties = true
	o.defaultArrayProperty = o.defaultArrayProperty.Summarize(s)
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.Summarize(s)
	o.internalPrototype = o.internalPrototype.Summarize(s)
	o.internalValue = o.internalValue.Summarize(s)
	o.scope = o.scope.Summarize(s)
}

// ReplaceNonModifiedParts replaces all definitely non-modified properties in
// this object by the corresponding properties of other.
func (o *Obj) ReplaceNonModifiedParts(other *Obj) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		if !v.IsMaybeModified() {
			// Property is definitely not modified, so replace it (don't
			// consider the defaults here). If it doesn't appear in the other
			// object either, it falls back to other's default, written below.
			v = other.properties[k]
		}
		if v != nil {
			newproperties[k] = v
		}
	}
	defaultArrayMaybeModified := o.defaultArrayProperty.IsMaybeModified()
	defaultNonArrayMaybeModified := o.defaultNonArrayProperty.IsMaybeModified()
	if !defaultArrayMaybeModified || !defaultNonArrayMaybeModified {
		for k, v := range other.properties {
			if _, ok := newproperties[k]; ok {
				continue
			}
			if utils.IsArrayIndex(k) {
				if !defaultArrayMaybeModified {
					newproperties[k] = v
				}
			} else if !defaultNonArrayMaybeModified {
				newproperties[k] = v
			}
		}
	}
	o.properties = newproperties
	o.writableProperties = true
	if !defaultArrayMaybeModified {
		o.defaultArrayProperty = other.defaultArrayProperty
	}
	if !defaultNonArrayMaybeModified {
		o.defaultNonArrayProperty = other.defaultNonArrayProperty
	}
	if !o.internalPrototype.IsMaybeModified() {
		o.internalPrototype = other.internalPrototype
	}
	if !o.internalValue.IsMaybeModified() {
		o.internalValue = other.internalValue
	}
	if o.scopeUnknown && !other.scopeUnknown {
		o.scope = other.scope
		o.scopeUnknown = other.scopeUnknown
	}
}

// makeWritableProperties ensures this instance owns its property map.
func (o *Obj) makeWritableProperties() {
	if o.writableProperties {
		return
	}
	o.properties = copyProperties(o.properties)
	o.writableProperties = true
	numberOfMakeWritableProperties++
}

func copyProperties(properties map[string]*Value) map[string]*Value {
	m := make(map[string]*Value, len(properties))
	for k, v := range properties {
		m[k] = v
	}
	return m
}

func copyOnWriteDisabled() bool {
	c, err := config.ReadConfig()
	if err != nil || c == nil {
		return false
	}
	return c.CopyOnWriteDisabled
}

// GetNumberOfObjsCreated returns the total number of Obj instances created.
func GetNumberOfObjsCreated() int {
	return numberOfObjsCreated
}

// GetNumberOfMakeWritablePropertiesCalls returns the total number of
// makeWritableProperties operations that cloned a property map.
func GetNumberOfMakeWritablePropertiesCalls() int {
	return numberOfMakeWritableProperties
}

// ResetCounters resets the global telemetry counters.
func ResetCounters() {
	numberOfObjsCreated = 0
	numberOfMakeWritableProperties = 0
}

// NumberOfProperties returns the size of the property map.
func (o *Obj) NumberOfProperties() int {
	return len(o.properties)
}

// ClearModified clears the modified facet for all values.
func (o *Obj) ClearModified() {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.RestrictToNotModified()
	}
	o.properties = newproperties
	o.writableProperties = true
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.RestrictToNotModified()
	o.defaultArrayProperty = o.defaultArrayProperty.RestrictToNotModified()
	o.internalPrototype = o.internalPrototype.RestrictToNotModified()
	o.internalValue = o.internalValue.RestrictToNotModified()
}

// GetProperty returns the value of the given property, considering defaults
// if necessary. Never returns nil, may return the unknown value.
func (o *Obj) GetProperty(propertyname string) *Value {
	if v, ok := o.properties[propertyname]; ok {
		return v
	}
	if utils.IsArrayIndex(propertyname) {
		return o.defaultArrayProperty
	}
	return o.defaultNonArrayProperty
}

// SetProperty sets the given property.
func (o *Obj) SetProperty(propertyname string, v *Value) {
	o.makeWritableProperties()
	o.properties[propertyname] = v
}

// PropertyNames returns all explicit property names in deterministic order,
// excluding the defaults and internal properties.
func (o *Obj) PropertyNames() []string {
	return sortedPropertyNames(o.properties)
}

// Properties returns the property map, excluding the defaults and internal
// properties. The map is not made writable; callers must not modify it.
func (o *Obj) Properties() map[string]*Value {
	return o.properties
}

// SetProperties sets the property map and marks it writable.
func (o *Obj) SetProperties(properties map[string]*Value) {
	o.properties = properties
	o.writableProperties = true
}

// DefaultArrayProperty returns the value of the default array property.
func (o *Obj) DefaultArrayProperty() *Value {
	return o.defaultArrayProperty
}

// SetDefaultArrayProperty sets the value of the default array property. The
// value must represent possibly absent properties.
func (o *Obj) SetDefaultArrayProperty(v *Value) {
	if !v.IsUnknown() && v.IsMaybePresent() && !v.IsMaybeAbsent() {
		analysisError("illegal default array property: %s", v)
	}
	o.defaultArrayProperty = v
}

// DefaultNonArrayProperty returns the value of the default non-array property.
func (o *Obj) DefaultNonArrayProperty() *Value {
	return o.defaultNonArrayProperty
}

// SetDefaultNonArrayProperty sets the value of the default non-array
// property. The value must represent possibly absent properties.
func (o *Obj) SetDefaultNonArrayProperty(v *Value) {
	if !v.IsUnknown() && v.IsMaybePresent() && !v.IsMaybeAbsent() {
		analysisError("illegal default nonarray property: %s", v)
	}
	o.defaultNonArrayProperty = v
}

// IsSomeNonArrayPropertyUnknown checks whether some non-array property is
// unknown, including the default.
func (o *Obj) IsSomeNonArrayPropertyUnknown() bool {
	if o.defaultNonArrayProperty.IsUnknown() {
		return true
	}
	for k, v := range o.properties {
		if v.IsUnknown() && !utils.IsArrayIndex(k) {
			return true
		}
	}
	return false
}

// InternalValue returns the value of the internal [[Value]] property.
func (o *Obj) InternalValue() *Value {
	return o.internalValue
}

// SetInternalValue sets the internal [[Value]] property.
func (o *Obj) SetInternalValue(v *Value) {
	o.internalValue = v
}

// InternalPrototype returns the value of the internal [[Prototype]] property.
func (o *Obj) InternalPrototype() *Value {
	return o.internalPrototype
}

// SetInternalPrototype sets the internal [[Prototype]] property.
func (o *Obj) SetInternalPrototype(v *Value) {
	o.internalPrototype = v
}

// GetScopeChain returns the value of the internal [[Scope]] property.
// The scope is assumed to be non-unknown.
func (o *Obj) GetScopeChain() *ScopeChain {
	if o.scopeUnknown {
		analysisError("calling GetScopeChain when scope is 'unknown'")
	}
	return o.scope
}

// SetScopeChain sets the internal [[Scope]] property.
func (o *Obj) SetScopeChain(scope *ScopeChain) {
	o.scope = scope
	o.scopeUnknown = false
}

// AddToScopeChain adds to the internal [[Scope]] property and returns true
// if the stored chain changed.
func (o *Obj) AddToScopeChain(newscope *ScopeChain) bool {
	if o.scopeUnknown {
		analysisError("calling AddToScopeChain when scope is 'unknown'")
	}
	res := AddScopeChain(o.scope, newscope)
	changed := res != nil && !res.Equals(o.scope)
	o.scope = res
	return changed
}

// IsScopeChainUnknown returns true if the internal [[Scope]] property is unknown.
func (o *Obj) IsScopeChainUnknown() bool {
	return o.scopeUnknown
}

// ReplaceObjectLabel replaces all occurrences of oldlabel by newlabel.
// Does not change modified facets. Unknown values are ignored.
func (o *Obj) ReplaceObjectLabel(oldlabel, newlabel ObjectLabel, cache map[*ScopeChain]*ScopeChain) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.ReplaceObjectLabel(oldlabel, newlabel)
	}
	o.properties = newproperties
	o.scope = o.scope.ReplaceObjectLabel(oldlabel, newlabel, cache)
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.ReplaceObjectLabel(oldlabel, newlabel)
	o.defaultArrayProperty = o.defaultArrayProperty.ReplaceObjectLabel(oldlabel, newlabel)
	o.internalPrototype = o.internalPrototype.ReplaceObjectLabel(oldlabel, newlabel)
	o.internalValue = o.internalValue.ReplaceObjectLabel(oldlabel, newlabel)
	o.writableProperties = true
}

// ReplaceObjectLabels replaces all object labels according to the given map.
// Does not change modified facets. Labels not in the key set of the map are
// unchanged. Unknown values are ignored.
func (o *Obj) ReplaceObjectLabels(m map[ObjectLabel]ObjectLabel, cache map[*ScopeChain]*ScopeChain) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.ReplaceObjectLabels(m)
	}
	o.properties = newproperties
	o.scope = o.scope.ReplaceObjectLabels(m, cache)
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.ReplaceObjectLabels(m)
	o.defaultArrayProperty = o.defaultArrayProperty.ReplaceObjectLabels(m)
	o.internalPrototype = o.internalPrototype.ReplaceObjectLabels(m)
	o.internalValue = o.internalValue.ReplaceObjectLabels(m)
	o.writableProperties = true
}

// Equals checks whether the given abstract object is equal to this one.
func (o *Obj) Equals(x *Obj) bool {
	if o == x {
		return true
	}
	if x == nil {
		return false
	}
	if (o.scope == nil) != (x.scope == nil) {
		return false
	}
	if len(o.properties) != len(x.properties) {
		return false
	}
	for k, v := range o.properties {
		xv, ok := x.properties[k]
		if !ok || !v.Equals(xv) {
			return false
		}
	}
	return o.scope.Equals(x.scope) &&
		o.scopeUnknown == x.scopeUnknown &&
		o.defaultNonArrayProperty.Equals(x.defaultNonArrayProperty) &&
		o.defaultArrayProperty.Equals(x.defaultArrayProperty) &&
		o.internalPrototype.Equals(x.internalPrototype) &&
		o.internalValue.Equals(x.internalValue)
}

// Diff appends a description of the changes from the old object to this
// object. It is assumed that the old object is less than this object and
// that no explicit property has moved to one of the defaults.
func (o *Obj) Diff(old *Obj, b *strings.Builder) {
	for _, k := range sortedPropertyNames(o.properties) {
		v := o.properties[k]
		oldv, ok := old.properties[k]
		if !ok {
			b.WriteString("\n        new property: ")
			b.WriteString(k)
		} else if !v.Equals(oldv) {
			b.WriteString("\n        changed property: ")
			b.WriteString(k)
			b.WriteString(": ")
			v.Diff(oldv, b)
			b.WriteString(" was: ")
			b.WriteString(oldv.String())
		}
	}
	if !o.defaultArrayProperty.Equals(old.defaultArrayProperty) {
		b.WriteString("\n        changed default array property: ")
		o.defaultArrayProperty.Diff(old.defaultArrayProperty, b)
		b.WriteString(" was: ")
		b.WriteString(old.defaultArrayProperty.String())
	}
	if !o.defaultNonArrayProperty.Equals(old.defaultNonArrayProperty) {
		b.WriteString("\n        changed default nonarray property: ")
		o.defaultNonArrayProperty.Diff(old.defaultNonArrayProperty, b)
		b.WriteString(" was: ")
		b.WriteString(old.defaultNonArrayProperty.String())
	}
	if !o.internalPrototype.Equals(old.internalPrototype) {
		b.WriteString("\n        changed internal prototype: ")
		o.internalPrototype.Diff(old.internalPrototype, b)
		b.WriteString(" was: ")
		b.WriteString(old.internalPrototype.String())
	}
	if !o.internalValue.Equals(old.internalValue) {
		b.WriteString("\n        changed internal value: ")
		o.internalValue.Diff(old.internalValue, b)
		b.WriteString(" was: ")
		b.WriteString(old.internalValue.String())
	}
	if o.scopeUnknown != old.scopeUnknown {
		b.WriteString("\n        changed scope unknown")
	}
}

// Hash computes the hash code for this abstract object.
func (o *Obj) Hash() int {
	h := propertiesHash(o.properties) * 3
	if o.scope != nil {
		h += o.scope.Hash() * 7
	}
	if o.scopeUnknown {
		h += 13
	}
	h += o.internalPrototype.Hash() * 11
	h += o.internalValue.Hash() * 113
	h += o.defaultNonArrayProperty.Hash() * 23
	h += o.defaultArrayProperty.Hash() * 31
	return h
}

// propertiesHash computes an order-independent hash of a property map.
func propertiesHash(properties map[string]*Value) int {
	h := 0
	for k, v := range properties {
		h += stringHash(k) ^ v.Hash()
	}
	return h
}

// String produces a description of this abstract object.
func (o *Obj) String() string {
	var b strings.Builder
	any := false
	b.WriteString("{")
	if o.defaultArrayProperty.IsNone() {
		any = true
		b.WriteString("<none>")
	}
	for _, k := range sortedPropertyNames(o.properties) {
		if any {
			b.WriteString(",")
		} else {
			any = true
		}
		b.WriteString(utils.Escape(k))
		b.WriteString(":")
		b.WriteString(o.properties[k].String())
	}
	if o.defaultArrayProperty.IsMaybePresentOrUnknown() {
		if any {
			b.WriteString(",")
		} else {
			any = true
		}
		b.WriteString("[[DefaultArray]]=")
		b.WriteString(o.defaultArrayProperty.String())
	}
	if o.defaultNonArrayProperty.IsMaybePresentOrUnknown() {
		if any {
			b.WriteString(",")
		} else {
			any = true
		}
		b.WriteString("[[DefaultNonArray]]=")
		b.WriteString(o.defaultNonArrayProperty.String())
	}
	if o.internalPrototype.IsMaybePresentOrUnknown() {
		if any {
			b.WriteString(",")
		} else {
			any = true
		}
		b.WriteString("[[Prototype]]=")
		b.WriteString(o.internalPrototype.String())
	}
	if o.internalValue.IsMaybePresentOrUnknown() {
		if any {
			b.WriteString(",")
		} else {
			any = true
		}
		b.WriteString("[[Value]]=")
		b.WriteString(o.internalValue.String())
	}
	if o.scope != nil || o.scopeUnknown {
		if any {
			b.WriteString(",")
		}
		b.WriteString("[[Scope]]=")
		if o.scope != nil {
			b.WriteString(o.scope.String())
		} else {
			b.WriteString("?")
		}
	}
	b.WriteString("}")
	return b.String()
}

// PrintModified prints the maybe-modified properties that may be present or
// are unknown, including the defaults and the internal [[Prototype]] and
// [[Value]] properties. The [[Scope]] property is not printed.
func (o *Obj) PrintModified() string {
	var b strings.Builder
	for _, k := range sortedPropertyNames(o.properties) {
		v := o.properties[k]
		if v.IsMaybeModified() && v.IsMaybePresentOrUnknown() {
			b.WriteString("\n    ")
			b.WriteString(utils.Escape(k))
			b.WriteString(": ")
			b.WriteString(v.String())
		}
	}
	if o.defaultArrayProperty.IsMaybeModified() && o.defaultArrayProperty.IsMaybePresentOrUnknown() {
		b.WriteString("\n    [[DefaultArray]] = ")
		b.WriteString(o.defaultArrayProperty.String())
	}
	if o.defaultNonArrayProperty.IsMaybeModified() && o.defaultNonArrayProperty.IsMaybePresentOrUnknown() {
		b.WriteString("\n    [[DefaultNonArray]] = ")
		b.WriteString(o.defaultNonArrayProperty.String())
	}
	if o.internalPrototype.IsMaybeModified() && o.internalPrototype.IsMaybePresentOrUnknown() {
		b.WriteString("\n    [[Prototype]] = ")
		b.WriteString(o.internalPrototype.String())
	}
	if o.internalValue.IsMaybeModified() && o.internalValue.IsMaybePresentOrUnknown() {
		b.WriteString("\n    [[Value]] = ")
		b.WriteString(o.internalValue.String())
	}
	return b.String()
}

// GetAllObjectLabels returns the set of all object labels used in this
// abstract object, including the scope chain. Unknown values are ignored.
func (o *Obj) GetAllObjectLabels() map[ObjectLabel]bool {
	objlabels := make(map[ObjectLabel]bool)
	for _, v := range o.properties {
		for l := range v.GetObjectLabels() {
			objlabels[l] = true
		}
	}
	for l := range o.defaultArrayProperty.GetObjectLabels() {
		objlabels[l] = true
	}
	for l := range o.defaultNonArrayProperty.GetObjectLabels() {
		objlabels[l] = true
	}
	for l := range o.internalPrototype.GetObjectLabels() {
		objlabels[l] = true
	}
	for l := range o.internalValue.GetObjectLabels() {
		objlabels[l] = true
	}
	for _, frame := range o.scope.Frames() {
		for l := range frame {
			objlabels[l] = true
		}
	}
	return objlabels
}

// GetValue returns the value designated by the property reference.
func (o *Obj) GetValue(prop PropertyReference) *Value {
	switch prop.Kind() {
	case OrdinaryProperty:
		return o.GetProperty(prop.PropertyName())
	case DefaultArrayProperty:
		return o.DefaultArrayProperty()
	case DefaultNonArrayProperty:
		return o.DefaultNonArrayProperty()
	case InternalValueProperty:
		return o.InternalValue()
	case InternalPrototypeProperty:
		return o.InternalPrototype()
	default:
		analysisError("unexpected property reference kind")
		return nil
	}
}

// SetValue sets the value designated by the property reference.
func (o *Obj) SetValue(prop PropertyReference, v *Value) {
	switch prop.Kind() {
	case OrdinaryProperty:
		o.SetProperty(prop.PropertyName(), v)
	case DefaultArrayProperty:
		o.SetDefaultArrayProperty(v)
	case DefaultNonArrayProperty:
		o.SetDefaultNonArrayProperty(v)
	case InternalValueProperty:
		o.SetInternalValue(v)
	case InternalPrototypeProperty:
		o.SetInternalPrototype(v)
	default:
		analysisError("unexpected property reference kind")
	}
}

// Trim reduces this object to the portion not already covered by the given
// existing object: properties that are unknown in ref become unknown here;
// all other properties are kept.
func (o *Obj) Trim(ref *Obj) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.Trim(ref.GetProperty(k))
	}
	o.properties = newproperties
	o.writableProperties = true
	o.defaultArrayProperty = o.defaultArrayProperty.Trim(ref.defaultArrayProperty)
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.Trim(ref.defaultNonArrayProperty)
	o.internalValue = o.internalValue.Trim(ref.internalValue)
	o.internalPrototype = o.internalPrototype.Trim(ref.internalPrototype)
	if ref.scopeUnknown { // TODO: refine rather than coarsen once ScopeChain gets a trim operation
		o.scope = nil
		o.scopeUnknown = true
	}
}

// Remove removes the parts of this object that are also in the given object.
// It is assumed that this object subsumes the given object, but the defaults
// may not cover the same properties.
func (o *Obj) Remove(ref *Obj) {
	newproperties := make(map[string]*Value, len(o.properties))
	for k, v := range o.properties {
		newproperties[k] = v.Remove(ref.GetProperty(k)) // may look up in ref's default
	}
	o.properties = newproperties
	o.writableProperties = true
	// Careful with defaults that don't cover the same properties: ref's
	// defaults have already been propagated to the function entry state, so
	// slotwise removal suffices here.
	o.defaultArrayProperty = o.defaultArrayProperty.Remove(ref.defaultArrayProperty)
	o.defaultNonArrayProperty = o.defaultNonArrayProperty.Remove(ref.defaultNonArrayProperty)
	o.internalPrototype = o.internalPrototype.Remove(ref.internalPrototype)
	o.internalValue = o.internalValue.Remove(ref.internalValue)
	o.scope = RemoveScopeChain(o.scope, ref.scope)
}

// sortedPropertyNames returns the keys of the property map in natural string order.
func sortedPropertyNames(properties map[string]*Value) []string {
	names := make([]string, 0, len(properties))
	for k := range properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
