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

// PropertyReferenceKind discriminates the variants of a PropertyReference.
type PropertyReferenceKind int

const (
	// OrdinaryProperty selects a named property.
	OrdinaryProperty PropertyReferenceKind = iota
	// DefaultArrayProperty selects the default array property.
	DefaultArrayProperty
	// DefaultNonArrayProperty selects the default non-array property.
	DefaultNonArrayProperty
	// InternalValueProperty selects the internal [[Value]] property.
	InternalValueProperty
	// InternalPrototypeProperty selects the internal [[Prototype]] property.
	InternalPrototypeProperty
)

// A PropertyReference selects one slot of an abstract object, so that
// transfer functions can read and write slots uniformly.
type PropertyReference struct {
	kind PropertyReferenceKind
	name string // only used for OrdinaryProperty
}

// MakePropertyReference creates a reference to the named ordinary property.
func MakePropertyReference(name string) PropertyReference {
	return PropertyReference{kind: OrdinaryProperty, name: name}
}

// MakeDefaultArrayPropertyReference creates a reference to the default array property.
func MakeDefaultArrayPropertyReference() PropertyReference {
	return PropertyReference{kind: DefaultArrayProperty}
}

// MakeDefaultNonArrayPropertyReference creates a reference to the default non-array property.
func MakeDefaultNonArrayPropertyReference() PropertyReference {
	return PropertyReference{kind: DefaultNonArrayProperty}
}

// MakeInternalValuePropertyReference creates a reference to the internal [[Value]] property.
func MakeInternalValuePropertyReference() PropertyReference {
	return PropertyReference{kind: InternalValueProperty}
}

// MakeInternalPrototypePropertyReference creates a reference to the internal [[Prototype]] property.
func MakeInternalPrototypePropertyReference() PropertyReference {
	return PropertyReference{kind: InternalPrototypeProperty}
}

// Kind returns the variant of this reference.
func (p PropertyReference) Kind() PropertyReferenceKind {
	return p.kind
}

// PropertyName returns the property name of an OrdinaryProperty reference.
func (p PropertyReference) PropertyName() string {
	if p.kind != OrdinaryProperty {
		analysisError("PropertyName called on %s reference", p)
	}
	return p.name
}

func (p PropertyReference) String() string {
	switch p.kind {
	case OrdinaryProperty:
		return p.name
	case DefaultArrayProperty:
		return "[[DefaultArray]]"
	case DefaultNonArrayProperty:
		return "[[DefaultNonArray]]"
	case InternalValueProperty:
		return "[[Value]]"
	case InternalPrototypeProperty:
		return "[[Prototype]]"
	default:
		return "<unknown property reference>"
	}
}
