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

// Package utils contains property-name utility functions shared by the
// lattice and its printers.
package utils

import "strconv"

// MaxArrayIndex is the largest integer whose decimal representation is still
// an array index property name (2^32-2, the ECMAScript array bound).
const MaxArrayIndex = 4294967294

// IsArrayIndex reports whether s is the canonical decimal representation of
// an integer in the array index range. Names with leading zeros, signs, or
// non-digit characters are not array indices.
func IsArrayIndex(s string) bool {
	// 10 digits is enough for MaxArrayIndex; longer strings cannot match.
	if len(s) == 0 || len(s) > 10 {
		return false
	}
	if s[0] == '0' && len(s) > 1 {
		return false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v = v*10 + uint64(c-'0')
	}
	return v <= MaxArrayIndex
}

// Escape returns s with quotes, backslashes and control characters escaped,
// so that property names print unambiguously in object descriptions.
func Escape(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}
