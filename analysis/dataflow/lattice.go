// Copyright Sift Labs, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataflow

import "github.com/siftlabs/sift/internal/funcutil"

// JoinSemilattice is the contract every dataflow state domain must satisfy.
//
// Implementers must guarantee that Join is commutative, associative and
// idempotent, that Leq is a partial order consistent with Join (that is,
// Leq(a, Join(a, b)) and Leq(b, Join(a, b)) always hold), and that no infinite
// strictly-ascending chain is reachable in practice for the analyzed program.
// The solver relies on these properties for termination and determinism and
// does not check them at runtime.
type JoinSemilattice[S any] interface {
	// Bottom returns the least element, the initial state of every block.
	Bottom() S

	// Join returns the least upper bound of a and b.
	Join(a, b S) S

	// Leq returns true when a is less than or equal to b in the lattice
	// order.
	Leq(a, b S) bool
}

// StringSet is a set of names, the abstract state of taint-style analyses.
// States are plain value-copied maps: transfer functions never mutate an
// input state, they derive new sets with WithStrings. This replaces the
// shared-mutable-set aliasing some engines use; copying keeps the
// copy-on-write semantics explicit at a negligible cost for contract-sized
// functions.
type StringSet = map[string]bool

// NewStringSet returns a set holding the given names.
func NewStringSet(names ...string) StringSet {
	s := make(StringSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// WithStrings returns a copy of s with the given names added. The input set
// is not modified.
func WithStrings(s StringSet, names ...string) StringSet {
	out := make(StringSet, len(s)+len(names))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}

// WithoutString returns a copy of s with the name removed.
func WithoutString(s StringSet, name string) StringSet {
	out := make(StringSet, len(s))
	for k, v := range s {
		if v && k != name {
			out[k] = true
		}
	}
	return out
}

// StringSetLattice is the powerset lattice over names, ordered by inclusion.
// It is the shared taint domain: bottom is the empty set and join is union.
type StringSetLattice struct{}

// Bottom returns the empty set.
func (StringSetLattice) Bottom() StringSet {
	return StringSet{}
}

// Join returns the union of a and b as a fresh set.
func (StringSetLattice) Join(a, b StringSet) StringSet {
	out := make(StringSet, len(a)+len(b))
	funcutil.Union(out, a)
	funcutil.Union(out, b)
	return out
}

// Leq returns true when a is a subset of b.
func (StringSetLattice) Leq(a, b StringSet) bool {
	for k, v := range a {
		if v && !b[k] {
			return false
		}
	}
	return true
}
