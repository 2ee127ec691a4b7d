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

package cfg

// IdxGenerator produces fresh block indices. Like lang.IDGenerator it is an
// explicit counter passed into construction sites rather than process-wide
// state, so concurrent analysis runs do not interfere and tests can reseed it.
type IdxGenerator struct {
	next Idx
}

// NewIdxGenerator returns a generator whose first index is start.
func NewIdxGenerator(start Idx) *IdxGenerator {
	return &IdxGenerator{next: start}
}

// Next returns a fresh block index.
func (g *IdxGenerator) Next() Idx {
	idx := g.next
	g.next++
	return idx
}

// Reset reseeds the generator.
func (g *IdxGenerator) Reset(start Idx) {
	g.next = start
}
