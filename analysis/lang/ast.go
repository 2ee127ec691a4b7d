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

// Package lang models the intermediate representation of the contract language
// as it is produced by the compiler frontend. The analysis engine only consumes
// this shape: it never parses source text, and it never mutates nodes once a
// compilation unit has been built.
package lang

// NodeID is a stable identifier for an AST node. Identifiers are assigned by
// the frontend (or by an IDGenerator in tests) and are unique within one
// compilation unit.
type NodeID uint32

// SrcLoc is a source location attached to every node, used for diagnostics.
type SrcLoc struct {
	File string
	Line int
	Col  int
}

// AstStore holds all the statements of a compilation unit, keyed by their
// stable node identifier. The store is read-only after construction.
type AstStore struct {
	stmts map[NodeID]Statement
}

// NewAstStore returns an empty AST store.
func NewAstStore() *AstStore {
	return &AstStore{stmts: map[NodeID]Statement{}}
}

// AddStatement records a statement in the store under its own identifier.
// Adding a statement with an identifier already in use replaces the previous
// statement; frontends must not reuse identifiers.
func (s *AstStore) AddStatement(stmt Statement) {
	s.stmts[stmt.ID()] = stmt
}

// Statement returns the statement with the given identifier, and false when no
// such statement exists. Callers must treat absence as "no information
// available" rather than an error.
func (s *AstStore) Statement(id NodeID) (Statement, bool) {
	stmt, ok := s.stmts[id]
	return stmt, ok
}

// Size returns the number of statements in the store.
func (s *AstStore) Size() int {
	return len(s.stmts)
}

// IDGenerator produces fresh node identifiers. It is an explicit counter that
// must be passed to construction sites; there is no process-wide generator, so
// concurrent analysis runs do not interfere.
type IDGenerator struct {
	next NodeID
}

// NewIDGenerator returns a generator whose first identifier is start.
func NewIDGenerator(start NodeID) *IDGenerator {
	return &IDGenerator{next: start}
}

// Next returns a fresh identifier.
func (g *IDGenerator) Next() NodeID {
	id := g.next
	g.next++
	return id
}

// Reset reseeds the generator. Only tests should need this.
func (g *IDGenerator) Reset(start NodeID) {
	g.next = start
}
