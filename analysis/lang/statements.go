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

package lang

// Statement is the closed set of statement shapes the frontend can produce.
// The interface is sealed: only the types in this package implement it, so a
// type switch over all Stmt* types is exhaustive. Analyses that do not care
// about a given statement kind should treat it as a no-op rather than fail.
type Statement interface {
	ID() NodeID
	Loc() SrcLoc
	isStatement()
}

// StmtLet is a let-binding `let name = init`.
type StmtLet struct {
	Node NodeID
	Pos  SrcLoc
	Name string
	Init Expression
}

// StmtAssign is an assignment `target = value` to an already-bound name.
type StmtAssign struct {
	Node   NodeID
	Pos    SrcLoc
	Target string
	Value  Expression
}

// StmtExpr is an expression evaluated for its effect, typically a call.
type StmtExpr struct {
	Node NodeID
	Pos  SrcLoc
	X    Expression
}

// StmtReturn is a return statement. Value is nil for a bare return.
type StmtReturn struct {
	Node  NodeID
	Pos   SrcLoc
	Value Expression
}

// StmtCondition is the test of a branch or loop. The branching structure
// itself lives in the CFG; this statement only carries the condition
// expression so flow-sensitive analyses can inspect it.
type StmtCondition struct {
	Node NodeID
	Pos  SrcLoc
	Cond Expression
}

func (s *StmtLet) ID() NodeID       { return s.Node }
func (s *StmtAssign) ID() NodeID    { return s.Node }
func (s *StmtExpr) ID() NodeID      { return s.Node }
func (s *StmtReturn) ID() NodeID    { return s.Node }
func (s *StmtCondition) ID() NodeID { return s.Node }

func (s *StmtLet) Loc() SrcLoc       { return s.Pos }
func (s *StmtAssign) Loc() SrcLoc    { return s.Pos }
func (s *StmtExpr) Loc() SrcLoc      { return s.Pos }
func (s *StmtReturn) Loc() SrcLoc    { return s.Pos }
func (s *StmtCondition) Loc() SrcLoc { return s.Pos }

func (*StmtLet) isStatement()       {}
func (*StmtAssign) isStatement()    {}
func (*StmtExpr) isStatement()      {}
func (*StmtReturn) isStatement()    {}
func (*StmtCondition) isStatement() {}
