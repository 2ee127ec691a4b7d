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

// Package cfg models the control-flow graphs supplied by the compiler
// frontend: basic blocks, one Cfg per function, and the CompilationUnit that
// aggregates all of them for one analysis run. All structures are immutable
// once built; the dataflow engine and the detectors only read them.
package cfg

import "github.com/siftlabs/sift/analysis/lang"

// Idx identifies a basic block within its owning Cfg.
type Idx uint32

// BlockKind tags the role of a block in the control flow of its function.
type BlockKind int

const (
	// BlockNormal is a straight-line block.
	BlockNormal BlockKind = iota
	// BlockBranch is a block ending in a conditional branch.
	BlockBranch
	// BlockLoopHead is the header block of a loop.
	BlockLoopHead
)

func (k BlockKind) String() string {
	switch k {
	case BlockBranch:
		return "branch"
	case BlockLoopHead:
		return "loop-head"
	default:
		return "normal"
	}
}

// BasicBlock is a maximal straight-line sequence of statements with one entry
// and one exit point in control flow. Statements are referenced by node
// identifier and resolved against the AST store of the compilation unit.
type BasicBlock struct {
	// Idx is the identity of the block within its Cfg.
	Idx Idx

	// Stmts is the ordered sequence of statement references in the block.
	Stmts []lang.NodeID

	// Succs and Preds are the indices of successor and predecessor blocks.
	Succs []Idx
	Preds []Idx

	// Kind tags normal, branch and loop-header blocks.
	Kind BlockKind
}

// IsExit returns true when the block has no successors.
func (b *BasicBlock) IsExit() bool {
	return len(b.Succs) == 0
}
