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

import (
	"fmt"

	"github.com/siftlabs/sift/analysis/lang"
)

// Cfg is the control-flow graph of one function, method or receiver. It owns
// its basic blocks and records the entry block and the originating function's
// identity. Blocks are kept in construction order; analyses that seed
// worklists from Blocks() are deterministic for a fixed frontend output.
type Cfg struct {
	// Name is the unique identity of the function this graph belongs to.
	Name lang.FunctionName

	// Origin tags the function as user code or standard library.
	Origin lang.Origin

	// Params are the parameter names of the function, in declaration order.
	Params []string

	blocks []*BasicBlock
	byIdx  map[Idx]*BasicBlock
	entry  Idx
}

// NewCfg builds a Cfg from the blocks supplied by the frontend and validates
// the graph invariants: every successor index references an existing block,
// block indices are unique, and the entry index exists. Predecessor sets are
// derived from the successor sets, so the two are consistent by construction.
func NewCfg(name lang.FunctionName, origin lang.Origin, params []string, blocks []*BasicBlock, entry Idx) (*Cfg, error) {
	byIdx := make(map[Idx]*BasicBlock, len(blocks))
	for _, b := range blocks {
		if _, dup := byIdx[b.Idx]; dup {
			return nil, fmt.Errorf("cfg %s: duplicate block index %d", name, b.Idx)
		}
		byIdx[b.Idx] = b
	}
	if len(blocks) > 0 {
		if _, ok := byIdx[entry]; !ok {
			return nil, fmt.Errorf("cfg %s: entry block %d does not exist", name, entry)
		}
	}
	// Recompute predecessors from successors.
	for _, b := range blocks {
		b.Preds = nil
	}
	for _, b := range blocks {
		for _, s := range b.Succs {
			succ, ok := byIdx[s]
			if !ok {
				return nil, fmt.Errorf("cfg %s: block %d references unknown successor %d", name, b.Idx, s)
			}
			succ.Preds = append(succ.Preds, b.Idx)
		}
	}
	return &Cfg{Name: name, Origin: origin, Params: params, blocks: blocks, byIdx: byIdx, entry: entry}, nil
}

// Blocks returns the basic blocks in construction order.
func (g *Cfg) Blocks() []*BasicBlock {
	return g.blocks
}

// Block returns the block with the given index, and false when none exists.
func (g *Cfg) Block(idx Idx) (*BasicBlock, bool) {
	b, ok := g.byIdx[idx]
	return b, ok
}

// Entry returns the entry block. A Cfg of an empty function has no blocks and
// Entry returns nil.
func (g *Cfg) Entry() *BasicBlock {
	if len(g.blocks) == 0 {
		return nil
	}
	return g.byIdx[g.entry]
}

// ExitBlocks returns all blocks with no successors, in construction order.
// A function that diverges unconditionally has none.
func (g *Cfg) ExitBlocks() []*BasicBlock {
	var exits []*BasicBlock
	for _, b := range g.blocks {
		if b.IsExit() {
			exits = append(exits, b)
		}
	}
	return exits
}

// ForEachBasicBlock iterates every statement of the graph in block order then
// intra-block statement order, resolving statement references against ast.
// Unresolvable references are skipped: the callback only sees statements the
// store knows about.
func (g *Cfg) ForEachBasicBlock(ast *lang.AstStore, f func(stmt lang.Statement, block *BasicBlock)) {
	for _, b := range g.blocks {
		for _, id := range b.Stmts {
			if stmt, ok := ast.Statement(id); ok {
				f(stmt, b)
			}
		}
	}
}

// ReachableFrom returns the set of block indices reachable from start by
// following successor edges, including start itself. The traversal is
// iterative and cycle-safe.
func (g *Cfg) ReachableFrom(start Idx) map[Idx]bool {
	seen := map[Idx]bool{}
	if _, ok := g.byIdx[start]; !ok {
		return seen
	}
	queue := []Idx{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, s := range g.byIdx[cur].Succs {
			if !seen[s] {
				queue = append(queue, s)
			}
		}
	}
	return seen
}
