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

import (
	"errors"

	"github.com/bits-and-blooms/bitset"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/internal/funcutil"
)

// Direction selects whether states flow along successor or predecessor edges.
type Direction int

const (
	// Forward propagates states from predecessors to successors.
	Forward Direction = iota
	// Backward propagates states from successors to predecessors.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ErrNoConvergence is returned by SolveBounded when the iteration budget is
// exhausted before a fixpoint is reached. Per-block states computed so far are
// discarded: a partial result would be inconsistent.
var ErrNoConvergence = errors.New("dataflow solver did not converge within budget")

// Result maps every basic-block index of the analyzed Cfg to its fixpoint
// state: the state at the block's exit for forward analyses, at its entry for
// backward analyses.
type Result[S any] struct {
	states map[cfg.Idx]S
}

// GetState returns the fixpoint state of the block, and false when the solver
// holds no state for that index (an index from a different Cfg, for example).
// Callers must treat absence as "no information available" and skip, not
// crash.
func (r *Result[S]) GetState(idx cfg.Idx) (S, bool) {
	s, ok := r.states[idx]
	return s, ok
}

// GetStates returns the per-block state map. The map is owned by the result;
// callers must not modify it.
func (r *Result[S]) GetStates() map[cfg.Idx]S {
	return r.states
}

// Solve runs worklist fixpoint iteration over the blocks of g: every block
// starts from the lattice's bottom, the in-state of a block is the join over
// its predecessor states (successor states for backward analyses), and the
// transfer function is applied to the block's statements sequentially, each
// statement's output feeding the next statement's input. Blocks whose state
// grew are re-queued until nothing changes.
//
// For a deterministic transfer function the final states are independent of
// queue-processing order; only the iteration count varies. Solve does not
// terminate if the lattice violates the ascending-chain condition or the
// transfer function is not monotone; that is a contract violation by the
// caller, not a condition the solver detects.
func Solve[S any](cu *cfg.CompilationUnit, g *cfg.Cfg, tr Transfer[S], lat JoinSemilattice[S], dir Direction) *Result[S] {
	res, err := solve(cu, g, tr, lat, dir, 0)
	if err != nil {
		// unreachable: solve only fails when a budget is set
		panic(err)
	}
	return res
}

// SolveBounded is Solve with a budget on the number of transfer applications.
// It returns ErrNoConvergence when the budget runs out first. A budget of 0
// means unbounded, equivalent to Solve.
func SolveBounded[S any](cu *cfg.CompilationUnit, g *cfg.Cfg, tr Transfer[S], lat JoinSemilattice[S], dir Direction,
	budget int) (*Result[S], error) {
	return solve(cu, g, tr, lat, dir, budget)
}

func solve[S any](cu *cfg.CompilationUnit, g *cfg.Cfg, tr Transfer[S], lat JoinSemilattice[S], dir Direction,
	budget int) (*Result[S], error) {
	blocks := g.Blocks()
	states := make(map[cfg.Idx]S, len(blocks))
	for _, b := range blocks {
		states[b.Idx] = lat.Bottom()
	}
	if len(blocks) == 0 {
		return &Result[S]{states: states}, nil
	}

	// Seed the queue with every block in construction order (reversed for
	// backward analyses so exits are processed first). The stable order keeps
	// warning order deterministic for a fixed frontend output.
	queue := make([]cfg.Idx, 0, len(blocks))
	queued := bitset.New(uint(len(blocks)))
	enqueue := func(idx cfg.Idx) {
		if !queued.Test(uint(idx)) {
			queued.Set(uint(idx))
			queue = append(queue, idx)
		}
	}
	if dir == Forward {
		for _, b := range blocks {
			enqueue(b.Idx)
		}
	} else {
		for k := len(blocks) - 1; k >= 0; k-- {
			enqueue(blocks[k].Idx)
		}
	}

	steps := 0
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		queued.Clear(uint(idx))
		block, ok := g.Block(idx)
		if !ok {
			continue
		}

		// Join the states flowing into the block.
		in := lat.Bottom()
		for _, n := range flowSources(block, dir) {
			in = lat.Join(in, states[n])
		}

		// Apply the transfer function to every statement in sequence.
		out := in
		stmts := block.Stmts
		if dir == Backward {
			stmts = funcutil.Reversed(stmts)
		}
		for _, id := range stmts {
			stmt, known := cu.Ast.Statement(id)
			if !known {
				continue
			}
			out = tr.Transfer(out, block, stmt)
			steps++
			if budget > 0 && steps > budget {
				return nil, ErrNoConvergence
			}
		}

		// The state changed iff the new state is not leq the recorded one,
		// equivalently join(old, new) != old. Joining into the record keeps
		// the per-block state monotonically growing.
		old := states[idx]
		if !lat.Leq(out, old) {
			states[idx] = lat.Join(old, out)
			for _, n := range flowTargets(block, dir) {
				enqueue(n)
			}
		}
	}
	return &Result[S]{states: states}, nil
}

// flowSources returns the blocks whose states feed the given block.
func flowSources(b *cfg.BasicBlock, dir Direction) []cfg.Idx {
	if dir == Forward {
		return b.Preds
	}
	return b.Succs
}

// flowTargets returns the blocks to requeue when the given block's state
// changed.
func flowTargets(b *cfg.BasicBlock, dir Direction) []cfg.Idx {
	if dir == Forward {
		return b.Succs
	}
	return b.Preds
}
