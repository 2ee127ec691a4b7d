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
	"math/big"
	"testing"

	"github.com/siftlabs/sift/analysis/lang"
)

func mkStmts(t *testing.T, names ...string) (*lang.AstStore, []lang.NodeID) {
	t.Helper()
	ast := lang.NewAstStore()
	ids := lang.NewIDGenerator(0)
	var refs []lang.NodeID
	for _, n := range names {
		s := &lang.StmtLet{Node: ids.Next(), Name: n, Init: &lang.ExprNumber{Value: big.NewInt(0)}}
		ast.AddStatement(s)
		refs = append(refs, s.ID())
	}
	return ast, refs
}

func TestNewCfgDerivesPreds(t *testing.T) {
	blocks := []*BasicBlock{
		{Idx: 0, Succs: []Idx{1, 2}},
		{Idx: 1, Succs: []Idx{2}},
		{Idx: 2},
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	b2, _ := g.Block(2)
	if len(b2.Preds) != 2 {
		t.Errorf("block 2 should have two predecessors, got %v", b2.Preds)
	}
	b0, _ := g.Block(0)
	if len(b0.Preds) != 0 {
		t.Errorf("the entry should have no predecessors, got %v", b0.Preds)
	}
}

func TestNewCfgDuplicateIndex(t *testing.T) {
	blocks := []*BasicBlock{{Idx: 0}, {Idx: 0}}
	if _, err := NewCfg("f", lang.OriginUser, nil, blocks, 0); err == nil {
		t.Errorf("duplicate block indices should be rejected")
	}
}

func TestNewCfgUnknownSuccessor(t *testing.T) {
	blocks := []*BasicBlock{{Idx: 0, Succs: []Idx{7}}}
	if _, err := NewCfg("f", lang.OriginUser, nil, blocks, 0); err == nil {
		t.Errorf("an edge to a nonexistent block should be rejected")
	}
}

func TestNewCfgMissingEntry(t *testing.T) {
	blocks := []*BasicBlock{{Idx: 1}}
	if _, err := NewCfg("f", lang.OriginUser, nil, blocks, 0); err == nil {
		t.Errorf("a missing entry block should be rejected")
	}
}

func TestEntryAndExits(t *testing.T) {
	blocks := []*BasicBlock{
		{Idx: 0, Succs: []Idx{1, 2}},
		{Idx: 1},
		{Idx: 2},
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	if g.Entry() == nil || g.Entry().Idx != 0 {
		t.Errorf("wrong entry block")
	}
	exits := g.ExitBlocks()
	if len(exits) != 2 || exits[0].Idx != 1 || exits[1].Idx != 2 {
		t.Errorf("wrong exit blocks: %v", exits)
	}
}

func TestForEachBasicBlockOrder(t *testing.T) {
	ast, refs := mkStmts(t, "a", "b", "c")
	blocks := []*BasicBlock{
		{Idx: 0, Stmts: refs[:2], Succs: []Idx{1}},
		{Idx: 1, Stmts: refs[2:]},
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	var seen []string
	g.ForEachBasicBlock(ast, func(stmt lang.Statement, _ *BasicBlock) {
		seen = append(seen, stmt.(*lang.StmtLet).Name)
	})
	want := []string{"a", "b", "c"}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("statement %d: got %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestForEachBasicBlockSkipsUnresolvable(t *testing.T) {
	ast, refs := mkStmts(t, "a")
	blocks := []*BasicBlock{
		{Idx: 0, Stmts: append(refs, lang.NodeID(999))},
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	count := 0
	g.ForEachBasicBlock(ast, func(lang.Statement, *BasicBlock) { count++ })
	if count != 1 {
		t.Errorf("unresolvable references should be skipped, saw %d statements", count)
	}
}

func TestReachableFrom(t *testing.T) {
	blocks := []*BasicBlock{
		{Idx: 0, Succs: []Idx{1}},
		{Idx: 1, Succs: []Idx{0, 2}},
		{Idx: 2},
		{Idx: 3, Succs: []Idx{2}}, // unreachable from 0
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	seen := g.ReachableFrom(0)
	for _, idx := range []Idx{0, 1, 2} {
		if !seen[idx] {
			t.Errorf("block %d should be reachable from 0", idx)
		}
	}
	if seen[3] {
		t.Errorf("block 3 should not be reachable from 0")
	}
	if len(g.ReachableFrom(42)) != 0 {
		t.Errorf("an unknown start yields nothing")
	}
}

func TestIdxGenerator(t *testing.T) {
	gen := NewIdxGenerator(0)
	blocks := []*BasicBlock{
		{Idx: gen.Next(), Succs: []Idx{1}},
		{Idx: gen.Next()},
	}
	g, err := NewCfg("f", lang.OriginUser, nil, blocks, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	if g.Entry().Idx != 0 || blocks[1].Idx != 1 {
		t.Errorf("generated indices should be sequential from the seed")
	}
	gen.Reset(5)
	if gen.Next() != 5 {
		t.Errorf("Reset should reseed the generator")
	}
}

func TestCompilationUnitDuplicateCfg(t *testing.T) {
	ast := lang.NewAstStore()
	mk := func() *Cfg {
		g, err := NewCfg("f", lang.OriginUser, nil, []*BasicBlock{{Idx: 0}}, 0)
		if err != nil {
			t.Fatalf("NewCfg failed: %v", err)
		}
		return g
	}
	if _, err := NewCompilationUnit(ast, nil, []*Cfg{mk(), mk()}); err == nil {
		t.Errorf("duplicate function names should be rejected")
	}
}

func TestForEachCfgSkipsStdlib(t *testing.T) {
	ast := lang.NewAstStore()
	user, err := NewCfg("user", lang.OriginUser, nil, []*BasicBlock{{Idx: 0}}, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	std, err := NewCfg("std", lang.OriginStdlib, nil, []*BasicBlock{{Idx: 0}}, 0)
	if err != nil {
		t.Fatalf("NewCfg failed: %v", err)
	}
	cu, err := NewCompilationUnit(ast, nil, []*Cfg{user, std})
	if err != nil {
		t.Fatalf("NewCompilationUnit failed: %v", err)
	}
	count := FoldCfgs(cu, 0, func(n int, _ *Cfg) int { return n + 1 }, false)
	if count != 1 {
		t.Errorf("stdlib functions should be skipped, counted %d", count)
	}
	count = FoldCfgs(cu, 0, func(n int, _ *Cfg) int { return n + 1 }, true)
	if count != 2 {
		t.Errorf("includeStdlib should count both, counted %d", count)
	}
}
