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

package detectors

import (
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/dataflow"
	"github.com/siftlabs/sift/analysis/intervals"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
)

// unitBuilder accumulates functions into a compilation unit for tests.
type unitBuilder struct {
	t    *testing.T
	ast  *lang.AstStore
	ids  *lang.IDGenerator
	cg   *callgraph.Graph
	cfgs []*cfg.Cfg
	line int
}

func newUnitBuilder(t *testing.T) *unitBuilder {
	t.Helper()
	return &unitBuilder{
		t:   t,
		ast: lang.NewAstStore(),
		ids: lang.NewIDGenerator(0),
		cg:  callgraph.NewGraph(),
	}
}

func (b *unitBuilder) loc() lang.SrcLoc {
	b.line++
	return lang.SrcLoc{File: "test.tact", Line: b.line, Col: 1}
}

func (b *unitBuilder) let(name string, init lang.Expression) lang.NodeID {
	s := &lang.StmtLet{Node: b.ids.Next(), Pos: b.loc(), Name: name, Init: init}
	b.ast.AddStatement(s)
	return s.ID()
}

func (b *unitBuilder) assign(target string, value lang.Expression) lang.NodeID {
	s := &lang.StmtAssign{Node: b.ids.Next(), Pos: b.loc(), Target: target, Value: value}
	b.ast.AddStatement(s)
	return s.ID()
}

func (b *unitBuilder) exprStmt(x lang.Expression) lang.NodeID {
	s := &lang.StmtExpr{Node: b.ids.Next(), Pos: b.loc(), X: x}
	b.ast.AddStatement(s)
	return s.ID()
}

func (b *unitBuilder) ret(value lang.Expression) lang.NodeID {
	s := &lang.StmtReturn{Node: b.ids.Next(), Pos: b.loc(), Value: value}
	b.ast.AddStatement(s)
	return s.ID()
}

func (b *unitBuilder) cond(c lang.Expression) lang.NodeID {
	s := &lang.StmtCondition{Node: b.ids.Next(), Pos: b.loc(), Cond: c}
	b.ast.AddStatement(s)
	return s.ID()
}

func (b *unitBuilder) fn(name string, params []string, blocks []*cfg.BasicBlock, effects callgraph.Effect) {
	g, err := cfg.NewCfg(lang.FunctionName(name), lang.OriginUser, params, blocks, 0)
	if err != nil {
		b.t.Fatalf("could not build cfg %s: %v", name, err)
	}
	b.cfgs = append(b.cfgs, g)
	b.cg.AddNode(name, effects)
}

func (b *unitBuilder) call(caller, callee string) {
	from, ok := b.cg.NodeIDByName(caller)
	if !ok {
		b.t.Fatalf("unknown caller %s", caller)
	}
	to, ok := b.cg.NodeIDByName(callee)
	if !ok {
		b.t.Fatalf("unknown callee %s", callee)
	}
	if err := b.cg.AddEdge(from, to, lang.SrcLoc{File: "test.tact", Line: b.line, Col: 1}); err != nil {
		b.t.Fatalf("could not add edge: %v", err)
	}
}

func (b *unitBuilder) build() *cfg.CompilationUnit {
	b.cg.Finalize()
	cu, err := cfg.NewCompilationUnit(b.ast, b.cg, b.cfgs)
	if err != nil {
		b.t.Fatalf("could not build compilation unit: %v", err)
	}
	return cu
}

func num(n int64) lang.Expression {
	return &lang.ExprNumber{Value: big.NewInt(n)}
}

func id(name string) lang.Expression {
	return &lang.ExprID{Name: name}
}

func bin(op lang.BinOp, l, r lang.Expression) lang.Expression {
	return &lang.ExprBinary{Op: op, Left: l, Right: r}
}

func staticCall(fn string, args ...lang.Expression) lang.Expression {
	return &lang.ExprStaticCall{Func: fn, Args: args}
}

func selfCall(method string, args ...lang.Expression) lang.Expression {
	return &lang.ExprMethodCall{Recv: &lang.ExprID{Name: "self"}, Method: method, Args: args}
}

func runDetector(t *testing.T, d Detector, cu *cfg.CompilationUnit) []reports.Warning {
	t.Helper()
	conf := config.NewDefault()
	logger := config.NewLogGroup(conf)
	logger.SetAllOutput(io.Discard)
	return d.Check(cu, conf, logger)
}

func TestAllDetectorsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, d := range All() {
		if names[d.Name()] {
			t.Errorf("duplicate detector name %q", d.Name())
		}
		names[d.Name()] = true
	}
	for _, want := range []string{"timestamp-dependence", "divide-by-zero", "send-in-loop",
		"recursion", "unsaved-argument-mutation"} {
		if !names[want] {
			t.Errorf("detector %q is not registered", want)
		}
	}
}

func TestByName(t *testing.T) {
	if ByName("divide-by-zero").IsNone() {
		t.Errorf("divide-by-zero should resolve")
	}
	if !ByName("no-such-detector").IsNone() {
		t.Errorf("an unknown name should not resolve")
	}
}

func TestTimestampTaintedCondition(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Vault::unlock", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("t", staticCall("now")),
			b.let("deadline", bin(lang.OpAdd, id("t"), num(3600))),
		}, Succs: []cfg.Idx{1}},
		{Idx: 1, Stmts: []lang.NodeID{
			b.cond(bin(lang.OpGt, id("deadline"), num(0))),
		}, Kind: cfg.BlockBranch},
	}, 0)
	cu := b.build()

	warnings := runDetector(t, &Timestamp{}, cu)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].Severity != reports.Medium || !strings.Contains(warnings[0].Msg, "deadline") {
		t.Errorf("unexpected warning: %v", warnings[0])
	}
}

func TestTimestampDirectRead(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Vault::unlock", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.cond(bin(lang.OpGt, staticCall("now"), num(100))),
		}, Kind: cfg.BlockBranch},
	}, 0)
	warnings := runDetector(t, &Timestamp{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}

func TestTimestampKillOnReassign(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Vault::unlock", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("t", staticCall("now")),
			b.assign("t", num(0)),
			b.cond(bin(lang.OpGt, id("t"), num(0))),
		}, Kind: cfg.BlockBranch},
	}, 0)
	warnings := runDetector(t, &Timestamp{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("reassignment should untaint: %v", warnings)
	}
}

func TestDivByZeroConstant(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Math::f", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("d", num(0)),
			b.let("x", bin(lang.OpDiv, num(10), id("d"))),
		}},
	}, 0)
	warnings := runDetector(t, &DivByZero{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].Severity != reports.High {
		t.Errorf("division by zero should be high severity: %v", warnings[0])
	}
}

func TestDivByZeroSafeDivisor(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Math::f", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("d", num(5)),
			b.let("x", bin(lang.OpDiv, num(10), id("d"))),
		}},
	}, 0)
	warnings := runDetector(t, &DivByZero{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("dividing by 5 is safe: %v", warnings)
	}
}

func TestDivByZeroBranchJoin(t *testing.T) {
	// d is 0 on one path and 5 on the other; the join [0, 5] contains zero.
	b := newUnitBuilder(t)
	b.fn("Math::f", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.cond(bin(lang.OpGt, num(1), num(0))),
		}, Succs: []cfg.Idx{1, 2}, Kind: cfg.BlockBranch},
		{Idx: 1, Stmts: []lang.NodeID{b.let("d", num(0))}, Succs: []cfg.Idx{3}},
		{Idx: 2, Stmts: []lang.NodeID{b.let("d", num(5))}, Succs: []cfg.Idx{3}},
		{Idx: 3, Stmts: []lang.NodeID{
			b.let("x", bin(lang.OpDiv, num(100), id("d"))),
		}},
	}, 0)
	warnings := runDetector(t, &DivByZero{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Msg, "[0, 5]") {
		t.Errorf("the warning should carry the divisor range: %v", warnings[0])
	}
}

func TestDivByZeroUnknownDivisorSilent(t *testing.T) {
	// An unanalyzed divisor has no known range; stay silent rather than guess.
	b := newUnitBuilder(t)
	b.fn("Math::f", []string{"d"}, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("x", bin(lang.OpDiv, num(10), id("d"))),
		}},
	}, 0)
	warnings := runDetector(t, &DivByZero{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("an unknown divisor should not warn: %v", warnings)
	}
}

func sendLoopUnit(t *testing.T, inLoop bool) *cfg.CompilationUnit {
	t.Helper()
	b := newUnitBuilder(t)
	callBlockIdx := cfg.Idx(1)
	if !inLoop {
		callBlockIdx = 3
	}
	callStmt := b.exprStmt(selfCall("pay", num(1)))
	blocks := []*cfg.BasicBlock{
		{Idx: 0, Succs: []cfg.Idx{1, 3}, Kind: cfg.BlockLoopHead, Stmts: []lang.NodeID{
			b.cond(bin(lang.OpLt, id("i"), num(10))),
		}},
		{Idx: 1, Succs: []cfg.Idx{2}},
		{Idx: 2, Succs: []cfg.Idx{0}},
		{Idx: 3},
	}
	blocks[callBlockIdx].Stmts = append(blocks[callBlockIdx].Stmts, callStmt)
	b.fn("Bank::run", nil, blocks, 0)
	b.fn("Bank::pay", []string{"amount"}, []*cfg.BasicBlock{{Idx: 0}}, callgraph.EffectSend)
	b.call("Bank::run", "Bank::pay")
	return b.build()
}

func TestSendInLoop(t *testing.T) {
	warnings := runDetector(t, &SendInLoop{}, sendLoopUnit(t, true))
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].Severity != reports.Medium || !strings.Contains(warnings[0].Msg, "Bank::pay") {
		t.Errorf("unexpected warning: %v", warnings[0])
	}
}

func TestSendOutsideLoopSilent(t *testing.T) {
	warnings := runDetector(t, &SendInLoop{}, sendLoopUnit(t, false))
	if len(warnings) != 0 {
		t.Errorf("a send after the loop should not warn: %v", warnings)
	}
}

func TestSendInLoopTransitive(t *testing.T) {
	// run loops over helper, and helper calls pay which sends. The effect
	// summary must flow through the intermediate function.
	b := newUnitBuilder(t)
	b.fn("Bank::run", nil, []*cfg.BasicBlock{
		{Idx: 0, Succs: []cfg.Idx{1, 2}, Kind: cfg.BlockLoopHead},
		{Idx: 1, Succs: []cfg.Idx{0}, Stmts: []lang.NodeID{
			b.exprStmt(selfCall("helper")),
		}},
		{Idx: 2},
	}, 0)
	b.fn("Bank::helper", nil, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{b.exprStmt(selfCall("pay"))}},
	}, 0)
	b.fn("Bank::pay", nil, []*cfg.BasicBlock{{Idx: 0}}, callgraph.EffectSend)
	b.call("Bank::run", "Bank::helper")
	b.call("Bank::helper", "Bank::pay")
	warnings := runDetector(t, &SendInLoop{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Msg, "Bank::helper") {
		t.Errorf("the warning should name the called function: %v", warnings[0])
	}
}

func TestRecursionCycle(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("A::f", nil, []*cfg.BasicBlock{{Idx: 0}}, 0)
	b.fn("B::g", nil, []*cfg.BasicBlock{{Idx: 0}}, 0)
	b.call("A::f", "B::g")
	b.call("B::g", "A::f")
	warnings := runDetector(t, &Recursion{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	w := warnings[0]
	if w.Severity != reports.Info {
		t.Errorf("recursion findings are informational: %v", w)
	}
	if !strings.Contains(w.Msg, "A::f") || !strings.Contains(w.Msg, "B::g") {
		t.Errorf("the warning should name the cycle members: %v", w)
	}
}

func TestRecursionSelfLoop(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("A::f", nil, []*cfg.BasicBlock{{Idx: 0}}, 0)
	b.call("A::f", "A::f")
	warnings := runDetector(t, &Recursion{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Msg, "calls itself") {
		t.Errorf("unexpected warning: %v", warnings[0])
	}
}

func TestRecursionAcyclicSilent(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("A::f", nil, []*cfg.BasicBlock{{Idx: 0}}, 0)
	b.fn("B::g", nil, []*cfg.BasicBlock{{Idx: 0}}, 0)
	b.call("A::f", "B::g")
	warnings := runDetector(t, &Recursion{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("an acyclic graph should not warn: %v", warnings)
	}
}

func TestUnsavedArgMutation(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Bank::credit", []string{"amount"}, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.assign("amount", bin(lang.OpAdd, id("amount"), num(1))),
			b.ret(num(0)),
		}},
	}, 0)
	warnings := runDetector(t, &UnsavedArgMutation{}, b.build())
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].Severity != reports.Medium || !strings.Contains(warnings[0].Msg, "amount") {
		t.Errorf("unexpected warning: %v", warnings[0])
	}
}

func TestUnsavedArgMutationUsedLater(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Bank::credit", []string{"amount"}, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.assign("amount", bin(lang.OpAdd, id("amount"), num(1))),
			b.ret(id("amount")),
		}},
	}, 0)
	warnings := runDetector(t, &UnsavedArgMutation{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("the new value is returned, no warning expected: %v", warnings)
	}
}

func TestUnsavedArgMutationLocalSilent(t *testing.T) {
	b := newUnitBuilder(t)
	b.fn("Bank::credit", []string{"amount"}, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.let("x", id("amount")),
			b.assign("x", bin(lang.OpAdd, id("x"), num(1))),
			b.ret(num(0)),
		}},
	}, 0)
	warnings := runDetector(t, &UnsavedArgMutation{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("dead writes to locals are out of scope: %v", warnings)
	}
}

func TestUnsavedArgMutationAcrossBlocks(t *testing.T) {
	// The mutated argument is read on one branch only; liveness across blocks
	// must keep the assignment.
	b := newUnitBuilder(t)
	b.fn("Bank::credit", []string{"amount"}, []*cfg.BasicBlock{
		{Idx: 0, Stmts: []lang.NodeID{
			b.assign("amount", bin(lang.OpAdd, id("amount"), num(1))),
			b.cond(bin(lang.OpGt, id("amount"), num(10))),
		}, Succs: []cfg.Idx{1, 2}, Kind: cfg.BlockBranch},
		{Idx: 1, Stmts: []lang.NodeID{b.ret(id("amount"))}},
		{Idx: 2, Stmts: []lang.NodeID{b.ret(num(0))}},
	}, 0)
	warnings := runDetector(t, &UnsavedArgMutation{}, b.build())
	if len(warnings) != 0 {
		t.Errorf("the value is live on a branch, no warning expected: %v", warnings)
	}
}

// A transfer function must be monotone for the fixpoint to be sound: growing
// the input state may only grow the output state.
func TestTaintTransferMonotone(t *testing.T) {
	lat := dataflow.StringSetLattice{}
	stmts := []lang.Statement{
		&lang.StmtLet{Name: "x", Init: staticCall("now")},
		&lang.StmtLet{Name: "x", Init: num(1)},
		&lang.StmtLet{Name: "x", Init: bin(lang.OpAdd, id("t"), num(1))},
		&lang.StmtAssign{Target: "t", Value: num(0)},
		&lang.StmtAssign{Target: "x", Value: id("t")},
		&lang.StmtCondition{Cond: id("t")},
	}
	pairs := [][2]dataflow.StringSet{
		{dataflow.NewStringSet(), dataflow.NewStringSet("t")},
		{dataflow.NewStringSet("t"), dataflow.NewStringSet("t", "x")},
		{dataflow.NewStringSet(), dataflow.NewStringSet("x")},
	}
	for _, pair := range pairs {
		lo, hi := pair[0], pair[1]
		if !lat.Leq(lo, hi) {
			t.Fatalf("bad pair: %v is not below %v", lo, hi)
		}
		for i, s := range stmts {
			outLo, outHi := taintTransfer(lo, nil, s), taintTransfer(hi, nil, s)
			if !lat.Leq(outLo, outHi) {
				t.Errorf("statement %d on %v <= %v: outputs %v, %v are not ordered",
					i, lo, hi, outLo, outHi)
			}
		}
	}
}

func TestRangeTransferMonotone(t *testing.T) {
	lat := envLattice{}
	iv := func(lo, hi int64) intervals.Interval {
		return intervals.New(intervals.NumInt(lo), intervals.NumInt(hi))
	}
	stmts := []lang.Statement{
		&lang.StmtLet{Name: "x", Init: bin(lang.OpAdd, id("t"), num(1))},
		&lang.StmtLet{Name: "x", Init: bin(lang.OpDiv, num(1), id("t"))},
		&lang.StmtAssign{Target: "t", Value: bin(lang.OpMul, id("t"), id("t"))},
		&lang.StmtCondition{Cond: id("t")},
	}
	pairs := [][2]Env{
		{Env{}, Env{"t": iv(0, 5)}},
		{Env{"t": iv(1, 2)}, Env{"t": iv(0, 5)}},
		{Env{"t": iv(-3, -1)}, Env{"t": intervals.Full()}},
	}
	for _, pair := range pairs {
		lo, hi := pair[0], pair[1]
		if !lat.Leq(lo, hi) {
			t.Fatalf("bad pair: %v is not below %v", lo, hi)
		}
		for i, s := range stmts {
			outLo, outHi := rangeTransfer(lo, nil, s), rangeTransfer(hi, nil, s)
			if !lat.Leq(outLo, outHi) {
				t.Errorf("statement %d on %v <= %v: outputs %v, %v are not ordered",
					i, lo, hi, outLo, outHi)
			}
		}
	}
}
