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

// Package loader reads a compiler frontend dump (JSON) and assembles the
// compilation unit the analyses run on: the AST store, one validated Cfg per
// function, and the finalized call graph. The loader owns node-id assignment;
// frontend dumps carry no ids.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/lang"
)

// LoadFile reads the frontend dump at path and assembles the compilation
// unit.
func LoadFile(path string, logger *config.LogGroup) (*cfg.CompilationUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	cu, err := Load(data, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cu, nil
}

// Load assembles a compilation unit from the raw bytes of a frontend dump.
func Load(data []byte, logger *config.LogGroup) (*cfg.CompilationUnit, error) {
	var prog irProgram
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("could not decode program: %w", err)
	}

	ast := lang.NewAstStore()
	ids := lang.NewIDGenerator(0)
	cg := callgraph.NewGraph()
	var cfgs []*cfg.Cfg

	// First pass: declare every function in the call graph so that edges can
	// be resolved regardless of declaration order.
	for _, fn := range prog.Functions {
		effects, err := parseEffects(fn.Effects)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		cg.AddNode(fn.Name, effects)
	}

	// Second pass: decode statements, build the CFGs and record call edges.
	for _, fn := range prog.Functions {
		g, err := buildCfg(fn, ast, ids)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, g)
		if err := recordCallEdges(cg, g, ast); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	cg.Finalize()

	cu, err := cfg.NewCompilationUnit(ast, cg, cfgs)
	if err != nil {
		return nil, err
	}
	logger.Debugf("loaded %d functions, %d statements, %d call-graph nodes",
		len(cfgs), ast.Size(), cg.Len())
	return cu, nil
}

func buildCfg(fn irFunction, ast *lang.AstStore, ids *lang.IDGenerator) (*cfg.Cfg, error) {
	origin, err := parseOrigin(fn.Origin)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}
	var blocks []*cfg.BasicBlock
	for _, ib := range fn.Blocks {
		kind, err := parseBlockKind(ib.Kind)
		if err != nil {
			return nil, fmt.Errorf("function %s, block %d: %w", fn.Name, ib.Idx, err)
		}
		b := &cfg.BasicBlock{Idx: cfg.Idx(ib.Idx), Kind: kind}
		for _, s := range ib.Succs {
			b.Succs = append(b.Succs, cfg.Idx(s))
		}
		for j, raw := range ib.Stmts {
			stmt, err := decodeStatement(raw, ids)
			if err != nil {
				return nil, fmt.Errorf("function %s, block %d, statement %d: %w", fn.Name, ib.Idx, j, err)
			}
			ast.AddStatement(stmt)
			b.Stmts = append(b.Stmts, stmt.ID())
		}
		blocks = append(blocks, b)
	}
	return cfg.NewCfg(lang.FunctionName(fn.Name), origin, fn.Params, blocks, cfg.Idx(fn.Entry))
}

// recordCallEdges walks every statement of g and adds a call edge for each
// call whose callee resolves to a declared function. Calls to undeclared
// names, such as language builtins with no effect summary, are silently
// skipped; the call graph only answers questions about declared functions.
func recordCallEdges(cg *callgraph.Graph, g *cfg.Cfg, ast *lang.AstStore) error {
	caller, ok := cg.NodeIDByName(string(g.Name))
	if !ok {
		return fmt.Errorf("not declared in the call graph")
	}
	var errs []error
	g.ForEachBasicBlock(ast, func(stmt lang.Statement, _ *cfg.BasicBlock) {
		e := lang.ExprOf(stmt)
		if e == nil {
			return
		}
		for _, call := range lang.Calls(e) {
			name, resolved := calleeName(g, call)
			if !resolved {
				continue
			}
			callee, declared := cg.NodeIDByName(name)
			if !declared {
				continue
			}
			if err := cg.AddEdge(caller, callee, stmt.Loc()); err != nil {
				errs = append(errs, err)
			}
		}
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// calleeName maps a call expression inside g to a qualified function name.
// Static calls use the bare name; method calls on self qualify with the
// enclosing contract, method calls on any other plain identifier qualify with
// that identifier. Calls on computed receivers do not resolve.
func calleeName(g *cfg.Cfg, e lang.Expression) (string, bool) {
	switch call := e.(type) {
	case *lang.ExprStaticCall:
		return call.Func, true
	case *lang.ExprMethodCall:
		recv, ok := call.Recv.(*lang.ExprID)
		if !ok {
			return "", false
		}
		if recv.Name == "self" {
			return g.Name.Contract() + "::" + call.Method, true
		}
		return recv.Name + "::" + call.Method, true
	default:
		return "", false
	}
}

func parseOrigin(s string) (lang.Origin, error) {
	switch s {
	case "", "user":
		return lang.OriginUser, nil
	case "stdlib":
		return lang.OriginStdlib, nil
	default:
		return 0, fmt.Errorf("unknown origin %q", s)
	}
}

func parseBlockKind(s string) (cfg.BlockKind, error) {
	switch s {
	case "", "normal":
		return cfg.BlockNormal, nil
	case "branch":
		return cfg.BlockBranch, nil
	case "loop-head":
		return cfg.BlockLoopHead, nil
	default:
		return 0, fmt.Errorf("unknown block kind %q", s)
	}
}

func parseEffects(names []string) (callgraph.Effect, error) {
	var effects callgraph.Effect
	for _, n := range names {
		switch n {
		case "send":
			effects |= callgraph.EffectSend
		case "state-write":
			effects |= callgraph.EffectStateWrite
		case "terminate":
			effects |= callgraph.EffectTerminate
		default:
			return 0, fmt.Errorf("unknown effect %q", n)
		}
	}
	return effects, nil
}
