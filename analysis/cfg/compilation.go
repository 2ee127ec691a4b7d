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

	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/lang"
)

// CompilationUnit aggregates all the CFGs of a program together with the AST
// store and the call graph. It is built once per analysis run and shared
// read-only across all detectors; no detector may mutate it.
type CompilationUnit struct {
	// Ast resolves statement references held by basic blocks.
	Ast *lang.AstStore

	// CallGraph is the whole-program call graph with effect summaries.
	CallGraph *callgraph.Graph

	cfgs   []*Cfg
	byName map[lang.FunctionName]*Cfg
}

// NewCompilationUnit assembles a compilation unit from its parts. The order of
// cfgs is preserved and determines the iteration order of ForEachCfg.
func NewCompilationUnit(ast *lang.AstStore, cg *callgraph.Graph, cfgs []*Cfg) (*CompilationUnit, error) {
	byName := make(map[lang.FunctionName]*Cfg, len(cfgs))
	for _, g := range cfgs {
		if _, dup := byName[g.Name]; dup {
			return nil, fmt.Errorf("duplicate cfg for function %s", g.Name)
		}
		byName[g.Name] = g
	}
	return &CompilationUnit{Ast: ast, CallGraph: cg, cfgs: cfgs, byName: byName}, nil
}

// CfgByName returns the control-flow graph of the named function, and false
// when the unit holds none.
func (cu *CompilationUnit) CfgByName(name lang.FunctionName) (*Cfg, bool) {
	g, ok := cu.byName[name]
	return g, ok
}

// ForEachCfg calls f on every Cfg of the unit in construction order. When
// includeStdlib is false, standard-library functions are skipped.
func (cu *CompilationUnit) ForEachCfg(f func(*Cfg), includeStdlib bool) {
	for _, g := range cu.cfgs {
		if !includeStdlib && g.Origin == lang.OriginStdlib {
			continue
		}
		f(g)
	}
}

// FoldCfgs folds f over the CFGs of the unit in construction order, starting
// from init. When includeStdlib is false, standard-library functions are
// skipped.
func FoldCfgs[T any](cu *CompilationUnit, init T, f func(T, *Cfg) T, includeStdlib bool) T {
	acc := init
	cu.ForEachCfg(func(g *Cfg) {
		acc = f(acc, g)
	}, includeStdlib)
	return acc
}
