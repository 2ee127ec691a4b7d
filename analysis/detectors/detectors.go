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

// Package detectors holds the analysis passes that consume the dataflow,
// call-graph and interval APIs and turn computed facts into warnings. Each
// detector is independent; the driver runs them sequentially over a shared
// read-only compilation unit.
package detectors

import (
	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/dataflow"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
	"github.com/siftlabs/sift/internal/funcutil"
)

// Detector is a single analysis pass.
type Detector interface {
	// Name is the identifier used in configuration files and reports.
	Name() string

	// Check runs the pass over the compilation unit and returns its findings.
	// Check must not mutate the compilation unit.
	Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning
}

// All returns the registered detectors in a fixed order.
func All() []Detector {
	return []Detector{
		&Timestamp{},
		&DivByZero{},
		&SendInLoop{},
		&Recursion{},
		&UnsavedArgMutation{},
	}
}

// ByName returns the registered detector with the given name.
func ByName(name string) funcutil.Optional[Detector] {
	return funcutil.FindMap(All(),
		func(d Detector) Detector { return d },
		func(d Detector) bool { return d.Name() == name })
}

// solveWithin runs the fixpoint solver, honoring the configured iteration
// budget when one is set.
func solveWithin[S any](conf *config.Config, cu *cfg.CompilationUnit, g *cfg.Cfg, tr dataflow.Transfer[S],
	lat dataflow.JoinSemilattice[S], dir dataflow.Direction) (*dataflow.Result[S], error) {
	if conf.MaxSolverSteps > 0 {
		return dataflow.SolveBounded(cu, g, tr, lat, dir, conf.MaxSolverSteps)
	}
	return dataflow.Solve(cu, g, tr, lat, dir), nil
}

// resolveCallee maps a call expression inside the function g to a call-graph
// node. Static calls resolve by bare name; method calls on self resolve to
// the enclosing contract's qualified name. Unresolvable callees return false
// and callers conservatively assume no special effect.
func resolveCallee(cu *cfg.CompilationUnit, g *cfg.Cfg, e lang.Expression) (*callgraph.Node, bool) {
	var qualified string
	switch call := e.(type) {
	case *lang.ExprStaticCall:
		qualified = call.Func
	case *lang.ExprMethodCall:
		recv, ok := call.Recv.(*lang.ExprID)
		if !ok {
			return nil, false
		}
		if recv.Name == "self" {
			qualified = g.Name.Contract() + "::" + call.Method
		} else {
			qualified = recv.Name + "::" + call.Method
		}
	default:
		return nil, false
	}
	id, ok := cu.CallGraph.NodeIDByName(qualified)
	if !ok {
		return nil, false
	}
	return cu.CallGraph.Node(id)
}
