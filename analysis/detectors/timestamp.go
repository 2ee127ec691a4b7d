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
	"fmt"

	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/dataflow"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
	"github.com/siftlabs/sift/internal/funcutil"
)

// timeSources are the free functions whose results are considered insecure
// time sources: block timestamps are chosen by validators and must not gate
// value transfers.
var timeSources = []string{"now", "timestamp"}

// Timestamp reports conditions that depend on a value derived from an
// insecure time source. It runs a forward taint analysis per function with
// the string-set lattice: a variable is tainted when its definition reads
// now() directly or reads an already-tainted variable.
type Timestamp struct{}

// Name implements Detector.
func (*Timestamp) Name() string { return "timestamp-dependence" }

// Check implements Detector.
func (d *Timestamp) Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	var warnings []reports.Warning
	cu.ForEachCfg(func(g *cfg.Cfg) {
		logger.Tracef("%s: analyzing %s", d.Name(), g.Name)
		warnings = append(warnings, d.checkCfg(cu, g, conf, logger)...)
	}, conf.IncludeStdlib)
	return warnings
}

func (d *Timestamp) checkCfg(cu *cfg.CompilationUnit, g *cfg.Cfg, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	lat := dataflow.StringSetLattice{}
	res, err := solveWithin[dataflow.StringSet](conf, cu, g, dataflow.TransferFunc[dataflow.StringSet](taintTransfer), lat, dataflow.Forward)
	if err != nil {
		logger.Errorf("%s: %s: %s", d.Name(), g.Name, err)
		return nil
	}

	// Replay each block from its in-state to correlate per-statement taint
	// with the conditions it reaches.
	var warnings []reports.Warning
	for _, block := range g.Blocks() {
		state := lat.Bottom()
		for _, p := range block.Preds {
			if s, ok := res.GetState(p); ok {
				state = lat.Join(state, s)
			}
		}
		for _, id := range block.Stmts {
			stmt, ok := cu.Ast.Statement(id)
			if !ok {
				continue
			}
			if cond, isCond := stmt.(*lang.StmtCondition); isCond {
				for _, name := range lang.Idents(cond.Cond) {
					if state[name] {
						warnings = append(warnings, reports.Warning{
							Detector: d.Name(),
							Severity: reports.Medium,
							Msg:      fmt.Sprintf("condition depends on %q, which is derived from the block timestamp", name),
							Loc:      stmt.Loc(),
						})
					}
				}
				if taintedExpr(dataflow.StringSet{}, cond.Cond) {
					warnings = append(warnings, reports.Warning{
						Detector: d.Name(),
						Severity: reports.Medium,
						Msg:      "condition reads the block timestamp directly",
						Loc:      stmt.Loc(),
					})
				}
			}
			state = taintTransfer(state, block, stmt)
		}
	}
	return warnings
}

// taintTransfer is the gen/kill rule of the taint analysis: a let or assign
// taints its target when the right-hand side reads a time source or a tainted
// variable, and untaints it otherwise. All other statement kinds are no-ops.
// The kill set of a statement is fixed, so the transfer is monotone.
func taintTransfer(in dataflow.StringSet, _ *cfg.BasicBlock, stmt lang.Statement) dataflow.StringSet {
	switch s := stmt.(type) {
	case *lang.StmtLet:
		if taintedExpr(in, s.Init) {
			return dataflow.WithStrings(in, s.Name)
		}
		return dataflow.WithoutString(in, s.Name)
	case *lang.StmtAssign:
		if taintedExpr(in, s.Value) {
			return dataflow.WithStrings(in, s.Target)
		}
		return dataflow.WithoutString(in, s.Target)
	default:
		return in
	}
}

// taintedExpr returns true when e reads a time source or a tainted variable.
func taintedExpr(tainted dataflow.StringSet, e lang.Expression) bool {
	if funcutil.Exists(timeSources, func(src string) bool { return lang.HasStaticCall(e, src) }) {
		return true
	}
	return funcutil.Exists(lang.Idents(e), func(name string) bool { return tainted[name] })
}
