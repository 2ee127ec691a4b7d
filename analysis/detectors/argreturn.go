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

// UnsavedArgMutation reports assignments to function parameters whose new
// value is never read afterwards. Arguments are passed by value, so such a
// mutation is invisible to the caller and the write is dead; the author
// probably meant to return the value or write it to contract state.
type UnsavedArgMutation struct{}

// Name implements Detector.
func (*UnsavedArgMutation) Name() string { return "unsaved-argument-mutation" }

// Check implements Detector.
func (d *UnsavedArgMutation) Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	var warnings []reports.Warning
	cu.ForEachCfg(func(g *cfg.Cfg) {
		if len(g.Params) == 0 {
			return
		}
		logger.Tracef("%s: analyzing %s", d.Name(), g.Name)
		warnings = append(warnings, d.checkCfg(cu, g, conf, logger)...)
	}, conf.IncludeStdlib)
	return warnings
}

func (d *UnsavedArgMutation) checkCfg(cu *cfg.CompilationUnit, g *cfg.Cfg, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	lat := dataflow.StringSetLattice{}
	res, err := solveWithin[dataflow.StringSet](conf, cu, g, dataflow.TransferFunc[dataflow.StringSet](liveTransfer), lat, dataflow.Backward)
	if err != nil {
		logger.Errorf("%s: %s: %s", d.Name(), g.Name, err)
		return nil
	}

	params := dataflow.NewStringSet(g.Params...)
	var warnings []reports.Warning
	for _, block := range g.Blocks() {
		// Liveness at block exit is the join of the successors' entry states.
		live := lat.Bottom()
		for _, s := range block.Succs {
			if st, ok := res.GetState(s); ok {
				live = lat.Join(live, st)
			}
		}
		// Walk the block backwards; live holds the names read after the
		// statement under inspection.
		for _, id := range funcutil.Reversed(block.Stmts) {
			stmt, ok := cu.Ast.Statement(id)
			if !ok {
				continue
			}
			if assign, isAssign := stmt.(*lang.StmtAssign); isAssign {
				if params[assign.Target] && !live[assign.Target] {
					warnings = append(warnings, reports.Warning{
						Detector: d.Name(),
						Severity: reports.Medium,
						Msg:      fmt.Sprintf("assignment to argument %q is lost: arguments are passed by value and the new value is never read", assign.Target),
						Loc:      stmt.Loc(),
					})
				}
			}
			live = liveTransfer(live, block, stmt)
		}
	}
	return warnings
}

// liveTransfer is the classic liveness rule: definitions kill their target,
// every read generates its identifiers.
func liveTransfer(liveAfter dataflow.StringSet, _ *cfg.BasicBlock, stmt lang.Statement) dataflow.StringSet {
	switch s := stmt.(type) {
	case *lang.StmtLet:
		return dataflow.WithStrings(dataflow.WithoutString(liveAfter, s.Name), lang.Idents(s.Init)...)
	case *lang.StmtAssign:
		return dataflow.WithStrings(dataflow.WithoutString(liveAfter, s.Target), lang.Idents(s.Value)...)
	case *lang.StmtExpr:
		return dataflow.WithStrings(liveAfter, lang.Idents(s.X)...)
	case *lang.StmtCondition:
		return dataflow.WithStrings(liveAfter, lang.Idents(s.Cond)...)
	case *lang.StmtReturn:
		if s.Value == nil {
			return liveAfter
		}
		return dataflow.WithStrings(liveAfter, lang.Idents(s.Value)...)
	default:
		return liveAfter
	}
}
