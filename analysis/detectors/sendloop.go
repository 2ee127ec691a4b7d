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

	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
)

// SendInLoop reports message sends inside loop bodies. Sends carry a fee per
// message, so an attacker-controlled loop bound can drain a contract's
// balance. A call site counts as a send when its callee transitively reaches
// a node with the Send effect in the call graph.
type SendInLoop struct{}

// Name implements Detector.
func (*SendInLoop) Name() string { return "send-in-loop" }

// Check implements Detector.
func (d *SendInLoop) Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	var warnings []reports.Warning
	cu.ForEachCfg(func(g *cfg.Cfg) {
		logger.Tracef("%s: analyzing %s", d.Name(), g.Name)
		warnings = append(warnings, d.checkCfg(cu, g)...)
	}, conf.IncludeStdlib)
	return warnings
}

func (d *SendInLoop) checkCfg(cu *cfg.CompilationUnit, g *cfg.Cfg) []reports.Warning {
	var warnings []reports.Warning
	flagged := map[lang.NodeID]bool{}
	for _, head := range g.Blocks() {
		if head.Kind != cfg.BlockLoopHead {
			continue
		}
		for _, body := range loopBody(g, head) {
			for _, id := range body.Stmts {
				stmt, ok := cu.Ast.Statement(id)
				if !ok || flagged[id] {
					continue
				}
				e := lang.ExprOf(stmt)
				if e == nil {
					continue
				}
				for _, call := range lang.Calls(e) {
					node, resolved := resolveCallee(cu, g, call)
					if !resolved {
						// Unknown callee: assume no send rather than guess.
						continue
					}
					if node.HasEffect(callgraph.EffectSend) {
						flagged[id] = true
						warnings = append(warnings, reports.Warning{
							Detector: d.Name(),
							Severity: reports.Medium,
							Msg:      fmt.Sprintf("message send via %s inside a loop", node.Name),
							Loc:      stmt.Loc(),
						})
						break
					}
				}
			}
		}
	}
	return warnings
}

// loopBody returns the blocks on a cycle through the loop header: blocks
// reachable from the header that can reach the header again. This includes
// the header itself and excludes the code after the loop exit.
func loopBody(g *cfg.Cfg, head *cfg.BasicBlock) []*cfg.BasicBlock {
	fromHead := g.ReachableFrom(head.Idx)
	var body []*cfg.BasicBlock
	for _, b := range g.Blocks() {
		if !fromHead[b.Idx] {
			continue
		}
		if g.ReachableFrom(b.Idx)[head.Idx] {
			body = append(body, b)
		}
	}
	return body
}
