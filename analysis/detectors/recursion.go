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
	"strings"

	"github.com/siftlabs/sift/analysis/callgraph"
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
	"github.com/siftlabs/sift/internal/graphutil"
)

// Recursion reports call cycles. Recursion is legal but every frame costs
// gas, so unbounded recursion aborts the transaction; the finding is
// informational and points at the full cycle.
type Recursion struct{}

// Name implements Detector.
func (*Recursion) Name() string { return "recursion" }

// Check implements Detector.
func (d *Recursion) Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	it := graphutil.NewCallgraphIterator(cu.CallGraph)
	cycles := graphutil.FindAllElementaryCycles(it)
	logger.Debugf("%s: %d elementary cycles of length >= 2", d.Name(), len(cycles))

	var warnings []reports.Warning
	for _, cycle := range cycles {
		if w, ok := d.cycleWarning(cu, cycle); ok {
			warnings = append(warnings, w)
		}
	}
	// The cycle enumeration works on strong components of size >= 2, so
	// direct self-recursion is found separately on the out-edges.
	for _, node := range cu.CallGraph.Nodes() {
		for _, e := range node.Out {
			if e.Callee == node.ID {
				warnings = append(warnings, reports.Warning{
					Detector: d.Name(),
					Severity: reports.Info,
					Msg:      fmt.Sprintf("%s calls itself", node.Name),
					Loc:      e.Site,
				})
				break
			}
		}
	}
	return warnings
}

// cycleWarning renders one elementary cycle as a warning. The cycle is a node
// id sequence whose first and last elements coincide; the location is the
// call site of the cycle's first edge.
func (d *Recursion) cycleWarning(cu *cfg.CompilationUnit, cycle []int64) (reports.Warning, bool) {
	if len(cycle) < 2 {
		return reports.Warning{}, false
	}
	names := make([]string, 0, len(cycle))
	nodes := make([]*callgraph.Node, 0, len(cycle))
	for _, id := range cycle {
		node, ok := cu.CallGraph.Node(callgraph.NodeID(id))
		if !ok {
			return reports.Warning{}, false
		}
		names = append(names, node.Name)
		nodes = append(nodes, node)
	}
	loc := lang.SrcLoc{}
	for _, e := range nodes[0].Out {
		if e.Callee == nodes[1].ID {
			loc = e.Site
			break
		}
	}
	return reports.Warning{
		Detector: d.Name(),
		Severity: reports.Info,
		Msg:      fmt.Sprintf("call cycle: %s", strings.Join(names, " -> ")),
		Loc:      loc,
	}, true
}
