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

package analysis

import (
	"fmt"
	"io"

	"github.com/siftlabs/sift/analysis/cfg"
)

// UnitStatistics summarizes the size of a compilation unit.
type UnitStatistics struct {
	NumberOfFunctions         uint
	NumberOfNonemptyFunctions uint
	NumberOfBlocks            uint
	NumberOfStatements        uint
	NumberOfCallGraphNodes    uint
}

// ComputeUnitStatistics walks the compilation unit and counts functions,
// blocks and statements. Standard-library functions are included; the counts
// describe the whole unit, not the subset detectors analyze.
func ComputeUnitStatistics(cu *cfg.CompilationUnit) UnitStatistics {
	stats := cfg.FoldCfgs(cu, UnitStatistics{}, func(acc UnitStatistics, g *cfg.Cfg) UnitStatistics {
		acc.NumberOfFunctions++
		blocks := g.Blocks()
		if len(blocks) > 0 {
			acc.NumberOfNonemptyFunctions++
			for _, b := range blocks {
				acc.NumberOfBlocks++
				acc.NumberOfStatements += uint(len(b.Stmts))
			}
		}
		return acc
	}, true)
	stats.NumberOfCallGraphNodes = uint(cu.CallGraph.Len())
	return stats
}

// Print writes the statistics to w, one figure per line.
func (s UnitStatistics) Print(w io.Writer) {
	fmt.Fprintf(w, "functions:         %d\n", s.NumberOfFunctions)
	fmt.Fprintf(w, "nonempty:          %d\n", s.NumberOfNonemptyFunctions)
	fmt.Fprintf(w, "blocks:            %d\n", s.NumberOfBlocks)
	fmt.Fprintf(w, "statements:        %d\n", s.NumberOfStatements)
	fmt.Fprintf(w, "call-graph nodes:  %d\n", s.NumberOfCallGraphNodes)
}
