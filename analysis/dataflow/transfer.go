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

package dataflow

import (
	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/lang"
)

// Transfer is the per-statement state-update rule a detector implements to
// encode its specific analysis.
//
// Transfer must be pure and total: the same inputs always produce the same
// output, the input state is never mutated, and every statement kind the
// language grammar can produce is handled. Statement kinds irrelevant to the
// analysis must return the input state unchanged. Transfer must also be
// monotone with respect to the lattice's Leq; a non-monotone transfer can
// prevent the solver from terminating.
type Transfer[S any] interface {
	Transfer(in S, block *cfg.BasicBlock, stmt lang.Statement) S
}

// TransferFunc adapts an ordinary function to the Transfer interface.
type TransferFunc[S any] func(in S, block *cfg.BasicBlock, stmt lang.Statement) S

// Transfer implements Transfer[S].
func (f TransferFunc[S]) Transfer(in S, block *cfg.BasicBlock, stmt lang.Statement) S {
	return f(in, block, stmt)
}
