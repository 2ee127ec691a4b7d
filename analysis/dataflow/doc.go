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

// Package dataflow implements the generic monotone-framework fixpoint engine
// shared by all flow-sensitive detectors.
//
// A detector plugs into the engine by supplying two things: a
// [JoinSemilattice] describing its abstract state domain, and a [Transfer]
// function describing how a single statement updates that state. The engine
// ([Solve]) runs classic worklist iteration over the basic blocks of one
// control-flow graph, joining states at merge points, until no block's state
// changes. The result maps every basic-block index to the fixpoint state at
// the block's exit (entry for backward analyses).
//
// The engine guarantees a deterministic result for a deterministic transfer
// function: by monotonicity and join-based convergence the final states do not
// depend on the order in which the worklist is processed. It does not guard
// against ill-behaved lattices; a join that is not a least upper bound, or a
// transfer function that is not monotone, can prevent termination. That
// contract is on the implementer, checked by unit tests per detector rather
// than at runtime. Callers that want a hard bound anyway can use
// [SolveBounded], which gives up with [ErrNoConvergence] after a fixed number
// of transfer applications.
//
// Everything in this package is a pure computation over in-memory structures:
// no I/O, no logging, no shared mutable state across invocations.
package dataflow
