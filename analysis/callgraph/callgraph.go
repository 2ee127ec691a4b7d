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

// Package callgraph implements the whole-program call graph with effect
// summaries. Detectors use it to answer "can control reach a node with effect
// E from node N, possibly transitively" without re-walking the AST per query.
// Recursive call chains are legal inputs, so every traversal here is iterative
// and guarded by a visited set.
package callgraph

import (
	"fmt"

	"github.com/siftlabs/sift/analysis/lang"
	"golang.org/x/tools/container/intsets"
)

// NodeID identifies a node in the call graph.
type NodeID uint32

// Effect is a summary flag describing a category of externally-visible action
// a function performs. Effects form a small closed set encoded as bit flags.
type Effect uint8

const (
	// EffectSend marks functions that send an outgoing message.
	EffectSend Effect = 1 << iota
	// EffectStateWrite marks functions that write persistent contract state.
	EffectStateWrite
	// EffectTerminate marks functions that unconditionally abort the
	// transaction, such as assertion builtins.
	EffectTerminate
)

func (e Effect) String() string {
	switch e {
	case EffectSend:
		return "send"
	case EffectStateWrite:
		return "state-write"
	case EffectTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("effect(%d)", uint8(e))
	}
}

// Edge is a call-site edge from a caller to a callee.
type Edge struct {
	Callee NodeID
	Site   lang.SrcLoc
}

// Node is one function, method or receiver in the call graph.
type Node struct {
	// ID is the identity of the node within its graph.
	ID NodeID

	// Name is the human-readable qualified name, "Contract::method" for
	// methods or the bare name for free functions.
	Name string

	// Out lists the outgoing call edges in insertion order.
	Out []Edge

	effects Effect
}

// HasEffect returns true when the node's summary carries the effect. After
// Finalize, summaries include the effects of all transitively reachable
// callees.
func (n *Node) HasEffect(e Effect) bool {
	return n.effects&e != 0
}

// HasAnyEffect returns true when the node's summary carries at least one of
// the effects.
func (n *Node) HasAnyEffect(effects ...Effect) bool {
	for _, e := range effects {
		if n.HasEffect(e) {
			return true
		}
	}
	return false
}

// Effects returns the raw effect flags of the node.
func (n *Node) Effects() Effect {
	return n.effects
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Name, n.ID)
}

// Graph is the whole-program call graph. Build it with AddNode/AddEdge, then
// call Finalize before querying effects; the graph is read-only afterwards.
type Graph struct {
	nodes     []*Node
	byName    map[string]NodeID
	finalized bool
}

// NewGraph returns an empty call graph.
func NewGraph() *Graph {
	return &Graph{byName: map[string]NodeID{}}
}

// AddNode adds a node with the given qualified name and the effects of the
// node's own body (not of its callees). Adding a name twice returns the
// existing node's id and ORs in the effects.
func (g *Graph) AddNode(name string, effects Effect) NodeID {
	if id, ok := g.byName[name]; ok {
		g.nodes[id].effects |= effects
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Name: name, effects: effects})
	g.byName[name] = id
	return id
}

// AddEdge records a call from caller to callee at the given source location.
func (g *Graph) AddEdge(caller, callee NodeID, site lang.SrcLoc) error {
	if int(caller) >= len(g.nodes) || int(callee) >= len(g.nodes) {
		return fmt.Errorf("callgraph: edge %d -> %d references unknown node", caller, callee)
	}
	g.nodes[caller].Out = append(g.nodes[caller].Out, Edge{Callee: callee, Site: site})
	return nil
}

// NodeIDByName returns the id of the node with the given qualified name, and
// false when the graph holds none. Callers must handle unresolved callees
// gracefully, typically by assuming no special effect.
func (g *Graph) NodeIDByName(qualifiedName string) (NodeID, bool) {
	id, ok := g.byName[qualifiedName]
	return id, ok
}

// Node returns the node with the given id, and false when none exists.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Nodes returns all nodes in id order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Finalize propagates effects along call edges until fixpoint, so that a
// node's summary reflects the effects of itself and every transitively
// reachable callee. Effect flags only grow, so the iteration terminates even
// on cyclic graphs.
func (g *Graph) Finalize() {
	changed := true
	for changed {
		changed = false
		for _, n := range g.nodes {
			for _, e := range n.Out {
				callee := g.nodes[e.Callee]
				if merged := n.effects | callee.effects; merged != n.effects {
					n.effects = merged
					changed = true
				}
			}
		}
	}
	g.finalized = true
}

// AreConnected returns true when there is a call path from the node from to
// the node to. The walk is an iterative breadth-first search over a sparse
// visited set, so recursive call chains cannot cause unbounded traversal.
func (g *Graph) AreConnected(from, to NodeID) bool {
	if int(from) >= len(g.nodes) || int(to) >= len(g.nodes) {
		return false
	}
	var visited intsets.Sparse
	queue := []NodeID{from}
	visited.Insert(int(from))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.nodes[cur].Out {
			if e.Callee == to {
				return true
			}
			if visited.Insert(int(e.Callee)) {
				queue = append(queue, e.Callee)
			}
		}
	}
	return false
}

// ReachesEffect returns true when some node reachable from id (including id
// itself) has the effect in its own body summary or, after Finalize, in its
// transitive summary.
func (g *Graph) ReachesEffect(id NodeID, e Effect) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	if n.HasEffect(e) {
		return true
	}
	if g.finalized {
		return false
	}
	// Not finalized: fall back to an explicit traversal.
	var visited intsets.Sparse
	queue := []NodeID{id}
	visited.Insert(int(id))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.nodes[cur].HasEffect(e) {
			return true
		}
		for _, edge := range g.nodes[cur].Out {
			if visited.Insert(int(edge.Callee)) {
				queue = append(queue, edge.Callee)
			}
		}
	}
	return false
}
