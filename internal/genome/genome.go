// Package genome holds the mutable directed graph one network evolves over:
// an ordered node sequence (input block leading, output block trailing,
// hidden in between) plus connection, self-connection and gate collections.
// The graph is mutated in place by the evolution engine; adjacency lists and
// the node sequence are updated atomically within each operation.
package genome

import (
	"errors"
	"fmt"
	"log/slog"
)

type NodeType uint8

const (
	Input NodeType = iota
	Hidden
	Output
)

func (t NodeType) String() string {
	switch t {
	case Input:
		return "input"
	case Hidden:
		return "hidden"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

func NodeTypeFromString(s string) (NodeType, error) {
	switch s {
	case "input":
		return Input, nil
	case "hidden":
		return Hidden, nil
	case "output":
		return Output, nil
	default:
		return 0, fmt.Errorf("unknown node type: %q", s)
	}
}

// Node is one unit in the graph. GeneID is stable across copies of the same
// structural feature and keys innovation lookups.
type Node struct {
	Type       NodeType
	GeneID     int64
	Bias       float64
	Activation string

	In    []*Connection
	Out   []*Connection
	Gated []*Connection
	Self  *Connection
}

// Connection is one directed edge. Gater is owned exclusively by the gating
// primitives; nil means ungated.
type Connection struct {
	From       *Node
	To         *Node
	Gater      *Node
	Weight     float64
	Innovation int64
	Enabled    bool
}

var (
	ErrNodeNotOwned       = errors.New("node does not belong to this genome")
	ErrProtectedNode      = errors.New("cannot remove an input or output node")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrConnectionNotFound = errors.New("connection not found")
)

// Genome owns its nodes and connections. Ordering invariant: the first
// InputCount entries of Nodes are the input nodes and the last OutputCount
// entries are the output nodes, after every structural mutation.
type Genome struct {
	InputCount  int
	OutputCount int

	Nodes     []*Node
	Conns     []*Connection
	SelfConns []*Connection
	Gates     []*Connection

	// Acyclic genomes reject connections that would close a directed cycle.
	Acyclic bool
	Score   float64
	Logger  *slog.Logger

	order []*Node
}

// New builds a genome with the fixed input and output blocks and no
// connections. Input and output gene ids occupy [0, inputs+outputs).
func New(inputs, outputs int) *Genome {
	g := &Genome{
		InputCount:  inputs,
		OutputCount: outputs,
		Nodes:       make([]*Node, 0, inputs+outputs),
	}
	for i := 0; i < inputs; i++ {
		g.Nodes = append(g.Nodes, &Node{Type: Input, GeneID: int64(i), Activation: "identity"})
	}
	for i := 0; i < outputs; i++ {
		g.Nodes = append(g.Nodes, &Node{Type: Output, GeneID: int64(inputs + i), Activation: "sigmoid"})
	}
	return g
}

// OutputStart is the index of the first output node; hidden nodes occupy
// [InputCount, OutputStart).
func (g *Genome) OutputStart() int {
	return len(g.Nodes) - g.OutputCount
}

func (g *Genome) IndexOf(node *Node) int {
	for i, n := range g.Nodes {
		if n == node {
			return i
		}
	}
	return -1
}

func (g *Genome) Contains(node *Node) bool {
	return g.IndexOf(node) >= 0
}

// InsertNodeAt splices node into the sequence at idx. Callers are
// responsible for keeping idx inside the hidden region.
func (g *Genome) InsertNodeAt(idx int, node *Node) {
	g.Nodes = append(g.Nodes, nil)
	copy(g.Nodes[idx+1:], g.Nodes[idx:])
	g.Nodes[idx] = node
	g.ClearCache()
}

// ConnectionCount counts regular plus self connections.
func (g *Genome) ConnectionCount() int {
	return len(g.Conns) + len(g.SelfConns)
}

// ConnectionBetween returns the edge from->to, or nil. Self loops are
// resolved through the node's Self slot.
func (g *Genome) ConnectionBetween(from, to *Node) *Connection {
	if from == to {
		return from.Self
	}
	for _, c := range from.Out {
		if c.To == to {
			return c
		}
	}
	return nil
}

// IsProjectingTo reports whether from has an edge (including a self loop)
// onto to.
func (g *Genome) IsProjectingTo(from, to *Node) bool {
	return g.ConnectionBetween(from, to) != nil
}

// Connect creates the edge from->to. At most one connection may exist per
// ordered pair; self loops are tracked separately on the node.
func (g *Genome) Connect(from, to *Node, weight float64) (*Connection, error) {
	if !g.Contains(from) || !g.Contains(to) {
		return nil, ErrNodeNotOwned
	}
	if g.ConnectionBetween(from, to) != nil {
		return nil, fmt.Errorf("%w: %d->%d", ErrConnectionExists, from.GeneID, to.GeneID)
	}

	conn := &Connection{From: from, To: to, Weight: weight, Enabled: true}
	if from == to {
		from.Self = conn
		g.SelfConns = append(g.SelfConns, conn)
		return conn, nil
	}
	from.Out = append(from.Out, conn)
	to.In = append(to.In, conn)
	g.Conns = append(g.Conns, conn)
	return conn, nil
}

// Disconnect removes the edge from->to, clearing any gate on it first.
func (g *Genome) Disconnect(from, to *Node) error {
	conn := g.ConnectionBetween(from, to)
	if conn == nil {
		return fmt.Errorf("%w: %d->%d", ErrConnectionNotFound, from.GeneID, to.GeneID)
	}
	if conn.Gater != nil {
		g.Ungate(conn)
	}
	if from == to {
		from.Self = nil
		g.SelfConns = removeConnection(g.SelfConns, conn)
		return nil
	}
	from.Out = removeConnection(from.Out, conn)
	to.In = removeConnection(to.In, conn)
	g.Conns = removeConnection(g.Conns, conn)
	return nil
}

// ClearCache drops derived position-dependent state (the activation order).
// Structural operators call it after any shape-changing edit.
func (g *Genome) ClearCache() {
	g.order = nil
}

// ResetState clears transient per-run values before rescoring.
func (g *Genome) ResetState() {
	g.Score = 0
	g.ClearCache()
}

// ActivationOrder returns nodes in dependency order over enabled forward
// edges, computed lazily and cached until the next structural edit. Nodes on
// cycles fall back to sequence order after all resolvable nodes.
func (g *Genome) ActivationOrder() []*Node {
	if g.order != nil {
		return g.order
	}

	indegree := make(map[*Node]int, len(g.Nodes))
	for _, n := range g.Nodes {
		indegree[n] = 0
	}
	for _, c := range g.Conns {
		if c.Enabled {
			indegree[c.To]++
		}
	}

	queue := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]*Node, 0, len(g.Nodes))
	seen := make(map[*Node]bool, len(g.Nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		seen[n] = true
		for _, c := range n.Out {
			if !c.Enabled {
				continue
			}
			indegree[c.To]--
			if indegree[c.To] == 0 {
				queue = append(queue, c.To)
			}
		}
	}
	for _, n := range g.Nodes {
		if !seen[n] {
			order = append(order, n)
		}
	}

	g.order = order
	return g.order
}

func (g *Genome) logf(msg string, args ...any) {
	if g.Logger != nil {
		g.Logger.Debug(msg, args...)
	}
}

func removeConnection(conns []*Connection, target *Connection) []*Connection {
	for i, c := range conns {
		if c == target {
			return append(conns[:i], conns[i+1:]...)
		}
	}
	return conns
}
