package evo

import (
	"fmt"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

// applyGeneric handles the operators that need no innovation reuse beyond a
// ledger lookup on edge creation. Each handler returns false when the genome
// offers no legal target, which is not an error.
func (e *Engine) applyGeneric(g *genome.Genome, kind OpKind) (bool, error) {
	switch kind {
	case OpModWeight:
		return e.modWeight(g), nil
	case OpModBias:
		return e.modBias(g), nil
	case OpModActivation:
		return e.modActivation(g), nil
	case OpSubConn:
		return e.subConnection(g)
	case OpAddSelfConn:
		return e.addSelfConnection(g)
	case OpSubSelfConn:
		return e.subSelfConnection(g)
	case OpAddBackConn:
		return e.addBackConnection(g)
	case OpSubBackConn:
		return e.subBackConnection(g)
	case OpAddGate:
		return e.addGate(g)
	case OpSubGate:
		return e.subGate(g)
	case OpSubNode:
		return e.subNode(g)
	case OpSwapNodes:
		return e.swapNodes(g), nil
	default:
		return false, fmt.Errorf("no handler for operator %s", kind)
	}
}

func (e *Engine) modWeight(g *genome.Genome) bool {
	total := len(g.Conns) + len(g.SelfConns)
	if total == 0 {
		return false
	}
	idx := e.rng.Intn(total)
	var c *genome.Connection
	if idx < len(g.Conns) {
		c = g.Conns[idx]
	} else {
		c = g.SelfConns[idx-len(g.Conns)]
	}
	c.Weight += (e.rng.Float64()*2 - 1) * e.cfg.Mutation.WeightPerturb
	return true
}

func (e *Engine) modBias(g *genome.Genome) bool {
	if g.InputCount >= len(g.Nodes) {
		return false
	}
	n := g.Nodes[g.InputCount+e.rng.Intn(len(g.Nodes)-g.InputCount)]
	n.Bias += (e.rng.Float64()*2 - 1) * e.cfg.Mutation.WeightPerturb
	return true
}

func (e *Engine) modActivation(g *genome.Genome) bool {
	if g.InputCount >= len(g.Nodes) {
		return false
	}
	n := g.Nodes[g.InputCount+e.rng.Intn(len(g.Nodes)-g.InputCount)]
	options := make([]string, 0, len(e.cfg.Activations))
	for _, name := range e.cfg.Activations {
		if name != n.Activation {
			options = append(options, name)
		}
	}
	if len(options) == 0 {
		return false
	}
	n.Activation = options[e.rng.Intn(len(options))]
	return true
}

// subConnection removes one edge whose endpoints stay connected without it.
func (e *Engine) subConnection(g *genome.Genome) (bool, error) {
	removable := make([]*genome.Connection, 0, len(g.Conns))
	for _, c := range g.Conns {
		if len(c.From.Out) > 1 && len(c.To.In) > 1 {
			removable = append(removable, c)
		}
	}
	if len(removable) == 0 {
		return false, nil
	}
	c := removable[e.rng.Intn(len(removable))]
	if err := g.Disconnect(c.From, c.To); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) addSelfConnection(g *genome.Genome) (bool, error) {
	candidates := make([]*genome.Node, 0)
	for _, n := range g.Nodes[g.InputCount:] {
		if n.Self == nil {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	n := candidates[e.rng.Intn(len(candidates))]
	conn, err := g.Connect(n, n, e.rng.Float64()*2-1)
	if err != nil {
		return false, err
	}
	conn.Innovation = e.ledger.RecordConnection(n.GeneID, n.GeneID)
	return true, nil
}

func (e *Engine) subSelfConnection(g *genome.Genome) (bool, error) {
	if len(g.SelfConns) == 0 {
		return false, nil
	}
	c := g.SelfConns[e.rng.Intn(len(g.SelfConns))]
	if err := g.Disconnect(c.From, c.To); err != nil {
		return false, err
	}
	return true, nil
}

// addBackConnection wires a node to an earlier non-input node, creating a
// recurrent edge in sequence order.
func (e *Engine) addBackConnection(g *genome.Genome) (bool, error) {
	type pair struct{ from, to *genome.Node }
	candidates := make([]pair, 0)
	for i := g.InputCount + 1; i < len(g.Nodes); i++ {
		for j := g.InputCount; j < i; j++ {
			from, to := g.Nodes[i], g.Nodes[j]
			if !g.IsProjectingTo(from, to) {
				candidates = append(candidates, pair{from, to})
			}
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	p := candidates[e.rng.Intn(len(candidates))]
	conn, err := g.Connect(p.from, p.to, e.rng.Float64()*2-1)
	if err != nil {
		return false, err
	}
	conn.Innovation = e.ledger.RecordConnection(p.from.GeneID, p.to.GeneID)
	return true, nil
}

func (e *Engine) subBackConnection(g *genome.Genome) (bool, error) {
	removable := make([]*genome.Connection, 0)
	for _, c := range g.Conns {
		if g.IndexOf(c.From) > g.IndexOf(c.To) {
			removable = append(removable, c)
		}
	}
	if len(removable) == 0 {
		return false, nil
	}
	c := removable[e.rng.Intn(len(removable))]
	if err := g.Disconnect(c.From, c.To); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) addGate(g *genome.Genome) (bool, error) {
	ungated := make([]*genome.Connection, 0, len(g.Conns)+len(g.SelfConns))
	for _, c := range g.Conns {
		if c.Gater == nil {
			ungated = append(ungated, c)
		}
	}
	for _, c := range g.SelfConns {
		if c.Gater == nil {
			ungated = append(ungated, c)
		}
	}
	if len(ungated) == 0 || g.InputCount >= len(g.Nodes) {
		return false, nil
	}
	conn := ungated[e.rng.Intn(len(ungated))]
	gater := g.Nodes[g.InputCount+e.rng.Intn(len(g.Nodes)-g.InputCount)]
	if err := g.Gate(gater, conn); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) subGate(g *genome.Genome) (bool, error) {
	if len(g.Gates) == 0 {
		return false, nil
	}
	g.Ungate(g.Gates[e.rng.Intn(len(g.Gates))])
	return true, nil
}

func (e *Engine) subNode(g *genome.Genome) (bool, error) {
	hidden := make([]*genome.Node, 0)
	for _, n := range g.Nodes {
		if n.Type == genome.Hidden {
			hidden = append(hidden, n)
		}
	}
	if len(hidden) == 0 {
		return false, nil
	}
	node := hidden[e.rng.Intn(len(hidden))]
	if err := g.RemoveNode(node, e.cfg.Mutation.PreserveGates); err != nil {
		return false, err
	}
	return true, nil
}

// swapNodes exchanges bias and activation between two hidden nodes, leaving
// the topology untouched.
func (e *Engine) swapNodes(g *genome.Genome) bool {
	hidden := make([]*genome.Node, 0)
	for _, n := range g.Nodes {
		if n.Type == genome.Hidden {
			hidden = append(hidden, n)
		}
	}
	if len(hidden) < 2 {
		return false
	}
	i := e.rng.Intn(len(hidden))
	j := e.rng.Intn(len(hidden) - 1)
	if j >= i {
		j++
	}
	a, b := hidden[i], hidden[j]
	a.Bias, b.Bias = b.Bias, a.Bias
	a.Activation, b.Activation = b.Activation, a.Activation
	return true
}
