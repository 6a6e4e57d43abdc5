package evo

import (
	"errors"
	"math/rand"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
)

// The reuse-aware structural operators consult the innovation ledger so that
// structurally identical edits in different lineages carry identical
// historical identifiers.

const defaultHiddenActivation = "sigmoid"

// SplitConnection inserts a hidden node in the middle of one enabled
// connection. The chosen connection is removed and replaced by
// source->node (weight 1) and node->target (original weight); a gater on
// the split connection transfers to the in-edge. Identities come from the
// ledger: a previously seen gene-pair reuses its record, anything else
// mints fresh ids. Returns false without error when no split target exists.
func SplitConnection(g *genome.Genome, ledger *innovation.Ledger, rng *rand.Rand) (bool, error) {
	if g == nil || ledger == nil || rng == nil {
		return false, errors.New("genome, ledger and random source are required")
	}

	if g.ConnectionCount() == 0 {
		// Seed one input->output edge so young genomes still have a target.
		from := g.Nodes[0]
		to := g.Nodes[g.OutputStart()]
		conn, err := g.Connect(from, to, rng.Float64()*2-1)
		if err != nil {
			return false, err
		}
		conn.Innovation = ledger.RecordConnection(from.GeneID, to.GeneID)
	}

	enabled := make([]*genome.Connection, 0, len(g.Conns))
	for _, c := range g.Conns {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		return false, nil
	}

	target := enabled[rng.Intn(len(enabled))]
	from, to := target.From, target.To
	weight, gater := target.Weight, target.Gater
	if err := g.Disconnect(from, to); err != nil {
		return false, err
	}

	rec := ledger.RecordSplit(from.GeneID, to.GeneID)
	node := &genome.Node{Type: genome.Hidden, GeneID: rec.NodeGene, Activation: defaultHiddenActivation}

	idx := g.IndexOf(to)
	if limit := g.OutputStart(); idx > limit {
		idx = limit
	}
	g.InsertNodeAt(idx, node)

	inEdge, err := g.Connect(from, node, 1)
	if err != nil {
		return false, err
	}
	outEdge, err := g.Connect(node, to, weight)
	if err != nil {
		return false, err
	}
	inEdge.Innovation = rec.InInnovation
	outEdge.Innovation = rec.OutInnovation

	if gater != nil {
		if err := g.Gate(gater, inEdge); err != nil {
			return false, err
		}
	}
	g.ClearCache()
	return true, nil
}

// AddConnection wires one currently unconnected forward pair. Candidates
// keep the ordering invariant: the source sits before the output block and
// the target at or past the input block, strictly downstream of the source.
// Pairs with ledger history are preferred; failing that, hidden-to-hidden
// pairs bias growth internally. In acyclic genomes a pair whose target
// already reaches the source is rejected as a no-op.
func AddConnection(g *genome.Genome, ledger *innovation.Ledger, rng *rand.Rand) (bool, error) {
	if g == nil || ledger == nil || rng == nil {
		return false, errors.New("genome, ledger and random source are required")
	}

	type pair struct{ from, to int }
	candidates := make([]pair, 0)
	outputStart := g.OutputStart()
	for i := 0; i < outputStart; i++ {
		lo := i + 1
		if lo < g.InputCount {
			lo = g.InputCount
		}
		for j := lo; j < len(g.Nodes); j++ {
			if !g.IsProjectingTo(g.Nodes[i], g.Nodes[j]) {
				candidates = append(candidates, pair{from: i, to: j})
			}
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	pool := candidates
	reuse := make([]pair, 0, len(candidates))
	for _, p := range candidates {
		if _, ok := ledger.ConnectionFor(g.Nodes[p.from].GeneID, g.Nodes[p.to].GeneID); ok {
			reuse = append(reuse, p)
		}
	}
	if len(reuse) > 0 {
		pool = reuse
	} else {
		hidden := make([]pair, 0, len(candidates))
		for _, p := range candidates {
			if g.Nodes[p.from].Type == genome.Hidden && g.Nodes[p.to].Type == genome.Hidden {
				hidden = append(hidden, p)
			}
		}
		if len(hidden) > 0 {
			pool = hidden
		}
	}

	chosen := pool[0]
	if len(pool) > 1 {
		chosen = pool[rng.Intn(len(pool))]
	}

	from, to := g.Nodes[chosen.from], g.Nodes[chosen.to]
	if g.Acyclic && reaches(to, from) {
		return false, nil
	}

	conn, err := g.Connect(from, to, rng.Float64()*2-1)
	if err != nil {
		return false, err
	}
	conn.Innovation = ledger.RecordConnection(from.GeneID, to.GeneID)
	g.ClearCache()
	return true, nil
}

// reaches walks outgoing edges from start and reports whether target is
// reachable.
func reaches(start, target *genome.Node) bool {
	if start == target {
		return true
	}
	visited := map[*genome.Node]bool{start: true}
	stack := []*genome.Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range n.Out {
			next := c.To
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// SeedConnections fully wires every input to every output, registering each
// edge with the ledger. Used by population initialization.
func SeedConnections(g *genome.Genome, ledger *innovation.Ledger, rng *rand.Rand) error {
	if g == nil || ledger == nil || rng == nil {
		return errors.New("genome, ledger and random source are required")
	}
	for i := 0; i < g.InputCount; i++ {
		for j := g.OutputStart(); j < len(g.Nodes); j++ {
			from, to := g.Nodes[i], g.Nodes[j]
			if g.IsProjectingTo(from, to) {
				continue
			}
			conn, err := g.Connect(from, to, rng.Float64()*2-1)
			if err != nil {
				return err
			}
			conn.Innovation = ledger.RecordConnection(from.GeneID, to.GeneID)
		}
	}
	return nil
}
