package genome

import "fmt"

// Gate records node as the modulator of conn. Gating a connection that
// already has a gater is a logged no-op; gating with a node foreign to the
// genome is an error.
func (g *Genome) Gate(node *Node, conn *Connection) error {
	if !g.Contains(node) {
		return fmt.Errorf("%w: gene %d", ErrNodeNotOwned, node.GeneID)
	}
	if conn.Gater != nil {
		g.logf("gate skipped: connection already gated",
			"from", conn.From.GeneID, "to", conn.To.GeneID, "gater", conn.Gater.GeneID)
		return nil
	}
	conn.Gater = node
	node.Gated = append(node.Gated, conn)
	g.Gates = append(g.Gates, conn)
	return nil
}

// Ungate clears the modulation relationship on conn. Ungating a connection
// that is not tracked in the gate list is a logged no-op, so calling it
// twice is safe.
func (g *Genome) Ungate(conn *Connection) {
	idx := -1
	for i, c := range g.Gates {
		if c == conn {
			idx = i
			break
		}
	}
	if idx < 0 {
		g.logf("ungate skipped: connection is not gated",
			"from", conn.From.GeneID, "to", conn.To.GeneID)
		return
	}
	g.Gates = append(g.Gates[:idx], g.Gates[idx+1:]...)
	if conn.Gater != nil {
		conn.Gater.Gated = removeConnection(conn.Gater.Gated, conn)
		conn.Gater = nil
	}
}

// RemoveNode deletes a hidden node while approximating its routing: every
// recorded predecessor is bridged to every recorded successor, and with
// preserveGates the gaters of the dropped edges are redistributed over the
// new bridges. Input and output nodes cannot be removed.
func (g *Genome) RemoveNode(node *Node, preserveGates bool) error {
	if !g.Contains(node) {
		return fmt.Errorf("%w: gene %d", ErrNodeNotOwned, node.GeneID)
	}
	if node.Type != Hidden {
		return fmt.Errorf("%w: gene %d is %s", ErrProtectedNode, node.GeneID, node.Type)
	}

	if node.Self != nil {
		if err := g.Disconnect(node, node); err != nil {
			return err
		}
	}

	gaters := make([]*Node, 0)
	predecessors := make([]*Node, 0, len(node.In))
	for _, conn := range append([]*Connection(nil), node.In...) {
		if preserveGates && conn.Gater != nil && conn.Gater != node {
			gaters = append(gaters, conn.Gater)
		}
		predecessors = append(predecessors, conn.From)
		if err := g.Disconnect(conn.From, node); err != nil {
			return err
		}
	}

	successors := make([]*Node, 0, len(node.Out))
	for _, conn := range append([]*Connection(nil), node.Out...) {
		if preserveGates && conn.Gater != nil && conn.Gater != node {
			gaters = append(gaters, conn.Gater)
		}
		successors = append(successors, conn.To)
		if err := g.Disconnect(node, conn.To); err != nil {
			return err
		}
	}

	bridges := make([]*Connection, 0, len(predecessors)*len(successors))
	for _, from := range predecessors {
		for _, to := range successors {
			if from == to || g.IsProjectingTo(from, to) {
				continue
			}
			conn, err := g.Connect(from, to, 1)
			if err != nil {
				return err
			}
			bridges = append(bridges, conn)
		}
	}

	// Hand each preserved gater one distinct bridge, without replacement,
	// until either pool runs out.
	for len(gaters) > 0 && len(bridges) > 0 {
		gater := gaters[0]
		gaters = gaters[1:]
		bridge := bridges[0]
		bridges = bridges[1:]
		if err := g.Gate(gater, bridge); err != nil {
			return err
		}
	}

	// A removed node cannot keep modulating the rest of the graph.
	for _, conn := range append([]*Connection(nil), node.Gated...) {
		g.Ungate(conn)
	}

	idx := g.IndexOf(node)
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
	g.ClearCache()
	return nil
}
