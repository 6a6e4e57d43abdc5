package genome

// Clone deep-copies the genome: nodes, connections, self loops and gate
// relationships are all remapped onto fresh objects.
func (g *Genome) Clone() *Genome {
	out := &Genome{
		InputCount:  g.InputCount,
		OutputCount: g.OutputCount,
		Acyclic:     g.Acyclic,
		Score:       g.Score,
		Logger:      g.Logger,
		Nodes:       make([]*Node, 0, len(g.Nodes)),
		Conns:       make([]*Connection, 0, len(g.Conns)),
		SelfConns:   make([]*Connection, 0, len(g.SelfConns)),
		Gates:       make([]*Connection, 0, len(g.Gates)),
	}

	nodeMap := make(map[*Node]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		copied := &Node{
			Type:       n.Type,
			GeneID:     n.GeneID,
			Bias:       n.Bias,
			Activation: n.Activation,
		}
		nodeMap[n] = copied
		out.Nodes = append(out.Nodes, copied)
	}

	connMap := make(map[*Connection]*Connection, len(g.Conns)+len(g.SelfConns))
	copyConn := func(c *Connection) *Connection {
		copied := &Connection{
			From:       nodeMap[c.From],
			To:         nodeMap[c.To],
			Weight:     c.Weight,
			Innovation: c.Innovation,
			Enabled:    c.Enabled,
		}
		connMap[c] = copied
		return copied
	}

	for _, c := range g.Conns {
		copied := copyConn(c)
		copied.From.Out = append(copied.From.Out, copied)
		copied.To.In = append(copied.To.In, copied)
		out.Conns = append(out.Conns, copied)
	}
	for _, c := range g.SelfConns {
		copied := copyConn(c)
		copied.From.Self = copied
		out.SelfConns = append(out.SelfConns, copied)
	}

	for _, c := range g.Gates {
		copied, ok := connMap[c]
		if !ok {
			continue
		}
		gater := nodeMap[c.Gater]
		copied.Gater = gater
		gater.Gated = append(gater.Gated, copied)
		out.Gates = append(out.Gates, copied)
	}

	return out
}
