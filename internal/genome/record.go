package genome

import (
	"fmt"

	"github.com/reicek/NeatapticTS-sub006/internal/model"
	"github.com/reicek/NeatapticTS-sub006/internal/storage"
)

// ToRecord flattens the genome into its persistent form. Connections carry
// node indexes into the ordered node sequence; self loops appear as
// from==to rows.
func (g *Genome) ToRecord(id string) model.GenomeRecord {
	rec := model.GenomeRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:          id,
		InputCount:  g.InputCount,
		OutputCount: g.OutputCount,
		Acyclic:     g.Acyclic,
		Score:       g.Score,
		Nodes:       make([]model.NodeRecord, 0, len(g.Nodes)),
		Connections: make([]model.ConnectionRecord, 0, g.ConnectionCount()),
	}

	index := make(map[*Node]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n] = i
		rec.Nodes = append(rec.Nodes, model.NodeRecord{
			Type:       n.Type.String(),
			GeneID:     n.GeneID,
			Bias:       n.Bias,
			Activation: n.Activation,
		})
	}

	flatten := func(c *Connection) model.ConnectionRecord {
		gater := -1
		if c.Gater != nil {
			gater = index[c.Gater]
		}
		return model.ConnectionRecord{
			From:       index[c.From],
			To:         index[c.To],
			Gater:      gater,
			Weight:     c.Weight,
			Innovation: c.Innovation,
			Enabled:    c.Enabled,
		}
	}
	for _, c := range g.Conns {
		rec.Connections = append(rec.Connections, flatten(c))
	}
	for _, c := range g.SelfConns {
		rec.Connections = append(rec.Connections, flatten(c))
	}
	return rec
}

// FromRecord rebuilds a genome from its persistent form.
func FromRecord(rec model.GenomeRecord) (*Genome, error) {
	g := &Genome{
		InputCount:  rec.InputCount,
		OutputCount: rec.OutputCount,
		Acyclic:     rec.Acyclic,
		Score:       rec.Score,
		Nodes:       make([]*Node, 0, len(rec.Nodes)),
	}
	for _, nr := range rec.Nodes {
		kind, err := NodeTypeFromString(nr.Type)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, &Node{
			Type:       kind,
			GeneID:     nr.GeneID,
			Bias:       nr.Bias,
			Activation: nr.Activation,
		})
	}

	for _, cr := range rec.Connections {
		if cr.From < 0 || cr.From >= len(g.Nodes) || cr.To < 0 || cr.To >= len(g.Nodes) {
			return nil, fmt.Errorf("connection endpoint out of range: %d->%d", cr.From, cr.To)
		}
		conn, err := g.Connect(g.Nodes[cr.From], g.Nodes[cr.To], cr.Weight)
		if err != nil {
			return nil, err
		}
		conn.Innovation = cr.Innovation
		conn.Enabled = cr.Enabled
		if cr.Gater >= 0 {
			if cr.Gater >= len(g.Nodes) {
				return nil, fmt.Errorf("gater index out of range: %d", cr.Gater)
			}
			if err := g.Gate(g.Nodes[cr.Gater], conn); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
