package nn

import (
	"fmt"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

// Activate runs one forward pass and returns the output node values.
// Incoming edge weights are modulated by their gater's value; a gater that
// has not activated yet contributes the neutral factor 1. Self connections
// feed the node's value from the previous pass, which is zero here.
func Activate(g *genome.Genome, inputs []float64) ([]float64, error) {
	if len(inputs) != g.InputCount {
		return nil, fmt.Errorf("expected %d inputs, got %d", g.InputCount, len(inputs))
	}

	values := make(map[*genome.Node]float64, len(g.Nodes))
	activated := make(map[*genome.Node]bool, len(g.Nodes))
	for i := 0; i < g.InputCount; i++ {
		n := g.Nodes[i]
		values[n] = inputs[i]
		activated[n] = true
	}

	for _, n := range g.ActivationOrder() {
		if n.Type == genome.Input {
			continue
		}

		total := n.Bias
		for _, c := range n.In {
			if !c.Enabled {
				continue
			}
			total += values[c.From] * c.Weight * gain(c, values, activated)
		}
		if n.Self != nil && n.Self.Enabled {
			total += values[n] * n.Self.Weight * gain(n.Self, values, activated)
		}

		fn, err := Resolve(n.Activation)
		if err != nil {
			return nil, fmt.Errorf("node gene %d: %w", n.GeneID, err)
		}
		values[n] = fn(total)
		activated[n] = true
	}

	outputs := make([]float64, 0, g.OutputCount)
	for _, n := range g.Nodes[g.OutputStart():] {
		outputs = append(outputs, values[n])
	}
	return outputs, nil
}

func gain(c *genome.Connection, values map[*genome.Node]float64, activated map[*genome.Node]bool) float64 {
	if c.Gater == nil {
		return 1
	}
	if !activated[c.Gater] {
		return 1
	}
	return values[c.Gater]
}
