// Package tuning holds the self-adjusting controllers fed by per-generation
// population diversity statistics. Each controller is isolated: it reports a
// Result and never aborts scoring or its siblings.
package tuning

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

var ErrInsufficientPopulation = errors.New("population too small for diversity statistics")

// PopulationStats summarizes the structural diversity of one generation.
type PopulationStats struct {
	MeanEntropy        float64
	EntropyVariance    float64
	ConnectionVariance float64
}

// ComputeStats derives the diversity statistics the controllers consume.
// At least two genomes are required for meaningful variances.
func ComputeStats(genomes []*genome.Genome) (PopulationStats, error) {
	if len(genomes) < 2 {
		return PopulationStats{}, ErrInsufficientPopulation
	}

	entropies := make([]float64, len(genomes))
	connections := make([]float64, len(genomes))
	for i, g := range genomes {
		entropies[i] = StructuralEntropy(g)
		connections[i] = float64(g.ConnectionCount())
	}

	return PopulationStats{
		MeanEntropy:        stat.Mean(entropies, nil),
		EntropyVariance:    stat.Variance(entropies, nil),
		ConnectionVariance: stat.Variance(connections, nil),
	}, nil
}

// StructuralEntropy is the Shannon entropy of a genome's out-degree
// distribution: a cheap topology-only diversity signal.
func StructuralEntropy(g *genome.Genome) float64 {
	if len(g.Nodes) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, n := range g.Nodes {
		counts[len(n.Out)]++
	}
	p := make([]float64, 0, len(counts))
	total := float64(len(g.Nodes))
	for _, c := range counts {
		p = append(p, float64(c)/total)
	}
	return stat.Entropy(p)
}
