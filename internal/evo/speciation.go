package evo

import (
	"math"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

// SpeciationRefresher re-partitions the population into species using the
// current compatibility threshold and distance coefficients.
type SpeciationRefresher interface {
	Refresh(genomes []*genome.Genome, threshold, excess, disjoint float64)
	Count() int
}

// GreedySpeciation assigns each genome to the first species whose
// representative sits within the threshold, founding a new species
// otherwise. Representatives are the founding genomes of the pass.
type GreedySpeciation struct {
	Distance DistanceFn

	reps       []*genome.Genome
	assignment map[*genome.Genome]int
}

func (s *GreedySpeciation) Refresh(genomes []*genome.Genome, threshold, excess, disjoint float64) {
	distance := s.Distance
	if distance == nil {
		distance = CompatibilityDistance
	}
	s.reps = s.reps[:0]
	s.assignment = make(map[*genome.Genome]int, len(genomes))

	for _, g := range genomes {
		placed := false
		for i, rep := range s.reps {
			if distance(g, rep, excess, disjoint) < threshold {
				s.assignment[g] = i
				placed = true
				break
			}
		}
		if !placed {
			s.assignment[g] = len(s.reps)
			s.reps = append(s.reps, g)
		}
	}
}

func (s *GreedySpeciation) Count() int { return len(s.reps) }

// SpeciesOf returns the species index assigned in the last refresh, or -1.
func (s *GreedySpeciation) SpeciesOf(g *genome.Genome) int {
	if idx, ok := s.assignment[g]; ok {
		return idx
	}
	return -1
}

// CompatibilityDistance is the historical-marking distance: excess and
// disjoint gene counts normalized by the larger genome size, plus the mean
// weight difference of matching genes.
func CompatibilityDistance(a, b *genome.Genome, excessCoeff, disjointCoeff float64) float64 {
	aGenes := innovationIndex(a)
	bGenes := innovationIndex(b)
	if len(aGenes) == 0 && len(bGenes) == 0 {
		return 0
	}

	var aMax, bMax int64
	for id := range aGenes {
		if id > aMax {
			aMax = id
		}
	}
	for id := range bGenes {
		if id > bMax {
			bMax = id
		}
	}

	var excess, disjoint, matching float64
	var weightDiff float64
	for id, w := range aGenes {
		if bw, ok := bGenes[id]; ok {
			matching++
			weightDiff += math.Abs(w - bw)
			continue
		}
		if id > bMax {
			excess++
		} else {
			disjoint++
		}
	}
	for id := range bGenes {
		if _, ok := aGenes[id]; ok {
			continue
		}
		if id > aMax {
			excess++
		} else {
			disjoint++
		}
	}

	n := float64(len(aGenes))
	if float64(len(bGenes)) > n {
		n = float64(len(bGenes))
	}
	if n < 1 {
		n = 1
	}

	dist := (excessCoeff*excess + disjointCoeff*disjoint) / n
	if matching > 0 {
		dist += weightDiff / matching
	}
	return dist
}

func innovationIndex(g *genome.Genome) map[int64]float64 {
	idx := make(map[int64]float64, g.ConnectionCount())
	for _, c := range g.Conns {
		idx[c.Innovation] = c.Weight
	}
	for _, c := range g.SelfConns {
		idx[c.Innovation] = c.Weight
	}
	return idx
}
