package evo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/reicek/NeatapticTS-sub006/internal/tuning"
)

// maxArchiveSize bounds the novelty archive; admission past the cap evicts
// the oldest entry.
const maxArchiveSize = 200

// Evaluate scores the population, blends novelty when enabled, runs the
// enabled tuning controllers, and advances the generation counter. Tuner
// failures are reported in the returned results but never abort scoring.
func (e *Engine) Evaluate(ctx context.Context) ([]tuning.Result, error) {
	if e.cfg.Evaluation.ClearState {
		for _, g := range e.population {
			g.ResetState()
		}
	}

	if e.cfg.Evaluation.PopulationScoring {
		scores, err := e.populationFitness(ctx, e.population)
		if err != nil {
			return nil, fmt.Errorf("population scoring: %w", err)
		}
		if len(scores) != len(e.population) {
			return nil, fmt.Errorf("population scoring returned %d scores for %d genomes", len(scores), len(e.population))
		}
		for i, g := range e.population {
			g.Score = scores[i]
		}
	} else {
		if e.fitness == nil {
			return nil, errors.New("no fitness function configured")
		}
		for _, g := range e.population {
			score, err := e.fitness(ctx, g)
			if err != nil {
				return nil, fmt.Errorf("scoring genome: %w", err)
			}
			g.Score = score
		}
	}

	if e.cfg.Novelty.Enabled && e.descriptor != nil {
		e.blendNovelty()
	}

	results := e.runTuners()
	e.injectEntropyObjective()

	if e.speciation != nil && e.cfg.Speciation.TargetSpecies > 0 && e.cfg.Speciation.Refresh {
		e.speciation.Refresh(e.population, e.compatThreshold, e.excessCoeff, e.disjointCoeff)
	}

	e.generation++
	return results, nil
}

// blendNovelty mixes each genome's score with its mean distance to the k
// nearest behavior descriptors. A failing descriptor degrades that genome to
// an empty vector rather than failing the pass.
func (e *Engine) blendNovelty() {
	descriptors := make([][]float64, len(e.population))
	for i, g := range e.population {
		d, err := e.descriptor(g)
		if err != nil {
			e.logf(slog.LevelWarn, "behavior descriptor failed", "genome", i, "err", err)
			d = nil
		}
		descriptors[i] = d
	}

	reference := make([][]float64, 0, len(descriptors)+len(e.archive))
	reference = append(reference, descriptors...)
	reference = append(reference, e.archive...)

	beta := e.cfg.Novelty.Blend
	for i, g := range e.population {
		novelty := e.noveltyOf(descriptors[i], reference, i)
		g.Score = (1-beta)*g.Score + beta*novelty

		threshold := e.cfg.Novelty.ArchiveThreshold
		if threshold == 0 || novelty > threshold {
			e.archive = append(e.archive, descriptors[i])
			if len(e.archive) > maxArchiveSize {
				e.archive = e.archive[1:]
			}
		}
	}
}

// noveltyOf is the mean distance to the k nearest reference descriptors,
// skipping self and honoring the pairwise sample cap.
func (e *Engine) noveltyOf(d []float64, reference [][]float64, self int) float64 {
	limit := e.cfg.Novelty.SampleLimit
	distances := make([]float64, 0, len(reference))
	for i, other := range reference {
		if i == self {
			continue
		}
		distances = append(distances, descriptorDistance(d, other))
		if limit > 0 && len(distances) >= limit {
			break
		}
	}
	if len(distances) == 0 {
		return 0
	}
	sort.Float64s(distances)
	k := e.cfg.Novelty.Neighbors
	if k > len(distances) {
		k = len(distances)
	}
	sum := 0.0
	for _, dist := range distances[:k] {
		sum += dist
	}
	return sum / float64(k)
}

// descriptorDistance is the Euclidean distance over the common prefix of the
// two vectors, so mixed-length descriptors still compare.
func descriptorDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// runTuners computes the diversity statistics once and feeds every enabled
// controller. Each controller is isolated: its Result carries any error and
// its siblings still run.
func (e *Engine) runTuners() []tuning.Result {
	t := e.cfg.Tuning
	if !t.Bandwidth.Enabled && !t.Threshold.Enabled && !t.Coefficients.Enabled {
		return nil
	}

	stats, err := tuning.ComputeStats(e.population)
	if err != nil {
		e.logf(slog.LevelWarn, "diversity statistics unavailable", "err", err)
		return []tuning.Result{{Name: "diversity_stats", Err: err}}
	}

	results := make([]tuning.Result, 0, 3)
	if t.Bandwidth.Enabled {
		before := e.sharingBandwidth
		e.sharingBandwidth = e.bandwidthCtl.Adjust(before, stats)
		results = append(results, tuning.Result{
			Name:    e.bandwidthCtl.Name(),
			Applied: e.sharingBandwidth != before,
			Before:  before,
			After:   e.sharingBandwidth,
		})
	}
	if t.Threshold.Enabled {
		before := e.compatThreshold
		e.compatThreshold = e.thresholdCtl.Adjust(before, stats)
		results = append(results, tuning.Result{
			Name:    e.thresholdCtl.Name(),
			Applied: e.compatThreshold != before,
			Before:  before,
			After:   e.compatThreshold,
		})
	}
	if t.Coefficients.Enabled {
		before := e.excessCoeff
		e.excessCoeff, e.disjointCoeff = e.coeffCtl.Adjust(e.excessCoeff, e.disjointCoeff, stats)
		results = append(results, tuning.Result{
			Name:    e.coeffCtl.Name(),
			Applied: e.excessCoeff != before,
			Before:  before,
			After:   e.excessCoeff,
		})
	}

	for _, r := range results {
		if r.Applied {
			e.logf(slog.LevelDebug, "tuner adjusted", "tuner", r.Name, "before", r.Before, "after", r.After)
		}
	}
	return results
}

// injectEntropyObjective registers the structural-entropy ranking axis once,
// unless the caller manages objectives dynamically.
func (e *Engine) injectEntropyObjective() {
	mo := e.cfg.MultiObjective
	if !mo.Enabled || !mo.AutoEntropy || e.dynamicObjectives || e.entropyInjected {
		return
	}
	e.objectives = append(e.objectives, Objective{
		Name: "structural_entropy",
		Eval: tuning.StructuralEntropy,
	})
	e.entropyInjected = true
}
