package evo

import (
	"fmt"
	"math/rand"

	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
	"github.com/reicek/NeatapticTS-sub006/internal/model"
	"github.com/reicek/NeatapticTS-sub006/internal/storage"
)

// Checkpoint captures the run state needed to resume later with identical
// reuse behavior: the ledger, the tuned parameters, the operator ledger and
// the ids of the persisted genomes.
func (e *Engine) Checkpoint(runID string, genomeIDs []string) model.Checkpoint {
	stats := make(map[string]model.OperatorStat, len(e.stats))
	for kind, st := range e.stats {
		stats[kind.String()] = *st
	}
	return model.Checkpoint{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:      runID,
		Generation: e.generation,
		Seed:       e.seed,
		Ledger:     e.ledger.Snapshot(),
		Tuned: model.TunedParameters{
			SharingBandwidth:       e.sharingBandwidth,
			CompatibilityThreshold: e.compatThreshold,
			ExcessCoefficient:      e.excessCoeff,
			DisjointCoefficient:    e.disjointCoeff,
		},
		OperatorStats: stats,
		GenomeIDs:     genomeIDs,
	}
}

// RestoreCheckpoint rebuilds the engine's run state from a checkpoint. The
// population itself is loaded separately by the caller.
func (e *Engine) RestoreCheckpoint(cp model.Checkpoint) error {
	ledger, err := innovation.Restore(cp.Ledger)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	e.ledger = ledger

	stats := make(map[OpKind]*model.OperatorStat, len(cp.OperatorStats))
	for name, st := range cp.OperatorStats {
		kind, err := OpKindFromString(name)
		if err != nil {
			return fmt.Errorf("restore operator stats: %w", err)
		}
		copied := st
		stats[kind] = &copied
	}

	e.stats = stats
	e.sharingBandwidth = cp.Tuned.SharingBandwidth
	e.compatThreshold = cp.Tuned.CompatibilityThreshold
	e.excessCoeff = cp.Tuned.ExcessCoefficient
	e.disjointCoeff = cp.Tuned.DisjointCoefficient
	e.generation = cp.Generation
	e.seed = cp.Seed
	e.rng = rand.New(rand.NewSource(cp.Seed))
	return nil
}
