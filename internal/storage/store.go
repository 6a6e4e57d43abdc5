package storage

import (
	"context"

	"github.com/reicek/NeatapticTS-sub006/internal/model"
)

// Store defines the persistence operations for genomes and run checkpoints.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.GenomeRecord) error
	GetGenome(ctx context.Context, id string) (model.GenomeRecord, bool, error)
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, runID string) (model.Checkpoint, bool, error)
}
