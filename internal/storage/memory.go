package storage

import (
	"context"
	"sync"

	"github.com/reicek/NeatapticTS-sub006/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]model.GenomeRecord
	checkpoints map[string]model.Checkpoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.GenomeRecord)
	s.checkpoints = make(map[string]model.Checkpoint)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.genomes[genome.ID] = genome
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[id]
	return genome, ok, nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.RunID] = checkpoint
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, runID string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoint, ok := s.checkpoints[runID]
	return checkpoint, ok, nil
}
