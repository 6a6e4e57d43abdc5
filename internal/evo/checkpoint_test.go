package evo

import (
	"reflect"
	"testing"

	"github.com/reicek/NeatapticTS-sub006/internal/config"
	"github.com/reicek/NeatapticTS-sub006/internal/model"
	"github.com/reicek/NeatapticTS-sub006/internal/storage"
)

func TestCheckpointRoundTrip(t *testing.T) {
	engine := newTestEngine(t, 3, func(cfg *config.Config) {
		cfg.Mutation.Rate = 1
		cfg.Mutation.Operators = []string{"add_node", "add_conn"}
		cfg.Adaptation.Enabled = true
	})
	for i := 0; i < 3; i++ {
		if err := engine.Mutate(); err != nil {
			t.Fatalf("mutate: %v", err)
		}
	}
	engine.generation = 3
	engine.sharingBandwidth = 1.3
	engine.compatThreshold = 2.5

	cp := engine.Checkpoint("run-1", []string{"a", "b", "c"})
	if cp.SchemaVersion != storage.CurrentSchemaVersion || cp.CodecVersion != storage.CurrentCodecVersion {
		t.Fatalf("checkpoint carries wrong versions: %+v", cp.VersionedRecord)
	}
	if cp.RunID != "run-1" || cp.Generation != 3 || len(cp.GenomeIDs) != 3 {
		t.Fatalf("checkpoint header mismatch: %+v", cp)
	}

	restored := newTestEngine(t, 3, func(cfg *config.Config) {
		cfg.Adaptation.Enabled = true
	})
	if err := restored.RestoreCheckpoint(cp); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if !reflect.DeepEqual(restored.ledger.Snapshot(), engine.ledger.Snapshot()) {
		t.Fatal("restored ledger differs")
	}
	if restored.generation != 3 {
		t.Fatalf("generation = %d, want 3", restored.generation)
	}
	if restored.sharingBandwidth != 1.3 || restored.compatThreshold != 2.5 {
		t.Fatalf("tuned parameters lost: %v %v", restored.sharingBandwidth, restored.compatThreshold)
	}
	for kind, st := range engine.stats {
		got, ok := restored.stats[kind]
		if !ok || *got != *st {
			t.Fatalf("operator stat %s lost: %+v vs %+v", kind, got, st)
		}
	}
}

func TestRestoreCheckpointRejectsUnknownOperator(t *testing.T) {
	engine := newTestEngine(t, 1, nil)

	cp := engine.Checkpoint("run-2", nil)
	cp.OperatorStats["teleport"] = model.OperatorStat{Success: 1, Attempts: 1}
	if err := engine.RestoreCheckpoint(cp); err == nil {
		t.Fatal("expected unknown operator error")
	}
}
