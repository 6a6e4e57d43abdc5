package storage

import (
	"encoding/json"
	"errors"

	"github.com/reicek/NeatapticTS-sub006/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeGenome(g model.GenomeRecord) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGenome(data []byte) (model.GenomeRecord, error) {
	var genome model.GenomeRecord
	if err := json.Unmarshal(data, &genome); err != nil {
		return model.GenomeRecord{}, err
	}
	if err := checkVersion(genome.VersionedRecord); err != nil {
		return model.GenomeRecord{}, err
	}
	return genome, nil
}

func EncodeCheckpoint(c model.Checkpoint) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeCheckpoint(data []byte) (model.Checkpoint, error) {
	var checkpoint model.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return model.Checkpoint{}, err
	}
	if err := checkVersion(checkpoint.VersionedRecord); err != nil {
		return model.Checkpoint{}, err
	}
	return checkpoint, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
