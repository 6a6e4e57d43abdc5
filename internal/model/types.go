package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type GenomeRecord struct {
	VersionedRecord
	ID          string             `json:"id"`
	InputCount  int                `json:"input_count"`
	OutputCount int                `json:"output_count"`
	Acyclic     bool               `json:"acyclic"`
	Score       float64            `json:"score"`
	Nodes       []NodeRecord       `json:"nodes"`
	Connections []ConnectionRecord `json:"connections"`
}

type NodeRecord struct {
	Type       string  `json:"type"`
	GeneID     int64   `json:"gene_id"`
	Bias       float64 `json:"bias"`
	Activation string  `json:"activation"`
}

// ConnectionRecord flattens a connection to node indexes within the owning
// genome's node sequence. Gater is -1 when the connection is ungated.
type ConnectionRecord struct {
	From       int     `json:"from"`
	To         int     `json:"to"`
	Gater      int     `json:"gater"`
	Weight     float64 `json:"weight"`
	Innovation int64   `json:"innovation"`
	Enabled    bool    `json:"enabled"`
}

// SplitEntry is one node-split ledger row: a directed gene-pair key and the
// identities minted when that pair was first split.
type SplitEntry struct {
	Key           string `json:"key"`
	NodeGene      int64  `json:"node_gene"`
	InInnovation  int64  `json:"in_innovation"`
	OutInnovation int64  `json:"out_innovation"`
}

type ConnectionEntry struct {
	Key        string `json:"key"`
	Innovation int64  `json:"innovation"`
}

// LedgerState is the serialized innovation ledger: ordered entry sequences
// plus the two monotone counters. Restoring it must reproduce identical
// reuse behavior for any previously seen gene-pair.
type LedgerState struct {
	Splits         []SplitEntry      `json:"splits"`
	Connections    []ConnectionEntry `json:"connections"`
	NextInnovation int64             `json:"next_innovation"`
	NextNodeGene   int64             `json:"next_node_gene"`
}

type OperatorStat struct {
	Success  int `json:"success"`
	Attempts int `json:"attempts"`
}

// TunedParameters carries the values owned by the self-tuning controllers.
type TunedParameters struct {
	SharingBandwidth       float64 `json:"sharing_bandwidth"`
	CompatibilityThreshold float64 `json:"compatibility_threshold"`
	ExcessCoefficient      float64 `json:"excess_coefficient"`
	DisjointCoefficient    float64 `json:"disjoint_coefficient"`
}

// Checkpoint is the pause/resume record for one evolutionary run.
type Checkpoint struct {
	VersionedRecord
	RunID         string                  `json:"run_id"`
	Generation    int                     `json:"generation"`
	Seed          int64                   `json:"seed"`
	Ledger        LedgerState             `json:"ledger"`
	Tuned         TunedParameters         `json:"tuned"`
	OperatorStats map[string]OperatorStat `json:"operator_stats"`
	GenomeIDs     []string                `json:"genome_ids"`
}
