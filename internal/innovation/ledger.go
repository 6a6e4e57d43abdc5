// Package innovation tracks the historical identity of structural features
// across one evolutionary run. Structurally identical mutations performed on
// different genomes resolve to the same ledger entry, which keeps
// independently evolved genomes alignable for crossover and compatibility
// distance. Entries are never rolled back.
package innovation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reicek/NeatapticTS-sub006/internal/model"
)

// SplitRecord holds the identities minted the first time a directed gene-pair
// was split: the new node's gene id and the two replacement connection ids.
type SplitRecord struct {
	NodeGene      int64
	InInnovation  int64
	OutInnovation int64
}

// Ledger is single-writer state owned by one run. Callers embedding it in a
// concurrent host must serialize access externally.
type Ledger struct {
	splits    map[string]SplitRecord
	splitKeys []string

	conns    map[string]int64
	connKeys []string

	nextInnovation int64
	nextNodeGene   int64
}

// NewLedger returns an empty ledger. nextNodeGene seeds the node gene counter
// and must sit past the fixed input/output gene block; the first minted
// innovation id is 1.
func NewLedger(nextNodeGene int64) *Ledger {
	if nextNodeGene < 0 {
		nextNodeGene = 0
	}
	return &Ledger{
		splits:         make(map[string]SplitRecord),
		conns:          make(map[string]int64),
		nextInnovation: 1,
		nextNodeGene:   nextNodeGene,
	}
}

func splitKey(fromGene, toGene int64) string {
	return fmt.Sprintf("%d>%d", fromGene, toGene)
}

func symmetricKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// SplitFor looks up the split record for a directed gene-pair.
func (l *Ledger) SplitFor(fromGene, toGene int64) (SplitRecord, bool) {
	rec, ok := l.splits[splitKey(fromGene, toGene)]
	return rec, ok
}

// RecordSplit returns the existing record for the gene-pair or mints a new
// node gene plus two innovation ids and persists them.
func (l *Ledger) RecordSplit(fromGene, toGene int64) SplitRecord {
	key := splitKey(fromGene, toGene)
	if rec, ok := l.splits[key]; ok {
		return rec
	}
	rec := SplitRecord{
		NodeGene:      l.nextNodeGene,
		InInnovation:  l.mint(),
		OutInnovation: l.mint(),
	}
	l.nextNodeGene++
	l.splits[key] = rec
	l.splitKeys = append(l.splitKeys, key)
	return rec
}

// ConnectionFor looks up the innovation id for an unordered gene-pair,
// falling back to the two legacy directional keys.
func (l *Ledger) ConnectionFor(aGene, bGene int64) (int64, bool) {
	if id, ok := l.conns[symmetricKey(aGene, bGene)]; ok {
		return id, true
	}
	if id, ok := l.conns[splitKey(aGene, bGene)]; ok {
		return id, true
	}
	if id, ok := l.conns[splitKey(bGene, aGene)]; ok {
		return id, true
	}
	return 0, false
}

// RecordConnection returns the existing innovation id for the gene-pair or
// mints a fresh one, storing it under the symmetric key and both legacy
// directional keys.
func (l *Ledger) RecordConnection(aGene, bGene int64) int64 {
	if id, ok := l.ConnectionFor(aGene, bGene); ok {
		return id
	}
	id := l.mint()
	sym := symmetricKey(aGene, bGene)
	l.conns[sym] = id
	l.conns[splitKey(aGene, bGene)] = id
	l.conns[splitKey(bGene, aGene)] = id
	l.connKeys = append(l.connKeys, sym)
	return id
}

// PeekInnovation reports the id the next mint will consume.
func (l *Ledger) PeekInnovation() int64 {
	return l.nextInnovation
}

func (l *Ledger) mint() int64 {
	id := l.nextInnovation
	l.nextInnovation++
	return id
}

// Snapshot exports the ledger as ordered entry sequences plus counters.
func (l *Ledger) Snapshot() model.LedgerState {
	state := model.LedgerState{
		Splits:         make([]model.SplitEntry, 0, len(l.splitKeys)),
		Connections:    make([]model.ConnectionEntry, 0, len(l.connKeys)),
		NextInnovation: l.nextInnovation,
		NextNodeGene:   l.nextNodeGene,
	}
	for _, key := range l.splitKeys {
		rec := l.splits[key]
		state.Splits = append(state.Splits, model.SplitEntry{
			Key:           key,
			NodeGene:      rec.NodeGene,
			InInnovation:  rec.InInnovation,
			OutInnovation: rec.OutInnovation,
		})
	}
	for _, key := range l.connKeys {
		state.Connections = append(state.Connections, model.ConnectionEntry{
			Key:        key,
			Innovation: l.conns[key],
		})
	}
	return state
}

// Restore rebuilds a ledger from a snapshot. Symmetric connection entries
// regain their directional aliases; legacy snapshots holding directional
// keys are accepted as-is.
func Restore(state model.LedgerState) (*Ledger, error) {
	ledger := NewLedger(state.NextNodeGene)
	if state.NextInnovation > 0 {
		ledger.nextInnovation = state.NextInnovation
	}
	for _, entry := range state.Splits {
		if _, ok := ledger.splits[entry.Key]; ok {
			return nil, fmt.Errorf("duplicate split entry: %s", entry.Key)
		}
		ledger.splits[entry.Key] = SplitRecord{
			NodeGene:      entry.NodeGene,
			InInnovation:  entry.InInnovation,
			OutInnovation: entry.OutInnovation,
		}
		ledger.splitKeys = append(ledger.splitKeys, entry.Key)
	}
	for _, entry := range state.Connections {
		if strings.ContainsRune(entry.Key, '>') {
			ledger.conns[entry.Key] = entry.Innovation
			continue
		}
		a, b, err := parseSymmetricKey(entry.Key)
		if err != nil {
			return nil, err
		}
		ledger.conns[entry.Key] = entry.Innovation
		ledger.conns[splitKey(a, b)] = entry.Innovation
		ledger.conns[splitKey(b, a)] = entry.Innovation
		ledger.connKeys = append(ledger.connKeys, entry.Key)
	}
	return ledger, nil
}

func parseSymmetricKey(key string) (int64, int64, error) {
	left, right, ok := strings.Cut(key, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed connection key: %s", key)
	}
	a, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed connection key %s: %w", key, err)
	}
	b, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed connection key %s: %w", key, err)
	}
	return a, b, nil
}
