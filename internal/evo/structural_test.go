package evo

import (
	"math/rand"
	"testing"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
)

func newWiredGenome(t *testing.T, ledger *innovation.Ledger) *genome.Genome {
	t.Helper()
	g := genome.New(2, 1)
	conn, err := g.Connect(g.Nodes[0], g.Nodes[2], 0.7)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	conn.Innovation = ledger.RecordConnection(g.Nodes[0].GeneID, g.Nodes[2].GeneID)
	return g
}

func TestSplitConnectionMintsSequentialIdentities(t *testing.T) {
	ledger := innovation.NewLedger(3)
	g := newWiredGenome(t, ledger)
	rng := rand.New(rand.NewSource(1))

	ok, err := SplitConnection(g, ledger, rng)
	if err != nil || !ok {
		t.Fatalf("split: ok=%v err=%v", ok, err)
	}

	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(g.Nodes))
	}
	hidden := g.Nodes[2]
	if hidden.Type != genome.Hidden || hidden.GeneID != 3 {
		t.Fatalf("hidden node = %+v, want hidden gene 3 before output block", hidden)
	}

	inEdge := g.ConnectionBetween(g.Nodes[0], hidden)
	outEdge := g.ConnectionBetween(hidden, g.Nodes[3])
	if inEdge == nil || outEdge == nil {
		t.Fatal("split edges missing")
	}
	if inEdge.Weight != 1 {
		t.Fatalf("in-edge weight = %v, want 1", inEdge.Weight)
	}
	if outEdge.Weight != 0.7 {
		t.Fatalf("out-edge weight = %v, want original 0.7", outEdge.Weight)
	}
	if inEdge.Innovation != 2 || outEdge.Innovation != 3 {
		t.Fatalf("split innovations = {%d, %d}, want {2, 3}", inEdge.Innovation, outEdge.Innovation)
	}
	if g.ConnectionBetween(g.Nodes[0], g.Nodes[3]) != nil {
		t.Fatal("original connection should be gone")
	}
}

func TestSplitConnectionReusesAcrossGenomes(t *testing.T) {
	ledger := innovation.NewLedger(3)
	a := newWiredGenome(t, ledger)
	b := newWiredGenome(t, ledger)
	rng := rand.New(rand.NewSource(1))

	if ok, err := SplitConnection(a, ledger, rng); err != nil || !ok {
		t.Fatalf("split a: ok=%v err=%v", ok, err)
	}
	if ok, err := SplitConnection(b, ledger, rng); err != nil || !ok {
		t.Fatalf("split b: ok=%v err=%v", ok, err)
	}

	// The same gene-pair split in a different lineage reuses identities.
	if a.Nodes[2].GeneID != b.Nodes[2].GeneID {
		t.Fatalf("hidden genes differ: %d vs %d", a.Nodes[2].GeneID, b.Nodes[2].GeneID)
	}
	aIn := a.ConnectionBetween(a.Nodes[0], a.Nodes[2])
	bIn := b.ConnectionBetween(b.Nodes[0], b.Nodes[2])
	if aIn.Innovation != bIn.Innovation {
		t.Fatalf("in-edge innovations differ: %d vs %d", aIn.Innovation, bIn.Innovation)
	}
	if ledger.PeekInnovation() != 4 {
		t.Fatalf("reuse should not mint, next innovation = %d", ledger.PeekInnovation())
	}
}

func TestSplitConnectionTransfersGater(t *testing.T) {
	ledger := innovation.NewLedger(3)
	g := newWiredGenome(t, ledger)
	conn := g.ConnectionBetween(g.Nodes[0], g.Nodes[2])
	if err := g.Gate(g.Nodes[2], conn); err != nil {
		t.Fatalf("gate: %v", err)
	}
	rng := rand.New(rand.NewSource(1))

	if ok, err := SplitConnection(g, ledger, rng); err != nil || !ok {
		t.Fatalf("split: ok=%v err=%v", ok, err)
	}

	inEdge := g.ConnectionBetween(g.Nodes[0], g.Nodes[2])
	outEdge := g.ConnectionBetween(g.Nodes[2], g.Nodes[3])
	if inEdge.Gater != g.Nodes[3] {
		t.Fatalf("gater should transfer to in-edge, got %v", inEdge.Gater)
	}
	if outEdge.Gater != nil {
		t.Fatal("out-edge should be ungated")
	}
}

func TestSplitConnectionSeedsEmptyGenome(t *testing.T) {
	ledger := innovation.NewLedger(3)
	g := genome.New(2, 1)
	rng := rand.New(rand.NewSource(1))

	ok, err := SplitConnection(g, ledger, rng)
	if err != nil || !ok {
		t.Fatalf("split: ok=%v err=%v", ok, err)
	}
	if len(g.Nodes) != 4 || g.ConnectionCount() != 2 {
		t.Fatalf("expected seeded then split genome, got %d nodes %d conns", len(g.Nodes), g.ConnectionCount())
	}
}

func TestAddConnectionSingleCandidate(t *testing.T) {
	ledger := innovation.NewLedger(3)
	g := newWiredGenome(t, ledger)
	rng := rand.New(rand.NewSource(1))

	// Only the pair (input 1, output) is unconnected.
	ok, err := AddConnection(g, ledger, rng)
	if err != nil || !ok {
		t.Fatalf("add: ok=%v err=%v", ok, err)
	}
	conn := g.ConnectionBetween(g.Nodes[1], g.Nodes[2])
	if conn == nil {
		t.Fatal("expected connection input1 -> output")
	}
	if conn.Innovation != 2 {
		t.Fatalf("innovation = %d, want 2", conn.Innovation)
	}

	// Saturated genome yields no candidates.
	ok, err = AddConnection(g, ledger, rng)
	if err != nil || ok {
		t.Fatalf("saturated add: ok=%v err=%v", ok, err)
	}
}

func TestAddConnectionReusesLedgerEntry(t *testing.T) {
	ledger := innovation.NewLedger(3)
	a := newWiredGenome(t, ledger)
	b := newWiredGenome(t, ledger)
	rng := rand.New(rand.NewSource(1))

	if ok, err := AddConnection(a, ledger, rng); err != nil || !ok {
		t.Fatalf("add a: ok=%v err=%v", ok, err)
	}
	if ok, err := AddConnection(b, ledger, rng); err != nil || !ok {
		t.Fatalf("add b: ok=%v err=%v", ok, err)
	}

	aConn := a.ConnectionBetween(a.Nodes[1], a.Nodes[2])
	bConn := b.ConnectionBetween(b.Nodes[1], b.Nodes[2])
	if aConn.Innovation != bConn.Innovation {
		t.Fatalf("innovations differ: %d vs %d", aConn.Innovation, bConn.Innovation)
	}
}

func TestAddConnectionRespectsAcyclicity(t *testing.T) {
	ledger := innovation.NewLedger(2)
	g := genome.New(1, 1)
	g.Acyclic = true
	h1 := &genome.Node{Type: genome.Hidden, GeneID: 2, Activation: "sigmoid"}
	h2 := &genome.Node{Type: genome.Hidden, GeneID: 3, Activation: "sigmoid"}
	g.InsertNodeAt(1, h1)
	g.InsertNodeAt(2, h2)

	// h2 already feeds h1, so the hidden-hidden candidate (h1, h2) would
	// close a cycle.
	if _, err := g.Connect(h2, h1, 1); err != nil {
		t.Fatalf("connect back edge: %v", err)
	}

	before := g.ConnectionCount()
	ok, err := AddConnection(g, ledger, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok || g.ConnectionCount() != before {
		t.Fatalf("cycle-closing add should be a no-op, ok=%v conns=%d", ok, g.ConnectionCount())
	}
}

func TestSeedConnectionsFullyWires(t *testing.T) {
	ledger := innovation.NewLedger(4)
	g := genome.New(3, 1)
	rng := rand.New(rand.NewSource(1))

	if err := SeedConnections(g, ledger, rng); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if g.ConnectionCount() != 3 {
		t.Fatalf("expected 3 connections, got %d", g.ConnectionCount())
	}
	for i := 0; i < 3; i++ {
		conn := g.ConnectionBetween(g.Nodes[i], g.Nodes[3])
		if conn == nil || conn.Innovation == 0 {
			t.Fatalf("input %d not wired with ledger id", i)
		}
	}
}
