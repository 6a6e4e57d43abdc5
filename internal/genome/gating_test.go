package genome

import (
	"errors"
	"testing"
)

// buildHourglass wires P predecessors and S successors through one hidden
// node, with no direct predecessor->successor edges.
func buildHourglass(t *testing.T, predecessors, successors int) (*Genome, *Node) {
	t.Helper()
	g := New(predecessors, successors)
	hidden := newHidden(int64(predecessors + successors))
	g.InsertNodeAt(g.OutputStart(), hidden)

	for i := 0; i < predecessors; i++ {
		if _, err := g.Connect(g.Nodes[i], hidden, 0.5); err != nil {
			t.Fatalf("connect predecessor %d: %v", i, err)
		}
	}
	for i := 0; i < successors; i++ {
		if _, err := g.Connect(hidden, g.Nodes[g.OutputStart()+i], 0.5); err != nil {
			t.Fatalf("connect successor %d: %v", i, err)
		}
	}
	return g, hidden
}

func TestGateForeignNodeFails(t *testing.T) {
	g := New(1, 1)
	conn, _ := g.Connect(g.Nodes[0], g.Nodes[1], 1)

	foreign := newHidden(99)
	if err := g.Gate(foreign, conn); !errors.Is(err, ErrNodeNotOwned) {
		t.Fatalf("gate with foreign node: err=%v, want ErrNodeNotOwned", err)
	}
}

func TestGateAlreadyGatedIsNoop(t *testing.T) {
	g := New(2, 1)
	hidden := newHidden(3)
	g.InsertNodeAt(g.OutputStart(), hidden)
	conn, _ := g.Connect(g.Nodes[0], g.Nodes[len(g.Nodes)-1], 1)

	if err := g.Gate(hidden, conn); err != nil {
		t.Fatalf("gate: %v", err)
	}
	other := g.Nodes[1]
	if err := g.Gate(other, conn); err != nil {
		t.Fatalf("second gate must be a no-op, got %v", err)
	}
	if conn.Gater != hidden {
		t.Fatalf("second gate replaced gater")
	}
	if len(g.Gates) != 1 {
		t.Fatalf("gate list length = %d, want 1", len(g.Gates))
	}
}

func TestUngateIsIdempotent(t *testing.T) {
	g := New(2, 1)
	hidden := newHidden(3)
	g.InsertNodeAt(g.OutputStart(), hidden)
	conn, _ := g.Connect(g.Nodes[0], g.Nodes[len(g.Nodes)-1], 1)

	if err := g.Gate(hidden, conn); err != nil {
		t.Fatalf("gate: %v", err)
	}
	g.Ungate(conn)
	if conn.Gater != nil || len(g.Gates) != 0 || len(hidden.Gated) != 0 {
		t.Fatalf("ungate left residue: gater=%v gates=%d gated=%d", conn.Gater, len(g.Gates), len(hidden.Gated))
	}

	// Second call is a safe no-op.
	g.Ungate(conn)
	if conn.Gater != nil || len(g.Gates) != 0 {
		t.Fatalf("second ungate changed state")
	}
}

func TestRemoveNodeRejectsProtectedAndForeign(t *testing.T) {
	g := New(1, 1)

	if err := g.RemoveNode(g.Nodes[0], false); !errors.Is(err, ErrProtectedNode) {
		t.Fatalf("remove input: err=%v, want ErrProtectedNode", err)
	}
	if err := g.RemoveNode(g.Nodes[1], false); !errors.Is(err, ErrProtectedNode) {
		t.Fatalf("remove output: err=%v, want ErrProtectedNode", err)
	}
	if err := g.RemoveNode(newHidden(42), false); !errors.Is(err, ErrNodeNotOwned) {
		t.Fatalf("remove foreign: err=%v, want ErrNodeNotOwned", err)
	}
}

func TestRemoveNodeBridgesAllPredecessorSuccessorPairs(t *testing.T) {
	const predecessors, successors = 3, 2
	g, hidden := buildHourglass(t, predecessors, successors)

	if err := g.RemoveNode(hidden, false); err != nil {
		t.Fatalf("remove node: %v", err)
	}

	if len(g.Conns) != predecessors*successors {
		t.Fatalf("bridge count = %d, want %d", len(g.Conns), predecessors*successors)
	}
	for i := 0; i < predecessors; i++ {
		for j := 0; j < successors; j++ {
			if !g.IsProjectingTo(g.Nodes[i], g.Nodes[g.OutputStart()+j]) {
				t.Fatalf("missing bridge %d->%d", i, j)
			}
		}
	}

	// No residual references to the removed node anywhere.
	for _, n := range g.Nodes {
		if n == hidden {
			t.Fatalf("removed node still in sequence")
		}
	}
	for _, c := range g.Conns {
		if c.From == hidden || c.To == hidden || c.Gater == hidden {
			t.Fatalf("residual connection reference to removed node")
		}
	}
	for _, c := range g.Gates {
		if c.Gater == hidden {
			t.Fatalf("residual gate reference to removed node")
		}
	}
	assertOrderingInvariant(t, g)
}

func TestRemoveNodeSkipsExistingAndSelfPairs(t *testing.T) {
	g, hidden := buildHourglass(t, 2, 1)
	// Pre-existing predecessor->successor edge must not be duplicated.
	if _, err := g.Connect(g.Nodes[0], g.Nodes[g.OutputStart()], 0.9); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := g.RemoveNode(hidden, false); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	// 2 predecessors x 1 successor, one pair already wired.
	if len(g.Conns) != 2 {
		t.Fatalf("connection count = %d, want 2", len(g.Conns))
	}
}

func TestRemoveNodeDropsSelfLoopFirst(t *testing.T) {
	g, hidden := buildHourglass(t, 1, 1)
	if _, err := g.Connect(hidden, hidden, 0.4); err != nil {
		t.Fatalf("self connect: %v", err)
	}

	if err := g.RemoveNode(hidden, false); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	if len(g.SelfConns) != 0 {
		t.Fatalf("self loop survived removal")
	}
}

func TestRemoveNodePreservesGatersOntoBridges(t *testing.T) {
	g, hidden := buildHourglass(t, 2, 2)
	gater := newHidden(100)
	g.InsertNodeAt(g.OutputStart(), gater)

	inEdge := g.ConnectionBetween(g.Nodes[0], hidden)
	outEdge := g.ConnectionBetween(hidden, g.Nodes[g.OutputStart()])
	if err := g.Gate(gater, inEdge); err != nil {
		t.Fatalf("gate in-edge: %v", err)
	}
	if err := g.Gate(gater, outEdge); err != nil {
		t.Fatalf("gate out-edge: %v", err)
	}

	gatedBefore := len(g.Gates)
	if err := g.RemoveNode(hidden, true); err != nil {
		t.Fatalf("remove node: %v", err)
	}

	if len(g.Gates) > gatedBefore {
		t.Fatalf("gated count grew: before=%d after=%d", gatedBefore, len(g.Gates))
	}
	if len(g.Gates) == 0 {
		t.Fatalf("no gating preserved despite available bridges")
	}
	for _, c := range g.Gates {
		if c.Gater != gater {
			t.Fatalf("unexpected gater on preserved bridge")
		}
	}
}

func TestRemoveNodeDiscardsGatersWhenDisabled(t *testing.T) {
	g, hidden := buildHourglass(t, 2, 2)
	gater := newHidden(100)
	g.InsertNodeAt(g.OutputStart(), gater)

	inEdge := g.ConnectionBetween(g.Nodes[0], hidden)
	if err := g.Gate(gater, inEdge); err != nil {
		t.Fatalf("gate: %v", err)
	}

	if err := g.RemoveNode(hidden, false); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	if len(g.Gates) != 0 {
		t.Fatalf("gating preserved with preserveGates=false")
	}
}

func TestRemoveNodeUngatesItsOwnModulations(t *testing.T) {
	g, hidden := buildHourglass(t, 1, 1)
	side, _ := g.Connect(g.Nodes[0], g.Nodes[g.OutputStart()], 0.7)
	if err := g.Gate(hidden, side); err != nil {
		t.Fatalf("gate: %v", err)
	}

	if err := g.RemoveNode(hidden, true); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	if side.Gater != nil {
		t.Fatalf("removed node still gates a surviving connection")
	}
	if len(g.Gates) != 0 {
		t.Fatalf("gate list not cleared")
	}
}
