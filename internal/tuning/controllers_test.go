package tuning

import (
	"errors"
	"math"
	"testing"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

func TestComputeStatsRequiresTwoGenomes(t *testing.T) {
	if _, err := ComputeStats([]*genome.Genome{genome.New(2, 1)}); !errors.Is(err, ErrInsufficientPopulation) {
		t.Fatalf("expected ErrInsufficientPopulation, got %v", err)
	}
}

func TestComputeStatsVariance(t *testing.T) {
	a := genome.New(2, 1)
	b := genome.New(2, 1)
	if _, err := b.Connect(b.Nodes[0], b.Nodes[2], 0.5); err != nil {
		t.Fatalf("connect: %v", err)
	}

	stats, err := ComputeStats([]*genome.Genome{a, b})
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}
	if stats.ConnectionVariance <= 0 {
		t.Fatalf("expected positive connection variance, got %v", stats.ConnectionVariance)
	}
}

func TestStructuralEntropyUniformDegrees(t *testing.T) {
	g := genome.New(2, 1)
	// All three nodes have out-degree zero: one degree class, zero entropy.
	if got := StructuralEntropy(g); got != 0 {
		t.Fatalf("expected zero entropy, got %v", got)
	}

	if _, err := g.Connect(g.Nodes[0], g.Nodes[2], 1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	// Degrees are now {1, 0, 0}: two classes with p = 1/3 and 2/3.
	want := -(1.0/3.0)*math.Log(1.0/3.0) - (2.0/3.0)*math.Log(2.0/3.0)
	if got := StructuralEntropy(g); math.Abs(got-want) > 1e-9 {
		t.Fatalf("entropy = %v, want %v", got, want)
	}
}

func TestBandwidthControllerDirection(t *testing.T) {
	ctl := BandwidthController{TargetVariance: 0.25, Step: 0.05, Min: 0.1, Max: 10}

	grown := ctl.Adjust(1.0, PopulationStats{EntropyVariance: 0.1})
	if grown <= 1.0 {
		t.Fatalf("low variance should widen bandwidth, got %v", grown)
	}
	shrunk := ctl.Adjust(1.0, PopulationStats{EntropyVariance: 0.5})
	if shrunk >= 1.0 {
		t.Fatalf("high variance should shrink bandwidth, got %v", shrunk)
	}
	same := ctl.Adjust(1.0, PopulationStats{EntropyVariance: 0.25})
	if same != 1.0 {
		t.Fatalf("on-target variance should hold, got %v", same)
	}
}

func TestBandwidthControllerClamps(t *testing.T) {
	ctl := BandwidthController{TargetVariance: 0.25, Step: 0.5, Min: 0.9, Max: 1.1}

	if got := ctl.Adjust(1.0, PopulationStats{EntropyVariance: 0}); got != 1.1 {
		t.Fatalf("expected clamp to max 1.1, got %v", got)
	}
	if got := ctl.Adjust(1.0, PopulationStats{EntropyVariance: 1}); got != 0.9 {
		t.Fatalf("expected clamp to min 0.9, got %v", got)
	}
}

func TestThresholdControllerDeadBand(t *testing.T) {
	ctl := ThresholdController{TargetEntropy: 1.0, DeadBand: 0.1, Step: 0.1, Min: 0.5, Max: 10}

	if got := ctl.Adjust(3.0, PopulationStats{MeanEntropy: 1.05}); got != 3.0 {
		t.Fatalf("inside dead band should hold, got %v", got)
	}
	if got := ctl.Adjust(3.0, PopulationStats{MeanEntropy: 1.5}); got != 3.1 {
		t.Fatalf("above target should raise threshold, got %v", got)
	}
	if got := ctl.Adjust(3.0, PopulationStats{MeanEntropy: 0.5}); got != 2.9 {
		t.Fatalf("below target should lower threshold, got %v", got)
	}
}

func TestCoefficientControllerBootstrapAndTrend(t *testing.T) {
	ctl := &CoefficientController{Growth: 0.05, Min: 0.1, Max: 5}

	// First call nudges deterministically so the trend has a baseline.
	excess, disjoint := ctl.Adjust(1.0, 1.0, PopulationStats{ConnectionVariance: 2.0})
	if excess != 1.05 || disjoint != 1.05 {
		t.Fatalf("bootstrap nudge = (%v, %v), want (1.05, 1.05)", excess, disjoint)
	}

	// Rising variance grows the coefficients.
	excess, _ = ctl.Adjust(excess, disjoint, PopulationStats{ConnectionVariance: 3.0})
	if math.Abs(excess-1.05*1.05) > 1e-9 {
		t.Fatalf("rising variance should grow, got %v", excess)
	}

	// Falling variance shrinks them.
	shrunk, _ := ctl.Adjust(excess, disjoint, PopulationStats{ConnectionVariance: 1.0})
	if shrunk >= excess {
		t.Fatalf("falling variance should shrink, got %v from %v", shrunk, excess)
	}
}

func TestCoefficientControllerClamps(t *testing.T) {
	ctl := &CoefficientController{Growth: 1.0, Min: 0.5, Max: 1.2}

	excess, disjoint := ctl.Adjust(1.0, 1.0, PopulationStats{ConnectionVariance: 1.0})
	if excess != 1.2 || disjoint != 1.2 {
		t.Fatalf("expected clamp to max, got (%v, %v)", excess, disjoint)
	}
}
