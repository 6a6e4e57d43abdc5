package evo

import (
	"context"
	"math/rand"
	"testing"

	"github.com/reicek/NeatapticTS-sub006/internal/config"
	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
	"github.com/reicek/NeatapticTS-sub006/internal/model"
)

func constantFitness(_ context.Context, _ *genome.Genome) (float64, error) {
	return 1, nil
}

func newTestEngine(t *testing.T, popSize int, tweak func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default()
	if tweak != nil {
		tweak(&cfg)
	}

	ledger := innovation.NewLedger(3)
	rng := rand.New(rand.NewSource(7))
	population := make([]*genome.Genome, popSize)
	for i := range population {
		g := genome.New(2, 1)
		g.Acyclic = true
		if err := SeedConnections(g, ledger, rng); err != nil {
			t.Fatalf("seed: %v", err)
		}
		population[i] = g
	}

	engine, err := NewEngine(EngineConfig{
		Config:     cfg,
		Seed:       7,
		Ledger:     ledger,
		Population: population,
		Fitness:    constantFitness,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestResolvePoolSentinel(t *testing.T) {
	pool, sentinel, err := resolvePool([]string{config.OperatorPoolAll})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !sentinel {
		t.Fatal("expected sentinel pool")
	}
	if len(pool) != len(AllFeedforward) {
		t.Fatalf("pool size = %d, want %d", len(pool), len(AllFeedforward))
	}
}

func TestResolvePoolRejectsUnknown(t *testing.T) {
	if _, _, err := resolvePool([]string{"teleport"}); err == nil {
		t.Fatal("expected unknown operator error")
	}
}

func TestSelectReturnsRawSentinelPool(t *testing.T) {
	engine := newTestEngine(t, 1, nil)

	kind, pool, ok := engine.SelectMutationMethod(engine.population[0], true)
	if !ok || kind != OpNone {
		t.Fatalf("expected raw pool passthrough, got kind=%v ok=%v", kind, ok)
	}
	if len(pool) != len(AllFeedforward) {
		t.Fatalf("raw pool size = %d, want %d", len(pool), len(AllFeedforward))
	}
}

func TestSelectHonorsNodeCeiling(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"add_node"}
		cfg.Mutation.MaxNodes = 3
	})

	// The genome already has 3 nodes, so the only operator is blocked.
	if _, _, ok := engine.SelectMutationMethod(engine.population[0], false); ok {
		t.Fatal("expected node ceiling to block selection")
	}
}

func TestSelectBlocksRecurrentKindsWithoutRecurrence(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"add_self_conn"}
	})

	if _, _, ok := engine.SelectMutationMethod(engine.population[0], false); ok {
		t.Fatal("expected recurrent operator to be blocked")
	}
}

func TestBanditPrefersUnderexploredOperator(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"mod_weight", "mod_bias"}
		cfg.Bandit.Enabled = true
		cfg.Bandit.MinAttempts = 5
	})
	engine.stats[OpModWeight] = &model.OperatorStat{Success: 8, Attempts: 10}
	engine.stats[OpModBias] = &model.OperatorStat{Success: 1, Attempts: 2}

	// mod_bias sits below the attempt floor and scores +Inf.
	kind, _, ok := engine.SelectMutationMethod(engine.population[0], false)
	if !ok || kind != OpModBias {
		t.Fatalf("expected mod_bias, got %v ok=%v", kind, ok)
	}
}

func TestBanditExploitsBestRatio(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"mod_weight", "mod_bias"}
		cfg.Bandit.Enabled = true
		cfg.Bandit.MinAttempts = 5
		cfg.Bandit.Exploration = 0
	})
	engine.stats[OpModWeight] = &model.OperatorStat{Success: 9, Attempts: 10}
	engine.stats[OpModBias] = &model.OperatorStat{Success: 2, Attempts: 10}

	kind, _, ok := engine.SelectMutationMethod(engine.population[0], false)
	if !ok || kind != OpModWeight {
		t.Fatalf("expected mod_weight, got %v ok=%v", kind, ok)
	}
}

func TestAugmentPoolPhasedSimplify(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"add_conn", "sub_conn"}
		cfg.Phased.Enabled = true
		cfg.Phased.Phase = config.PhaseSimplify
	})

	pool := engine.augmentPool()
	subs := 0
	for _, kind := range pool {
		if kind == OpSubConn {
			subs++
		}
	}
	if subs != 2 {
		t.Fatalf("simplify should double sub_conn weight, got %d copies", subs)
	}
}

func TestAugmentPoolAdaptationBoost(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"mod_weight", "mod_bias"}
		cfg.Adaptation.Enabled = true
	})
	engine.stats[OpModWeight] = &model.OperatorStat{Success: 8, Attempts: 10}

	// Ratio 0.8 over threshold 0.5: round(0.8 * 3) = 2 extra copies.
	pool := engine.augmentPool()
	if len(pool) != 4 {
		t.Fatalf("pool size = %d, want base 2 + 2 boost copies", len(pool))
	}
}

func TestAugmentPoolBoostSkipsColdOperators(t *testing.T) {
	engine := newTestEngine(t, 1, func(cfg *config.Config) {
		cfg.Mutation.Operators = []string{"mod_weight", "mod_bias"}
		cfg.Adaptation.Enabled = true
	})
	engine.stats[OpModWeight] = &model.OperatorStat{Success: 3, Attempts: 3}

	// Perfect ratio but only 3 attempts, below the floor of 5.
	if pool := engine.augmentPool(); len(pool) != 2 {
		t.Fatalf("pool size = %d, want unboosted 2", len(pool))
	}
}
