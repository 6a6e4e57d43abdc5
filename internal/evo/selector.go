package evo

import (
	"fmt"
	"math"

	"github.com/reicek/NeatapticTS-sub006/internal/config"
	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

// resolvePool expands the configured operator names into kinds. The
// all_feedforward sentinel expands to the full feedforward set and marks
// the pool so identity-sensitive callers can receive it verbatim.
func resolvePool(names []string) ([]OpKind, bool, error) {
	pool := make([]OpKind, 0, len(names))
	sentinel := false
	for _, name := range names {
		if name == config.OperatorPoolAll {
			sentinel = true
			pool = append(pool, AllFeedforward...)
			continue
		}
		kind, err := OpKindFromString(name)
		if err != nil {
			return nil, false, fmt.Errorf("operator pool: %w", err)
		}
		pool = append(pool, kind)
	}
	return pool, sentinel, nil
}

// SelectMutationMethod picks the operator to apply to g. When the configured
// pool is the all_feedforward sentinel and raw is true, the pool itself is
// returned (kind OpNone) so the caller samples it without phased, adaptation
// or bandit bias. Otherwise the pool is augmented by the enabled policies,
// sampled, optionally overridden by the bandit, and checked against the
// structural ceilings. A false third return means no operator is applicable.
func (e *Engine) SelectMutationMethod(g *genome.Genome, raw bool) (OpKind, []OpKind, bool) {
	if e.poolIsSentinel && raw {
		return OpNone, e.pool, true
	}

	pool := e.augmentPool()
	if len(pool) == 0 {
		return OpNone, nil, false
	}

	kind := pool[e.rng.Intn(len(pool))]
	if !e.withinCeilings(g, kind) {
		return OpNone, nil, false
	}

	if e.cfg.Bandit.Enabled {
		kind = e.banditChoice(pool)
		if !e.withinCeilings(g, kind) {
			return OpNone, nil, false
		}
	}
	return kind, nil, true
}

// augmentPool biases the base pool: the active phase doubles the weight of
// its addition or removal operators, and operators with a proven success
// ratio gain extra copies proportional to that ratio.
func (e *Engine) augmentPool() []OpKind {
	pool := make([]OpKind, len(e.pool))
	copy(pool, e.pool)

	if e.cfg.Phased.Enabled {
		var favored []OpKind
		switch e.cfg.Phased.Phase {
		case config.PhaseSimplify:
			favored = removalKinds
		case config.PhaseComplexify:
			favored = additionKinds
		}
		for _, kind := range e.pool {
			if containsKind(favored, kind) {
				pool = append(pool, kind)
			}
		}
	}

	if e.cfg.Adaptation.Enabled {
		for _, kind := range e.pool {
			st, ok := e.stats[kind]
			if !ok || st.Attempts <= e.cfg.Adaptation.MinAttempts {
				continue
			}
			ratio := float64(st.Success) / float64(st.Attempts)
			if ratio <= e.cfg.Adaptation.SuccessThreshold {
				continue
			}
			copies := int(math.Round(ratio * float64(e.cfg.Adaptation.BoostMultiplier)))
			if copies > e.cfg.Adaptation.BoostMultiplier {
				copies = e.cfg.Adaptation.BoostMultiplier
			}
			for i := 0; i < copies; i++ {
				pool = append(pool, kind)
			}
		}
	}
	return pool
}

// banditChoice ranks the distinct operators of the pool by UCB1 and returns
// the best. Operators below the attempt floor score +Inf so every arm gets
// pulled before exploitation starts.
func (e *Engine) banditChoice(pool []OpKind) OpKind {
	distinct := make([]OpKind, 0, len(pool))
	for _, kind := range pool {
		if !containsKind(distinct, kind) {
			distinct = append(distinct, kind)
		}
	}

	total := 0
	for _, kind := range distinct {
		if st, ok := e.stats[kind]; ok {
			total += st.Attempts
		}
	}
	if total < 1 {
		total = 1
	}

	best := distinct[0]
	bestScore := math.Inf(-1)
	for _, kind := range distinct {
		st := e.statFor(kind)
		var score float64
		if st.Attempts < e.cfg.Bandit.MinAttempts {
			score = math.Inf(1)
		} else {
			score = float64(st.Success)/float64(st.Attempts) +
				e.cfg.Bandit.Exploration*math.Sqrt(math.Log(float64(total))/float64(st.Attempts))
		}
		if score > bestScore {
			best, bestScore = kind, score
		}
	}
	return best
}

// withinCeilings rejects operators the genome has no room for, and the
// recurrent family when recurrence is disabled.
func (e *Engine) withinCeilings(g *genome.Genome, kind OpKind) bool {
	if isRecurrentKind(kind) && !e.cfg.Mutation.Recurrence {
		return false
	}
	m := e.cfg.Mutation
	switch kind {
	case OpAddNode:
		if m.MaxNodes > 0 && len(g.Nodes) >= m.MaxNodes {
			return false
		}
	case OpAddConn, OpAddSelfConn, OpAddBackConn:
		if m.MaxConnections > 0 && g.ConnectionCount() >= m.MaxConnections {
			return false
		}
	case OpAddGate:
		if m.MaxGates > 0 && len(g.Gates) >= m.MaxGates {
			return false
		}
	}
	return true
}

func containsKind(kinds []OpKind, kind OpKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
