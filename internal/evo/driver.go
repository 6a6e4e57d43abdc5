// Package evo drives structural evolution: operator selection, reuse-aware
// mutation, scoring with optional novelty blending, and the per-generation
// self-tuning pass.
package evo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/reicek/NeatapticTS-sub006/internal/config"
	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
	"github.com/reicek/NeatapticTS-sub006/internal/model"
	"github.com/reicek/NeatapticTS-sub006/internal/tuning"
)

// FitnessFn scores one genome. PopulationFitnessFn scores the whole
// population at once; the returned slice must match the population length.
type (
	FitnessFn           func(ctx context.Context, g *genome.Genome) (float64, error)
	PopulationFitnessFn func(ctx context.Context, genomes []*genome.Genome) ([]float64, error)
	DescriptorFn        func(g *genome.Genome) ([]float64, error)
	DistanceFn          func(a, b *genome.Genome, excess, disjoint float64) float64
)

// Objective is one axis of a multi-objective ranking.
type Objective struct {
	Name string
	Eval func(g *genome.Genome) float64
}

type adaptiveState struct {
	rate   float64
	amount int
}

// EngineConfig wires an Engine. Population and Seed are required; Ledger is
// created from the population's gene block when nil.
type EngineConfig struct {
	Config     config.Config
	Seed       int64
	Logger     *slog.Logger
	Ledger     *innovation.Ledger
	Population []*genome.Genome

	Fitness           FitnessFn
	PopulationFitness PopulationFitnessFn
	Descriptor        DescriptorFn
	Distance          DistanceFn
	Speciation        SpeciationRefresher
}

// Engine holds one run's mutable evolutionary state.
type Engine struct {
	cfg    config.Config
	rng    *rand.Rand
	logger *slog.Logger
	ledger *innovation.Ledger
	seed   int64

	population []*genome.Genome

	fitness           FitnessFn
	populationFitness PopulationFitnessFn
	descriptor        DescriptorFn
	distance          DistanceFn
	speciation        SpeciationRefresher

	pool           []OpKind
	poolIsSentinel bool

	stats    map[OpKind]*model.OperatorStat
	adaptive map[*genome.Genome]*adaptiveState

	sharingBandwidth float64
	compatThreshold  float64
	excessCoeff      float64
	disjointCoeff    float64

	bandwidthCtl tuning.BandwidthController
	thresholdCtl tuning.ThresholdController
	coeffCtl     *tuning.CoefficientController

	objectives        []Objective
	dynamicObjectives bool
	entropyInjected   bool

	archive    [][]float64
	generation int
}

// NewEngine validates the wiring and builds a run-scoped engine. All
// randomness flows through one seeded source so runs replay exactly.
func NewEngine(ec EngineConfig) (*Engine, error) {
	if len(ec.Population) == 0 {
		return nil, errors.New("population must not be empty")
	}
	if err := ec.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if ec.Config.Evaluation.PopulationScoring && ec.PopulationFitness == nil {
		return nil, errors.New("population scoring requires a population fitness function")
	}

	pool, sentinel, err := resolvePool(ec.Config.Mutation.Operators)
	if err != nil {
		return nil, err
	}

	ledger := ec.Ledger
	if ledger == nil {
		var maxGene int64 = -1
		for _, g := range ec.Population {
			for _, n := range g.Nodes {
				if n.GeneID > maxGene {
					maxGene = n.GeneID
				}
			}
		}
		ledger = innovation.NewLedger(maxGene + 1)
	}

	distance := ec.Distance
	if distance == nil {
		distance = CompatibilityDistance
	}

	e := &Engine{
		cfg:               ec.Config,
		rng:               rand.New(rand.NewSource(ec.Seed)),
		logger:            ec.Logger,
		ledger:            ledger,
		seed:              ec.Seed,
		population:        ec.Population,
		fitness:           ec.Fitness,
		populationFitness: ec.PopulationFitness,
		descriptor:        ec.Descriptor,
		distance:          distance,
		speciation:        ec.Speciation,
		pool:              pool,
		poolIsSentinel:    sentinel,
		stats:             make(map[OpKind]*model.OperatorStat),
		adaptive:          make(map[*genome.Genome]*adaptiveState),
		sharingBandwidth:  ec.Config.Tuning.Bandwidth.Initial,
		compatThreshold:   ec.Config.Tuning.Threshold.Initial,
		excessCoeff:       ec.Config.Tuning.Coefficients.InitialExcess,
		disjointCoeff:     ec.Config.Tuning.Coefficients.InitialDisjoint,
		bandwidthCtl: tuning.BandwidthController{
			TargetVariance: ec.Config.Tuning.Bandwidth.TargetVariance,
			Step:           ec.Config.Tuning.Bandwidth.Step,
			Min:            ec.Config.Tuning.Bandwidth.Min,
			Max:            ec.Config.Tuning.Bandwidth.Max,
		},
		thresholdCtl: tuning.ThresholdController{
			TargetEntropy: ec.Config.Tuning.Threshold.TargetEntropy,
			DeadBand:      ec.Config.Tuning.Threshold.DeadBand,
			Step:          ec.Config.Tuning.Threshold.Step,
			Min:           ec.Config.Tuning.Threshold.Min,
			Max:           ec.Config.Tuning.Threshold.Max,
		},
		coeffCtl: &tuning.CoefficientController{
			Growth: ec.Config.Tuning.Coefficients.Growth,
			Min:    ec.Config.Tuning.Coefficients.Min,
			Max:    ec.Config.Tuning.Coefficients.Max,
		},
	}
	return e, nil
}

func (e *Engine) Population() []*genome.Genome    { return e.population }
func (e *Engine) Speciation() SpeciationRefresher { return e.speciation }
func (e *Engine) Ledger() *innovation.Ledger      { return e.ledger }
func (e *Engine) Generation() int                 { return e.generation }
func (e *Engine) CompatibilityThreshold() float64 { return e.compatThreshold }
func (e *Engine) SharingBandwidth() float64       { return e.sharingBandwidth }

// SetPhase switches the phased-complexity direction between generations.
func (e *Engine) SetPhase(phase string) error {
	if phase != config.PhaseComplexify && phase != config.PhaseSimplify {
		return fmt.Errorf("unknown phase: %q", phase)
	}
	e.cfg.Phased.Phase = phase
	return nil
}

// RegisterObjective adds a caller-owned ranking axis. Once any dynamic
// objective exists the automatic entropy objective stays out of the way.
func (e *Engine) RegisterObjective(obj Objective) {
	e.objectives = append(e.objectives, obj)
	e.dynamicObjectives = true
}

func (e *Engine) Objectives() []Objective { return e.objectives }

// extraConnectionChance is the fixed probability of one opportunistic
// connection add per genome per mutation pass, independent of the pool.
const extraConnectionChance = 0.02

// Mutate runs one mutation pass over the population. Each genome gates on
// its (possibly adaptive) rate, then applies the configured amount of
// operator draws.
func (e *Engine) Mutate() error {
	trackStats := e.cfg.Adaptation.Enabled || e.cfg.Bandit.Enabled
	for _, g := range e.population {
		rate := e.cfg.Mutation.Rate
		amount := e.cfg.Mutation.Amount
		if e.cfg.Mutation.Adaptive.Enabled {
			st := e.adaptiveFor(g)
			rate, amount = st.rate, st.amount
		}

		if e.rng.Float64() <= rate {
			for i := 0; i < amount; i++ {
				kind, rawPool, ok := e.SelectMutationMethod(g, true)
				if !ok {
					continue
				}
				if kind == OpNone {
					// Sentinel passthrough: sample the raw pool directly.
					if len(rawPool) == 0 {
						continue
					}
					kind = rawPool[e.rng.Intn(len(rawPool))]
					if !e.withinCeilings(g, kind) {
						continue
					}
				}

				nodesBefore, connsBefore := len(g.Nodes), g.ConnectionCount()
				changed, err := e.applyOperator(g, kind)
				if err != nil {
					return fmt.Errorf("apply %s: %w", kind, err)
				}
				if trackStats {
					stat := e.statFor(kind)
					stat.Attempts++
					if changed && (len(g.Nodes) > nodesBefore || g.ConnectionCount() > connsBefore) {
						stat.Success++
					}
				}
			}
		}

		if e.rng.Float64() < extraConnectionChance && e.withinCeilings(g, OpAddConn) {
			if _, err := AddConnection(g, e.ledger, e.rng); err != nil {
				return fmt.Errorf("opportunistic connection: %w", err)
			}
		}

		if e.cfg.Mutation.Adaptive.Enabled {
			e.driftAdaptive(g)
		}
	}
	return nil
}

func (e *Engine) applyOperator(g *genome.Genome, kind OpKind) (bool, error) {
	switch kind {
	case OpNone:
		return false, nil
	case OpAddNode:
		ok, err := SplitConnection(g, e.ledger, e.rng)
		if err != nil || !ok {
			return ok, err
		}
		e.perturbOneWeight(g)
		return true, nil
	case OpAddConn:
		ok, err := AddConnection(g, e.ledger, e.rng)
		if err != nil || !ok {
			return ok, err
		}
		e.perturbOneWeight(g)
		return true, nil
	default:
		changed, err := e.applyGeneric(g, kind)
		if err != nil {
			return false, err
		}
		if changed && isShapeChangingKind(kind) {
			g.ClearCache()
		}
		return changed, nil
	}
}

func (e *Engine) perturbOneWeight(g *genome.Genome) {
	if len(g.Conns) == 0 {
		return
	}
	c := g.Conns[e.rng.Intn(len(g.Conns))]
	c.Weight += (e.rng.Float64()*2 - 1) * e.cfg.Mutation.WeightPerturb
}

func (e *Engine) adaptiveFor(g *genome.Genome) *adaptiveState {
	st, ok := e.adaptive[g]
	if !ok {
		st = &adaptiveState{
			rate:   e.cfg.Mutation.Adaptive.InitialRate,
			amount: e.cfg.Mutation.Adaptive.InitialAmount,
		}
		e.adaptive[g] = st
	}
	return st
}

// driftAdaptive applies a small random walk to the genome's mutation rate.
func (e *Engine) driftAdaptive(g *genome.Genome) {
	st := e.adaptiveFor(g)
	st.rate += (e.rng.Float64()*2 - 1) * e.cfg.Mutation.Adaptive.Sigma
	if st.rate < 0 {
		st.rate = 0
	}
	if st.rate > 1 {
		st.rate = 1
	}
}

func (e *Engine) statFor(kind OpKind) *model.OperatorStat {
	st, ok := e.stats[kind]
	if !ok {
		st = &model.OperatorStat{}
		e.stats[kind] = st
	}
	return st
}

func (e *Engine) logf(level slog.Level, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Log(context.Background(), level, msg, args...)
	}
}
