// Package neatrun is the embedding API: it owns the store, builds the
// engine, and drives whole runs from seed population to checkpoint.
package neatrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/reicek/NeatapticTS-sub006/internal/config"
	"github.com/reicek/NeatapticTS-sub006/internal/evo"
	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/innovation"
	"github.com/reicek/NeatapticTS-sub006/internal/storage"
)

const defaultDBPath = "neatrun.db"

type Options struct {
	StoreKind  string
	DBPath     string
	ConfigPath string
	Logger     *slog.Logger
}

type Client struct {
	store  storage.Store
	cfg    config.Config
	logger *slog.Logger
}

type RunRequest struct {
	RunID       string
	Inputs      int
	Outputs     int
	Population  int
	Generations int
	Seed        int64

	Fitness           evo.FitnessFn
	PopulationFitness evo.PopulationFitnessFn
	Descriptor        evo.DescriptorFn
}

type RunSummary struct {
	RunID           string
	Generations     int
	BestScore       float64
	BestGenomeID    string
	SpeciesCount    int
	NodeCount       int
	ConnectionCount int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:  store,
		cfg:    cfg,
		logger: opts.Logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Config() config.Config { return c.cfg }

// Run seeds a fully connected population, evolves it for the requested
// number of generations and persists the survivors plus a resumable
// checkpoint.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := normalizeRequest(&req); err != nil {
		return RunSummary{}, err
	}

	ledger := innovation.NewLedger(int64(req.Inputs + req.Outputs))
	seedRng := rand.New(rand.NewSource(req.Seed + 1000))

	population := make([]*genome.Genome, req.Population)
	for i := range population {
		g := genome.New(req.Inputs, req.Outputs)
		g.Acyclic = !c.cfg.Mutation.Recurrence
		g.Logger = c.logger
		if err := evo.SeedConnections(g, ledger, seedRng); err != nil {
			return RunSummary{}, fmt.Errorf("seed population: %w", err)
		}
		population[i] = g
	}

	engine, err := c.newEngine(req, ledger, population)
	if err != nil {
		return RunSummary{}, err
	}
	return c.evolve(ctx, req, engine)
}

// Resume loads the checkpoint and genomes saved under runID and continues
// the run. Previously seen structural mutations reuse their original
// identities because the ledger is restored verbatim.
func (c *Client) Resume(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.RunID == "" {
		return RunSummary{}, errors.New("run id is required to resume")
	}
	if err := normalizeRequest(&req); err != nil {
		return RunSummary{}, err
	}

	checkpoint, ok, err := c.store.GetCheckpoint(ctx, req.RunID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return RunSummary{}, fmt.Errorf("no checkpoint for run %s", req.RunID)
	}

	population := make([]*genome.Genome, 0, len(checkpoint.GenomeIDs))
	for _, id := range checkpoint.GenomeIDs {
		record, found, err := c.store.GetGenome(ctx, id)
		if err != nil {
			return RunSummary{}, fmt.Errorf("load genome %s: %w", id, err)
		}
		if !found {
			return RunSummary{}, fmt.Errorf("checkpoint references missing genome %s", id)
		}
		g, err := genome.FromRecord(record)
		if err != nil {
			return RunSummary{}, fmt.Errorf("rebuild genome %s: %w", id, err)
		}
		g.Logger = c.logger
		population = append(population, g)
	}
	if len(population) == 0 {
		return RunSummary{}, fmt.Errorf("checkpoint for run %s holds no genomes", req.RunID)
	}

	engine, err := c.newEngine(req, nil, population)
	if err != nil {
		return RunSummary{}, err
	}
	if err := engine.RestoreCheckpoint(checkpoint); err != nil {
		return RunSummary{}, err
	}
	return c.evolve(ctx, req, engine)
}

func (c *Client) newEngine(req RunRequest, ledger *innovation.Ledger, population []*genome.Genome) (*evo.Engine, error) {
	var refresher evo.SpeciationRefresher
	if c.cfg.Speciation.TargetSpecies > 0 {
		refresher = &evo.GreedySpeciation{}
	}
	return evo.NewEngine(evo.EngineConfig{
		Config:            c.cfg,
		Seed:              req.Seed,
		Logger:            c.logger,
		Ledger:            ledger,
		Population:        population,
		Fitness:           req.Fitness,
		PopulationFitness: req.PopulationFitness,
		Descriptor:        req.Descriptor,
		Speciation:        refresher,
	})
}

func (c *Client) evolve(ctx context.Context, req RunRequest, engine *evo.Engine) (RunSummary, error) {
	for i := 0; i < req.Generations; i++ {
		if err := ctx.Err(); err != nil {
			return RunSummary{}, err
		}
		if err := engine.Mutate(); err != nil {
			return RunSummary{}, fmt.Errorf("generation %d: %w", engine.Generation(), err)
		}
		if _, err := engine.Evaluate(ctx); err != nil {
			return RunSummary{}, fmt.Errorf("generation %d: %w", engine.Generation(), err)
		}
	}

	population := engine.Population()
	best := population[0]
	for _, g := range population[1:] {
		if g.Score > best.Score {
			best = g
		}
	}

	ids := make([]string, len(population))
	var bestID string
	for i, g := range population {
		ids[i] = uuid.NewString()
		if g == best {
			bestID = ids[i]
		}
		if err := c.store.SaveGenome(ctx, g.ToRecord(ids[i])); err != nil {
			return RunSummary{}, fmt.Errorf("save genome: %w", err)
		}
	}
	if err := c.store.SaveCheckpoint(ctx, engine.Checkpoint(req.RunID, ids)); err != nil {
		return RunSummary{}, fmt.Errorf("save checkpoint: %w", err)
	}

	summary := RunSummary{
		RunID:           req.RunID,
		Generations:     engine.Generation(),
		BestScore:       best.Score,
		BestGenomeID:    bestID,
		NodeCount:       len(best.Nodes),
		ConnectionCount: best.ConnectionCount(),
	}
	if refresher := engine.Speciation(); refresher != nil {
		summary.SpeciesCount = refresher.Count()
	}
	return summary, nil
}

func normalizeRequest(req *RunRequest) error {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Inputs <= 0 {
		req.Inputs = 2
	}
	if req.Outputs <= 0 {
		req.Outputs = 1
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Fitness == nil && req.PopulationFitness == nil {
		return errors.New("a fitness function is required")
	}
	return nil
}
