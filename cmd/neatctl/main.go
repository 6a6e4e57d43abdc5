package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/reicek/NeatapticTS-sub006/internal/storage"
	"github.com/reicek/NeatapticTS-sub006/internal/task"
	"github.com/reicek/NeatapticTS-sub006/pkg/neatrun"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runEvolve(ctx, args[1:], false)
	case "resume":
		return runEvolve(ctx, args[1:], true)
	case "inspect":
		return runInspect(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neatrun.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := neatrun.New(neatrun.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runEvolve(ctx context.Context, args []string, resume bool) error {
	name := "run"
	if resume {
		name = "resume"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neatrun.db", "sqlite database path")
	configPath := fs.String("config", "", "yaml config overlaying the defaults")
	runID := fs.String("run-id", "", "run identifier")
	taskName := fs.String("task", "xor", "benchmark task")
	population := fs.Int("population", 50, "population size")
	generations := fs.Int("generations", 100, "generations to evolve")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if resume && *runID == "" {
		return usageError("resume requires -run-id")
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	client, err := neatrun.New(neatrun.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ConfigPath: *configPath,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	bench, err := task.ByName(*taskName)
	if err != nil {
		return err
	}

	req := neatrun.RunRequest{
		RunID:       *runID,
		Inputs:      bench.Inputs(),
		Outputs:     bench.Outputs(),
		Population:  *population,
		Generations: *generations,
		Seed:        *seed,
		Fitness:     bench.Fitness,
	}

	started := time.Now()
	var summary neatrun.RunSummary
	if resume {
		summary, err = client.Resume(ctx, req)
	} else {
		summary, err = client.Run(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished after %s generations in %s\n",
		summary.RunID, humanize.Comma(int64(summary.Generations)), time.Since(started).Round(time.Millisecond))
	fmt.Printf("best score %.4f (genome %s, %s nodes, %s connections)\n",
		summary.BestScore, summary.BestGenomeID,
		humanize.Comma(int64(summary.NodeCount)), humanize.Comma(int64(summary.ConnectionCount)))
	if summary.SpeciesCount > 0 {
		fmt.Printf("species: %d\n", summary.SpeciesCount)
	}
	return nil
}

func runInspect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neatrun.db", "sqlite database path")
	genomeID := fs.String("genome", "", "genome id to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *genomeID == "" {
		return usageError("inspect requires -genome")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	record, ok, err := store.GetGenome(ctx, *genomeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("genome %s not found", *genomeID)
	}

	fmt.Printf("genome %s: %d inputs, %d outputs, %s nodes, %s connections, score %.4f\n",
		record.ID, record.InputCount, record.OutputCount,
		humanize.Comma(int64(len(record.Nodes))), humanize.Comma(int64(len(record.Connections))),
		record.Score)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neatctl <init|run|resume|inspect> [flags]", msg)
}
