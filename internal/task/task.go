// Package task provides built-in benchmark tasks that score genomes through
// a forward pass. Tasks are looked up by name so the CLI and embedding API
// can select them from configuration.
package task

import (
	"context"
	"fmt"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
)

// Task is one benchmark problem: a fixed input/output shape plus a scoring
// function over a genome.
type Task interface {
	Name() string
	Inputs() int
	Outputs() int
	Fitness(ctx context.Context, g *genome.Genome) (float64, error)
}

var registry = map[string]Task{}

func register(t Task) {
	registry[t.Name()] = t
}

func init() {
	register(XOR{})
	register(Parity{Bits: 3})
}

// ByName resolves a registered task.
func ByName(name string) (Task, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown task: %s", name)
	}
	return t, nil
}

// Names lists the registered task names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
