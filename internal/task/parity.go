package task

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/nn"
)

// Parity scores the even-parity function over Bits inputs. The case count
// grows as 2^Bits, so it stays a toy benchmark for small Bits.
type Parity struct {
	Bits int
}

func (p Parity) Name() string { return fmt.Sprintf("parity%d", p.Bits) }
func (p Parity) Inputs() int  { return p.Bits }
func (p Parity) Outputs() int { return 1 }

func (p Parity) Fitness(_ context.Context, g *genome.Genome) (float64, error) {
	cases := 1 << p.Bits
	score := float64(cases)
	input := make([]float64, p.Bits)
	for pattern := 0; pattern < cases; pattern++ {
		for i := range input {
			input[i] = float64((pattern >> i) & 1)
		}
		want := float64(bits.OnesCount(uint(pattern)) % 2)

		outputs, err := nn.Activate(g, input)
		if err != nil {
			return 0, err
		}
		diff := outputs[0] - want
		score -= diff * diff
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, nil
	}
	return score, nil
}
