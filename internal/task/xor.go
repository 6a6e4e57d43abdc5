package task

import (
	"context"
	"math"

	"github.com/reicek/NeatapticTS-sub006/internal/genome"
	"github.com/reicek/NeatapticTS-sub006/internal/nn"
)

type xorCase struct {
	in   [2]float64
	want float64
}

var xorCases = []xorCase{
	{in: [2]float64{0, 0}, want: 0},
	{in: [2]float64{0, 1}, want: 1},
	{in: [2]float64{1, 0}, want: 1},
	{in: [2]float64{1, 1}, want: 0},
}

// XOR scores by negated squared error over the truth table, shifted so a
// perfect solver scores 4.
type XOR struct{}

func (XOR) Name() string { return "xor" }
func (XOR) Inputs() int  { return 2 }
func (XOR) Outputs() int { return 1 }

func (XOR) Fitness(_ context.Context, g *genome.Genome) (float64, error) {
	score := float64(len(xorCases))
	for _, c := range xorCases {
		outputs, err := nn.Activate(g, c.in[:])
		if err != nil {
			return 0, err
		}
		diff := outputs[0] - c.want
		score -= diff * diff
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, nil
	}
	return score, nil
}
