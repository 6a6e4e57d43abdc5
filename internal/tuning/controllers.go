package tuning

import "math"

// Result reports one controller invocation. Err is recorded by the
// supervisor and never propagated into the scoring path.
type Result struct {
	Name    string
	Applied bool
	Before  float64
	After   float64
	Err     error
}

// BandwidthController nudges the fitness-sharing bandwidth multiplicatively
// toward a target entropy variance: low variance widens the bandwidth to
// push diversity, high variance shrinks it.
type BandwidthController struct {
	TargetVariance float64
	Step           float64
	Min            float64
	Max            float64
}

func (c BandwidthController) Name() string { return "sharing_bandwidth" }

func (c BandwidthController) Adjust(current float64, s PopulationStats) float64 {
	next := current
	if s.EntropyVariance < c.TargetVariance {
		next = current * (1 + c.Step)
	} else if s.EntropyVariance > c.TargetVariance {
		next = current * (1 - c.Step)
	}
	return clamp(next, c.Min, c.Max)
}

// ThresholdController nudges the species compatibility threshold additively
// toward a target mean entropy, ignoring drift inside the dead band.
type ThresholdController struct {
	TargetEntropy float64
	DeadBand      float64
	Step          float64
	Min           float64
	Max           float64
}

func (c ThresholdController) Name() string { return "compatibility_threshold" }

func (c ThresholdController) Adjust(current float64, s PopulationStats) float64 {
	diff := s.MeanEntropy - c.TargetEntropy
	if math.Abs(diff) <= c.DeadBand {
		return current
	}
	next := current
	if diff > 0 {
		next = current + c.Step
	} else {
		next = current - c.Step
	}
	return clamp(next, c.Min, c.Max)
}

// CoefficientController scales the excess/disjoint distance coefficients by
// the trend of the connection-count variance against its previous value.
// The first invocation applies one deterministic bootstrap nudge so the
// trend comparison has a baseline.
type CoefficientController struct {
	Growth float64
	Min    float64
	Max    float64

	prevVariance float64
	primed       bool
}

func (c *CoefficientController) Name() string { return "distance_coefficients" }

func (c *CoefficientController) Adjust(excess, disjoint float64, s PopulationStats) (float64, float64) {
	if !c.primed {
		c.primed = true
		c.prevVariance = s.ConnectionVariance
		return clamp(excess*(1+c.Growth), c.Min, c.Max), clamp(disjoint*(1+c.Growth), c.Min, c.Max)
	}

	factor := 1 - c.Growth
	if s.ConnectionVariance > c.prevVariance {
		factor = 1 + c.Growth
	}
	c.prevVariance = s.ConnectionVariance
	return clamp(excess*factor, c.Min, c.Max), clamp(disjoint*factor, c.Min, c.Max)
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
