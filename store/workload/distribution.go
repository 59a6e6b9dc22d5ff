package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// ValueSampler generates continuous samples for wallets, list sizes and
// per-item quantities.
type ValueSampler interface {
	// Sample returns a non-negative value.
	Sample(rng *rand.Rand) float64
}

// GaussianSampler produces clamped Gaussian values.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     float64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) float64 {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	return math.Min(s.max, math.Max(s.min, val))
}

// ExponentialSampler produces exponentially-distributed values.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

// UniformSampler produces values uniform on [min, max].
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	if s.max <= s.min {
		return s.min
	}
	return s.min + rng.Float64()*(s.max-s.min)
}

// ConstantSampler always returns the same fixed value.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return s.value
}

// SampleCount draws from the sampler and rounds to a count of at least 1.
func SampleCount(s ValueSampler, rng *rand.Rand) int {
	n := int(math.Round(s.Sample(rng)))
	if n < 1 {
		return 1
	}
	return n
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewValueSampler creates a ValueSampler from a DistSpec. An empty spec falls
// back to the provided default.
func NewValueSampler(spec DistSpec, fallback ValueSampler) (ValueSampler, error) {
	switch spec.Type {
	case "":
		if fallback == nil {
			return nil, fmt.Errorf("distribution type missing and no default applies")
		}
		return fallback, nil

	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    spec.Params["min"],
			max:    spec.Params["max"],
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return &UniformSampler{min: spec.Params["min"], max: spec.Params["max"]}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: spec.Params["value"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
