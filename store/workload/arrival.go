package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates inter-arrival times for a cohort.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Always returns a positive value (>= 1).
	SampleIAT(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	ratePerTick float64
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) int64 {
	iat := int64(rng.ExpFloat64() / s.ratePerTick)
	if iat < 1 {
		return 1
	}
	return iat
}

// GammaSampler generates Gamma-distributed inter-arrival times; CV > 1
// produces bursty arrivals. Marsaglia-Tsang's method for shape >= 1, with
// transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // CV²/rate in ticks
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) int64 {
	iat := int64(gammaRand(rng, s.shape, s.scale))
	if iat < 1 {
		return 1
	}
	return iat
}

// gammaRand samples from Gamma(shape, scale).
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// ConstantIATSampler generates evenly spaced arrivals.
type ConstantIATSampler struct {
	iat int64
}

func (s *ConstantIATSampler) SampleIAT(_ *rand.Rand) int64 {
	if s.iat < 1 {
		return 1
	}
	return s.iat
}

// NewArrivalSampler creates an ArrivalSampler from a spec and rate.
// ratePerTick is the cohort's shopper rate in arrivals per tick.
func NewArrivalSampler(spec ArrivalSpec, ratePerTick float64) ArrivalSampler {
	if ratePerTick < 1e-15 {
		ratePerTick = 1e-15
	}
	switch spec.Process {
	case "poisson":
		return &PoissonSampler{ratePerTick: ratePerTick}

	case "gamma":
		cv := 1.0
		if spec.CV != nil && *spec.CV > 0 {
			cv = *spec.CV
		}
		shape := 1.0 / (cv * cv)
		mean := 1.0 / ratePerTick
		scale := mean * cv * cv
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{ratePerTick: ratePerTick}
		}
		return &GammaSampler{shape: shape, scale: scale}

	case "constant":
		return &ConstantIATSampler{iat: int64(1.0 / ratePerTick)}

	default:
		// Validated before reaching here; defensive fallback
		return &PoissonSampler{ratePerTick: ratePerTick}
	}
}
