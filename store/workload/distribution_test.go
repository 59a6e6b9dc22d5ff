package workload

import (
	"math"
	"math/rand"
	"testing"
)

func TestGaussianSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewValueSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 40, "std_dev": 10, "min": 1, "max": 200},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := sum / float64(n)
	if math.Abs(mean-40)/40 > 0.05 {
		t.Errorf("gaussian mean = %.2f, want ≈ 40 (within 5%%)", mean)
	}
}

func TestGaussianSampler_ClampedToRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewValueSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 50, "std_dev": 100, "min": 10, "max": 90},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10000; i++ {
		v := s.Sample(rng)
		if v < 10 || v > 90 {
			t.Errorf("sample %d: %.2f outside [10, 90]", i, v)
			break
		}
	}
}

func TestExponentialSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewValueSampler(DistSpec{
		Type:   "exponential",
		Params: map[string]float64{"mean": 4},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := sum / float64(n)
	if math.Abs(mean-4)/4 > 0.05 {
		t.Errorf("exponential mean = %.2f, want ≈ 4 (within 5%%)", mean)
	}
}

func TestConstantSampler_ZeroVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewValueSampler(DistSpec{
		Type:   "constant",
		Params: map[string]float64{"value": 3},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if v := s.Sample(rng); v != 3 {
			t.Fatalf("constant sample = %.2f, want 3", v)
		}
	}
}

func TestNewValueSampler_MissingParamRejected(t *testing.T) {
	_, err := NewValueSampler(DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 1}}, nil)
	if err == nil {
		t.Error("gaussian without std_dev/min/max should be rejected")
	}
	_, err = NewValueSampler(DistSpec{Type: "nope"}, nil)
	if err == nil {
		t.Error("unknown distribution type should be rejected")
	}
	_, err = NewValueSampler(DistSpec{}, nil)
	if err == nil {
		t.Error("empty type without a fallback should be rejected")
	}
}

func TestNewValueSampler_EmptyTypeUsesFallback(t *testing.T) {
	s, err := NewValueSampler(DistSpec{}, &ConstantSampler{value: 1})
	if err != nil {
		t.Fatal(err)
	}
	if v := s.Sample(rand.New(rand.NewSource(1))); v != 1 {
		t.Errorf("fallback sample = %.2f, want 1", v)
	}
}

func TestSampleCount_FloorsAtOne(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	if n := SampleCount(&ConstantSampler{value: -5}, rng); n != 1 {
		t.Errorf("count = %d, want floor of 1", n)
	}
	if n := SampleCount(&ConstantSampler{value: 2.6}, rng); n != 3 {
		t.Errorf("count = %d, want rounded 3", n)
	}
}

func TestPoissonSampler_MeanIATMatchesRate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, 0.001) // 1 per 1000 ticks
	n := 10000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.SampleIAT(rng)
	}
	mean := float64(sum) / float64(n)
	if math.Abs(mean-1000)/1000 > 0.05 {
		t.Errorf("poisson mean IAT = %.1f ticks, want ≈ 1000 (within 5%%)", mean)
	}
}

func TestGammaSampler_BurstyButCorrectMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cv := 2.0
	s := NewArrivalSampler(ArrivalSpec{Process: "gamma", CV: &cv}, 0.001)
	n := 20000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.SampleIAT(rng)
	}
	mean := float64(sum) / float64(n)
	if math.Abs(mean-1000)/1000 > 0.10 {
		t.Errorf("gamma mean IAT = %.1f ticks, want ≈ 1000 (within 10%%)", mean)
	}
}

func TestConstantIATSampler_EvenSpacing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewArrivalSampler(ArrivalSpec{Process: "constant"}, 0.01)
	for i := 0; i < 10; i++ {
		if iat := s.SampleIAT(rng); iat != 100 {
			t.Fatalf("constant IAT = %d, want 100", iat)
		}
	}
}
