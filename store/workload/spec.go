package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ShopperSpec is the top-level shopper-population configuration.
// Loaded from YAML via LoadShopperSpec(path).
type ShopperSpec struct {
	Seed          int64        `yaml:"seed"`
	Cohorts       []CohortSpec `yaml:"cohorts"`
	AggregateRate float64      `yaml:"aggregate_rate"` // shoppers per simulated second
	Horizon       int64        `yaml:"horizon,omitempty"`
	MaxShoppers   int          `yaml:"max_shoppers,omitempty"` // 0 = unlimited (use horizon only)
}

// CohortSpec defines one shopper cohort's behavior.
type CohortSpec struct {
	ID           string      `yaml:"id"`
	RateFraction float64     `yaml:"rate_fraction"`
	Arrival      ArrivalSpec `yaml:"arrival"`
	WalletDist   DistSpec    `yaml:"wallet_distribution"`
	ListSizeDist DistSpec    `yaml:"list_size_distribution"`
	QuantityDist DistSpec    `yaml:"quantity_distribution,omitempty"`
	// Products restricts the cohort to a subset of the catalog; empty means
	// the whole catalog, weighted by product popularity.
	Products []string `yaml:"products,omitempty"`
}

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

// DistSpec parameterizes a value distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Valid value registries.
var (
	validArrivalProcesses = map[string]bool{
		"poisson": true, "gamma": true, "constant": true,
	}
	validDistTypes = map[string]bool{
		"": true, "gaussian": true, "exponential": true, "uniform": true, "constant": true,
	}
)

// LoadShopperSpec reads and parses a YAML shopper specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadShopperSpec(path string) (*ShopperSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shopper spec: %w", err)
	}
	var spec ShopperSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing shopper spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *ShopperSpec) Validate() error {
	if s.AggregateRate <= 0 {
		return fmt.Errorf("aggregate_rate must be positive, got %f", s.AggregateRate)
	}
	if len(s.Cohorts) == 0 {
		return fmt.Errorf("at least one cohort required")
	}
	for i := range s.Cohorts {
		if err := validateCohort(&s.Cohorts[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateCohort(c *CohortSpec, idx int) error {
	prefix := fmt.Sprintf("cohort[%d]", idx)
	if c.RateFraction <= 0 {
		return fmt.Errorf("%s: rate_fraction must be positive, got %f", prefix, c.RateFraction)
	}
	if !validArrivalProcesses[c.Arrival.Process] {
		return fmt.Errorf("%s: unknown arrival process %q; valid: poisson, gamma, constant", prefix, c.Arrival.Process)
	}
	if c.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".cv", *c.Arrival.CV); err != nil {
			return err
		}
	}
	if err := validateDistSpec(prefix+".wallet_distribution", &c.WalletDist); err != nil {
		return err
	}
	if err := validateDistSpec(prefix+".list_size_distribution", &c.ListSizeDist); err != nil {
		return err
	}
	if err := validateDistSpec(prefix+".quantity_distribution", &c.QuantityDist); err != nil {
		return err
	}
	return nil
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: gaussian, exponential, uniform, constant", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
