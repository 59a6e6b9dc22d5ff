package workload

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/checkout-sim/checkout-sim/store"
)

// GenerateShoppers creates a shopper arrival sequence from a ShopperSpec over
// the given catalog. Deterministic given the same spec, catalog and seed.
// Returns arrivals sorted by ArrivalTime with sequential names.
func GenerateShoppers(spec *ShopperSpec, catalog *store.Catalog, horizon int64) ([]store.ShopperArrival, error) {
	if horizon <= 0 {
		return nil, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shopper spec: %w", err)
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("shopper generation requires a non-empty catalog")
	}

	rng := store.NewPartitionedRNG(store.NewSimulationKey(spec.Seed))
	workloadRNG := rng.ForSubsystem(store.SubsystemWorkload)

	cohortRates := normalizeRateFractions(spec.Cohorts, spec.AggregateRate)

	var all []store.ShopperArrival
	for i := range spec.Cohorts {
		cohort := &spec.Cohorts[i]
		rate := cohortRates[i]
		if rate <= 0 {
			continue
		}

		// Per-cohort RNG derived from the workload RNG for isolation.
		cohortRNG := rand.New(rand.NewSource(workloadRNG.Int63()))

		arrivalSampler := NewArrivalSampler(cohort.Arrival, rate/float64(store.TicksPerSecond))
		walletSampler, err := NewValueSampler(cohort.WalletDist, nil)
		if err != nil {
			return nil, fmt.Errorf("cohort %q wallet distribution: %w", cohort.ID, err)
		}
		listSampler, err := NewValueSampler(cohort.ListSizeDist, nil)
		if err != nil {
			return nil, fmt.Errorf("cohort %q list size distribution: %w", cohort.ID, err)
		}
		qtySampler, err := NewValueSampler(cohort.QuantityDist, &ConstantSampler{value: 1})
		if err != nil {
			return nil, fmt.Errorf("cohort %q quantity distribution: %w", cohort.ID, err)
		}
		picker, err := newProductPicker(catalog, cohort.Products)
		if err != nil {
			return nil, fmt.Errorf("cohort %q: %w", cohort.ID, err)
		}

		currentTime := int64(0)
		for currentTime < horizon {
			iat := arrivalSampler.SampleIAT(cohortRNG)
			currentTime += iat
			if currentTime >= horizon {
				break
			}
			all = append(all, store.ShopperArrival{
				ArrivalTime: currentTime,
				Wallet:      walletSampler.Sample(cohortRNG),
				Items:       picker.buildList(cohortRNG, SampleCount(listSampler, cohortRNG), qtySampler),
			})
		}
	}

	// Stable sort preserves cohort order for ties.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ArrivalTime < all[j].ArrivalTime
	})
	if spec.MaxShoppers > 0 && len(all) > spec.MaxShoppers {
		all = all[:spec.MaxShoppers]
	}
	for i := range all {
		all[i].Name = fmt.Sprintf("shopper_%d", i)
	}
	return all, nil
}

// normalizeRateFractions converts per-cohort fractions to absolute rates in
// arrivals per simulated second.
func normalizeRateFractions(cohorts []CohortSpec, aggregate float64) []float64 {
	total := 0.0
	for i := range cohorts {
		total += cohorts[i].RateFraction
	}
	rates := make([]float64, len(cohorts))
	if total <= 0 {
		return rates
	}
	for i := range cohorts {
		rates[i] = aggregate * cohorts[i].RateFraction / total
	}
	return rates
}

// productPicker draws products popularity-weighted from a catalog subset.
type productPicker struct {
	ids     []string
	weights []float64
	total   float64
}

func newProductPicker(catalog *store.Catalog, subset []string) (*productPicker, error) {
	ids := subset
	if len(ids) == 0 {
		ids = catalog.ProductIDs()
	}
	p := &productPicker{}
	for _, id := range ids {
		prod := catalog.Lookup(id)
		if prod == nil {
			return nil, fmt.Errorf("unknown product %q", id)
		}
		w := prod.Popularity
		if w <= 0 {
			w = 1
		}
		p.ids = append(p.ids, id)
		p.weights = append(p.weights, w)
		p.total += w
	}
	return p, nil
}

func (p *productPicker) pick(rng *rand.Rand) string {
	u := rng.Float64() * p.total
	for i, w := range p.weights {
		u -= w
		if u <= 0 {
			return p.ids[i]
		}
	}
	return p.ids[len(p.ids)-1]
}

// buildList draws size distinct-ish products with sampled quantities.
// Duplicate picks merge into one entry with a higher quantity.
func (p *productPicker) buildList(rng *rand.Rand, size int, qty ValueSampler) []store.ListEntry {
	byProduct := make(map[string]int)
	var order []string
	for i := 0; i < size; i++ {
		id := p.pick(rng)
		if _, seen := byProduct[id]; !seen {
			order = append(order, id)
		}
		byProduct[id] += SampleCount(qty, rng)
	}
	entries := make([]store.ListEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, store.ListEntry{ProductID: id, Quantity: byProduct[id]})
	}
	return entries
}
