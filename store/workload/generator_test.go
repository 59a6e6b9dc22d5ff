package workload

import (
	"testing"

	"github.com/checkout-sim/checkout-sim/store"
)

func testCatalog(t *testing.T) *store.Catalog {
	t.Helper()
	catalog, err := store.NewCatalog([]store.Product{
		{ID: "milk", Price: 1.50, Popularity: 10, Stock: 50},
		{ID: "bread", Price: 2.20, Popularity: 5, Stock: 50},
		{ID: "caviar", Price: 30, Popularity: 0.1, Stock: 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	return catalog
}

func testSpec() *ShopperSpec {
	return &ShopperSpec{
		Seed:          42,
		AggregateRate: 1, // one shopper per simulated second
		Cohorts: []CohortSpec{{
			ID:           "default",
			RateFraction: 1,
			Arrival:      ArrivalSpec{Process: "poisson"},
			WalletDist:   DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 40, "std_dev": 10, "min": 5, "max": 100}},
			ListSizeDist: DistSpec{Type: "constant", Params: map[string]float64{"value": 3}},
		}},
	}
}

func TestGenerateShoppers_Deterministic(t *testing.T) {
	catalog := testCatalog(t)
	horizon := int64(60 * store.TicksPerSecond)

	a, err := GenerateShoppers(testSpec(), catalog, horizon)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateShoppers(testSpec(), catalog, horizon)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ArrivalTime != b[i].ArrivalTime || a[i].Wallet != b[i].Wallet || a[i].Name != b[i].Name {
			t.Fatalf("shopper %d diverged: %+v vs %+v", i, a[i], b[i])
		}
		if len(a[i].Items) != len(b[i].Items) {
			t.Fatalf("shopper %d list lengths diverged", i)
		}
	}
}

func TestGenerateShoppers_RateRoughlyHonored(t *testing.T) {
	horizon := int64(600 * store.TicksPerSecond)
	arrivals, err := GenerateShoppers(testSpec(), testCatalog(t), horizon)
	if err != nil {
		t.Fatal(err)
	}
	// 1/s over 600s: Poisson count should land near 600.
	if len(arrivals) < 450 || len(arrivals) > 750 {
		t.Errorf("generated %d shoppers over 600s at 1/s, want roughly 600", len(arrivals))
	}
}

func TestGenerateShoppers_SortedWithSequentialNames(t *testing.T) {
	arrivals, err := GenerateShoppers(testSpec(), testCatalog(t), 60*store.TicksPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(arrivals) == 0 {
		t.Fatal("expected some shoppers")
	}
	for i := 1; i < len(arrivals); i++ {
		if arrivals[i].ArrivalTime < arrivals[i-1].ArrivalTime {
			t.Fatalf("arrivals out of order at %d", i)
		}
	}
	if arrivals[0].Name != "shopper_0" {
		t.Errorf("first name = %s, want shopper_0", arrivals[0].Name)
	}
}

func TestGenerateShoppers_MaxShoppersCap(t *testing.T) {
	spec := testSpec()
	spec.MaxShoppers = 5
	arrivals, err := GenerateShoppers(spec, testCatalog(t), 600*store.TicksPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(arrivals) != 5 {
		t.Errorf("generated %d shoppers, want capped 5", len(arrivals))
	}
}

func TestGenerateShoppers_ListQuantitiesMerged(t *testing.T) {
	arrivals, err := GenerateShoppers(testSpec(), testCatalog(t), 600*store.TicksPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range arrivals {
		seen := make(map[string]bool)
		total := 0
		for _, e := range a.Items {
			if seen[e.ProductID] {
				t.Fatalf("%s has duplicate list entry for %s", a.Name, e.ProductID)
			}
			seen[e.ProductID] = true
			if e.Quantity < 1 {
				t.Fatalf("%s wants %d of %s", a.Name, e.Quantity, e.ProductID)
			}
			total += e.Quantity
		}
		if total < 3 {
			t.Fatalf("%s wants %d units, list size sampler says 3", a.Name, total)
		}
	}
}

func TestGenerateShoppers_CohortProductSubset(t *testing.T) {
	spec := testSpec()
	spec.Cohorts[0].Products = []string{"milk"}
	arrivals, err := GenerateShoppers(spec, testCatalog(t), 60*store.TicksPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range arrivals {
		for _, e := range a.Items {
			if e.ProductID != "milk" {
				t.Fatalf("%s wants %s outside the cohort subset", a.Name, e.ProductID)
			}
		}
	}
}

func TestGenerateShoppers_UnknownProductRejected(t *testing.T) {
	spec := testSpec()
	spec.Cohorts[0].Products = []string{"unobtainium"}
	if _, err := GenerateShoppers(spec, testCatalog(t), 60*store.TicksPerSecond); err == nil {
		t.Error("unknown cohort product should be rejected")
	}
}

func TestGenerateShoppers_ZeroHorizonEmpty(t *testing.T) {
	arrivals, err := GenerateShoppers(testSpec(), testCatalog(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(arrivals) != 0 {
		t.Errorf("zero horizon generated %d shoppers, want 0", len(arrivals))
	}
}

func TestShopperSpec_ValidationErrors(t *testing.T) {
	spec := testSpec()
	spec.AggregateRate = 0
	if err := spec.Validate(); err == nil {
		t.Error("zero aggregate rate should be rejected")
	}

	spec = testSpec()
	spec.Cohorts = nil
	if err := spec.Validate(); err == nil {
		t.Error("empty cohort list should be rejected")
	}

	spec = testSpec()
	spec.Cohorts[0].Arrival.Process = "fibonacci"
	if err := spec.Validate(); err == nil {
		t.Error("unknown arrival process should be rejected")
	}

	spec = testSpec()
	spec.Cohorts[0].WalletDist.Type = "nope"
	if err := spec.Validate(); err == nil {
		t.Error("unknown distribution type should be rejected")
	}
}
