package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/checkout-sim/checkout-sim/store"
	"github.com/checkout-sim/checkout-sim/store/trace"
	"github.com/checkout-sim/checkout-sim/store/workload"
)

var (
	// CLI flags for the simulation core
	seed              int64  // Seed for random shopper generation
	simulationHorizon int64  // Total simulation time (in ticks)
	logLevel          string // Log verbosity level
	tickInterval      int64  // Ticks advanced per simulation step
	stations          int    // Checkout stations open at start

	// CLI flags for checkout station configs
	beltColumns  int
	beltRows     int
	scanInterval int64
	paymentDelay int64

	// CLI flags for shopper generation
	rate          float64 // Shopper arrivals per simulated second
	maxShoppers   int     // Cap on generated shoppers
	walletMean    float64
	walletStdev   float64
	walletMin     float64
	walletMax     float64
	listSizeMean  float64
	listSizeStdev float64
	listSizeMin   float64
	listSizeMax   float64

	// CLI flags for scenario inputs
	catalogPath  string
	workloadPath string

	// CLI flags for persistence and observability
	saveSnapshotPath    string
	saveSnapshotAt      int64
	restoreSnapshotPath string
	traceLevel          string
	traceOut            string

	// CLI flags for mid-run station lifecycle, entries formatted "id:tick"
	closeStationAt []string
	openStationAt  []string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "checkout-sim",
	Short: "Discrete-event simulator for retail checkout flows",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the checkout simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := store.DefaultSimConfig()
		cfg.Seed = seed
		cfg.Horizon = simulationHorizon
		cfg.TickInterval = tickInterval
		cfg.Stations = stations
		cfg.Station.BeltColumns = beltColumns
		cfg.Station.BeltRows = beltRows
		cfg.Station.ScanInterval = scanInterval
		cfg.Station.PaymentDelay = paymentDelay

		catalog, err := loadCatalog(catalogPath)
		if err != nil {
			logrus.Fatalf("unable to load product catalog: %v", err)
		}

		logrus.Infof("Starting simulation with %d stations, %d products, horizon=%dticks",
			cfg.Stations, catalog.Len(), cfg.Horizon)
		startTime := time.Now()

		s := store.NewSimulator(cfg, catalog)

		if restoreSnapshotPath != "" {
			ws, err := store.LoadSnapshotFile(restoreSnapshotPath)
			if err != nil {
				logrus.Fatalf("unable to load snapshot: %v", err)
			}
			if err := s.RestoreSnapshot(ws); err != nil {
				logrus.Fatalf("unable to restore snapshot: %v", err)
			}
			logrus.Infof("Restored %d agents and %d stations at tick %d",
				len(ws.Agents), len(ws.Stations), ws.Clock)
		}

		spec, err := shopperSpec()
		if err != nil {
			logrus.Fatalf("unable to read shopper gen config: %v", err)
		}
		arrivals, err := workload.GenerateShoppers(spec, catalog, cfg.Horizon)
		if err != nil {
			logrus.Fatalf("unable to generate shoppers: %v", err)
		}
		for _, a := range arrivals {
			if a.ArrivalTime <= s.Clock {
				continue // restored runs skip arrivals already in the past
			}
			s.AddShopper(a)
		}

		lvl, err := trace.ParseLevel(traceLevel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		recorder := trace.NewRecorder(s, lvl)
		recorder.Attach(s)

		scheduleLifecycle(s)

		if saveSnapshotPath != "" && saveSnapshotAt > 0 {
			s.ScheduleSnapshotSave(saveSnapshotPath, saveSnapshotAt)
		}

		s.Run()

		if saveSnapshotPath != "" && saveSnapshotAt <= 0 {
			if err := store.SaveSnapshotFile(saveSnapshotPath, s.CaptureSnapshot()); err != nil {
				logrus.Errorf("snapshot save failed: %v", err)
			}
		}
		if traceOut != "" && lvl > trace.LevelNone {
			if err := recorder.WriteFile(traceOut); err != nil {
				logrus.Errorf("trace write failed: %v", err)
			}
		}

		s.Metrics.Print()
		logrus.Infof("Simulation complete in %v (wall clock).", time.Since(startTime))
	},
}

// shopperSpec builds the generation spec: either the YAML file given by
// --workload, or a single-cohort spec assembled from flags.
func shopperSpec() (*workload.ShopperSpec, error) {
	if workloadPath != "" {
		return workload.LoadShopperSpec(workloadPath)
	}
	return &workload.ShopperSpec{
		Seed:          seed,
		AggregateRate: rate,
		MaxShoppers:   maxShoppers,
		Cohorts: []workload.CohortSpec{{
			ID:           "default",
			RateFraction: 1,
			Arrival:      workload.ArrivalSpec{Process: "poisson"},
			WalletDist: workload.DistSpec{Type: "gaussian", Params: map[string]float64{
				"mean": walletMean, "std_dev": walletStdev, "min": walletMin, "max": walletMax,
			}},
			ListSizeDist: workload.DistSpec{Type: "gaussian", Params: map[string]float64{
				"mean": listSizeMean, "std_dev": listSizeStdev, "min": listSizeMin, "max": listSizeMax,
			}},
		}},
	}, nil
}

// scheduleLifecycle schedules the --close-station-at / --open-station-at
// entries.
func scheduleLifecycle(s *store.Simulator) {
	for _, entry := range closeStationAt {
		id, at, err := parseStationAt(entry)
		if err != nil {
			logrus.Fatalf("invalid --close-station-at entry: %v", err)
		}
		s.ScheduleStationClose(id, at)
	}
	for _, entry := range openStationAt {
		id, at, err := parseStationAt(entry)
		if err != nil {
			logrus.Fatalf("invalid --open-station-at entry: %v", err)
		}
		s.ScheduleStationOpen(id, at)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random shopper generation")
	runCmd.Flags().Int64Var(&simulationHorizon, "horizon", 300*store.TicksPerSecond, "Total simulation horizon (in ticks)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Int64Var(&tickInterval, "tick-interval", 100, "Ticks advanced per simulation step")
	runCmd.Flags().IntVar(&stations, "stations", 2, "Checkout stations open at start")

	// Checkout station configs
	runCmd.Flags().IntVar(&beltColumns, "belt-columns", 4, "Belt grid width")
	runCmd.Flags().IntVar(&beltRows, "belt-rows", 6, "Belt grid height")
	runCmd.Flags().Int64Var(&scanInterval, "scan-interval", 600, "Ticks between item scans")
	runCmd.Flags().Int64Var(&paymentDelay, "payment-delay", 1500, "Fixed payment processing delay (in ticks)")

	// Shopper generation config
	runCmd.Flags().Float64Var(&rate, "rate", 0.5, "Shopper arrivals per simulated second")
	runCmd.Flags().IntVar(&maxShoppers, "max-shoppers", 100, "Cap on generated shoppers (0 = unlimited)")
	runCmd.Flags().Float64Var(&walletMean, "wallet", 40, "Average shopper wallet")
	runCmd.Flags().Float64Var(&walletStdev, "wallet-stdev", 15, "Stddev shopper wallet")
	runCmd.Flags().Float64Var(&walletMin, "wallet-min", 5, "Min shopper wallet")
	runCmd.Flags().Float64Var(&walletMax, "wallet-max", 120, "Max shopper wallet")
	runCmd.Flags().Float64Var(&listSizeMean, "list-size", 4, "Average shopping list size")
	runCmd.Flags().Float64Var(&listSizeStdev, "list-size-stdev", 2, "Stddev shopping list size")
	runCmd.Flags().Float64Var(&listSizeMin, "list-size-min", 1, "Min shopping list size")
	runCmd.Flags().Float64Var(&listSizeMax, "list-size-max", 12, "Max shopping list size")

	// Scenario inputs
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "Product catalog YAML (built-in catalog when empty)")
	runCmd.Flags().StringVar(&workloadPath, "workload", "", "Shopper spec YAML (overrides the generation flags)")

	// Persistence and observability
	runCmd.Flags().StringVar(&saveSnapshotPath, "save-snapshot", "", "Write a world snapshot to this path")
	runCmd.Flags().Int64Var(&saveSnapshotAt, "save-at", 0, "Tick at which to save the snapshot (0 = at end of run)")
	runCmd.Flags().StringVar(&restoreSnapshotPath, "restore-snapshot", "", "Restore the world from this snapshot before running")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, transactions, transitions)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the recorded trace to this path")

	// Mid-run station lifecycle
	runCmd.Flags().StringSliceVar(&closeStationAt, "close-station-at", nil, "Station closures, formatted id:tick")
	runCmd.Flags().StringSliceVar(&openStationAt, "open-station-at", nil, "Station openings, formatted id:tick")

	rootCmd.AddCommand(runCmd)
}
