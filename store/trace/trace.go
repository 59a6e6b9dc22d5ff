// Package trace records per-agent state transitions and per-station
// transaction events for post-run inspection. Recording is opt-in: the
// default level keeps the recorder inert.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/checkout-sim/checkout-sim/store"
)

// Level selects how much the recorder keeps.
type Level int

const (
	// LevelNone records nothing.
	LevelNone Level = iota
	// LevelTransactions records station transaction events only.
	LevelTransactions
	// LevelTransitions additionally records every agent state transition.
	LevelTransitions
)

// ParseLevel maps a CLI flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "none":
		return LevelNone, nil
	case "transactions":
		return LevelTransactions, nil
	case "transitions":
		return LevelTransitions, nil
	}
	return LevelNone, fmt.Errorf("unknown trace level %q", s)
}

// TransitionRecord is one agent state change.
type TransitionRecord struct {
	Tick     int64  `json:"tick"`
	Customer string `json:"customer"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// TransactionRecord is one station-side transaction event.
type TransactionRecord struct {
	Tick     int64   `json:"tick"`
	Station  string  `json:"station"`
	Customer string  `json:"customer,omitempty"`
	Kind     string  `json:"kind"` // started | scanned | completed
	Product  string  `json:"product,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
}

// Recorder collects simulation events. It implements store.StationListener
// and provides the transition hook for customer agents.
type Recorder struct {
	store.NopStationListener

	clock store.Clock
	level Level

	Transitions  []TransitionRecord
	Transactions []TransactionRecord
}

// NewRecorder creates a recorder at the given level reading time from clock.
func NewRecorder(clock store.Clock, level Level) *Recorder {
	return &Recorder{clock: clock, level: level}
}

// Attach wires the recorder into a simulator. A no-op at LevelNone.
func (r *Recorder) Attach(sim *store.Simulator) {
	if r.level == LevelNone {
		return
	}
	sim.AddStationListener(r)
	if r.level >= LevelTransitions {
		sim.SetTransitionHook(r.OnTransition)
	}
}

// OnTransition records one agent state change.
func (r *Recorder) OnTransition(c *store.CustomerAgent, from, to store.CustomerState) {
	if r.level < LevelTransitions {
		return
	}
	r.Transitions = append(r.Transitions, TransitionRecord{
		Tick:     r.clock.Now(),
		Customer: c.ID(),
		From:     string(from),
		To:       string(to),
	})
}

func (r *Recorder) TransactionStarted(stationID, customerID string) {
	r.record(TransactionRecord{Station: stationID, Customer: customerID, Kind: "started"})
}

func (r *Recorder) ItemScanned(stationID, productID string, price float64) {
	r.record(TransactionRecord{Station: stationID, Kind: "scanned", Product: productID, Amount: price})
}

func (r *Recorder) TransactionCompleted(stationID, customerID string, amount float64) {
	r.record(TransactionRecord{Station: stationID, Customer: customerID, Kind: "completed", Amount: amount})
}

func (r *Recorder) record(rec TransactionRecord) {
	if r.level < LevelTransactions {
		return
	}
	rec.Tick = r.clock.Now()
	r.Transactions = append(r.Transactions, rec)
}

// Summary aggregates a recorded run.
type Summary struct {
	Transitions  int `json:"transitions"`
	Transactions int `json:"transactions"`
	Completed    int `json:"completed"`
	Scans        int `json:"scans"`
}

// Summarize returns aggregate counts over the recorded events.
func (r *Recorder) Summarize() Summary {
	s := Summary{Transitions: len(r.Transitions), Transactions: len(r.Transactions)}
	for _, t := range r.Transactions {
		switch t.Kind {
		case "completed":
			s.Completed++
		case "scanned":
			s.Scans++
		}
	}
	return s
}

// WriteJSON dumps the full trace to w as indented JSON.
func (r *Recorder) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Summary      Summary             `json:"summary"`
		Transitions  []TransitionRecord  `json:"transitions,omitempty"`
		Transactions []TransactionRecord `json:"transactions,omitempty"`
	}{r.Summarize(), r.Transitions, r.Transactions})
}

// WriteFile dumps the full trace to path.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: create %s: %w", path, err)
	}
	defer f.Close()
	return r.WriteJSON(f)
}
