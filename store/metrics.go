// Tracks simulation-wide and per-station statistics for final reporting.

package store

import (
	"fmt"
	"sort"
)

// StationMetrics aggregates one station's served customers and revenue.
type StationMetrics struct {
	CustomersServed int
	Revenue         float64
	ItemsScanned    int
}

// Metrics aggregates statistics about the simulation for final reporting.
// It listens to every station's events; queue waits are measured from
// admission to service start.
type Metrics struct {
	NopStationListener

	clock Clock

	CustomersEntered   int
	CustomersServed    int
	CustomersAbandoned int // departed without a completed transaction

	TransactionsCompleted int
	Revenue               float64
	ItemsScanned          int

	TotalQueueWait int64 // sum over served customers, in ticks
	waitSamples    int

	PeakQueueDepth int
	depthSum       int64
	depthSamples   int64

	SimEndedTime int64

	PerStation map[string]*StationMetrics

	waitStart map[string]int64
	served    map[string]bool
}

// NewMetrics creates an empty metrics collector reading time from clock.
func NewMetrics(clock Clock) *Metrics {
	return &Metrics{
		clock:      clock,
		PerStation: make(map[string]*StationMetrics),
		waitStart:  make(map[string]int64),
		served:     make(map[string]bool),
	}
}

func (m *Metrics) station(id string) *StationMetrics {
	sm := m.PerStation[id]
	if sm == nil {
		sm = &StationMetrics{}
		m.PerStation[id] = sm
	}
	return sm
}

// QueueJoined starts the wait measurement for a customer.
func (m *Metrics) QueueJoined(stationID, customerID string) {
	if _, waiting := m.waitStart[customerID]; !waiting {
		m.waitStart[customerID] = m.clock.Now()
	}
}

// QueueLeft discards the open wait measurement. A customer who leaves the
// queue and is admitted again later is measured from the new admission, not
// the first.
func (m *Metrics) QueueLeft(stationID, customerID string) {
	delete(m.waitStart, customerID)
}

// TransactionStarted closes the wait measurement.
func (m *Metrics) TransactionStarted(stationID, customerID string) {
	if start, ok := m.waitStart[customerID]; ok {
		m.TotalQueueWait += m.clock.Now() - start
		m.waitSamples++
		delete(m.waitStart, customerID)
	}
}

func (m *Metrics) ItemScanned(stationID, productID string, price float64) {
	m.ItemsScanned++
	m.station(stationID).ItemsScanned++
}

func (m *Metrics) TransactionCompleted(stationID, customerID string, amount float64) {
	m.TransactionsCompleted++
	m.Revenue += amount
	m.CustomersServed++
	m.served[customerID] = true
	sm := m.station(stationID)
	sm.CustomersServed++
	sm.Revenue += amount
}

// CustomerDeparted records a despawn; departures without a completed
// transaction count as abandoned.
func (m *Metrics) CustomerDeparted(customerID string) {
	if !m.served[customerID] {
		m.CustomersAbandoned++
	}
	delete(m.waitStart, customerID)
}

// ObserveQueueDepth samples the summed queue depth across stations.
func (m *Metrics) ObserveQueueDepth(depth int) {
	if depth > m.PeakQueueDepth {
		m.PeakQueueDepth = depth
	}
	m.depthSum += int64(depth)
	m.depthSamples++
}

// AverageQueueWait returns the mean ticks from admission to service start.
func (m *Metrics) AverageQueueWait() float64 {
	if m.waitSamples == 0 {
		return 0
	}
	return float64(m.TotalQueueWait) / float64(m.waitSamples)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Customers Entered    : %d\n", m.CustomersEntered)
	fmt.Printf("Customers Served     : %d\n", m.CustomersServed)
	fmt.Printf("Customers Abandoned  : %d\n", m.CustomersAbandoned)
	fmt.Printf("Transactions         : %d\n", m.TransactionsCompleted)
	fmt.Printf("Revenue              : %.2f\n", m.Revenue)
	fmt.Printf("Items Scanned        : %d\n", m.ItemsScanned)
	if m.waitSamples > 0 {
		fmt.Printf("Average Queue Wait   : %.2f ticks\n", m.AverageQueueWait())
	}
	fmt.Printf("Peak Queue Depth     : %d\n", m.PeakQueueDepth)
	if m.depthSamples > 0 {
		fmt.Printf("Average Queue Depth  : %.2f\n", float64(m.depthSum)/float64(m.depthSamples))
	}
	ids := make([]string, 0, len(m.PerStation))
	for id := range m.PerStation {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sm := m.PerStation[id]
		fmt.Printf("  %s: served=%d revenue=%.2f scanned=%d\n", id, sm.CustomersServed, sm.Revenue, sm.ItemsScanned)
	}
	fmt.Printf("Sim Ended            : %d ticks\n", m.SimEndedTime)
}
