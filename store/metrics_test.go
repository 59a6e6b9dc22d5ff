package store

import "testing"

func TestMetrics_WaitMeasuredFromAdmissionToServiceStart(t *testing.T) {
	clk := &stubClock{}
	m := NewMetrics(clk)

	clk.now = 1000
	m.QueueJoined("station_1", "alice")
	clk.now = 4000
	m.TransactionStarted("station_1", "alice")

	if m.TotalQueueWait != 3000 {
		t.Errorf("total queue wait = %d, want 3000", m.TotalQueueWait)
	}
	if got := m.AverageQueueWait(); got != 3000 {
		t.Errorf("average queue wait = %.0f, want 3000", got)
	}
}

func TestMetrics_RejoinAfterLeavingRestartsWaitMeasurement(t *testing.T) {
	clk := &stubClock{}
	m := NewMetrics(clk)

	// Alice joins, is stranded out of the queue, shops for a while, and is
	// admitted somewhere else much later. Only the second wait counts.
	clk.now = 1000
	m.QueueJoined("station_1", "alice")
	clk.now = 5000
	m.QueueLeft("station_1", "alice")

	clk.now = 30000
	m.QueueJoined("station_2", "alice")
	clk.now = 31000
	m.TransactionStarted("station_2", "alice")

	if m.TotalQueueWait != 1000 {
		t.Errorf("total queue wait = %d, want 1000 (measured from the rejoin)", m.TotalQueueWait)
	}
	if got := m.AverageQueueWait(); got != 1000 {
		t.Errorf("average queue wait = %.0f, want 1000", got)
	}
}

func TestMetrics_DepartureWithoutTransactionCountsAbandoned(t *testing.T) {
	clk := &stubClock{}
	m := NewMetrics(clk)

	m.QueueJoined("station_1", "alice")
	m.CustomerDeparted("alice")

	m.TransactionCompleted("station_1", "bob", 2.20)
	m.CustomerDeparted("bob")

	if m.CustomersAbandoned != 1 {
		t.Errorf("abandoned = %d, want 1 (alice only)", m.CustomersAbandoned)
	}
	if m.CustomersServed != 1 {
		t.Errorf("served = %d, want 1", m.CustomersServed)
	}
}
