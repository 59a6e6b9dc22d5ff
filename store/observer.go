package store

// StationListener receives the events a checkout station publishes for
// presentation and analysis layers. Listener fan-out is decoupled from the
// service loop: a listener must not mutate station or agent state.
type StationListener interface {
	QueueJoined(stationID, customerID string)
	QueueLeft(stationID, customerID string)
	TransactionStarted(stationID, customerID string)
	ItemScanned(stationID, productID string, price float64)
	TotalUpdated(stationID string, runningTotal float64)
	TransactionCompleted(stationID, customerID string, amount float64)
}

// NopStationListener is an embeddable no-op implementation so listeners only
// override the events they care about.
type NopStationListener struct{}

func (NopStationListener) QueueJoined(stationID, customerID string)                   {}
func (NopStationListener) QueueLeft(stationID, customerID string)                     {}
func (NopStationListener) TransactionStarted(stationID, customerID string)            {}
func (NopStationListener) ItemScanned(stationID, productID string, price float64)     {}
func (NopStationListener) TotalUpdated(stationID string, runningTotal float64)        {}
func (NopStationListener) TransactionCompleted(stationID, customerID string, amount float64) {
}
