// Package store provides the core discrete-event simulation engine for the
// retail checkout simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - customer.go: the customer behavior state machine (street → shopping → queue → paying → leaving)
//   - checkout.go: the checkout station queue/belt coordinator and its service loop
//   - simulator.go: the event loop and the fixed-tick stepping of agents and stations
//
// # Architecture
//
// The store package defines the agent and station state machines plus the
// narrow collaborator interfaces they consume; generation and analysis live
// in sub-packages:
//   - store/workload/: shopper arrival and shopping-list generation
//   - store/trace/: state-transition and transaction trace recording
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - QueueableAgent: the station-facing view of a customer
//   - ServiceStation: the agent-facing view of a checkout station
//   - Navigation: movement and arrival detection (never path computation)
//   - ActionGate: pickup/placement/payment action completion gating
//   - Pricing: retail price lookup
//   - PurchasePolicy: affordability/desirability decisions at the shelf
//   - StationListener: queue/scan/transaction event fan-out
package store
