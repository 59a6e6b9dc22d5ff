package store

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible run. Two runs with the same key
// and identical configuration produce identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RNG subsystem names. Each subsystem draws from its own stream, so adding
// a consumer in one subsystem cannot shift the draws another subsystem sees.
const (
	// SubsystemWorkload seeds shopper generation. It uses the master seed
	// unmodified so --seed keeps its meaning for generated shoppers.
	SubsystemWorkload = "workload"

	// SubsystemAgents seeds per-agent randomness (exit offsets, wander
	// jitter).
	SubsystemAgents = "agents"

	// SubsystemStations seeds station-side randomness.
	SubsystemStations = "stations"
)

// SubsystemStation names the stream for station id, for per-station RNG
// isolation.
func SubsystemStation(id int) string {
	return fmt.Sprintf("station_%d", id)
}

// PartitionedRNG hands out one deterministic rand.Rand per subsystem name.
// The workload stream is seeded with the master seed directly; every other
// stream is seeded with the master seed XORed with the FNV-1a hash of its
// name. Streams are cached, so asking for the same name twice returns the
// same instance. Single-goroutine use only.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream for the named subsystem, creating and
// caching it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := int64(p.key)
	if name != SubsystemWorkload {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey this PartitionedRNG was created from.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes the 64-bit FNV-1a hash of s.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
