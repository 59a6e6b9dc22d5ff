package store

import "math"

// TicksPerSecond fixes the resolution of simulation time: 1 tick = 1ms.
const TicksPerSecond int64 = 1000

// Vec2 is a 2D position on the store floor.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Normalized returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Navigation is the movement collaborator consumed by the customer state
// machine. It provides destination steering and arrival detection only; the
// core never computes paths.
type Navigation interface {
	SetDestination(pos Vec2)
	// HasReachedDestination reports arrival within threshold of the current
	// destination. A non-positive threshold uses the navigator's default.
	HasReachedDestination(threshold float64) bool
	Stop()
	Resume()
	FaceTarget(target Vec2, animated bool)
	Position() Vec2
	// Advance moves the navigator by dt ticks of travel. The simulator calls
	// this once per tick for every live agent.
	Advance(dt int64)
}

const defaultArriveThreshold = 0.25

// Walker is the simulation-grade Navigation implementation: straight-line
// travel at constant speed with instant facing.
type Walker struct {
	pos     Vec2
	dest    Vec2
	hasDest bool
	stopped bool
	speed   float64 // units per simulated second
	facing  Vec2
}

// NewWalker creates a Walker at start moving at speed units/second.
func NewWalker(start Vec2, speed float64) *Walker {
	return &Walker{pos: start, speed: speed}
}

func (w *Walker) SetDestination(pos Vec2) {
	w.dest = pos
	w.hasDest = true
	w.stopped = false
}

func (w *Walker) HasReachedDestination(threshold float64) bool {
	if !w.hasDest {
		return false
	}
	if threshold <= 0 {
		threshold = defaultArriveThreshold
	}
	return w.pos.DistanceTo(w.dest) <= threshold
}

func (w *Walker) Stop()   { w.stopped = true }
func (w *Walker) Resume() { w.stopped = false }

func (w *Walker) FaceTarget(target Vec2, animated bool) {
	w.facing = target.Sub(w.pos).Normalized()
}

func (w *Walker) Position() Vec2 { return w.pos }

// Teleport relocates the walker without travel. Used by snapshot restore.
func (w *Walker) Teleport(pos Vec2) { w.pos = pos }

func (w *Walker) Advance(dt int64) {
	if w.stopped || !w.hasDest {
		return
	}
	step := w.speed * float64(dt) / float64(TicksPerSecond)
	delta := w.dest.Sub(w.pos)
	if delta.Len() <= step {
		w.pos = w.dest
		return
	}
	w.pos = w.pos.Add(delta.Normalized().Scale(step))
}
