package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 readable and writable without locks. The game
// loop writes the running decision latency under its own lock, while viewers
// and the status endpoints read it from other goroutines.
// Updates are single compare-and-swap attempts: a caller that loses a race is
// told so and decides whether to retry or drop the update.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicSet unconditionally stores val.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// AtomicBlend folds sample into the value as an exponentially weighted moving
// average: new = old + alpha*(sample-old). alpha is clamped to [0, 1].
// If the value changed between the read and the swap, nothing is written and
// succeeded is false.
func (af *AtomicFloat64) AtomicBlend(sample, alpha float64) (newVal float64, succeeded bool) {
	alpha = math.Max(0, math.Min(1, alpha))
	return af.update(func(old float64) float64 { return old + alpha*(sample-old) })
}

func (af *AtomicFloat64) update(fn func(old float64) float64) (newVal float64, succeeded bool) {
	oldBits := af.bits.Load()
	newVal = fn(math.Float64frombits(oldBits))
	succeeded = af.bits.CompareAndSwap(oldBits, math.Float64bits(newVal))
	return
}
