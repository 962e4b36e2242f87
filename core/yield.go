package core

import "runtime"

// DefaultObjectsPerTick is how many iterations long loops run between
// yield checks.
const DefaultObjectsPerTick = 50

// Yielder lets long-running loops hand control back to the scheduler.
//
// Tick is called once per iteration. Every ObjectsPerTick calls it consults
// ShouldYield (nil means always) and, when that agrees, calls Yield once.
// The zero value never yields.
type Yielder struct {
	ObjectsPerTick int
	ShouldYield    func() bool
	Yield          func()

	count int
}

// NewYielder returns a Yielder that calls runtime.Gosched every n ticks.
func NewYielder(n int) *Yielder {
	return &Yielder{ObjectsPerTick: n}
}

// Tick counts one iteration and yields when due. A nil Yielder is a no-op.
func (y *Yielder) Tick() {
	if y == nil || y.ObjectsPerTick <= 0 {
		return
	}
	y.count++
	if y.count%y.ObjectsPerTick != 0 {
		return
	}
	if y.ShouldYield != nil && !y.ShouldYield() {
		return
	}
	if y.Yield != nil {
		y.Yield()
		return
	}
	runtime.Gosched()
}
