package writer

import "github.com/tsawler/pdfgraph/core"

// Strategy selects the file layout Serialize produces.
type Strategy int

const (
	// Classic writes top-level objects and a cross-reference table.
	Classic Strategy = iota
	// Compressed writes an object stream and a cross-reference stream.
	Compressed
)

func (s Strategy) String() string {
	switch s {
	case Classic:
		return "classic"
	case Compressed:
		return "compressed"
	}
	return "unknown"
}

// options holds configuration for one Serialize call.
type options struct {
	strategy       Strategy
	objectsPerTick int
	compress       bool // Flate the object and cross-reference streams
	shouldYield    func() bool
	yield          func()
}

// defaultOptions returns the default serialization options.
func defaultOptions() options {
	return options{
		strategy:       Classic,
		objectsPerTick: core.DefaultObjectsPerTick,
		compress:       true,
	}
}

func (o options) yielder() *core.Yielder {
	return &core.Yielder{
		ObjectsPerTick: o.objectsPerTick,
		ShouldYield:    o.shouldYield,
		Yield:          o.yield,
	}
}

// Option configures Serialize.
type Option func(*options)

// WithStrategy selects Classic (the default) or Compressed output.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithObjectsPerTick sets how many objects are written between yield
// checks. Zero or less disables yielding.
func WithObjectsPerTick(n int) Option {
	return func(o *options) {
		o.objectsPerTick = n
	}
}

// WithCompression controls whether the streams the Compressed strategy
// creates are Flate encoded (default true). Existing streams are written as
// they are.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.compress = enabled
	}
}

// WithYieldFunc installs the yield check and the yield action. A nil
// shouldYield always yields; a nil yield calls runtime.Gosched.
func WithYieldFunc(shouldYield func() bool, yield func()) Option {
	return func(o *options) {
		o.shouldYield = shouldYield
		o.yield = yield
	}
}
