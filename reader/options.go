package reader

import "github.com/tsawler/pdfgraph/core"

// options holds configuration for loading a document.
type options struct {
	objectsPerTick       int
	throwOnInvalidObject bool
	hooks                *core.Hooks
}

// defaultOptions returns the default load options.
func defaultOptions() options {
	return options{
		objectsPerTick: core.DefaultObjectsPerTick,
	}
}

// Option configures Load and Open.
type Option func(*options)

// WithObjectsPerTick sets how many objects are parsed between calls to
// runtime.Gosched. Zero or less disables yielding.
func WithObjectsPerTick(n int) Option {
	return func(o *options) {
		o.objectsPerTick = n
	}
}

// WithThrowOnInvalidObject makes an object that does not parse an error
// instead of a core.InvalidObject.
func WithThrowOnInvalidObject(enabled bool) Option {
	return func(o *options) {
		o.throwOnInvalidObject = enabled
	}
}

// WithHooks reports every object to hooks as it is parsed.
func WithHooks(hooks *core.Hooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}
