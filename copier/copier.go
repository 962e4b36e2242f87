package copier

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/logging"
)

// DefaultMaxDepth bounds how deeply direct arrays and dictionaries may nest.
const DefaultMaxDepth = 100

// Copier copies objects from one Context into another.
type Copier struct {
	src      *core.Context
	dst      *core.Context
	maxDepth int
}

// Option configures a Copier.
type Option func(*Copier)

// WithMaxDepth sets the maximum nesting depth of direct objects
// (default: DefaultMaxDepth).
func WithMaxDepth(depth int) Option {
	return func(c *Copier) {
		c.maxDepth = depth
	}
}

// New creates a copier from src to dst.
func New(src, dst *core.Context, opts ...Option) *Copier {
	c := &Copier{
		src:      src,
		dst:      dst,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy is shorthand for New(src, dst).Copy(obj).
func Copy(obj core.Object, src, dst *core.Context) (core.Object, error) {
	return New(src, dst).Copy(obj)
}

// copyRun holds the state of one Copy call.
type copyRun struct {
	*Copier
	memo    map[core.IndirectRef]core.IndirectRef
	pending []core.IndirectRef // source refs allocated but not yet filled
	depth   int
}

// Copy returns obj rebuilt for the destination Context. A reference in obj
// (or anything it reaches) is replaced by a newly allocated reference in the
// destination, and the object behind it is copied there. A reference the
// source cannot resolve yields *core.ObjectNotFoundError.
//
// The memo of already copied references lives for this call only.
func (c *Copier) Copy(obj core.Object) (core.Object, error) {
	run := &copyRun{
		Copier: c,
		memo:   make(map[core.IndirectRef]core.IndirectRef),
	}

	out, err := run.copy(obj)
	if err != nil {
		return nil, err
	}

	// Referenced objects are filled after their number is allocated, so a
	// cycle finds the memoized ref and stops.
	for len(run.pending) > 0 {
		ref := run.pending[0]
		run.pending = run.pending[1:]

		target, err := c.src.Lookup(ref)
		if err != nil {
			return nil, err
		}
		copied, err := run.copy(target)
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", ref, err)
		}
		c.dst.Assign(run.memo[ref], copied)
	}

	logging.Logger().Debug("copied object graph",
		slog.String("root", obj.Type().String()),
		slog.Int("indirectObjects", len(run.memo)))
	return out, nil
}

func (r *copyRun) copy(obj core.Object) (core.Object, error) {
	if r.depth >= r.maxDepth {
		return nil, fmt.Errorf("maximum nesting depth (%d) exceeded", r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		ref, err := r.remap(v)
		if err != nil {
			return nil, err
		}
		return ref, nil

	case *core.Dict:
		return r.copyDict(v)

	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			r.depth++
			copied, err := r.copy(elem)
			r.depth--
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			out[i] = copied
		}
		return out, nil

	case *core.Stream:
		dict, err := r.copyDict(v.Dict)
		if err != nil {
			return nil, fmt.Errorf("stream dictionary: %w", err)
		}
		return &core.Stream{Dict: dict, Data: bytes.Clone(v.Data)}, nil

	case core.InvalidObject:
		return core.InvalidObject(bytes.Clone(v)), nil

	case core.Null, core.Bool, core.Number, core.Name, core.String, core.HexString:
		return v, nil

	default:
		panic(&core.UnhandledObjectError{Value: obj})
	}
}

func (r *copyRun) copyDict(d *core.Dict) (*core.Dict, error) {
	out := core.NewDict()
	for _, e := range d.Entries() {
		r.depth++
		copied, err := r.copy(e.Value)
		r.depth--
		if err != nil {
			return nil, fmt.Errorf("dictionary key %s: %w", e.Key, err)
		}
		out.Set(e.Key, copied)
	}
	return out, nil
}

// remap returns the destination ref for ref, allocating it and queueing the
// source object on first sight.
func (r *copyRun) remap(ref core.IndirectRef) (core.IndirectRef, error) {
	if mapped, ok := r.memo[ref]; ok {
		return mapped, nil
	}
	if _, ok := r.src.LookupMaybe(ref); !ok {
		return core.IndirectRef{}, &core.ObjectNotFoundError{Ref: ref}
	}
	if n := r.dst.LargestObjectNumber(); n >= core.MaxObjectNumber {
		return core.IndirectRef{}, &core.ObjectNumberError{Number: uint64(n) + 1}
	}
	mapped := r.dst.NextRef()
	r.memo[ref] = mapped
	r.pending = append(r.pending, ref)
	return mapped, nil
}
