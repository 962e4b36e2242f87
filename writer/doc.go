// Package writer serializes a core.Context into PDF bytes.
//
// Two strategies are available. Classic writes every indirect object at
// top level followed by a cross-reference table and trailer:
//
//	data, err := writer.Serialize(ctx)
//
// Compressed packs every non-stream object into one object stream and
// indexes the file with a cross-reference stream:
//
//	data, err := writer.Serialize(ctx, writer.WithStrategy(writer.Compressed))
//
// Both strategies lay the whole file out before writing a byte, so the
// output buffer is allocated once at its exact size and every offset in the
// cross-reference data is final. For a given Context the output is the same
// on every call.
//
// Long saves hand control back to the scheduler every
// WithObjectsPerTick objects; WithYieldFunc decides whether to.
package writer
