// Package core holds the PDF object model, the Context that owns a
// document's indirect objects, and the parser that fills a Context from
// bytes.
//
// # Object Types
//
// Every value in a document graph satisfies the sealed [Object] interface:
//
//   - [Null], [Bool] and [Number] (integers and reals share one type)
//   - [String] (literal) and [HexString]
//   - [Name], e.g. /Type
//   - [Array] and [Dict], both ordered
//   - [Stream], a dictionary plus content bytes
//   - [IndirectRef], a (number, generation) pointer resolved through a Context
//   - [InvalidObject], raw bytes of an indirect object that did not parse
//
// Each object renders itself with String, reports its exact serialized size
// with SizeInBytes and copies its bytes into a buffer with WriteInto, which
// lets writers lay out a whole file before writing it.
//
// # Context
//
// A [Context] maps references to objects, allocates object numbers and holds
// the trailer entries. [Context.Obj] lifts Go literals into objects:
//
//	ctx := core.NewContext()
//	page := ctx.MustObj([]core.KV{{Key: "Type", Value: "Page"}, {Key: "MediaBox", Value: []int{0, 0, 612, 792}}})
//	ref := ctx.Register(page)
//
// # Parsing
//
// Matchers such as [ParseNumber] and [ParseName] each try one grammar and
// return [ErrNoMatch] when it does not start at the input. [Parser.ParseObject]
// tries them in an order that resolves shared prefixes. [ObjectStreamParser]
// expands object streams and [DocumentParser] reads a whole file.
//
// # Cross-Reference Structures
//
// [XRefTable], [BuildSubsections] and [FormatClassicEntry] serve the classic
// table; [XRefStreamEntry], [EncodeXRefStream] and [ReadXRefStream] serve
// cross-reference streams.
package core
