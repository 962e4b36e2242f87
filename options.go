package pdfgraph

import (
	"github.com/tsawler/pdfgraph/reader"
	"github.com/tsawler/pdfgraph/writer"
)

// LoadOption configures Load and Open.
type LoadOption = reader.Option

// SaveOption configures Save and SaveFile.
type SaveOption = writer.Option

// Compressed packs objects into an object stream indexed by a
// cross-reference stream.
func Compressed() SaveOption {
	return writer.WithStrategy(writer.Compressed)
}

// Uncompressed leaves the object and cross-reference streams that
// Compressed creates unencoded, which keeps the output readable.
func Uncompressed() SaveOption {
	return writer.WithCompression(false)
}

// Strict makes an object that does not parse a load error.
func Strict() LoadOption {
	return reader.WithThrowOnInvalidObject(true)
}
