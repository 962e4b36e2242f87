// Package filters implements the stream filters used when decoding PDF
// stream content, and the Flate encoder used when writing compressed
// object and cross-reference streams.
//
// Filters are looked up by their PDF name (long or abbreviated):
//
//	data, err := filters.Decode("FlateDecode", raw, filters.Params{"Predictor": 12, "Columns": 5})
//
// Supported decoders:
//   - FlateDecode (Fl), with TIFF predictor 2 and PNG predictors 10-15
//   - ASCIIHexDecode (AHx)
//   - ASCII85Decode (A85)
//   - RunLengthDecode (RL)
//   - CCITTFaxDecode (CCF), via golang.org/x/image/ccitt
//
// Image codecs (DCTDecode, JPXDecode, JBIG2Decode) pass their data through
// unchanged. Any other name yields ErrUnsupportedFilter.
package filters
