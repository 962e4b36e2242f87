// Package reader loads whole PDF files into a core.Context.
//
// # Opening PDF Files
//
// Use [Open] to memory-map a file and parse it:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Or use [Load] with bytes already in memory.
//
// The file is parsed front to back. Every indirect object, including those
// packed in object streams, ends up in the Context; the file's own
// cross-reference offsets are not needed. Objects that do not parse are
// kept as core.InvalidObject unless [WithThrowOnInvalidObject] is set.
//
// # Document Information
//
//   - Version() - header version (e.g., 1.7)
//   - Catalog() - document catalog dictionary
//   - Info() - document info dictionary (metadata)
//   - PageCount() - number of pages, from the page tree root
//   - Context() - the object graph, ready for editing and writer.Serialize
//
// Parsed objects own their bytes, so the Context stays valid after Close.
package reader
