// Package copier moves object graphs between PDF documents.
//
// Objects in one document refer to each other through indirect references
// that are only meaningful inside that document's Context. Copying an object
// into another document therefore means copying everything it references as
// well, giving each copied object a fresh number in the destination:
//
//	page, err := copier.Copy(srcPageRef, src, dst)
//
// Each indirect object reachable from the copied value is copied exactly
// once per call, even when it is reachable through several paths, and
// reference cycles terminate. Names and other scalars are shared; arrays,
// dictionaries and stream data are cloned. The source Context is never
// modified.
//
// Nesting of direct objects is bounded to guard against hostile input:
//
//	c := copier.New(src, dst, copier.WithMaxDepth(50))
package copier
