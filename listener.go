package pptfill

// ProcessListener is notified of substitution events while the engine
// walks a deck. Implement it to collect per-shape and per-cell
// diagnostics without parsing log output.
type ProcessListener interface {
	// ShapeVisited is called once per shape, before it is processed.
	ShapeVisited(ref ShapeRef, kind ShapeKind)

	// MarkerResolved is called when a marker has been resolved and its
	// replacement applied.
	MarkerResolved(ref ShapeRef, marker, value string)

	// MarkerUnresolved is called when a marker matched no key in any
	// casing and was left verbatim.
	MarkerUnresolved(ref ShapeRef, marker string)

	// RecoverableError is called for failures that were logged and
	// skipped without aborting the run.
	RecoverableError(ref ShapeRef, err error)
}
