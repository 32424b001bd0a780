// Package annotation discovers editors from marker annotations declared on a
// program.
//
// # Markers
//
// A declared annotation names a type. Types form a single-inheritance
// hierarchy kept in a Registry; only types whose base chain reaches RootType
// are markers. Look-alike annotations whose chain ends elsewhere are ignored
// without error, which is how an annotation opts out.
//
// Constructing a marker runs plugin code through the factory registered for
// the type (or the nearest ancestor that has one). The marker reports an
// ordering integer and the editors it produces.
//
// # Resolution
//
// Resolve walks annotations in declaration order, constructs every marker,
// and returns the produced editors stably sorted by ordering integer. Nil
// editors are dropped. Construction failures (errors and panics) do not stop
// the pass; they are returned as Failures for the processor to report once a
// diagnostic sink is available.
package annotation
