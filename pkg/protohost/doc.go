// Package protohost runs the weaver processor over protobuf sources.
//
// A Program is an immutable set of .proto units plus compile Options. Marker
// annotations are written as comment directives anywhere in a unit:
//
//	// @weave:weave.Banner:text="generated, do not edit",order=1
//	/* @weave:weave.StripSourceInfo */
//
// The Host compiles programs with protocompile and exposes the resulting
// FileDescriptorSet as the assembly symbol, so editors can rewrite sources
// before compilation and descriptors after it.
package protohost
