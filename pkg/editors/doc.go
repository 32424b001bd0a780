// Package editors provides the built-in marker editors for protobuf programs.
//
// Markers are declared in any .proto unit with a directive comment:
//
//	// @weave:weave.Banner:name=gen/banner.proto,text="generated for v2"
//
// RegisterDefaults installs every built-in marker into a registry. Plugin
// manifests can then derive new markers from these bases.
package editors
