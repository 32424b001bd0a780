// Package plugins loads marker plugins described by YAML manifests.
//
// # Overview
//
// A marker plugin derives new marker types from markers already in the
// registry, typically the built-in weave.* markers, and supplies default
// arguments for them. No code is loaded: a plugin is its manifest.
//
// # Manifest
//
// Each plugin lives in its own directory containing a plugin.yaml:
//
//	id: acme-style
//	name: Acme style
//	version: 1.2.0
//	api_version: 1.0.0
//	type: markers
//	markers:
//	  - name: acme.GoPackage
//	    base: weave.FileOption
//	    args:
//	      name: go_package
//	      value: example.com/acme
//	  - name: acme.Release
//	    base: weave.Bundle
//	    args:
//	      markers: acme.GoPackage|weave.StripSourceInfo
//
// Arguments written on a directive override the manifest defaults.
//
// # Loading
//
// Loader discovers plugin directories, validates their manifests and installs
// them into a registry in dependency order:
//
//	loader := plugins.NewLoader(plugins.GetDefaultPluginDirectories(), log)
//	installed, err := loader.InstallAll(ctx, registry)
package plugins
