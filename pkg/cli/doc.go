// Package cli implements the weaver command-line interface.
//
// # Commands
//
// build: compile one or more proto directories through the markers their
// files declare, print diagnostics and store the results
//
//	weaver build -out ./weaver-out -jobs 4 ./api ./events
//
// watch: rebuild a directory whenever a .proto file changes
//
//	weaver watch -delay 500ms -metrics-addr :9090 ./api
//
// markers: list built-in and plugin marker types
//
//	weaver markers -plugins ./plugins
//
// validate: check plugin manifests before installing them
//
//	weaver validate ./plugins/acme-style/plugin.yaml
//
// Every command reads its defaults from WEAVER_* environment variables (see
// package config); flags override them.
package cli
