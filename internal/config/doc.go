// Package config loads the host configuration.
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. An optional TOML or YAML file, chosen by extension
//  3. CROSSLOAD_* environment variables
//
// Example TOML:
//
//	[library]
//	path = "./libotelcorecol.so"
//	watch = true
//
//	[plugin]
//	path = "./plugins/dynbatchprocessor.so"
//
//	[symbols]
//	rich = "LoadAndCallPlugin"
//	rich_status = true
//
//	[run]
//	mode = "background"
//	status_interval = "5s"
//
//	[preflight]
//	required_files = ["./test.yaml"]
//
// Configuration consumed by the foreign library itself is never read here;
// preflight only checks that such files exist.
package config
