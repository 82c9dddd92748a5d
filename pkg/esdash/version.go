package esdash

var (
	// Version of esdash, set by the build system.
	Version = "v0.1.0"
	// Build timestamp, set by the build system.
	Build = "n/a"
)
