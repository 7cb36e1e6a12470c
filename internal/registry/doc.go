// Package registry provides the central "glue" for the module system.
//
// The Registry is responsible for storing mappings between the blocktype
// names declared in module manifests (e.g., "HttpExtractor") and the compiled
// Go executors that implement them. It also carries the constraint kinds and
// operators available to a workspace.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the public-facing manifests are perfectly in
// sync, preventing a wide class of runtime errors.
package registry
