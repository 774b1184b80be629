// Package assetloader provides a dependency-aware asynchronous asset loader.
//
// Assets are named, reference-counted units of loadable content. Loading an
// asset transitively loads everything it depends on, coalesces concurrent
// requests for the same asset onto a single in-flight operation, and only
// releases an asset once nothing is left depending on it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	assetloader/         Root package documentation
//	├── loader/          Asset state machine and Registry (the core)
//	├── content/         Content source extension point, built-in sources
//	│                    (bytes, file with lz4, wasm via wazero) and the
//	│                    worker pool that runs load/unload operations
//	├── manifest/        HCL manifest parsing and registry population
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Populate a registry from a manifest and load an asset:
//
//	reg := loader.NewRegistry(content.NewFileSource("assets/"))
//	if err := manifest.Populate(reg, "assets.hcl"); err != nil {
//	    log.Fatal(err)
//	}
//
//	done := make(chan error, 1)
//	if _, err := reg.LoadAsync(ctx, playerID, func(err error) { done <- err }); err != nil {
//	    log.Fatal(err)
//	}
//	if err := <-done; err != nil {
//	    log.Fatal(err)
//	}
//
// The callback fires exactly once, after the asset and its whole dependency
// closure reach the Loaded state. Unloading is symmetric: UnloadAsync releases
// the caller's hold, and content is discarded once no other asset or caller
// references it.
//
// # Lifecycle Model
//
// Each asset cycles between Unloaded and Loaded through the intermediate
// Waiting (dependencies still loading), Loading (own content load in flight)
// and Unloading states. A dependency is guaranteed Loaded before its
// dependent's own content load begins. No ordering is guaranteed between
// sibling dependencies.
//
// # Thread Safety
//
// Registry and Asset are safe for concurrent use. Completion callbacks and
// observers are invoked outside internal locks, so they may safely call back
// into the registry.
package assetloader
