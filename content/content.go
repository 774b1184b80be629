// Package content defines the extension point the loader core delegates
// actual content production to, plus built-in sources: in-memory bytes,
// files (with transparent lz4 decompression) and WebAssembly modules
// compiled through wazero.
//
// Sources are fire-and-forget from the core's perspective: BeginLoad and
// BeginUnload must invoke their done callback exactly once, from any
// goroutine. The core does not retry them.
package content

import "context"

// Request identifies the payload a source should produce content from.
type Request struct {
	Name string
	Path string
	ID   uint32
}

// Source produces and releases asset content. Implementations must invoke
// done exactly once per call. A failure reported through done leaves the
// decision of what to do next to the caller; sources do not retry.
type Source interface {
	// BeginLoad starts producing content for req. done receives the opaque
	// content value, or a nil value and an error.
	BeginLoad(ctx context.Context, req Request, done func(value any, err error))

	// BeginUnload starts releasing previously produced content.
	BeginUnload(ctx context.Context, req Request, value any, done func(err error))
}

// Executor runs source operations off the caller's goroutine.
type Executor interface {
	Submit(fn func())
}

// Go is an Executor that spawns one goroutine per operation.
var Go Executor = goExecutor{}

type goExecutor struct{}

func (goExecutor) Submit(fn func()) {
	go fn()
}
