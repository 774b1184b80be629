// Package errors provides structured error types for the asset-loader library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the asset id the operation
// targeted, the dependency chain involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindContentLoadFailed).
//		Asset(id).
//		Detail("decode failed").
//		Cause(cause).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseResolve, id)
//	err := errors.UnloadRefused(id, refs, held)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
