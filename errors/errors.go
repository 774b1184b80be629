package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // id and dependency resolution
	PhaseLoad     Phase = "load"     // load orchestration
	PhaseUnload   Phase = "unload"   // unload orchestration
	PhaseContent  Phase = "content"  // content source operations
	PhaseManifest Phase = "manifest" // manifest parsing and registration
	PhaseValidate Phase = "validate" // registry graph validation
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindUnloadRefused       Kind = "unload_refused"
	KindContentLoadFailed   Kind = "content_load_failed"
	KindContentUnloadFailed Kind = "content_unload_failed"
	KindCycle               Kind = "cycle"
	KindDuplicate           Kind = "duplicate"
	KindInvalidInput        Kind = "invalid_input"
	KindCanceled            Kind = "canceled"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Chain  []uint32
	Asset  uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Asset != 0 {
		b.WriteString(" asset ")
		b.WriteString(strconv.FormatUint(uint64(e.Asset), 10))
	}

	if len(e.Chain) > 0 {
		b.WriteString(" via ")
		for i, id := range e.Chain {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(strconv.FormatUint(uint64(id), 10))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Asset sets the asset id the operation targeted
func (b *Builder) Asset(id uint32) *Builder {
	b.err.Asset = id
	return b
}

// Chain sets the dependency chain involved
func (b *Builder) Chain(ids ...uint32) *Builder {
	b.err.Chain = ids
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates an unknown-asset error
func NotFound(phase Phase, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Asset:  id,
		Detail: "no asset registered under this id",
	}
}

// UnloadRefused creates an error reporting an unload deferred because the
// asset is still referenced
func UnloadRefused(id uint32, refs int, held bool) *Error {
	detail := fmt.Sprintf("still referenced by %d dependents", refs)
	if held {
		detail += ", externally held"
	}
	return &Error{
		Phase:  PhaseUnload,
		Kind:   KindUnloadRefused,
		Asset:  id,
		Detail: detail,
	}
}

// LoadFailed wraps a content source load failure
func LoadFailed(id uint32, cause error) *Error {
	return &Error{
		Phase: PhaseContent,
		Kind:  KindContentLoadFailed,
		Asset: id,
		Cause: cause,
	}
}

// UnloadFailed wraps a content source unload failure
func UnloadFailed(id uint32, cause error) *Error {
	return &Error{
		Phase: PhaseContent,
		Kind:  KindContentUnloadFailed,
		Asset: id,
		Cause: cause,
	}
}

// DependencyFailed reports a load aborted because a dependency's load failed
func DependencyFailed(id, dep uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindContentLoadFailed,
		Asset:  id,
		Chain:  []uint32{id, dep},
		Detail: "dependency load failed",
		Cause:  cause,
	}
}

// Cycle creates a circular dependency error with the offending chain
func Cycle(chain []uint32) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindCycle,
		Chain:  chain,
		Detail: "circular dependency",
	}
}

// Duplicate creates a duplicate registration error
func Duplicate(phase Phase, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Asset:  id,
		Detail: "asset id already registered",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Canceled reports a caller withdrawing interest in a pending operation
func Canceled(id uint32) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindCanceled,
		Asset:  id,
		Detail: "completion interest withdrawn",
	}
}

// Manifest wraps a manifest parse or registration failure
func Manifest(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseManifest,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
