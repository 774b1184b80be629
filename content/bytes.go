package content

import (
	"context"

	"github.com/wippyai/asset-loader/errors"
)

// BytesSource serves content from an in-memory map keyed by request path.
// Intended for tests and embedded payloads.
type BytesSource struct {
	payloads map[string][]byte
	exec     Executor
}

// NewBytesSource creates a source over the given payload map. The map is not
// copied; callers must not mutate it afterwards.
func NewBytesSource(payloads map[string][]byte) *BytesSource {
	return &BytesSource{
		payloads: payloads,
		exec:     Go,
	}
}

// WithExecutor sets the executor operations run on. Returns the source for
// chaining.
func (s *BytesSource) WithExecutor(exec Executor) *BytesSource {
	s.exec = exec
	return s
}

func (s *BytesSource) BeginLoad(ctx context.Context, req Request, done func(any, error)) {
	s.exec.Submit(func() {
		if err := ctx.Err(); err != nil {
			done(nil, err)
			return
		}
		data, ok := s.payloads[req.Path]
		if !ok {
			done(nil, errors.InvalidInput(errors.PhaseContent, "no payload for path "+req.Path))
			return
		}
		done(data, nil)
	})
}

func (s *BytesSource) BeginUnload(ctx context.Context, req Request, value any, done func(error)) {
	s.exec.Submit(func() {
		done(nil)
	})
}
