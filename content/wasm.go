package content

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/asset-loader/errors"
)

// WASMSource compiles WebAssembly payloads into ready-to-instantiate modules.
// The content value delivered on load is a wazero.CompiledModule; unload
// releases the compiled code.
//
// Raw bytes come from an inner source (typically a FileSource), so wasm
// payloads get the same path resolution and lz4 handling as everything else.
type WASMSource struct {
	inner   Source
	runtime wazero.Runtime
}

// NewWASMSource creates a wasm-compiling source over inner.
func NewWASMSource(ctx context.Context, inner Source) *WASMSource {
	return &WASMSource{
		inner:   inner,
		runtime: wazero.NewRuntime(ctx),
	}
}

func (s *WASMSource) BeginLoad(ctx context.Context, req Request, done func(any, error)) {
	s.inner.BeginLoad(ctx, req, func(value any, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		data, ok := value.([]byte)
		if !ok {
			done(nil, errors.InvalidInput(errors.PhaseContent, "inner source did not produce bytes"))
			return
		}
		compiled, err := s.runtime.CompileModule(ctx, data)
		if err != nil {
			done(nil, errors.New(errors.PhaseContent, errors.KindInvalidInput).
				Asset(req.ID).
				Detail("compile wasm module").
				Cause(err).
				Build())
			return
		}
		done(compiled, nil)
	})
}

func (s *WASMSource) BeginUnload(ctx context.Context, req Request, value any, done func(error)) {
	compiled, ok := value.(wazero.CompiledModule)
	if !ok {
		s.inner.BeginUnload(ctx, req, value, done)
		return
	}
	done(compiled.Close(ctx))
}

// Close releases the underlying wazero runtime. All loaded modules become
// unusable afterwards.
func (s *WASMSource) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}
