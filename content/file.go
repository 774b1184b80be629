package content

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"

	"github.com/wippyai/asset-loader/errors"
)

// FileSource reads content from files under a base directory. Payloads with
// an .lz4 suffix are decompressed transparently; everything else is returned
// raw.
type FileSource struct {
	base string
	exec Executor
}

// NewFileSource creates a source rooted at base.
func NewFileSource(base string) *FileSource {
	return &FileSource{
		base: base,
		exec: Go,
	}
}

// WithExecutor sets the executor operations run on. Returns the source for
// chaining.
func (s *FileSource) WithExecutor(exec Executor) *FileSource {
	s.exec = exec
	return s
}

func (s *FileSource) BeginLoad(ctx context.Context, req Request, done func(any, error)) {
	s.exec.Submit(func() {
		data, err := s.read(ctx, req.Path)
		if err != nil {
			done(nil, err)
			return
		}
		done(data, nil)
	})
}

func (s *FileSource) BeginUnload(ctx context.Context, req Request, value any, done func(error)) {
	s.exec.Submit(func() {
		done(nil)
	})
}

func (s *FileSource) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.base, path))
	if err != nil {
		return nil, errors.New(errors.PhaseContent, errors.KindInvalidInput).
			Detail("open %s", path).
			Cause(err).
			Build()
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".lz4") {
		r = lz4.NewReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.PhaseContent, errors.KindInvalidInput).
			Detail("read %s", path).
			Cause(err).
			Build()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
