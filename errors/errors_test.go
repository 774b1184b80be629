package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "phase and kind",
			err:      &Error{Phase: PhaseLoad, Kind: KindNotFound},
			contains: []string{"[load]", "not_found"},
		},
		{
			name:     "asset id",
			err:      &Error{Phase: PhaseUnload, Kind: KindUnloadRefused, Asset: 7},
			contains: []string{"asset 7"},
		},
		{
			name:     "chain",
			err:      Cycle([]uint32{1, 2, 1}),
			contains: []string{"1 -> 2 -> 1", "circular"},
		},
		{
			name:     "cause",
			err:      LoadFailed(3, errors.New("disk gone")),
			contains: []string{"content_load_failed", "(disk gone)"},
		},
		{
			name: "detail formatting",
			err: New(PhaseContent, KindInvalidInput).
				Detail("read %s", "x.dat").
				Build(),
			contains: []string{"read x.dat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Fatalf("%q does not contain %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	refused := UnloadRefused(1, 2, true)

	if !errors.Is(refused, &Error{Phase: PhaseUnload, Kind: KindUnloadRefused}) {
		t.Fatal("same phase and kind should match")
	}
	if errors.Is(refused, &Error{Phase: PhaseUnload, Kind: KindCycle}) {
		t.Fatal("different kind should not match")
	}
	if errors.Is(refused, errors.New("plain")) {
		t.Fatal("non-Error target should not match")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := UnloadFailed(5, cause)

	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable through Unwrap")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("inner")
	err := New(PhaseLoad, KindContentLoadFailed).
		Asset(9).
		Chain(9, 4).
		Detail("mid-chain").
		Cause(cause).
		Build()

	if err.Asset != 9 {
		t.Fatalf("asset %d, want 9", err.Asset)
	}
	if len(err.Chain) != 2 {
		t.Fatalf("chain %v, want two entries", err.Chain)
	}
	if err.Cause != cause {
		t.Fatal("cause not preserved")
	}
}

func TestDependencyFailed(t *testing.T) {
	cause := errors.New("boom")
	err := DependencyFailed(1, 2, cause)

	if !errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindContentLoadFailed}) {
		t.Fatal("dependency failure should match content load failure kind")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if !strings.Contains(err.Error(), "1 -> 2") {
		t.Fatalf("chain missing from %q", err.Error())
	}
}
