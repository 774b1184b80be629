package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/asset-loader/content"
	lerrors "github.com/wippyai/asset-loader/errors"
	"github.com/wippyai/asset-loader/loader"
)

const chainManifest = `
asset "c" {
  id   = 3
  path = "c.dat"
}

asset "b" {
  id   = 2
  path = "b.dat"
  deps = [3]
}

asset "a" {
  id   = 1
  path = "a.dat"
  deps = [2]
}
`

func writeManifest(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.hcl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPopulate(t *testing.T) {
	source := content.NewBytesSource(map[string][]byte{
		"a.dat": []byte("a"),
		"b.dat": []byte("b"),
		"c.dat": []byte("c"),
	})
	reg := loader.NewRegistry(source)

	if err := Populate(reg, writeManifest(t, chainManifest)); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("Len %d, want 3", reg.Len())
	}

	a, ok := reg.Get(1)
	if !ok {
		t.Fatal("asset 1 missing")
	}
	deps := a.Dependencies()
	if len(deps) != 1 || deps[0] != 2 {
		t.Fatalf("asset 1 deps %v, want [2]", deps)
	}

	// The populated registry must actually load end to end.
	done := make(chan error, 1)
	if _, err := reg.LoadAsync(context.Background(), 1, func(err error) { done <- err }); err != nil {
		t.Fatalf("LoadAsync: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("load: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}

	c, _ := reg.Get(3)
	if c.State() != loader.StateLoaded || c.Refs() != 1 {
		t.Fatalf("c state=%v refs=%d, want loaded/1", c.State(), c.Refs())
	}
}

func TestPopulateRejectsCycle(t *testing.T) {
	const cyclic = `
asset "a" {
  id   = 1
  deps = [2]
}

asset "b" {
  id   = 2
  deps = [1]
}
`
	reg := loader.NewRegistry(content.NewBytesSource(nil))
	err := Populate(reg, writeManifest(t, cyclic))
	target := &lerrors.Error{Phase: lerrors.PhaseValidate, Kind: lerrors.KindCycle}
	if !errors.Is(err, target) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestPopulateRejectsDuplicate(t *testing.T) {
	const duplicated = `
asset "a" {
  id = 1
}

asset "also-a" {
  id = 1
}
`
	reg := loader.NewRegistry(content.NewBytesSource(nil))
	if err := Populate(reg, writeManifest(t, duplicated)); err == nil {
		t.Fatal("duplicate id must be rejected")
	}
}

func TestPopulateBadSyntax(t *testing.T) {
	reg := loader.NewRegistry(content.NewBytesSource(nil))
	if err := Populate(reg, writeManifest(t, "asset {{{")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPopulateMissingFile(t *testing.T) {
	reg := loader.NewRegistry(content.NewBytesSource(nil))
	if err := Populate(reg, filepath.Join(t.TempDir(), "absent.hcl")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestParse(t *testing.T) {
	f, err := Parse("assets.hcl", []byte(chainManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Assets) != 3 {
		t.Fatalf("parsed %d assets, want 3", len(f.Assets))
	}
	if f.Assets[0].Name != "c" {
		t.Fatalf("first block name %q, want c", f.Assets[0].Name)
	}
}
