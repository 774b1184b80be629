// Package manifest populates a loader.Registry from a declarative HCL file.
//
// A manifest lists one asset block per loadable unit:
//
//	asset "player" {
//	  id   = 1
//	  path = "player.dat.lz4"
//	  deps = [2, 3]
//	}
//
// Population registers every block and then validates the dependency graph,
// rejecting duplicate ids and cycles up front instead of discovering them
// mid-load.
package manifest

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/zap"

	"github.com/wippyai/asset-loader/errors"
	"github.com/wippyai/asset-loader/loader"
)

// File is a decoded manifest.
type File struct {
	Assets []Block `hcl:"asset,block"`
}

// Block describes one asset entry.
type Block struct {
	Name string   `hcl:"name,label"`
	ID   uint32   `hcl:"id"`
	Path string   `hcl:"path,optional"`
	Deps []uint32 `hcl:"deps,optional"`
}

// Load parses the manifest at path.
func Load(path string) (*File, error) {
	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, errors.Manifest("decode "+path, err)
	}
	return &f, nil
}

// Parse decodes manifest source. filename only selects the syntax by
// extension; use a .hcl name for native syntax.
func Parse(filename string, src []byte) (*File, error) {
	var f File
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return nil, errors.Manifest("decode "+filename, err)
	}
	return &f, nil
}

// Populate parses the manifest at path, registers every asset and validates
// the resulting graph. Dependency ids that resolve to no block are logged and
// left in place: the loader skips them at load time.
func Populate(reg *loader.Registry, path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(reg, f)
}

// Apply registers a decoded manifest into reg and validates the graph.
func Apply(reg *loader.Registry, f *File) error {
	known := make(map[uint32]string, len(f.Assets))
	for _, b := range f.Assets {
		known[b.ID] = b.Name
	}

	for _, b := range f.Assets {
		if _, err := reg.Add(b.ID, b.Name, b.Deps, b.Path); err != nil {
			return errors.Manifest("register "+b.Name, err)
		}
		for _, dep := range b.Deps {
			if _, ok := known[dep]; !ok {
				loader.Logger().Warn("manifest references unknown dependency",
					zap.String("asset", b.Name),
					zap.Uint32("dependency", dep))
			}
		}
	}

	return reg.Validate()
}
