package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/asset-loader/content"
	"github.com/wippyai/asset-loader/loader"
	"github.com/wippyai/asset-loader/manifest"
)

func main() {
	var (
		manifestPath = flag.String("manifest", "", "Path to asset manifest (HCL)")
		dir          = flag.String("dir", ".", "Base directory for asset payloads")
		load         = flag.String("load", "", "Assets to load (comma-separated names or ids)")
		wasm         = flag.Bool("wasm", false, "Compile payloads as WebAssembly modules")
		workers      = flag.Int("workers", 4, "Content worker pool size")
		verbose      = flag.Bool("v", false, "Verbose logging")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: assetctl -manifest assets.hcl [-dir payloads/] -load name,name…")
		fmt.Fprintln(os.Stderr, "       assetctl -manifest assets.hcl -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		loader.SetLogger(logger)
	}

	ctx := context.Background()

	pool := content.NewPool(*workers, false)
	defer pool.Close()

	var source content.Source = content.NewFileSource(*dir).WithExecutor(pool)
	if *wasm {
		ws := content.NewWASMSource(ctx, source)
		defer ws.Close(ctx)
		source = ws
	}

	reg := loader.NewRegistry(source)
	if err := manifest.Populate(reg, *manifestPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(ctx, reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(ctx, reg, *load); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, reg *loader.Registry, load string) error {
	if load == "" {
		printStatus(reg)
		return nil
	}

	for _, target := range strings.Split(load, ",") {
		target = strings.TrimSpace(target)
		id, err := resolveTarget(reg, target)
		if err != nil {
			return err
		}

		done := make(chan error, 1)
		if _, err := reg.LoadAsync(ctx, id, func(err error) { done <- err }); err != nil {
			return err
		}
		if err := <-done; err != nil {
			return fmt.Errorf("load %s: %w", target, err)
		}
		fmt.Printf("loaded %s\n", target)
	}

	printStatus(reg)
	return nil
}

// resolveTarget accepts either a numeric id or an asset name.
func resolveTarget(reg *loader.Registry, target string) (uint32, error) {
	if n, err := strconv.ParseUint(target, 10, 32); err == nil {
		if _, ok := reg.Get(uint32(n)); ok {
			return uint32(n), nil
		}
	}

	var id uint32
	found := false
	reg.Each(func(a *loader.Asset) bool {
		if a.Name() == target {
			id = a.ID()
			found = true
			return false
		}
		return true
	})
	if !found {
		return 0, fmt.Errorf("no asset named %q", target)
	}
	return id, nil
}

func printStatus(reg *loader.Registry) {
	fmt.Printf("\n%-6s %-20s %-10s %-5s %s\n", "ID", "NAME", "STATE", "REFS", "HELD")
	for _, st := range reg.Snapshot() {
		fmt.Printf("%-6d %-20s %-10s %-5d %v\n", st.ID, st.Name, st.State, st.Refs, st.Held)
	}
}
