package loader

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/asset-loader/content"
	"github.com/wippyai/asset-loader/errors"
)

// CompletionFunc receives the outcome of a load or unload request. A nil
// error means the operation reached its target state.
type CompletionFunc func(err error)

type listenerEntry struct {
	fn    CompletionFunc
	token uint64
}

// Asset is a single loadable unit. It owns its load-state machine, its
// reference count and its pending completion listeners, and knows the ids of
// the assets it depends on. Content production is delegated to the registry's
// content.Source.
//
// All methods are safe for concurrent use. Completion listeners and registry
// observers fire outside the asset's lock.
type Asset struct {
	reg             *Registry
	data            any
	name            string
	req             content.Request
	deps            []uint32
	loadListeners   []listenerEntry
	unloadListeners []listenerEntry
	reloadQueue     []listenerEntry
	mu              sync.Mutex
	nextToken       uint64
	refs            int
	id              uint32
	held            bool
	state           State
}

// ID returns the asset's stable identifier.
func (a *Asset) ID() uint32 { return a.id }

// Name returns the asset's human-readable name.
func (a *Asset) Name() string { return a.name }

// Dependencies returns a copy of the asset's dependency id list.
func (a *Asset) Dependencies() []uint32 {
	out := make([]uint32, len(a.deps))
	copy(out, a.deps)
	return out
}

// State returns the asset's current lifecycle state.
func (a *Asset) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Content returns the opaque content value, or nil unless the asset is Loaded.
func (a *Asset) Content() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data
}

// Refs returns the number of other assets currently depending on this one.
func (a *Asset) Refs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refs
}

// Held reports whether an external caller currently holds this asset loaded.
func (a *Asset) Held() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.held
}

func (a *Asset) setHeld(held bool) {
	a.mu.Lock()
	a.held = held
	a.mu.Unlock()
}

// retain marks the asset as in use by a dependent. Incremented regardless of
// the asset's current state.
func (a *Asset) retain() {
	a.mu.Lock()
	a.refs++
	a.mu.Unlock()
}

func (a *Asset) release() {
	a.mu.Lock()
	if a.refs > 0 {
		a.refs--
	}
	a.mu.Unlock()
}

// load requests the asset (and, transitively, its dependencies) reach the
// Loaded state. fn fires exactly once: immediately when already Loaded,
// otherwise when the coalesced in-flight operation finishes. The returned
// token cancels the listener; 0 means the callback already fired or fn was
// nil.
func (a *Asset) load(ctx context.Context, fn CompletionFunc) uint64 {
	a.mu.Lock()
	var e listenerEntry
	if fn != nil {
		a.nextToken++
		e = listenerEntry{fn: fn, token: a.nextToken}
	}
	return a.loadEntry(ctx, e)
}

// loadEntry continues a load with a preallocated listener entry. Called with
// a.mu held; releases it.
func (a *Asset) loadEntry(ctx context.Context, e listenerEntry) uint64 {
	switch a.state {
	case StateLoaded:
		a.mu.Unlock()
		if e.fn != nil {
			e.fn(nil)
		}
		return 0

	case StateWaiting, StateLoading:
		if e.fn != nil {
			a.loadListeners = append(a.loadListeners, e)
		}
		a.mu.Unlock()
		return e.token

	case StateUnloading:
		// Queue a reload: re-issued once the in-flight unload reaches
		// Unloaded.
		if e.fn != nil {
			a.reloadQueue = append(a.reloadQueue, e)
		}
		a.mu.Unlock()
		return e.token

	default: // StateUnloaded
		a.state = StateWaiting
		if e.fn != nil {
			a.loadListeners = append(a.loadListeners, e)
		}
		a.mu.Unlock()
		a.notifyState(StateWaiting)
		a.resolveDependencies(ctx)
		a.checkDependencies(ctx)
		return e.token
	}
}

// resolveDependencies retains every dependency and triggers loads for the
// ones not yet Loaded. Missing ids are skipped entirely.
//
// Two passes: every resolvable dependency is retained before any load is
// triggered. A triggered load can complete synchronously and run this asset's
// completion listeners mid-scan; with all refcounts already in place, an
// unload issued from such a listener cannot tear out a dependency that was
// Loaded when the scan began.
func (a *Asset) resolveDependencies(ctx context.Context) {
	resolved := make([]*Asset, 0, len(a.deps))
	for _, depID := range a.deps {
		dep, ok := a.reg.Get(depID)
		if !ok {
			Logger().Warn("dependency not registered, skipping",
				zap.Uint32("asset", a.id),
				zap.Uint32("dependency", depID))
			continue
		}
		dep.retain()
		resolved = append(resolved, dep)
	}

	for _, dep := range resolved {
		if dep.State() == StateLoaded {
			continue
		}
		depID := dep.id
		dep.load(ctx, func(err error) {
			if err != nil {
				a.failWaiting(ctx, depID, err)
				return
			}
			a.checkDependencies(ctx)
		})
	}
}

// checkDependencies re-scans every dependency and starts the asset's own
// content load once all of them are Loaded. Deliberately conservative and
// idempotent: safe to invoke from any dependency's completion, in any order,
// and a no-op unless the asset is still Waiting.
func (a *Asset) checkDependencies(ctx context.Context) {
	for _, depID := range a.deps {
		dep, ok := a.reg.Get(depID)
		if !ok {
			continue
		}
		if dep.State() != StateLoaded {
			return
		}
	}

	a.mu.Lock()
	if a.state != StateWaiting {
		a.mu.Unlock()
		return
	}
	a.state = StateLoading
	req := a.req
	a.mu.Unlock()

	a.notifyState(StateLoading)
	a.reg.source.BeginLoad(ctx, req, func(value any, err error) {
		a.finishLoad(ctx, value, err)
	})
}

func (a *Asset) finishLoad(ctx context.Context, value any, err error) {
	if err != nil {
		werr := errors.LoadFailed(a.id, err)
		a.mu.Lock()
		a.state = StateUnloaded
		// Every external load interest fails with this operation, so no
		// active hold remains.
		a.held = false
		listeners := a.drainLoadLocked()
		a.mu.Unlock()

		a.releaseDependencies(ctx)
		a.reg.notify(Event{Type: EventLoadFailed, ID: a.id, Name: a.name, State: StateUnloaded, Err: werr})
		a.notifyState(StateUnloaded)
		fire(listeners, werr)
		return
	}

	a.mu.Lock()
	a.data = value
	a.state = StateLoaded
	listeners := a.drainLoadLocked()
	a.mu.Unlock()

	a.notifyState(StateLoaded)
	fire(listeners, nil)
}

// failWaiting aborts a load whose dependency failed. No-op unless the asset
// is still Waiting.
func (a *Asset) failWaiting(ctx context.Context, depID uint32, cause error) {
	a.mu.Lock()
	if a.state != StateWaiting {
		a.mu.Unlock()
		return
	}
	a.state = StateUnloaded
	a.held = false
	listeners := a.drainLoadLocked()
	a.mu.Unlock()

	a.releaseDependencies(ctx)
	werr := errors.DependencyFailed(a.id, depID, cause)
	a.reg.notify(Event{Type: EventLoadFailed, ID: a.id, Name: a.name, State: StateUnloaded, Err: werr})
	a.notifyState(StateUnloaded)
	fire(listeners, werr)
}

// unload requests the asset release its content. Honored only when Loaded
// with no dependents and no external hold; otherwise fn receives an
// UnloadRefused error. Requests during an in-flight unload coalesce onto it.
func (a *Asset) unload(ctx context.Context, fn CompletionFunc) {
	a.mu.Lock()
	switch a.state {
	case StateUnloaded:
		a.mu.Unlock()
		if fn != nil {
			fn(nil)
		}
		return

	case StateUnloading:
		if fn != nil {
			a.nextToken++
			a.unloadListeners = append(a.unloadListeners, listenerEntry{fn: fn, token: a.nextToken})
		}
		a.mu.Unlock()
		return

	case StateWaiting, StateLoading:
		refs, held := a.refs, a.held
		a.mu.Unlock()
		if fn != nil {
			fn(errors.UnloadRefused(a.id, refs, held))
		}
		return
	}

	// StateLoaded
	if a.refs > 0 || a.held {
		refs, held := a.refs, a.held
		a.mu.Unlock()
		Logger().Debug("unload refused",
			zap.Uint32("asset", a.id),
			zap.Int("refs", refs),
			zap.Bool("held", held))
		if fn != nil {
			fn(errors.UnloadRefused(a.id, refs, held))
		}
		return
	}

	a.state = StateUnloading
	if fn != nil {
		a.nextToken++
		a.unloadListeners = append(a.unloadListeners, listenerEntry{fn: fn, token: a.nextToken})
	}
	value := a.data
	req := a.req
	a.mu.Unlock()

	a.notifyState(StateUnloading)
	a.releaseDependencies(ctx)
	a.reg.source.BeginUnload(ctx, req, value, func(err error) {
		a.finishUnload(ctx, err)
	})
}

func (a *Asset) finishUnload(ctx context.Context, err error) {
	if err != nil {
		werr := errors.UnloadFailed(a.id, err)
		a.mu.Lock()
		a.state = StateLoaded
		listeners := a.drainUnloadLocked()
		a.mu.Unlock()

		// The asset stays Loaded, so the dependency refcounts released when
		// the unload started have to be taken again.
		a.restoreDependencies(ctx)
		a.reg.notify(Event{Type: EventUnloadFailed, ID: a.id, Name: a.name, State: StateLoaded, Err: werr})
		a.notifyState(StateLoaded)
		fire(listeners, werr)
		return
	}

	a.mu.Lock()
	a.data = nil
	a.state = StateUnloaded
	listeners := a.drainUnloadLocked()
	reloads := a.reloadQueue
	a.reloadQueue = nil
	a.mu.Unlock()

	a.notifyState(StateUnloaded)
	fire(listeners, nil)

	for _, e := range reloads {
		a.mu.Lock()
		a.loadEntry(ctx, e) // releases a.mu
	}
}

// releaseDependencies decrements every dependency's refcount and issues a
// best-effort unload on each. A dependency still referenced elsewhere refuses
// silently.
func (a *Asset) releaseDependencies(ctx context.Context) {
	for _, depID := range a.deps {
		dep, ok := a.reg.Get(depID)
		if !ok {
			continue
		}
		dep.release()
		dep.unload(ctx, nil)
	}
}

// restoreDependencies re-takes dependency refcounts after a failed unload and
// reloads any dependency that already let go of its content.
func (a *Asset) restoreDependencies(ctx context.Context) {
	for _, depID := range a.deps {
		dep, ok := a.reg.Get(depID)
		if !ok {
			continue
		}
		dep.retain()
		if dep.State() != StateLoaded {
			dep.load(ctx, func(error) {})
		}
	}
}

// cancel removes a pending listener by token. Returns false if the listener
// already fired or was never registered.
func (a *Asset) cancel(token uint64) bool {
	if token == 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, set := range [][]listenerEntry{a.loadListeners, a.unloadListeners, a.reloadQueue} {
		for j, e := range set {
			if e.token != token {
				continue
			}
			set = append(set[:j], set[j+1:]...)
			switch i {
			case 0:
				a.loadListeners = set
			case 1:
				a.unloadListeners = set
			case 2:
				a.reloadQueue = set
			}
			return true
		}
	}
	return false
}

func (a *Asset) drainLoadLocked() []listenerEntry {
	listeners := a.loadListeners
	a.loadListeners = nil
	return listeners
}

func (a *Asset) drainUnloadLocked() []listenerEntry {
	listeners := a.unloadListeners
	a.unloadListeners = nil
	return listeners
}

func (a *Asset) notifyState(st State) {
	Logger().Debug("state change",
		zap.Uint32("asset", a.id),
		zap.String("name", a.name),
		zap.Stringer("state", st))
	a.reg.notify(Event{Type: EventStateChanged, ID: a.id, Name: a.name, State: st})
}

func fire(listeners []listenerEntry, err error) {
	for _, e := range listeners {
		if e.fn != nil {
			e.fn(err)
		}
	}
}
