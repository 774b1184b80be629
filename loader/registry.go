// Package loader implements the dependency-aware asynchronous asset loader
// core: the Asset state machine and the Registry that routes load and unload
// requests to it.
//
// Loading an asset retains and loads its transitive dependencies first; a
// dependency is guaranteed Loaded before the dependent's own content load
// begins. Concurrent requests for the same asset coalesce onto one in-flight
// operation. Unloading is refcount-gated: content is released only once no
// other asset and no external caller holds the asset.
package loader

import (
	"context"
	"sort"
	"sync"

	"github.com/wippyai/asset-loader/content"
	"github.com/wippyai/asset-loader/errors"
)

// Registry is the process-wide lookup from asset id to Asset. It owns every
// Asset instance for its lifetime: assets reference their dependencies by id
// and resolve them through the registry at call time.
type Registry struct {
	assets    map[uint32]*Asset
	source    content.Source
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

// NewRegistry creates an empty registry delegating content production to
// source.
func NewRegistry(source content.Source) *Registry {
	return &Registry{
		assets: make(map[uint32]*Asset),
		source: source,
	}
}

// Add registers an asset under id with a fixed dependency list. The id must
// be nonzero and unused. The dependency list is copied and immutable
// afterwards.
func (r *Registry) Add(id uint32, name string, deps []uint32, path string) (*Asset, error) {
	if id == 0 {
		return nil, errors.InvalidInput(errors.PhaseResolve, "asset id 0 is reserved")
	}

	a := &Asset{
		reg:   r,
		id:    id,
		name:  name,
		deps:  append([]uint32(nil), deps...),
		req:   content.Request{ID: id, Name: name, Path: path},
		state: StateUnloaded,
	}

	r.mu.Lock()
	if _, exists := r.assets[id]; exists {
		r.mu.Unlock()
		return nil, errors.Duplicate(errors.PhaseResolve, id)
	}
	r.assets[id] = a
	r.mu.Unlock()

	r.notify(Event{Type: EventRegistered, ID: id, Name: name, State: StateUnloaded})
	return a, nil
}

// Get returns the asset registered under id.
func (r *Registry) Get(id uint32) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	return a, ok
}

// LoadAsync marks the asset externally held and requests it (and its
// dependency closure) reach Loaded. fn fires exactly once; if the asset is
// already Loaded it fires before LoadAsync returns. A failed load clears the
// hold along with delivering the error, so the caller does not owe an
// UnloadAsync for a load that never completed. The returned Pending withdraws
// this caller's interest without affecting the operation itself.
func (r *Registry) LoadAsync(ctx context.Context, id uint32, fn CompletionFunc) (*Pending, error) {
	a, ok := r.Get(id)
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, id)
	}
	a.setHeld(true)
	token := a.load(ctx, fn)
	return &Pending{asset: a, token: token}, nil
}

// UnloadAsync releases the caller's hold and requests an unload. The unload
// itself proceeds only once nothing else references the asset; fn receives
// an UnloadRefused error when it is deferred. Already-unloaded assets fire fn
// immediately.
func (r *Registry) UnloadAsync(ctx context.Context, id uint32, fn CompletionFunc) error {
	a, ok := r.Get(id)
	if !ok {
		return errors.NotFound(errors.PhaseResolve, id)
	}
	a.setHeld(false)
	a.unload(ctx, fn)
	return nil
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

// Each calls fn for every registered asset in ascending id order until fn
// returns false.
func (r *Registry) Each(fn func(*Asset) bool) {
	r.mu.RLock()
	ids := make([]uint32, 0, len(r.assets))
	for id := range r.assets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a, ok := r.Get(id)
		if !ok {
			continue
		}
		if !fn(a) {
			return
		}
	}
}

// Status is a point-in-time view of one asset.
type Status struct {
	Name  string
	Refs  int
	ID    uint32
	State State
	Held  bool
}

// Snapshot returns the current status of every asset in ascending id order.
func (r *Registry) Snapshot() []Status {
	out := make([]Status, 0, r.Len())
	r.Each(func(a *Asset) bool {
		a.mu.Lock()
		out = append(out, Status{
			ID:    a.id,
			Name:  a.name,
			State: a.state,
			Refs:  a.refs,
			Held:  a.held,
		})
		a.mu.Unlock()
		return true
	})
	return out
}

// Validate checks the registered dependency graph for cycles. Ids that do not
// resolve are skipped, matching load-time behavior. Returns a KindCycle error
// naming the offending chain.
func (r *Registry) Validate() error {
	r.mu.RLock()
	graph := make(map[uint32][]uint32, len(r.assets))
	ids := make([]uint32, 0, len(r.assets))
	for id, a := range r.assets {
		graph[id] = a.deps
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	const (
		unvisited = iota
		visiting
		done
	)
	colors := make(map[uint32]int, len(graph))
	var chain []uint32

	var visit func(id uint32) *errors.Error
	visit = func(id uint32) *errors.Error {
		colors[id] = visiting
		chain = append(chain, id)
		for _, dep := range graph[id] {
			if _, ok := graph[dep]; !ok {
				continue
			}
			switch colors[dep] {
			case visiting:
				cycle := append(append([]uint32(nil), chain...), dep)
				return errors.Cycle(cycle)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		chain = chain[:len(chain)-1]
		colors[id] = done
		return nil
	}

	for _, id := range ids {
		if colors[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Observe registers an observer for asset lifecycle events.
func (r *Registry) Observe(o Observer) {
	r.obsMu.Lock()
	r.observers = append(r.observers, o)
	r.obsMu.Unlock()
}

// Unobserve removes a previously registered observer.
func (r *Registry) Unobserve(o Observer) {
	r.obsMu.Lock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			break
		}
	}
	r.obsMu.Unlock()
}

func (r *Registry) notify(ev Event) {
	r.obsMu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.obsMu.RUnlock()

	for _, o := range observers {
		o.OnAssetEvent(ev)
	}
}

// Pending is a caller's handle on a not-yet-fired completion listener.
type Pending struct {
	asset *Asset
	token uint64
}

// Cancel withdraws the caller's completion interest. The in-flight operation
// continues for everyone else. Returns false if the listener already fired.
func (p *Pending) Cancel() bool {
	if p == nil || p.asset == nil {
		return false
	}
	return p.asset.cancel(p.token)
}
