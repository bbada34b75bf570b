// Package registry holds the ordered list of configured providers and
// guards structural changes to it. Provider records themselves are shared
// by reference with callers; only add/remove go through the registry.
package registry

import (
	"sync"

	"github.com/cecil-the-coder/llm-fallback/pkg/scheduler"
	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// Registry owns the ordered provider list. The list is kept ascending by
// priority after every operation, so readers never observe a transiently
// unsorted snapshot.
//
// Structural operations (add, remove, snapshot) are safe for concurrent
// use. Mutation of an individual provider's scheduling fields during an
// in-flight call is intentionally unsynchronized; see the package
// documentation of fallback for the concurrency model.
type Registry struct {
	mu        sync.RWMutex
	providers []*types.Provider
}

// New creates a registry from a non-empty provider list. Each provider's
// original priority is fixed at this point, and the list is sorted.
func New(providers []*types.Provider) (*Registry, error) {
	if len(providers) == 0 {
		return nil, types.ErrNoProviders
	}

	owned := make([]*types.Provider, len(providers))
	copy(owned, providers)
	for _, p := range owned {
		p.MarkRegistered()
	}
	scheduler.Sort(owned)

	return &Registry{providers: owned}, nil
}

// Providers returns a snapshot copy of the ordered provider list. The
// slice is the caller's to keep; the entries are shared by reference with
// the registry's internal store.
func (r *Registry) Providers() []*types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*types.Provider, len(r.providers))
	copy(snapshot, r.providers)
	return snapshot
}

// Add appends a provider, fixing its original priority if it has not been
// registered before, and re-sorts the list.
func (r *Registry) Add(p *types.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.MarkRegistered()
	r.providers = append(r.providers, p)
	scheduler.Sort(r.providers)
}

// Remove deletes the first entry that is identical (by reference) to p.
// Removing a provider that is not present is a silent no-op; when the same
// record appears twice, only the first match is removed.
func (r *Registry) Remove(p *types.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, candidate := range r.providers {
		if candidate == p {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			return
		}
	}
}

// Demote applies the scheduler's batch demotion to the internal list and
// re-sorts it, all under the structural lock so no reader observes an
// unsorted list.
func (r *Registry) Demote(toDemote []*types.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scheduler.Demote(r.providers, toDemote)
}

// Sort restores ascending priority order. Called after recovery resets a
// provider's priority outside the registry.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	scheduler.Sort(r.providers)
}

// Len returns the current number of registered providers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
