// Package scheduler implements the priority scheduling core: stable
// priority ordering, batch demotion of failed providers, and time-based
// lazy recovery. All operations are pure functions over the registry's
// live provider slice; the scheduler keeps no state of its own.
package scheduler

import (
	"sort"
	"time"

	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// RecoveryWindows holds the per-failure-kind delays after which a demoted
// provider is eligible for lazy recovery
type RecoveryWindows struct {
	// Retryable is the delay applied after retryable failures
	Retryable time.Duration

	// NonRetryable is the delay applied after non-retryable failures
	NonRetryable time.Duration
}

// Sort orders providers ascending by priority. The sort is stable: ties
// keep their relative input order.
func Sort(providers []*types.Provider) {
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})
}

// Demote pushes every provider in toDemote behind all providers that were
// not demoted in the same batch, then re-sorts the full list.
//
// The penalty is the total provider count, added to each demoted
// provider's priority. Priorities are small positive integers, so a
// fixed penalty of len(all) always sorts a demoted provider after every
// untouched one while keeping the relative order among simultaneously
// demoted providers intact.
func Demote(all []*types.Provider, toDemote []*types.Provider) {
	if len(toDemote) == 0 {
		return
	}
	penalty := len(all)
	for _, p := range toDemote {
		p.Priority += penalty
	}
	Sort(all)
}

// CheckAndRecover restores a provider to its original priority once enough
// time has passed since its last failure. It is invoked immediately before
// every attempt on the provider, giving lazy pull-based recovery with no
// background timer. Returns true if the provider was recovered.
func CheckAndRecover(p *types.Provider, windows RecoveryWindows, now time.Time) bool {
	if !p.HasFailure() {
		return false
	}

	elapsed := now.Sub(*p.LastFailure)
	var window time.Duration
	switch p.LastFailureKind {
	case types.FailureKindRetryable:
		window = windows.Retryable
	default:
		window = windows.NonRetryable
	}
	if elapsed <= window {
		return false
	}

	p.Priority = p.OriginalPriority
	p.ClearFailure()
	return true
}

// RecoverOnSuccess unconditionally restores a provider that carries
// failure state, regardless of elapsed time. A single success fully
// forgives prior failures. Returns true if the provider was recovered.
func RecoverOnSuccess(p *types.Provider) bool {
	if !p.HasFailure() && !p.Demoted() {
		return false
	}
	p.Priority = p.OriginalPriority
	p.ClearFailure()
	return true
}
