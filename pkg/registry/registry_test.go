package registry

import (
	"errors"
	"testing"

	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

func provider(t types.ProviderType, priority int) *types.Provider {
	return &types.Provider{Type: t, Model: "m", Priority: priority}
}

func TestNewRequiresProviders(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, types.ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}

func TestNewSortsAndFixesOriginalPriority(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 3)
	b := provider(types.ProviderTypeAnthropic, 1)

	reg, err := New([]*types.Provider{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.Providers()
	if got[0] != b || got[1] != a {
		t.Errorf("expected ascending priority order")
	}
	if a.OriginalPriority != 3 || b.OriginalPriority != 1 {
		t.Errorf("expected original priorities fixed at registration")
	}
}

func TestProvidersReturnsSnapshotCopy(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	reg, _ := New([]*types.Provider{a})

	snapshot := reg.Providers()
	snapshot[0] = nil

	if reg.Providers()[0] != a {
		t.Errorf("mutating the returned slice must not affect the registry")
	}
}

func TestAddResortsAndFixesOriginalPriority(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 2)
	reg, _ := New([]*types.Provider{a})

	b := provider(types.ProviderTypeAnthropic, 1)
	reg.Add(b)

	got := reg.Providers()
	if got[0] != b || got[1] != a {
		t.Errorf("expected added provider sorted into position")
	}
	if b.OriginalPriority != 1 {
		t.Errorf("expected original priority fixed on add, got %d", b.OriginalPriority)
	}
}

func TestAddKeepsExistingOriginalPriority(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	b := provider(types.ProviderTypeAnthropic, 2)
	reg, _ := New([]*types.Provider{a, b})

	// Simulate demotion state, then remove and re-add
	b.Priority = 4
	reg.Remove(b)
	reg.Add(b)

	if b.OriginalPriority != 2 {
		t.Errorf("re-adding must not overwrite the original priority, got %d", b.OriginalPriority)
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	reg, _ := New([]*types.Provider{a})

	reg.Remove(provider(types.ProviderTypeOpenAI, 1))

	if reg.Len() != 1 {
		t.Errorf("removing an absent provider must not change the list")
	}
}

func TestRemoveFirstMatchOnly(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	b := provider(types.ProviderTypeOpenAI, 2)
	reg, _ := New([]*types.Provider{a, b})

	// Same name, distinct entries: identity-based removal takes one
	reg.Remove(a)

	got := reg.Providers()
	if len(got) != 1 || got[0] != b {
		t.Errorf("expected exactly the first matching entry removed")
	}
}

func TestDemoteKeepsListSorted(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	b := provider(types.ProviderTypeAnthropic, 2)
	reg, _ := New([]*types.Provider{a, b})

	reg.Demote([]*types.Provider{a})

	got := reg.Providers()
	if got[0] != b || got[1] != a {
		t.Errorf("expected demoted provider moved behind")
	}
	if a.Priority != 3 {
		t.Errorf("expected priority 1+2=3, got %d", a.Priority)
	}
}
