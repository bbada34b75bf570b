package scheduler

import (
	"testing"
	"time"

	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

func provider(t types.ProviderType, priority int) *types.Provider {
	p := &types.Provider{Type: t, Model: "m", Priority: priority}
	p.MarkRegistered()
	return p
}

func TestSortAscending(t *testing.T) {
	providers := []*types.Provider{
		provider(types.ProviderTypeGemini, 3),
		provider(types.ProviderTypeOpenAI, 1),
		provider(types.ProviderTypeAnthropic, 2),
	}

	Sort(providers)

	want := []types.ProviderType{
		types.ProviderTypeOpenAI,
		types.ProviderTypeAnthropic,
		types.ProviderTypeGemini,
	}
	for i, p := range providers {
		if p.Type != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], p.Type)
		}
	}
}

func TestSortStableOnTies(t *testing.T) {
	first := provider(types.ProviderTypeOpenAI, 1)
	second := provider(types.ProviderTypeAnthropic, 1)
	third := provider(types.ProviderTypeGemini, 1)
	providers := []*types.Provider{first, second, third}

	Sort(providers)

	if providers[0] != first || providers[1] != second || providers[2] != third {
		t.Errorf("tied priorities must preserve input order, got %v %v %v",
			providers[0].Type, providers[1].Type, providers[2].Type)
	}
}

func TestDemoteAddsTotalProviderCount(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	b := provider(types.ProviderTypeAnthropic, 2)
	c := provider(types.ProviderTypeGemini, 3)
	all := []*types.Provider{a, b, c}

	Demote(all, []*types.Provider{a})

	if a.Priority != 4 {
		t.Errorf("expected demoted priority 1+3=4, got %d", a.Priority)
	}
	if all[0] != b || all[1] != c || all[2] != a {
		t.Errorf("demoted provider must sort after every untouched one")
	}
}

func TestDemoteBatchKeepsRelativeOrder(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 1)
	b := provider(types.ProviderTypeAnthropic, 2)
	c := provider(types.ProviderTypeGemini, 3)
	d := provider(types.ProviderTypeMistral, 4)
	all := []*types.Provider{a, b, c, d}

	Demote(all, []*types.Provider{a, c})

	if a.Priority != 5 || c.Priority != 7 {
		t.Fatalf("expected priorities 5 and 7, got %d and %d", a.Priority, c.Priority)
	}
	wantOrder := []*types.Provider{b, d, a, c}
	for i, p := range all {
		if p != wantOrder[i] {
			t.Errorf("position %d: wrong provider %s", i, p.Type)
		}
	}
}

func TestDemoteEmptyBatchIsNoOp(t *testing.T) {
	a := provider(types.ProviderTypeOpenAI, 2)
	b := provider(types.ProviderTypeAnthropic, 1)
	all := []*types.Provider{a, b}

	Demote(all, nil)

	// No re-sort happens for an empty batch
	if all[0] != a || a.Priority != 2 {
		t.Errorf("empty demotion batch must not touch the list")
	}
}

func TestCheckAndRecover(t *testing.T) {
	windows := RecoveryWindows{
		Retryable:    5 * time.Minute,
		NonRetryable: 30 * time.Minute,
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		kind      types.FailureKind
		elapsed   time.Duration
		recovered bool
	}{
		{"retryable within window", types.FailureKindRetryable, 4 * time.Minute, false},
		{"retryable past window", types.FailureKindRetryable, 6 * time.Minute, true},
		{"non-retryable within window", types.FailureKindNonRetryable, 20 * time.Minute, false},
		{"non-retryable past window", types.FailureKindNonRetryable, 31 * time.Minute, true},
		{"exactly at window boundary", types.FailureKindRetryable, 5 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider(types.ProviderTypeOpenAI, 1)
			p.Priority = 5 // demoted
			p.RecordFailure(base, tt.kind)

			got := CheckAndRecover(p, windows, base.Add(tt.elapsed))

			if got != tt.recovered {
				t.Fatalf("expected recovered=%t, got %t", tt.recovered, got)
			}
			if tt.recovered {
				if p.Priority != p.OriginalPriority {
					t.Errorf("expected priority restored to %d, got %d", p.OriginalPriority, p.Priority)
				}
				if p.HasFailure() || p.LastFailureKind != types.FailureKindNone {
					t.Errorf("expected failure state cleared")
				}
			} else {
				if p.Priority != 5 || !p.HasFailure() {
					t.Errorf("expected provider untouched within window")
				}
			}
		})
	}
}

func TestCheckAndRecoverNoFailureIsNoOp(t *testing.T) {
	p := provider(types.ProviderTypeOpenAI, 1)
	if CheckAndRecover(p, RecoveryWindows{}, time.Now()) {
		t.Errorf("provider without failure state must not recover")
	}
}

func TestRecoverOnSuccess(t *testing.T) {
	p := provider(types.ProviderTypeOpenAI, 1)
	p.Priority = 4
	p.RecordFailure(time.Now(), types.FailureKindNonRetryable)

	if !RecoverOnSuccess(p) {
		t.Fatalf("expected recovery for provider with failure state")
	}
	if p.Priority != 1 || p.HasFailure() {
		t.Errorf("expected full restore, got priority=%d failure=%v", p.Priority, p.LastFailure)
	}
}

func TestRecoverOnSuccessIgnoresElapsedTime(t *testing.T) {
	p := provider(types.ProviderTypeAnthropic, 2)
	p.Priority = 6
	justNow := time.Now()
	p.RecordFailure(justNow, types.FailureKindNonRetryable)

	// Recovery on success is unconditional even if the window has not
	// elapsed
	if !RecoverOnSuccess(p) {
		t.Fatalf("expected immediate recovery on success")
	}
	if p.Priority != 2 {
		t.Errorf("expected priority 2, got %d", p.Priority)
	}
}

func TestRecoverOnSuccessCleanProviderIsNoOp(t *testing.T) {
	p := provider(types.ProviderTypeOpenAI, 1)
	if RecoverOnSuccess(p) {
		t.Errorf("provider without failure or demotion state must be untouched")
	}
}
