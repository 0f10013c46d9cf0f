package decisioncache

import (
	"context"
	"testing"
	"time"

	"github.com/AzielCF/az-digest/domains/gating"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := &gating.CacheEntry{Allowed: true, Matches: []string{"inflacion"}}
	if err := store.Save(ctx, "fp-1", entry, time.Minute); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Get(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for fresh entry")
	}
	if !got.Allowed {
		t.Error("Get() lost Allowed flag")
	}
	if len(got.Matches) != 1 || got.Matches[0] != "inflacion" {
		t.Errorf("Get() matches = %v", got.Matches)
	}
}

func TestMemoryStore_MissReturnsNil(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Fatalf("Get() = %+v, want nil", got)
	}
}

func TestMemoryStore_ExpiredEntryIsInvisible(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "fp-exp", &gating.CacheEntry{Allowed: false}, -time.Second); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Get(ctx, "fp-exp")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Fatalf("expired entry should be invisible, got %+v", got)
	}

	// Cleanup physically removes it.
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if n := store.Len(); n != 0 {
		t.Errorf("Len() after cleanup = %d, want 0", n)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Save(ctx, "fp-del", &gating.CacheEntry{Allowed: true}, time.Minute)
	if err := store.Delete(ctx, "fp-del"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, "fp-del"); got != nil {
		t.Fatalf("entry survived Delete: %+v", got)
	}
}

func TestMemoryStore_CloseStopsCleanupLoop(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Close()
	// Idempotente: un segundo Close no debe entrar en pánico.
	store.Close()

	select {
	case <-store.stop:
	default:
		t.Fatal("Close() did not signal the cleanup goroutine")
	}

	// El store sigue siendo usable tras Close.
	if err := store.Save(ctx, "fp-after-close", &gating.CacheEntry{Allowed: true}, time.Minute); err != nil {
		t.Fatalf("Save() after Close error: %v", err)
	}
	if got, _ := store.Get(ctx, "fp-after-close"); got == nil || !got.Allowed {
		t.Fatalf("Get() after Close = %+v", got)
	}
}

func TestMemoryStore_OverwriteReplacesDecision(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Save(ctx, "fp-ow", &gating.CacheEntry{Allowed: false}, time.Minute)
	_ = store.Save(ctx, "fp-ow", &gating.CacheEntry{Allowed: true, Matches: []string{"mercosur"}}, time.Minute)

	got, _ := store.Get(ctx, "fp-ow")
	if got == nil || !got.Allowed {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}
