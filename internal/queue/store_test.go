package queue

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

func TestStoreLoadSaveRoundtrip(t *testing.T) {
	kv := store.NewMemoryKV()
	adapter := store.NewAdapter(kv, zap.NewNop())

	m := NewManager(zap.NewNop())
	m.SetShuffle(true, types.Song{})
	NewStore(adapter, m).Save()
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	adapter2 := store.NewAdapter(kv, zap.NewNop())
	defer adapter2.Close()

	m2 := NewManager(zap.NewNop())
	if err := NewStore(adapter2, m2).Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if !m2.Shuffle() {
		t.Error("Expected shuffle restored")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	adapter := store.NewAdapter(store.NewMemoryKV(), zap.NewNop())
	defer adapter.Close()

	m := NewManager(zap.NewNop())
	if err := NewStore(adapter, m).Load(); err != nil {
		t.Errorf("Load with no saved state should not error, got: %v", err)
	}
	if m.Shuffle() {
		t.Error("Shuffle should stay off")
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	kv := store.NewMemoryKV()
	_ = kv.Set(store.KeyShuffle, []byte("{not json"))
	adapter := store.NewAdapter(kv, zap.NewNop())
	defer adapter.Close()

	m := NewManager(zap.NewNop())
	err := NewStore(adapter, m).Load()
	if !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}
	if m.Shuffle() {
		t.Error("Corrupt value should leave shuffle off")
	}
}
