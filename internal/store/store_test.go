package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestFileKVRoundtrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "store_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	kv := NewFileKV(filepath.Join(tmpDir, "state"))

	if _, found, err := kv.Get(KeyFavorites); err != nil || found {
		t.Fatalf("Expected missing key without error, got found=%v err=%v", found, err)
	}

	if err := kv.Set(KeyFavorites, []byte(`["a","b"]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "state", "favorites.json")); os.IsNotExist(err) {
		t.Fatal("Store file was not created")
	}

	data, found, err := kv.Get(KeyFavorites)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("Unexpected value %s", data)
	}
}

func TestFileKVRejectsInvalidKey(t *testing.T) {
	kv := NewFileKV(t.TempDir())

	if err := kv.Set("../escape", []byte("x")); err == nil {
		t.Error("Expected error for key with path separators")
	}
	if _, _, err := kv.Get("a/b"); err == nil {
		t.Error("Expected error for key with path separators")
	}
}

func TestAdapterSaveLoad(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv, zap.NewNop())
	defer a.Close()

	a.Save(KeyShuffle, true)
	a.Save(KeyFavorites, []string{"x", "y"})
	a.Flush()

	var shuffle bool
	found, err := a.Load(KeyShuffle, &shuffle)
	if err != nil || !found {
		t.Fatalf("Load shuffle failed: found=%v err=%v", found, err)
	}
	if !shuffle {
		t.Error("Expected shuffle true")
	}

	var favs []string
	if _, err := a.Load(KeyFavorites, &favs); err != nil {
		t.Fatalf("Load favorites failed: %v", err)
	}
	if len(favs) != 2 || favs[0] != "x" {
		t.Errorf("Unexpected favorites %v", favs)
	}
}

func TestAdapterLastWriteWins(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv, zap.NewNop())

	for i := 0; i < 100; i++ {
		a.Save(KeyRadio, i%2 == 0)
	}
	a.Save(KeyRadio, true)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, found, _ := kv.Get(KeyRadio)
	if !found || string(data) != "true" {
		t.Errorf("Expected final value true, got %q (found=%v)", data, found)
	}
}

func TestAdapterLoadMissing(t *testing.T) {
	a := NewAdapter(NewMemoryKV(), zap.NewNop())
	defer a.Close()

	var favs []string
	found, err := a.Load(KeyFavorites, &favs)
	if err != nil {
		t.Errorf("Load with missing key should not error, got: %v", err)
	}
	if found {
		t.Error("Expected found=false for missing key")
	}
}

func TestAdapterLoadCorrupt(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(KeyPlaylists, []byte("not valid json"))
	_ = kv.Set(KeyShuffle, []byte("true"))

	a := NewAdapter(kv, zap.NewNop())
	defer a.Close()

	var playlists []map[string]any
	if _, err := a.Load(KeyPlaylists, &playlists); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}

	// Other slices are unaffected
	var shuffle bool
	if found, err := a.Load(KeyShuffle, &shuffle); err != nil || !found || !shuffle {
		t.Errorf("Expected shuffle to load, got found=%v err=%v value=%v", found, err, shuffle)
	}
}

func TestAdapterSaveAfterClose(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv, zap.NewNop())
	_ = a.Close()

	a.Save(KeyShuffle, true)

	if _, found, _ := kv.Get(KeyShuffle); !found {
		t.Error("Save after Close should write synchronously")
	}
}
