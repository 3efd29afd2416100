package queue

import (
	"fmt"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

func songs(n int) []types.Song {
	out := make([]types.Song, n)
	for i := range out {
		out[i] = types.Song{
			ID:       fmt.Sprintf("s%d", i+1),
			Title:    fmt.Sprintf("Song %d", i+1),
			MediaURL: fmt.Sprintf("https://cdn.example/%d.mp3", i+1),
		}
	}
	return out
}

func ids(list []types.Song) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestNewManager(t *testing.T) {
	m := NewManager(zap.NewNop())

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.Len() != 0 {
		t.Errorf("Expected size 0, got %d", m.Len())
	}
	if m.Shuffle() {
		t.Error("Shuffle should be off by default")
	}
}

func TestSetQueueDeduplicates(t *testing.T) {
	m := NewManager(zap.NewNop())
	list := songs(3)
	m.SetQueue(append(list, list[0]), list[0])

	if m.Len() != 3 {
		t.Errorf("Expected 3 items after dedup, got %d", m.Len())
	}
}

func TestNextOrderedWraparound(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			m := NewManager(zap.NewNop())
			list := songs(n)
			m.SetQueue(list, list[0])

			current := list[0]
			for i := 1; i <= n; i++ {
				next, ok := m.Next(current)
				if !ok {
					t.Fatalf("Next returned false at step %d", i)
				}
				want := list[i%n]
				if next.ID != want.ID {
					t.Errorf("Step %d: expected %s, got %s", i, want.ID, next.ID)
				}
				current = next
			}
			if current.ID != list[0].ID {
				t.Errorf("Expected to wrap to first entry, got %s", current.ID)
			}
		})
	}
}

func TestNextUnknownCurrent(t *testing.T) {
	m := NewManager(zap.NewNop())
	list := songs(3)
	m.SetQueue(list, list[0])

	if _, ok := m.Next(types.Song{ID: "missing"}); ok {
		t.Error("Next should return false when current is not queued")
	}
	if _, ok := m.Next(types.Song{}); ok {
		t.Error("Next should return false for an empty current")
	}
}

func TestNextEmptyQueue(t *testing.T) {
	m := NewManager(zap.NewNop())
	if _, ok := m.Next(songs(1)[0]); ok {
		t.Error("Next on an empty queue should return false")
	}
}

func TestShufflePinsCurrent(t *testing.T) {
	list := songs(10)
	for trial := 0; trial < 20; trial++ {
		m := NewManager(zap.NewNop())
		m.SetQueue(list, list[0])

		current := list[trial%len(list)]
		if !m.ToggleShuffle(current) {
			t.Fatal("ToggleShuffle should report enabled")
		}

		proj := m.Projection()
		if proj[0].ID != current.ID {
			t.Fatalf("Trial %d: expected %s pinned first, got %s", trial, current.ID, proj[0].ID)
		}
		assertPermutation(t, list, proj)
	}
}

func TestShuffleNextVisitsEveryMember(t *testing.T) {
	m := NewManager(zap.NewNop())
	list := songs(6)
	m.SetQueue(list, list[2])
	m.SetShuffle(true, list[2])

	seen := map[string]bool{list[2].ID: true}
	current := list[2]
	for i := 1; i < len(list); i++ {
		next, ok := m.Next(current)
		if !ok {
			t.Fatalf("Next returned false at step %d", i)
		}
		if seen[next.ID] {
			t.Fatalf("Song %s repeated before the projection was exhausted", next.ID)
		}
		seen[next.ID] = true
		current = next
	}
	if len(seen) != len(list) {
		t.Errorf("Expected to visit %d songs, visited %d", len(list), len(seen))
	}

	// Past the last entry the queue reshuffles and keeps going
	next, ok := m.Next(current)
	if !ok {
		t.Fatal("Next should continue after the last shuffled entry")
	}
	proj := m.Projection()
	if proj[0].ID != next.ID {
		t.Errorf("Expected new projection to start with %s, got %s", next.ID, proj[0].ID)
	}
	assertPermutation(t, list, proj)
}

func TestSetQueueWhileShuffledRegenerates(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.SetShuffle(true, types.Song{})

	list := songs(8)
	m.SetQueue(list, list[5])

	proj := m.Projection()
	if proj[0].ID != list[5].ID {
		t.Errorf("Expected starting song pinned first, got %s", proj[0].ID)
	}
	assertPermutation(t, list, proj)
}

func TestDisableShuffleRestoresOrder(t *testing.T) {
	m := NewManager(zap.NewNop())
	list := songs(5)
	m.SetQueue(list, list[0])
	m.SetShuffle(true, list[3])
	m.SetShuffle(false, list[3])

	got := ids(m.Projection())
	want := ids(list)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected base order %v, got %v", want, got)
		}
	}

	next, _ := m.Next(list[3])
	if next.ID != list[4].ID {
		t.Errorf("Expected %s after disabling shuffle, got %s", list[4].ID, next.ID)
	}
}

func TestClear(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.SetQueue(songs(3), types.Song{})
	m.Clear()

	if m.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", m.Len())
	}
}

func TestOnChangeCallback(t *testing.T) {
	m := NewManager(zap.NewNop())
	calls := 0
	m.SetOnChange(func() {
		calls++
		// Re-entering the manager must not deadlock
		_ = m.Len()
	})

	list := songs(2)
	m.SetQueue(list, list[0])
	m.ToggleShuffle(list[0])
	m.Clear()

	if calls != 3 {
		t.Errorf("Expected 3 change notifications, got %d", calls)
	}
}

func assertPermutation(t *testing.T, base, proj []types.Song) {
	t.Helper()
	if len(base) != len(proj) {
		t.Fatalf("Projection has %d entries, base has %d", len(proj), len(base))
	}
	a, b := ids(base), ids(proj)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Projection %v is not a permutation of %v", ids(proj), ids(base))
		}
	}
}
