package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tandem-app/tandem/internal/models"
	"github.com/tandem-app/tandem/internal/storage"
)

// testClock is a settable time source shared by a test's engine.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T) (*Engine, storage.Provider, *testClock) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	eng := New(store, nil, WithClock(clock.Now))
	return eng, store, clock
}

// activePartnership creates and activates a partnership between alice and
// bob, returning it in its active state.
func activePartnership(t *testing.T, eng *Engine, alice, bob string) models.Partnership {
	t.Helper()

	p, err := eng.Invite(alice, bob)
	if err != nil {
		t.Fatalf("failed to create partnership: %v", err)
	}
	p, err = eng.AcceptInvite(p.ID, bob)
	if err != nil {
		t.Fatalf("failed to accept invite: %v", err)
	}
	return p
}

// activeHabit proposes a habit as creator and has the partner approve it.
func activeHabit(t *testing.T, eng *Engine, p models.Partnership, creator string) models.Habit {
	t.Helper()

	h, err := eng.ProposeHabit(p.ID, creator, HabitAttributes{Name: "morning run"})
	if err != nil {
		t.Fatalf("failed to propose habit: %v", err)
	}
	h, err = eng.ResolveApproval(h.ID, p.OtherMember(creator), true)
	if err != nil {
		t.Fatalf("failed to approve habit: %v", err)
	}
	return h
}
