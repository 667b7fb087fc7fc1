package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

func TestCreateChallenge(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	// Bob does not hold the turn.
	if _, err := eng.CreateChallenge(h.ID, "bob", "5k run", ""); !errors.Is(err, errdefs.ErrNotYourTurn) {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}

	c, err := eng.CreateChallenge(h.ID, "alice", "5k run", "around the park")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if c.Status != models.ChallengeOpen {
		t.Errorf("expected open status, got %s", c.Status)
	}
	if c.DueDay != "2025-06-15" {
		t.Errorf("expected server-computed due day 2025-06-15, got %s", c.DueDay)
	}

	// A second open challenge on the same day is rejected.
	if _, err := eng.CreateChallenge(h.ID, "alice", "10k run", ""); !errors.Is(err, errdefs.ErrDuplicateForDay) {
		t.Errorf("expected ErrDuplicateForDay, got %v", err)
	}
}

func TestCreateChallengeOnPendingHabit(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")

	h, err := eng.ProposeHabit(p.ID, "alice", HabitAttributes{Name: "stretch"})
	if err != nil {
		t.Fatalf("failed to propose: %v", err)
	}
	if _, err := eng.CreateChallenge(h.ID, "alice", "stretch 10min", ""); !errors.Is(err, errdefs.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for pending habit, got %v", err)
	}
}

func TestCompleteChallengeCycle(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	c, err := eng.CreateChallenge(h.ID, "alice", "5k run", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}

	// Alice completes; cycle stays open.
	c, err = eng.CompleteChallenge(c.ID, "alice", CompletionInput{Reflection: "felt good"})
	if err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if c.Status != models.ChallengeOpen {
		t.Errorf("expected open status after one completion, got %s", c.Status)
	}

	// Completing twice is rejected.
	if _, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{}); !errors.Is(err, errdefs.ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}

	// Bob completes; cycle closes, streak increments, turn flips to the
	// partner who did not create the day's challenge.
	c, err = eng.CompleteChallenge(c.ID, "bob", CompletionInput{})
	if err != nil {
		t.Fatalf("failed to complete as bob: %v", err)
	}
	if c.Status != models.ChallengeClosed {
		t.Errorf("expected closed status, got %s", c.Status)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 1 {
		t.Errorf("expected streak 1, got %d", got.StreakCount)
	}
	if got.CurrentTurn != "bob" {
		t.Errorf("expected turn to flip to bob, got %s", got.CurrentTurn)
	}
	if got.LastCompletedAt == nil {
		t.Error("expected last_completed_at to be stamped")
	}
}

func TestStageTomorrowAfterClose(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	c, err := eng.CreateChallenge(h.ID, "alice", "day one", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "bob", CompletionInput{}); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}

	// The turn passed to bob on close; his new goal lands on tomorrow.
	next, err := eng.CreateChallenge(h.ID, "bob", "day two", "")
	if err != nil {
		t.Fatalf("failed to stage next challenge: %v", err)
	}
	if next.DueDay != "2025-06-16" {
		t.Errorf("expected due day 2025-06-16, got %s", next.DueDay)
	}
}

func TestMissedResetsStreak(t *testing.T) {
	eng, store, clock := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	// Close one full cycle to build a streak.
	c, err := eng.CreateChallenge(h.ID, "alice", "day one", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "bob", CompletionInput{}); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}

	clock.Advance(24 * time.Hour)

	c2, err := eng.CreateChallenge(h.ID, "bob", "day two", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if _, err := eng.CompleteChallenge(c2.ID, "alice", CompletionInput{Status: models.CompletionMissed}); err != nil {
		t.Fatalf("failed to record miss: %v", err)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 0 {
		t.Errorf("expected streak reset to 0, got %d", got.StreakCount)
	}
	// A miss neither closes the cycle nor flips the turn.
	if got.CurrentTurn != "bob" {
		t.Errorf("expected turn to stay with bob, got %s", got.CurrentTurn)
	}
}

func TestSkippedDoesNotClose(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	c, err := eng.CreateChallenge(h.ID, "alice", "5k run", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	c, err = eng.CompleteChallenge(c.ID, "bob", CompletionInput{Status: models.CompletionSkipped})
	if err != nil {
		t.Fatalf("failed to skip: %v", err)
	}

	// One COMPLETED plus one SKIPPED is not a closed cycle.
	if c.Status != models.ChallengeOpen {
		t.Errorf("expected open status with a skip, got %s", c.Status)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 0 {
		t.Errorf("expected streak 0, got %d", got.StreakCount)
	}
}

func TestCreateChallengeRace(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	// Two simultaneous goals for the same habit and day: exactly one lands,
	// the other is rejected as a duplicate.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, title := range []string{"5k run", "10k run"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, err := eng.CreateChallenge(h.ID, "alice", title, "")
			errs <- err
		}(title)
	}
	wg.Wait()
	close(errs)

	var created, dup int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, errdefs.ErrDuplicateForDay):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 || dup != 1 {
		t.Errorf("expected one created and one duplicate, got %d created, %d duplicate", created, dup)
	}
}

func TestCompleteChallengeRace(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	c, err := eng.CreateChallenge(h.ID, "alice", "5k run", "")
	if err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}

	// The same user completing twice in parallel records exactly one.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var recorded, dup int
	for err := range errs {
		switch {
		case err == nil:
			recorded++
		case errors.Is(err, errdefs.ErrAlreadyCompleted):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if recorded != 1 || dup != 1 {
		t.Errorf("expected one recorded and one duplicate, got %d recorded, %d duplicate", recorded, dup)
	}
}

func TestRetroactiveMiss(t *testing.T) {
	eng, store, clock := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	// Day 1: a challenge goes up and nobody touches it.
	c1, err := eng.CreateChallenge(h.ID, "alice", "day one", "")
	if err != nil {
		t.Fatalf("day 1 create: %v", err)
	}

	// Day 2: alice still holds the turn; both partners close the new cycle.
	clock.Advance(24 * time.Hour)
	c2, err := eng.CreateChallenge(h.ID, "alice", "day two", "")
	if err != nil {
		t.Fatalf("day 2 create: %v", err)
	}
	if _, err := eng.CompleteChallenge(c2.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("day 2 alice complete: %v", err)
	}
	if _, err := eng.CompleteChallenge(c2.ID, "bob", CompletionInput{}); err != nil {
		t.Fatalf("day 2 bob complete: %v", err)
	}

	// Only then does alice own up to missing day one. The reset lands after
	// the close, so the counter goes back to zero.
	clock.Advance(time.Hour)
	if _, err := eng.CompleteChallenge(c1.ID, "alice", CompletionInput{Status: models.CompletionMissed}); err != nil {
		t.Fatalf("retroactive miss: %v", err)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 0 {
		t.Errorf("expected streak 0 after retroactive miss, got %d", got.StreakCount)
	}

	stored, replayed, err := eng.AuditStreak(h.ID)
	if err != nil {
		t.Fatalf("failed to audit streak: %v", err)
	}
	if stored != replayed {
		t.Errorf("stored streak %d does not match replayed %d", stored, replayed)
	}
}

// TestTwoUserWeek walks two partners through proposal, approval, a completed
// cycle, a pass, and a miss, checking the stored counters at each step.
func TestTwoUserWeek(t *testing.T) {
	eng, store, clock := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")

	h, err := eng.ProposeHabit(p.ID, "alice", HabitAttributes{Name: "journal", Category: "mindfulness"})
	if err != nil {
		t.Fatalf("failed to propose: %v", err)
	}
	if _, err := eng.ResolveApproval(h.ID, "bob", true); err != nil {
		t.Fatalf("failed to approve: %v", err)
	}

	// Day 1: alice sets the goal, both complete.
	c, err := eng.CreateChallenge(h.ID, "alice", "write one page", "")
	if err != nil {
		t.Fatalf("day 1 create: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "bob", CompletionInput{}); err != nil {
		t.Fatalf("day 1 bob complete: %v", err)
	}
	if _, err := eng.CompleteChallenge(c.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("day 1 alice complete: %v", err)
	}

	// Day 2: bob holds the turn but passes it back.
	clock.Advance(24 * time.Hour)
	if _, err := eng.PassTurn(h.ID, "bob"); err != nil {
		t.Fatalf("day 2 pass: %v", err)
	}
	c2, err := eng.CreateChallenge(h.ID, "alice", "write two pages", "")
	if err != nil {
		t.Fatalf("day 2 create: %v", err)
	}
	if _, err := eng.CompleteChallenge(c2.ID, "alice", CompletionInput{}); err != nil {
		t.Fatalf("day 2 alice complete: %v", err)
	}
	if _, err := eng.CompleteChallenge(c2.ID, "bob", CompletionInput{}); err != nil {
		t.Fatalf("day 2 bob complete: %v", err)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 2 {
		t.Errorf("expected streak 2 after two closed days, got %d", got.StreakCount)
	}
	if got.PassCount != 1 {
		t.Errorf("expected pass_count 1, got %d", got.PassCount)
	}

	// Day 3: bob misses.
	clock.Advance(24 * time.Hour)
	c3, err := eng.CreateChallenge(h.ID, "bob", "write a paragraph", "")
	if err != nil {
		t.Fatalf("day 3 create: %v", err)
	}
	if _, err := eng.CompleteChallenge(c3.ID, "bob", CompletionInput{Status: models.CompletionMissed}); err != nil {
		t.Fatalf("day 3 miss: %v", err)
	}

	got, err = store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.StreakCount != 0 {
		t.Errorf("expected streak reset after miss, got %d", got.StreakCount)
	}

	// The stored counter always matches a replay of the history.
	stored, replayed, err := eng.AuditStreak(h.ID)
	if err != nil {
		t.Fatalf("failed to audit streak: %v", err)
	}
	if stored != replayed {
		t.Errorf("stored streak %d does not match replayed %d", stored, replayed)
	}
}
