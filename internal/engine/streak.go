package engine

import (
	"sort"
	"time"

	"github.com/tandem-app/tandem/internal/models"
)

// ReplayStreak recomputes a habit's streak from its full challenge history.
// The stored counter is maintained incrementally (increment when a cycle
// closes, zero on an explicit miss), so the replay folds the same events in
// the order they happened rather than in due-day order: a miss recorded on
// an old open challenge after a later day's cycle closed must still zero the
// counter, exactly as the incremental path did.
//
// Event times come from the completions themselves: a cycle closes at its
// latest COMPLETED record, and a miss lands at its MISSED record. An open
// challenge with no miss contributes nothing (a stalled day neither extends
// nor resets).
func ReplayStreak(history []models.Challenge) int {
	type event struct {
		at    time.Time
		reset bool
	}
	var events []event

	for _, c := range history {
		if c.Status == models.ChallengeClosed {
			var closedAt time.Time
			for _, comp := range c.Completions {
				if comp.Status == models.CompletionCompleted && comp.CompletedAt.After(closedAt) {
					closedAt = comp.CompletedAt
				}
			}
			events = append(events, event{at: closedAt})
		}
		for _, comp := range c.Completions {
			if comp.Status == models.CompletionMissed {
				events = append(events, event{at: comp.CompletedAt, reset: true})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.Before(events[j].at)
	})

	streak := 0
	for _, ev := range events {
		if ev.reset {
			streak = 0
		} else {
			streak++
		}
	}
	return streak
}

// AuditStreak loads a habit's history and reports the stored counter next to
// the replayed one. The two agree for every history produced through the
// engine; a mismatch indicates out-of-band writes.
func (e *Engine) AuditStreak(habitID string) (stored, replayed int, err error) {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return 0, 0, err
	}
	history, err := e.store.GetChallengesForHabit(habitID)
	if err != nil {
		return 0, 0, err
	}
	return h.StreakCount, ReplayStreak(history), nil
}
