package engine

import (
	"testing"
	"time"

	"github.com/tandem-app/tandem/internal/models"
)

func closed() models.Challenge {
	return models.Challenge{
		Status: models.ChallengeClosed,
		Completions: []models.Completion{
			{UserID: "a", Status: models.CompletionCompleted},
			{UserID: "b", Status: models.CompletionCompleted},
		},
	}
}

func missed() models.Challenge {
	return models.Challenge{
		Status: models.ChallengeOpen,
		Completions: []models.Completion{
			{UserID: "a", Status: models.CompletionMissed},
		},
	}
}

func open() models.Challenge {
	return models.Challenge{Status: models.ChallengeOpen}
}

func TestReplayStreak(t *testing.T) {
	tests := []struct {
		name    string
		history []models.Challenge
		want    int
	}{
		{"empty history", nil, 0},
		{"single closed", []models.Challenge{closed()}, 1},
		{"run of closed", []models.Challenge{closed(), closed(), closed()}, 3},
		{"miss resets", []models.Challenge{closed(), closed(), missed()}, 0},
		{"rebuild after miss", []models.Challenge{closed(), missed(), closed(), closed()}, 2},
		{"open day is neutral", []models.Challenge{closed(), open(), closed()}, 2},
		{"trailing open", []models.Challenge{closed(), open()}, 1},
		{"miss only", []models.Challenge{missed()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplayStreak(tt.history); got != tt.want {
				t.Errorf("ReplayStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReplayStreakEventOrder(t *testing.T) {
	// History arrives in due-day order, but the fold follows completion
	// timestamps. A miss recorded on day one's challenge after day two's
	// cycle closed must zero the counter, matching what the incremental
	// path would have stored.
	day2noon := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	stale := models.Challenge{
		DueDay: "2025-06-01",
		Status: models.ChallengeOpen,
		Completions: []models.Completion{
			{UserID: "a", Status: models.CompletionMissed, CompletedAt: day2noon.Add(6 * time.Hour)},
		},
	}
	done := models.Challenge{
		DueDay: "2025-06-02",
		Status: models.ChallengeClosed,
		Completions: []models.Completion{
			{UserID: "a", Status: models.CompletionCompleted, CompletedAt: day2noon.Add(-time.Hour)},
			{UserID: "b", Status: models.CompletionCompleted, CompletedAt: day2noon},
		},
	}

	if got := ReplayStreak([]models.Challenge{stale, done}); got != 0 {
		t.Errorf("ReplayStreak() = %d, want 0 (miss recorded after close)", got)
	}

	// The same history with the miss recorded before day two closed leaves
	// the rebuilt streak at one.
	stale.Completions[0].CompletedAt = day2noon.Add(-2 * time.Hour)
	if got := ReplayStreak([]models.Challenge{stale, done}); got != 1 {
		t.Errorf("ReplayStreak() = %d, want 1 (miss recorded before close)", got)
	}
}
