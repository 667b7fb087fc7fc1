package models

import (
	"encoding/json"
	"strings"
	"time"
)

type ChallengeStatus string

const (
	ChallengeOpen   ChallengeStatus = "open"
	ChallengeClosed ChallengeStatus = "closed"
)

type Challenge struct {
	ID          string          `json:"id"`
	HabitID     string          `json:"habit_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CreatorID   string          `json:"creator_id"`
	DueDay      string          `json:"due_day"` // YYYY-MM-DD
	Status      ChallengeStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`

	Completions []Completion `json:"completions,omitempty"`
}

type CompletionStatus string

const (
	CompletionCompleted CompletionStatus = "completed"
	CompletionSkipped   CompletionStatus = "skipped"
	CompletionMissed    CompletionStatus = "missed"
)

// FeelingTags is the structured form of a completion's mood/difficulty
// annotation. Earlier clients wrote a bare array of strings; UnmarshalJSON
// accepts both shapes, but all new writes use the structured form.
type FeelingTags struct {
	Difficulty string `json:"difficulty,omitempty"`
	Mood       string `json:"mood,omitempty"`
}

func (t *FeelingTags) UnmarshalJSON(data []byte) error {
	// Legacy shape: ["hard", "proud"] — first element difficulty, second mood.
	if len(data) > 0 && data[0] == '[' {
		var legacy []string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		if len(legacy) > 0 {
			t.Difficulty = strings.TrimSpace(legacy[0])
		}
		if len(legacy) > 1 {
			t.Mood = strings.TrimSpace(legacy[1])
		}
		return nil
	}

	type plain FeelingTags
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = FeelingTags(p)
	return nil
}

func (t FeelingTags) IsZero() bool {
	return t.Difficulty == "" && t.Mood == ""
}

type Completion struct {
	ID          string           `json:"id"`
	ChallengeID string           `json:"challenge_id"`
	UserID      string           `json:"user_id"`
	Status      CompletionStatus `json:"status"`
	Reflection  string           `json:"reflection,omitempty"`
	Tags        *FeelingTags     `json:"tags,omitempty"`
	PhotoRef    string           `json:"photo_ref,omitempty"`
	CompletedAt time.Time        `json:"completed_at"`
}
