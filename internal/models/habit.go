package models

import "time"

type HabitStatus string

const (
	HabitPending   HabitStatus = "pending"
	HabitActive    HabitStatus = "active"
	HabitCancelled HabitStatus = "cancelled"
	HabitCompleted HabitStatus = "completed"
)

type HabitFrequency string

const (
	FrequencyDaily HabitFrequency = "daily"
)

type Habit struct {
	ID            string         `json:"id"`
	PartnershipID string         `json:"partnership_id"`
	Name          string         `json:"name"`
	Category      string         `json:"category,omitempty"`
	Frequency     HabitFrequency `json:"frequency"`
	DurationDays  int            `json:"duration_days,omitempty"` // 0 = open-ended
	CreatorID     string         `json:"creator_id"`
	Status        HabitStatus    `json:"status"`

	// CurrentTurn is the member who may create the next challenge. It is set
	// to the creator on proposal and only ever flipped between the two
	// partnership members.
	CurrentTurn string `json:"current_turn"`

	StreakCount     int        `json:"streak_count"`
	PassCount       int        `json:"pass_count"`
	LastPassedBy    string     `json:"last_passed_by,omitempty"`
	PassedAt        *time.Time `json:"passed_at,omitempty"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"` // approval or rejection time
	Dismissed       bool       `json:"dismissed,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
