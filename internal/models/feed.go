package models

import "time"

// ActivityKind identifies the kind of item in a user's derived activity feed.
type ActivityKind string

const (
	ActivityHabitApproval ActivityKind = "habit_approval" // partner proposed, viewer must approve
	ActivityBuddyHabits   ActivityKind = "buddy_habits"   // grouped active habits shared with one buddy
	ActivityInvite        ActivityKind = "invite"         // incoming partnership invite
	ActivityTurnPassed    ActivityKind = "turn_passed"    // partner recently passed the turn to viewer
	ActivityOwnProposal   ActivityKind = "own_proposal"   // viewer's habit awaiting partner approval
	ActivityHabitRejected ActivityKind = "habit_rejected" // viewer's habit rejected, not yet dismissed
)

// HabitAction is the per-habit action a viewer is expected to take next.
type HabitAction string

const (
	ActionSetGoal      HabitAction = "set_goal"
	ActionCompleteGoal HabitAction = "complete_goal"
	ActionWaiting      HabitAction = "waiting"
)

// BuddyHabit annotates one shared habit inside a buddy_habits feed item.
type BuddyHabit struct {
	Habit  Habit       `json:"habit"`
	Action HabitAction `json:"action"`
}

// ActivityItem is one entry of the derived feed. Priority 1 is most urgent;
// items sort by ascending priority, then descending timestamp.
type ActivityItem struct {
	Kind          ActivityKind `json:"kind"`
	Priority      int          `json:"priority"`
	Timestamp     time.Time    `json:"timestamp"`
	PartnershipID string       `json:"partnership_id,omitempty"`
	BuddyID       string       `json:"buddy_id,omitempty"`
	HabitID       string       `json:"habit_id,omitempty"`
	Habits        []BuddyHabit `json:"habits,omitempty"`
}
