package storage

import (
	"time"

	"github.com/tandem-app/tandem/internal/models"
)

// Provider is the persistence contract required by the engine. Every
// transition method re-checks its precondition at write time (conditional
// UPDATE or unique constraint) and returns an errdefs sentinel when the
// precondition no longer holds, so two partners acting in the same instant
// cannot both win.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string
	// Migrate applies pending schema migrations, reporting each step through
	// logFn, and returns the number applied.
	Migrate(logFn func(string)) (int, error)
	// SchemaVersion returns the database's schema version alongside the
	// latest version shipped with the binary.
	SchemaVersion() (current, latest int, err error)

	// Partnerships
	AddPartnership(models.Partnership) error
	GetPartnership(id string) (models.Partnership, error)
	GetPartnershipByCode(code string) (models.Partnership, error)
	GetPartnershipsForUser(userID string) ([]models.Partnership, error)
	// ActivatePartnership moves a pending partnership to active, stamping
	// userB as the second member if none was recorded at creation (invite-code
	// flow). Fails ErrInvalidState if the partnership is not pending.
	ActivatePartnership(id, userB string, now time.Time) error
	// SetPartnershipStatus transitions status from -> to; ErrInvalidState if
	// the row is no longer in the from status.
	SetPartnershipStatus(id string, from, to models.PartnershipStatus, now time.Time) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitsForPartnership(partnershipID string) ([]models.Habit, error)
	// ResolveHabitApproval moves a pending habit to active (stamping
	// started_at) or cancelled. ErrInvalidState if the habit is not pending.
	ResolveHabitApproval(id string, approved bool, now time.Time) error
	// DismissHabit sets the presentation-suppression flag on a cancelled
	// habit. ErrInvalidState if the habit is not cancelled.
	DismissHabit(id string) error
	// PassHabitTurn flips current_turn from -> to and increments the pass
	// counter. ErrNotYourTurn if from no longer holds the turn.
	PassHabitTurn(id, from, to string, now time.Time) error
	// CloseChallengeCycle atomically closes an open challenge, increments the
	// habit streak, stamps last_completed_at, and hands the turn to nextTurn.
	// ErrInvalidState if the challenge is already closed.
	CloseChallengeCycle(habitID, challengeID, nextTurn string, now time.Time) error
	// ResetHabitStreak zeroes the streak counter (explicit miss).
	ResetHabitStreak(id string) error

	// Challenges
	// AddChallenge fails ErrDuplicateForDay if a challenge already exists for
	// the habit on the same due day.
	AddChallenge(models.Challenge) error
	GetChallenge(id string) (models.Challenge, error)
	// GetChallengeForDay returns the habit's challenge for the given day with
	// completions populated, or ErrNotFound.
	GetChallengeForDay(habitID, day string) (models.Challenge, error)
	// GetChallengesForHabit returns all challenges for a habit, completions
	// populated, ordered by due day ascending.
	GetChallengesForHabit(habitID string) ([]models.Challenge, error)
	// AddCompletion fails ErrAlreadyCompleted if the user already completed
	// the challenge.
	AddCompletion(models.Completion) error
	GetCompletions(challengeID string) ([]models.Completion, error)

	// Messages
	AddMessage(models.Message) error
	// GetMessages returns up to limit newest messages, oldest first.
	GetMessages(partnershipID string, limit int) ([]models.Message, error)
}
