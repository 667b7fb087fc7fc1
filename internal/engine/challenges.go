package engine

import (
	"errors"
	"fmt"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/logger"
	"github.com/tandem-app/tandem/internal/models"
	"github.com/tandem-app/tandem/internal/utils"
)

// CreateChallenge sets the next goal for a habit. Only the turn-holder may
// create, the due day is computed from the server clock in the partnership's
// timezone (never client-supplied), and at most one challenge exists per
// day. When today's challenge is already closed the new one lands on
// tomorrow, so the next goal can be staged the same evening.
func (e *Engine) CreateChallenge(habitID, creatorID, title, description string) (models.Challenge, error) {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return models.Challenge{}, err
	}
	p, err := e.store.GetPartnership(h.PartnershipID)
	if err != nil {
		return models.Challenge{}, err
	}
	if !p.HasMember(creatorID) {
		return models.Challenge{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if h.Status != models.HabitActive {
		return models.Challenge{}, fmt.Errorf("%w: habit is %s, not active", errdefs.ErrInvalidState, h.Status)
	}
	if h.CurrentTurn != creatorID {
		return models.Challenge{}, fmt.Errorf("%w: %s does not hold the turn", errdefs.ErrNotYourTurn, creatorID)
	}
	if title == "" {
		return models.Challenge{}, fmt.Errorf("%w: challenge title is required", errdefs.ErrInvalidState)
	}

	now := e.now()
	dueDay := day(p, now)

	today, err := e.store.GetChallengeForDay(habitID, dueDay)
	switch {
	case err == nil && today.Status == models.ChallengeClosed:
		// Today's cycle is done; stage tomorrow's goal.
		if dueDay, err = utils.NextDay(dueDay); err != nil {
			return models.Challenge{}, err
		}
	case err == nil:
		return models.Challenge{}, fmt.Errorf("%w: %s", errdefs.ErrDuplicateForDay, dueDay)
	case !errors.Is(err, errdefs.ErrNotFound):
		return models.Challenge{}, err
	}

	c := models.Challenge{
		ID:          newID(),
		HabitID:     habitID,
		Title:       title,
		Description: description,
		CreatorID:   creatorID,
		DueDay:      dueDay,
		Status:      models.ChallengeOpen,
		CreatedAt:   now,
	}
	// The unique (habit_id, due_day) index decides the race when both
	// partners create at the same instant: exactly one insert wins.
	if err := e.store.AddChallenge(c); err != nil {
		return models.Challenge{}, err
	}

	e.notifier.Dispatch(p.OtherMember(creatorID), EventChallengeCreated, map[string]string{
		"habit_id":     habitID,
		"challenge_id": c.ID,
		"title":        c.Title,
		"due_day":      c.DueDay,
	})

	return c, nil
}

// CompletionInput carries the optional fields of a completion record.
type CompletionInput struct {
	Status     models.CompletionStatus
	Reflection string
	Tags       *models.FeelingTags
	PhotoRef   string
}

// CompleteChallenge records one partner's completion. The unique
// (challenge, user) constraint makes a second attempt fail AlreadyCompleted
// even under concurrent requests. When the second COMPLETED record lands,
// the cycle closes: streak +1 and the turn flips to the partner who did not
// create the day's challenge. An explicit MISSED record resets the streak;
// there is no time-based expiry.
func (e *Engine) CompleteChallenge(challengeID, userID string, input CompletionInput) (models.Challenge, error) {
	c, err := e.store.GetChallenge(challengeID)
	if err != nil {
		return models.Challenge{}, err
	}
	h, err := e.store.GetHabit(c.HabitID)
	if err != nil {
		return models.Challenge{}, err
	}
	p, err := e.store.GetPartnership(h.PartnershipID)
	if err != nil {
		return models.Challenge{}, err
	}
	if !p.HasMember(userID) {
		return models.Challenge{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}

	status := input.Status
	if status == "" {
		status = models.CompletionCompleted
	}

	completion := models.Completion{
		ID:          newID(),
		ChallengeID: challengeID,
		UserID:      userID,
		Status:      status,
		Reflection:  input.Reflection,
		Tags:        input.Tags,
		PhotoRef:    input.PhotoRef,
		CompletedAt: e.now(),
	}
	if err := e.store.AddCompletion(completion); err != nil {
		return models.Challenge{}, err
	}

	switch status {
	case models.CompletionMissed:
		if err := e.store.ResetHabitStreak(h.ID); err != nil {
			return models.Challenge{}, err
		}
		if err := e.store.AddMessage(e.systemMessage(p.ID, fmt.Sprintf("A miss was recorded for %q. Streak reset.", h.Name))); err != nil {
			logger.Warn("Failed to append miss message", "habit", h.ID, "error", err)
		}
	case models.CompletionCompleted:
		if err := e.maybeCloseCycle(p, h, challengeID); err != nil {
			return models.Challenge{}, err
		}
		e.notifier.Dispatch(p.OtherMember(userID), EventPartnerCompleted, map[string]string{
			"habit_id":     h.ID,
			"challenge_id": challengeID,
		})
	}

	return e.store.GetChallenge(challengeID)
}

// maybeCloseCycle closes the challenge once both partners hold a COMPLETED
// record. The conditional update inside CloseChallengeCycle makes the close
// idempotent under racing completions: the loser observes InvalidState and
// treats the cycle as already closed.
func (e *Engine) maybeCloseCycle(p models.Partnership, h models.Habit, challengeID string) error {
	completions, err := e.store.GetCompletions(challengeID)
	if err != nil {
		return err
	}

	done := map[string]bool{}
	for _, comp := range completions {
		if comp.Status == models.CompletionCompleted {
			done[comp.UserID] = true
		}
	}
	if !done[p.UserA] || !done[p.UserB] {
		return nil
	}

	c, err := e.store.GetChallenge(challengeID)
	if err != nil {
		return err
	}

	// The next goal is set by whoever did not create the closing one.
	nextTurn := p.OtherMember(c.CreatorID)
	err = e.store.CloseChallengeCycle(h.ID, challengeID, nextTurn, e.now())
	if errors.Is(err, errdefs.ErrInvalidState) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := e.store.AddMessage(e.systemMessage(p.ID, fmt.Sprintf("Both partners completed %q. Streak is now %d.", h.Name, h.StreakCount+1))); err != nil {
		logger.Warn("Failed to append cycle message", "habit", h.ID, "error", err)
	}
	e.notifier.Dispatch(nextTurn, EventCycleClosed, map[string]string{
		"habit_id":     h.ID,
		"challenge_id": challengeID,
	})

	return nil
}

// ChallengeForDay returns a habit's challenge on the given day, completions
// included, for viewers that are partnership members.
func (e *Engine) ChallengeForDay(habitID, viewerID, dayStr string) (models.Challenge, error) {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return models.Challenge{}, err
	}
	p, err := e.store.GetPartnership(h.PartnershipID)
	if err != nil {
		return models.Challenge{}, err
	}
	if !p.HasMember(viewerID) {
		return models.Challenge{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	return e.store.GetChallengeForDay(habitID, dayStr)
}
