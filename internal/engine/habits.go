package engine

import (
	"fmt"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/logger"
	"github.com/tandem-app/tandem/internal/models"
)

// HabitAttributes carries the caller-supplied fields of a habit proposal.
type HabitAttributes struct {
	Name         string
	Category     string
	Frequency    models.HabitFrequency
	DurationDays int
}

// ProposeHabit creates a pending habit in an active partnership. The first
// goal is set by whoever proposed the habit, so current_turn starts as the
// creator.
func (e *Engine) ProposeHabit(partnershipID, creatorID string, attrs HabitAttributes) (models.Habit, error) {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return models.Habit{}, err
	}
	if !p.HasMember(creatorID) {
		return models.Habit{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if p.Status != models.PartnershipActive {
		return models.Habit{}, fmt.Errorf("%w: partnership is %s, not active", errdefs.ErrInvalidState, p.Status)
	}
	if attrs.Name == "" {
		return models.Habit{}, fmt.Errorf("%w: habit name is required", errdefs.ErrInvalidState)
	}
	if attrs.Frequency == "" {
		attrs.Frequency = models.FrequencyDaily
	}

	h := models.Habit{
		ID:            newID(),
		PartnershipID: partnershipID,
		Name:          attrs.Name,
		Category:      attrs.Category,
		Frequency:     attrs.Frequency,
		DurationDays:  attrs.DurationDays,
		CreatorID:     creatorID,
		Status:        models.HabitPending,
		CurrentTurn:   creatorID,
		CreatedAt:     e.now(),
	}
	if err := e.store.AddHabit(h); err != nil {
		return models.Habit{}, err
	}

	e.notifier.Dispatch(p.OtherMember(creatorID), EventHabitProposed, map[string]string{
		"habit_id": h.ID,
		"name":     h.Name,
	})

	return h, nil
}

// ResolveApproval approves or rejects a pending habit. Only the partner who
// did not propose the habit may resolve it; self-approval fails
// NotAuthorized regardless of the habit's status. Resolving a habit twice
// fails InvalidState.
func (e *Engine) ResolveApproval(habitID, actingUserID string, approve bool) (models.Habit, error) {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	p, err := e.store.GetPartnership(h.PartnershipID)
	if err != nil {
		return models.Habit{}, err
	}
	if !p.HasMember(actingUserID) {
		return models.Habit{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if actingUserID == h.CreatorID {
		return models.Habit{}, fmt.Errorf("%w: cannot approve your own habit", errdefs.ErrNotAuthorized)
	}

	if err := e.store.ResolveHabitApproval(habitID, approve, e.now()); err != nil {
		return models.Habit{}, err
	}

	if approve {
		if err := e.store.AddMessage(e.systemMessage(p.ID, fmt.Sprintf("Habit %q was approved. %s sets the first goal.", h.Name, h.CreatorID))); err != nil {
			logger.Warn("Failed to append approval message", "habit", h.ID, "error", err)
		}
		e.notifier.Dispatch(h.CreatorID, EventHabitApproved, map[string]string{
			"habit_id": h.ID,
			"name":     h.Name,
		})
	} else {
		e.notifier.Dispatch(h.CreatorID, EventHabitRejected, map[string]string{
			"habit_id": h.ID,
			"name":     h.Name,
		})
	}

	return e.store.GetHabit(habitID)
}

// Dismiss hides a rejected habit from the creator's feed. It is a
// presentation flag, not a status change; only the original creator of a
// cancelled habit may set it.
func (e *Engine) Dismiss(habitID, actingUserID string) error {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return err
	}
	if actingUserID != h.CreatorID {
		return fmt.Errorf("%w: only the creator may dismiss a rejected habit", errdefs.ErrNotAuthorized)
	}
	return e.store.DismissHabit(habitID)
}

// PassTurn hands goal-setting duty to the other partner. Only the current
// turn-holder may pass; passing is unbounded.
func (e *Engine) PassTurn(habitID, actingUserID string) (models.Habit, error) {
	h, err := e.store.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	p, err := e.store.GetPartnership(h.PartnershipID)
	if err != nil {
		return models.Habit{}, err
	}
	if !p.HasMember(actingUserID) {
		return models.Habit{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if h.Status != models.HabitActive {
		return models.Habit{}, fmt.Errorf("%w: habit is %s, not active", errdefs.ErrInvalidState, h.Status)
	}
	if h.CurrentTurn != actingUserID {
		return models.Habit{}, fmt.Errorf("%w: %s does not hold the turn", errdefs.ErrNotYourTurn, actingUserID)
	}

	other := p.OtherMember(actingUserID)
	if err := e.store.PassHabitTurn(habitID, actingUserID, other, e.now()); err != nil {
		return models.Habit{}, err
	}

	if err := e.store.AddMessage(e.systemMessage(p.ID, fmt.Sprintf("The turn for %q was passed: it's now on the other partner.", h.Name))); err != nil {
		logger.Warn("Failed to append pass message", "habit", h.ID, "error", err)
	}
	e.notifier.Dispatch(other, EventTurnPassed, map[string]string{
		"habit_id": h.ID,
		"name":     h.Name,
	})

	return e.store.GetHabit(habitID)
}

// HabitsFor returns all habits in the given partnership, newest last.
func (e *Engine) HabitsFor(partnershipID, viewerID string) ([]models.Habit, error) {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return nil, err
	}
	if !p.HasMember(viewerID) {
		return nil, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	return e.store.GetHabitsForPartnership(partnershipID)
}
