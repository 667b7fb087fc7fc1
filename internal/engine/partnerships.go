package engine

import (
	"fmt"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/logger"
	"github.com/tandem-app/tandem/internal/models"
)

// Invite creates a pending partnership between inviter and invitee. At most
// one non-terminal partnership may exist per pair.
func (e *Engine) Invite(inviterID, inviteeID string) (models.Partnership, error) {
	if inviterID == "" || inviteeID == "" {
		return models.Partnership{}, fmt.Errorf("%w: both user ids are required", errdefs.ErrInvalidState)
	}
	if inviterID == inviteeID {
		return models.Partnership{}, fmt.Errorf("%w: cannot partner with yourself", errdefs.ErrNotAuthorized)
	}

	if err := e.ensureNoOpenPartnership(inviterID, inviteeID); err != nil {
		return models.Partnership{}, err
	}

	now := e.now()
	p := models.Partnership{
		ID:        newID(),
		UserA:     inviterID,
		UserB:     inviteeID,
		Status:    models.PartnershipPending,
		Timezone:  "",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.AddPartnership(p); err != nil {
		return models.Partnership{}, err
	}

	e.notifier.Dispatch(inviteeID, EventPartnerInvited, map[string]string{
		"partnership_id": p.ID,
		"inviter_id":     inviterID,
	})

	return p, nil
}

// CreateInviteCode creates a pending partnership with no second member yet
// and a shareable code the eventual partner redeems with JoinByCode.
func (e *Engine) CreateInviteCode(inviterID string) (models.Partnership, error) {
	if inviterID == "" {
		return models.Partnership{}, fmt.Errorf("%w: user id is required", errdefs.ErrInvalidState)
	}

	now := e.now()
	p := models.Partnership{
		ID:         newID(),
		UserA:      inviterID,
		Status:     models.PartnershipPending,
		InviteCode: newInviteCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.AddPartnership(p); err != nil {
		return models.Partnership{}, err
	}

	return p, nil
}

// AcceptInvite activates a directly-invited pending partnership. Only the
// invited member may accept; the inviter accepting their own invite is
// NotAuthorized.
func (e *Engine) AcceptInvite(partnershipID, userID string) (models.Partnership, error) {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return models.Partnership{}, err
	}
	if userID != p.UserB {
		return models.Partnership{}, fmt.Errorf("%w: only the invited partner may accept", errdefs.ErrNotAuthorized)
	}

	if err := e.activate(p, userID); err != nil {
		return models.Partnership{}, err
	}
	return e.store.GetPartnership(partnershipID)
}

// JoinByCode redeems an invite code, stamping the joining user as the second
// member and activating the partnership.
func (e *Engine) JoinByCode(code, userID string) (models.Partnership, error) {
	p, err := e.store.GetPartnershipByCode(code)
	if err != nil {
		return models.Partnership{}, err
	}
	if userID == p.UserA {
		return models.Partnership{}, fmt.Errorf("%w: cannot join your own invite", errdefs.ErrNotAuthorized)
	}
	if p.UserB != "" && p.UserB != userID {
		return models.Partnership{}, fmt.Errorf("%w: invite already claimed", errdefs.ErrNotAuthorized)
	}

	if err := e.ensureNoOpenPartnership(p.UserA, userID); err != nil {
		return models.Partnership{}, err
	}

	if err := e.activate(p, userID); err != nil {
		return models.Partnership{}, err
	}
	return e.store.GetPartnership(p.ID)
}

func (e *Engine) activate(p models.Partnership, userB string) error {
	if err := e.store.ActivatePartnership(p.ID, userB, e.now()); err != nil {
		return err
	}

	if err := e.store.AddMessage(e.systemMessage(p.ID, "Partnership is active. Time to propose a habit!")); err != nil {
		logger.Warn("Failed to append activation message", "partnership", p.ID, "error", err)
	}
	e.notifier.Dispatch(p.UserA, EventPartnershipActive, map[string]string{
		"partnership_id": p.ID,
		"partner_id":     userB,
	})

	return nil
}

// Pause moves an active partnership to paused. Either member may pause.
func (e *Engine) Pause(partnershipID, userID string) error {
	return e.transition(partnershipID, userID, models.PartnershipActive, models.PartnershipPaused)
}

// Resume moves a paused partnership back to active.
func (e *Engine) Resume(partnershipID, userID string) error {
	return e.transition(partnershipID, userID, models.PartnershipPaused, models.PartnershipActive)
}

// Complete ends the partnership. Either member may complete it from any
// non-terminal status.
func (e *Engine) Complete(partnershipID, userID string) error {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return err
	}
	if !p.HasMember(userID) {
		return fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if p.Status.Terminal() {
		return fmt.Errorf("%w: partnership already completed", errdefs.ErrInvalidState)
	}
	return e.store.SetPartnershipStatus(partnershipID, p.Status, models.PartnershipCompleted, e.now())
}

func (e *Engine) transition(partnershipID, userID string, from, to models.PartnershipStatus) error {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return err
	}
	if !p.HasMember(userID) {
		return fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	return e.store.SetPartnershipStatus(partnershipID, from, to, e.now())
}

// ensureNoOpenPartnership rejects a second live partnership for the same
// unordered pair before the insert is attempted. The normalized open-pair
// index enforces the same rule at write time, so racing inviters fall
// through to its ErrInvalidState.
func (e *Engine) ensureNoOpenPartnership(userA, userB string) error {
	existing, err := e.store.GetPartnershipsForUser(userA)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.Status.Terminal() {
			continue
		}
		if p.HasMember(userB) {
			return fmt.Errorf("%w: an open partnership already exists for this pair", errdefs.ErrInvalidState)
		}
	}
	return nil
}

// PartnershipsFor returns every partnership the user belongs to.
func (e *Engine) PartnershipsFor(userID string) ([]models.Partnership, error) {
	return e.store.GetPartnershipsForUser(userID)
}
