// Package engine implements the two-party accountability core: partnership
// lifecycle, habit approval, the turn-taking and pass protocol, challenge
// completion with streak accounting, and the derived activity feed.
//
// Every transition executes as one short-lived request from either partner.
// There is no background scheduler: the engine re-checks each precondition at
// write time through the storage layer's conditional updates, so concurrent
// requests from both partners serialize per entity instead of clobbering
// each other.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tandem-app/tandem/internal/models"
	"github.com/tandem-app/tandem/internal/storage"
	"github.com/tandem-app/tandem/internal/utils"
)

// Event kinds handed to the notifier. Delivery is best-effort; the engine
// never fails a transition because dispatch failed.
const (
	EventPartnerInvited    = "partner_invited"
	EventPartnershipActive = "partnership_active"
	EventHabitProposed     = "habit_proposed"
	EventHabitApproved     = "habit_approved"
	EventHabitRejected     = "habit_rejected"
	EventChallengeCreated  = "challenge_created"
	EventPartnerCompleted  = "partner_completed"
	EventCycleClosed       = "cycle_closed"
	EventTurnPassed        = "turn_passed"
)

// Notifier is the notification-dispatch collaborator. Implementations must
// not block the caller; failures are theirs to log.
type Notifier interface {
	Dispatch(userID, event string, payload map[string]string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Dispatch(string, string, map[string]string) {}

type Engine struct {
	store    storage.Provider
	notifier Notifier
	now      func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(store storage.Provider, notifier Notifier, opts ...Option) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	e := &Engine{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newID() string {
	return uuid.NewString()
}

// newInviteCode returns a short, human-shareable invite code.
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// day returns the partnership-local calendar day for t. An unset or invalid
// timezone falls back to UTC; the two partners always agree on the day
// because the zone lives on the partnership, not the request.
func day(p models.Partnership, t time.Time) string {
	d, err := utils.DayInTimezone(t, p.Timezone)
	if err != nil {
		d, _ = utils.DayInTimezone(t, "")
	}
	return d
}

// systemMessage appends a system-generated timeline notice. Failures are
// swallowed by callers that treat the message as an announcement, not part
// of the transition.
func (e *Engine) systemMessage(partnershipID, body string) models.Message {
	return models.Message{
		ID:            newID(),
		PartnershipID: partnershipID,
		Kind:          models.MessageSystem,
		Body:          body,
		CreatedAt:     e.now(),
	}
}
