package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

// TimelineEventKind tags one entry of the partnership timeline.
type TimelineEventKind string

const (
	TimelineMessage    TimelineEventKind = "message"
	TimelineHabit      TimelineEventKind = "habit"
	TimelineChallenge  TimelineEventKind = "challenge"
	TimelineCompletion TimelineEventKind = "completion"
)

// TimelineEvent is one entry of the merged chat-style projection. Exactly
// one of the payload pointers is set, matching Kind.
type TimelineEvent struct {
	Kind       TimelineEventKind  `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Message    *models.Message    `json:"message,omitempty"`
	Habit      *models.Habit      `json:"habit,omitempty"`
	Challenge  *models.Challenge  `json:"challenge,omitempty"`
	Completion *models.Completion `json:"completion,omitempty"`
}

// PostMessage appends a chat entry to the partnership timeline.
func (e *Engine) PostMessage(partnershipID, senderID, body string) (models.Message, error) {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return models.Message{}, err
	}
	if !p.HasMember(senderID) {
		return models.Message{}, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if p.Status.Terminal() {
		return models.Message{}, fmt.Errorf("%w: partnership is completed", errdefs.ErrInvalidState)
	}
	if body == "" {
		return models.Message{}, fmt.Errorf("%w: message body is required", errdefs.ErrInvalidState)
	}

	m := models.Message{
		ID:            newID(),
		PartnershipID: partnershipID,
		SenderID:      senderID,
		Kind:          models.MessageChat,
		Body:          body,
		CreatedAt:     e.now(),
	}
	if err := e.store.AddMessage(m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// Timeline assembles the merged, time-ordered projection of messages,
// habits, challenges, and completions for one partnership. It is a pure
// read: nothing is written, and the result reflects the snapshot visible at
// query time.
func (e *Engine) Timeline(partnershipID, viewerID string, limit int) ([]TimelineEvent, error) {
	p, err := e.store.GetPartnership(partnershipID)
	if err != nil {
		return nil, err
	}
	if !p.HasMember(viewerID) {
		return nil, fmt.Errorf("%w: not a partnership member", errdefs.ErrNotAuthorized)
	}
	if limit <= 0 {
		limit = 100
	}

	var events []TimelineEvent

	messages, err := e.store.GetMessages(partnershipID, limit)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		m := messages[i]
		events = append(events, TimelineEvent{Kind: TimelineMessage, Timestamp: m.CreatedAt, Message: &m})
	}

	habits, err := e.store.GetHabitsForPartnership(partnershipID)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		h := habits[i]
		events = append(events, TimelineEvent{Kind: TimelineHabit, Timestamp: h.CreatedAt, Habit: &h})

		challenges, err := e.store.GetChallengesForHabit(h.ID)
		if err != nil {
			return nil, err
		}
		for j := range challenges {
			c := challenges[j]
			events = append(events, TimelineEvent{Kind: TimelineChallenge, Timestamp: c.CreatedAt, Challenge: &c})
			for k := range c.Completions {
				comp := c.Completions[k]
				events = append(events, TimelineEvent{Kind: TimelineCompletion, Timestamp: comp.CompletedAt, Completion: &comp})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	return events, nil
}
