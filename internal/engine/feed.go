package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
	"github.com/tandem-app/tandem/internal/utils"
)

// Feed item priorities, most urgent first.
const (
	priorityApproval   = 1
	priorityBuddy      = 2
	priorityInvite     = 3
	priorityPassNotice = 3
	priorityProposal   = 4
	priorityRejected   = 5
)

// Freshness windows for transient feed items.
const (
	passNoticeWindow = 2 * time.Hour
	rejectedWindow   = 24 * time.Hour
)

// DayChallenges pairs a habit with its challenge for the relevant day and
// the following one. Nil means no challenge exists for that day.
type DayChallenges struct {
	Today    *models.Challenge
	Tomorrow *models.Challenge
}

// Snapshot is the immutable read-time input of DeriveFeed. It carries
// everything visible to one viewer; deriving from it has no side effects,
// so the feed always reflects the latest writes without invalidation logic.
type Snapshot struct {
	Now          time.Time
	Partnerships []models.Partnership
	// Habits maps partnership id to its habits.
	Habits map[string][]models.Habit
	// Challenges maps habit id to its today/tomorrow challenges.
	Challenges map[string]DayChallenges
}

// ClassifyAction determines what the viewer should do next for one habit.
func ClassifyAction(viewerID string, h models.Habit, dc DayChallenges) models.HabitAction {
	holdsTurn := h.CurrentTurn == viewerID

	if holdsTurn && dc.Today == nil {
		return models.ActionSetGoal
	}
	if holdsTurn && dc.Today != nil && dc.Today.Status == models.ChallengeClosed && dc.Tomorrow == nil {
		return models.ActionSetGoal
	}
	if dc.Today != nil && dc.Today.Status == models.ChallengeOpen {
		for _, comp := range dc.Today.Completions {
			if comp.UserID == viewerID {
				return models.ActionWaiting
			}
		}
		return models.ActionCompleteGoal
	}
	return models.ActionWaiting
}

// DeriveFeed computes the viewer's priority-ordered activity feed from a
// snapshot. Pure: no storage access, no clock reads beyond snap.Now.
func DeriveFeed(viewerID string, snap Snapshot) []models.ActivityItem {
	var items []models.ActivityItem

	for _, p := range snap.Partnerships {
		if !p.HasMember(viewerID) {
			continue
		}

		// Incoming direct invite addressed to the viewer.
		if p.Status == models.PartnershipPending && p.UserB == viewerID {
			items = append(items, models.ActivityItem{
				Kind:          models.ActivityInvite,
				Priority:      priorityInvite,
				Timestamp:     p.CreatedAt,
				PartnershipID: p.ID,
				BuddyID:       p.UserA,
			})
		}

		buddy := p.OtherMember(viewerID)
		var buddyHabits []models.BuddyHabit
		buddyStamp := time.Time{}

		for _, h := range snap.Habits[p.ID] {
			switch h.Status {
			case models.HabitPending:
				if h.CreatorID == viewerID {
					items = append(items, models.ActivityItem{
						Kind:          models.ActivityOwnProposal,
						Priority:      priorityProposal,
						Timestamp:     h.CreatedAt,
						PartnershipID: p.ID,
						BuddyID:       buddy,
						HabitID:       h.ID,
					})
				} else {
					items = append(items, models.ActivityItem{
						Kind:          models.ActivityHabitApproval,
						Priority:      priorityApproval,
						Timestamp:     h.CreatedAt,
						PartnershipID: p.ID,
						BuddyID:       buddy,
						HabitID:       h.ID,
					})
				}

			case models.HabitCancelled:
				if h.CreatorID == viewerID && !h.Dismissed &&
					h.ResolvedAt != nil && snap.Now.Sub(*h.ResolvedAt) <= rejectedWindow {
					items = append(items, models.ActivityItem{
						Kind:          models.ActivityHabitRejected,
						Priority:      priorityRejected,
						Timestamp:     *h.ResolvedAt,
						PartnershipID: p.ID,
						BuddyID:       buddy,
						HabitID:       h.ID,
					})
				}

			case models.HabitActive:
				dc := snap.Challenges[h.ID]
				buddyHabits = append(buddyHabits, models.BuddyHabit{
					Habit:  h,
					Action: ClassifyAction(viewerID, h, dc),
				})
				if stamp := habitStamp(h); stamp.After(buddyStamp) {
					buddyStamp = stamp
				}

				// A fresh pass that handed the turn to the viewer gets its
				// own nudge on top of the grouped item.
				if h.CurrentTurn == viewerID && h.LastPassedBy != "" && h.LastPassedBy != viewerID &&
					h.PassedAt != nil && snap.Now.Sub(*h.PassedAt) <= passNoticeWindow {
					items = append(items, models.ActivityItem{
						Kind:          models.ActivityTurnPassed,
						Priority:      priorityPassNotice,
						Timestamp:     *h.PassedAt,
						PartnershipID: p.ID,
						BuddyID:       buddy,
						HabitID:       h.ID,
					})
				}
			}
		}

		// One grouped item per buddy covering every shared active habit.
		if len(buddyHabits) > 0 {
			items = append(items, models.ActivityItem{
				Kind:          models.ActivityBuddyHabits,
				Priority:      priorityBuddy,
				Timestamp:     buddyStamp,
				PartnershipID: p.ID,
				BuddyID:       buddy,
				Habits:        buddyHabits,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	return items
}

// habitStamp is the most recent activity on a habit, used to order buddy
// groups within their priority band.
func habitStamp(h models.Habit) time.Time {
	stamp := h.CreatedAt
	for _, t := range []*time.Time{h.StartedAt, h.PassedAt, h.LastCompletedAt} {
		if t != nil && t.After(stamp) {
			stamp = *t
		}
	}
	return stamp
}

// Feed assembles a snapshot for the viewer and derives their feed.
func (e *Engine) Feed(viewerID string) ([]models.ActivityItem, error) {
	snap, err := e.SnapshotFor(viewerID)
	if err != nil {
		return nil, err
	}
	return DeriveFeed(viewerID, snap), nil
}

// SnapshotFor loads everything DeriveFeed needs for one viewer. Reads run
// without locks; the snapshot is simply the state visible at query time.
func (e *Engine) SnapshotFor(viewerID string) (Snapshot, error) {
	partnerships, err := e.store.GetPartnershipsForUser(viewerID)
	if err != nil {
		return Snapshot{}, err
	}

	now := e.now()
	snap := Snapshot{
		Now:          now,
		Partnerships: partnerships,
		Habits:       map[string][]models.Habit{},
		Challenges:   map[string]DayChallenges{},
	}

	for _, p := range partnerships {
		habits, err := e.store.GetHabitsForPartnership(p.ID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Habits[p.ID] = habits

		today := day(p, now)
		tomorrow, err := utils.NextDay(today)
		if err != nil {
			return Snapshot{}, err
		}

		for _, h := range habits {
			if h.Status != models.HabitActive {
				continue
			}
			dc := DayChallenges{}
			if c, err := e.store.GetChallengeForDay(h.ID, today); err == nil {
				dc.Today = &c
			} else if !errors.Is(err, errdefs.ErrNotFound) {
				return Snapshot{}, err
			}
			if c, err := e.store.GetChallengeForDay(h.ID, tomorrow); err == nil {
				dc.Tomorrow = &c
			} else if !errors.Is(err, errdefs.ErrNotFound) {
				return Snapshot{}, err
			}
			snap.Challenges[h.ID] = dc
		}
	}

	return snap, nil
}
