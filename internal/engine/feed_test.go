package engine

import (
	"testing"
	"time"

	"github.com/tandem-app/tandem/internal/models"
)

var feedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestClassifyAction(t *testing.T) {
	habit := func(turn string) models.Habit {
		return models.Habit{ID: "h1", Status: models.HabitActive, CurrentTurn: turn}
	}
	openToday := &models.Challenge{ID: "c1", Status: models.ChallengeOpen}
	closedToday := &models.Challenge{ID: "c1", Status: models.ChallengeClosed}
	openWithMe := &models.Challenge{ID: "c1", Status: models.ChallengeOpen,
		Completions: []models.Completion{{UserID: "me", Status: models.CompletionCompleted}}}

	tests := []struct {
		name string
		h    models.Habit
		dc   DayChallenges
		want models.HabitAction
	}{
		{"my turn, no challenge", habit("me"), DayChallenges{}, models.ActionSetGoal},
		{"my turn, today closed, tomorrow empty", habit("me"), DayChallenges{Today: closedToday}, models.ActionSetGoal},
		{"my turn, today closed, tomorrow staged", habit("me"),
			DayChallenges{Today: closedToday, Tomorrow: &models.Challenge{ID: "c2", Status: models.ChallengeOpen}},
			models.ActionWaiting},
		{"open challenge, not yet completed", habit("buddy"), DayChallenges{Today: openToday}, models.ActionCompleteGoal},
		{"open challenge, already completed", habit("buddy"), DayChallenges{Today: openWithMe}, models.ActionWaiting},
		{"my turn, open challenge, not yet completed", habit("me"), DayChallenges{Today: openToday}, models.ActionCompleteGoal},
		{"buddy's turn, no challenge", habit("buddy"), DayChallenges{}, models.ActionWaiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAction("me", tt.h, tt.dc); got != tt.want {
				t.Errorf("ClassifyAction() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveFeedPriorities(t *testing.T) {
	p := models.Partnership{ID: "p1", UserA: "me", UserB: "buddy", Status: models.PartnershipActive}
	invite := models.Partnership{ID: "p2", UserA: "carol", UserB: "me", Status: models.PartnershipPending,
		CreatedAt: feedNow.Add(-time.Hour)}

	pendingMine := models.Habit{ID: "h-mine", PartnershipID: "p1", CreatorID: "me",
		Status: models.HabitPending, CreatedAt: feedNow.Add(-2 * time.Hour)}
	pendingTheirs := models.Habit{ID: "h-theirs", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitPending, CreatedAt: feedNow.Add(-3 * time.Hour)}
	active := models.Habit{ID: "h-active", PartnershipID: "p1", CreatorID: "me",
		Status: models.HabitActive, CurrentTurn: "me", CreatedAt: feedNow.Add(-48 * time.Hour)}

	snap := Snapshot{
		Now:          feedNow,
		Partnerships: []models.Partnership{p, invite},
		Habits:       map[string][]models.Habit{"p1": {pendingMine, pendingTheirs, active}},
		Challenges:   map[string]DayChallenges{},
	}

	items := DeriveFeed("me", snap)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	wantKinds := []models.ActivityKind{
		models.ActivityHabitApproval, // buddy's proposal needs my decision
		models.ActivityBuddyHabits,   // grouped active habits
		models.ActivityInvite,        // carol's invite
		models.ActivityOwnProposal,   // my pending proposal
	}
	for i, want := range wantKinds {
		if items[i].Kind != want {
			t.Errorf("item %d: expected kind %s, got %s", i, want, items[i].Kind)
		}
	}

	if items[0].HabitID != "h-theirs" {
		t.Errorf("expected approval item for h-theirs, got %s", items[0].HabitID)
	}
	if len(items[1].Habits) != 1 || items[1].Habits[0].Habit.ID != "h-active" {
		t.Errorf("expected grouped item carrying h-active, got %+v", items[1].Habits)
	}
	if items[1].Habits[0].Action != models.ActionSetGoal {
		t.Errorf("expected SET_GOAL action, got %s", items[1].Habits[0].Action)
	}
}

func TestDeriveFeedPassNoticeWindow(t *testing.T) {
	p := models.Partnership{ID: "p1", UserA: "me", UserB: "buddy", Status: models.PartnershipActive}

	fresh := models.Habit{ID: "h-fresh", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitActive, CurrentTurn: "me", LastPassedBy: "buddy",
		PassedAt: timePtr(feedNow.Add(-30 * time.Minute)), CreatedAt: feedNow.Add(-48 * time.Hour)}
	stale := models.Habit{ID: "h-stale", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitActive, CurrentTurn: "me", LastPassedBy: "buddy",
		PassedAt: timePtr(feedNow.Add(-3 * time.Hour)), CreatedAt: feedNow.Add(-48 * time.Hour)}

	snap := Snapshot{
		Now:          feedNow,
		Partnerships: []models.Partnership{p},
		Habits:       map[string][]models.Habit{"p1": {fresh, stale}},
		Challenges:   map[string]DayChallenges{},
	}

	items := DeriveFeed("me", snap)

	var notices []string
	for _, item := range items {
		if item.Kind == models.ActivityTurnPassed {
			notices = append(notices, item.HabitID)
		}
	}
	if len(notices) != 1 || notices[0] != "h-fresh" {
		t.Errorf("expected one pass notice for h-fresh, got %v", notices)
	}
}

func TestDeriveFeedRejectedWindow(t *testing.T) {
	p := models.Partnership{ID: "p1", UserA: "me", UserB: "buddy", Status: models.PartnershipActive}

	recent := models.Habit{ID: "h-recent", PartnershipID: "p1", CreatorID: "me",
		Status: models.HabitCancelled, ResolvedAt: timePtr(feedNow.Add(-time.Hour))}
	old := models.Habit{ID: "h-old", PartnershipID: "p1", CreatorID: "me",
		Status: models.HabitCancelled, ResolvedAt: timePtr(feedNow.Add(-25 * time.Hour))}
	dismissed := models.Habit{ID: "h-dismissed", PartnershipID: "p1", CreatorID: "me",
		Status: models.HabitCancelled, ResolvedAt: timePtr(feedNow.Add(-time.Hour)), Dismissed: true}
	theirs := models.Habit{ID: "h-theirs", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitCancelled, ResolvedAt: timePtr(feedNow.Add(-time.Hour))}

	snap := Snapshot{
		Now:          feedNow,
		Partnerships: []models.Partnership{p},
		Habits:       map[string][]models.Habit{"p1": {recent, old, dismissed, theirs}},
		Challenges:   map[string]DayChallenges{},
	}

	items := DeriveFeed("me", snap)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Kind != models.ActivityHabitRejected || items[0].HabitID != "h-recent" {
		t.Errorf("expected rejected item for h-recent, got %s/%s", items[0].Kind, items[0].HabitID)
	}
}

func TestDeriveFeedTimestampOrderWithinPriority(t *testing.T) {
	p := models.Partnership{ID: "p1", UserA: "me", UserB: "buddy", Status: models.PartnershipActive}

	older := models.Habit{ID: "h-older", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitPending, CreatedAt: feedNow.Add(-4 * time.Hour)}
	newer := models.Habit{ID: "h-newer", PartnershipID: "p1", CreatorID: "buddy",
		Status: models.HabitPending, CreatedAt: feedNow.Add(-time.Hour)}

	snap := Snapshot{
		Now:          feedNow,
		Partnerships: []models.Partnership{p},
		Habits:       map[string][]models.Habit{"p1": {older, newer}},
		Challenges:   map[string]DayChallenges{},
	}

	items := DeriveFeed("me", snap)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].HabitID != "h-newer" || items[1].HabitID != "h-older" {
		t.Errorf("expected newest first within the priority band, got %s then %s",
			items[0].HabitID, items[1].HabitID)
	}
}

func TestFeedEndToEnd(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := activePartnership(t, eng, "alice", "bob")
	h := activeHabit(t, eng, p, "alice")

	// Alice holds the turn and has no challenge yet.
	items, err := eng.Feed("alice")
	if err != nil {
		t.Fatalf("failed to derive feed: %v", err)
	}
	if len(items) != 1 || items[0].Kind != models.ActivityBuddyHabits {
		t.Fatalf("expected one buddy_habits item, got %+v", items)
	}
	if items[0].Habits[0].Action != models.ActionSetGoal {
		t.Errorf("expected SET_GOAL for turn-holder, got %s", items[0].Habits[0].Action)
	}

	// After she sets the goal both sides see COMPLETE_GOAL.
	if _, err := eng.CreateChallenge(h.ID, "alice", "5k run", ""); err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	for _, viewer := range []string{"alice", "bob"} {
		items, err := eng.Feed(viewer)
		if err != nil {
			t.Fatalf("failed to derive feed for %s: %v", viewer, err)
		}
		if len(items) != 1 || items[0].Habits[0].Action != models.ActionCompleteGoal {
			t.Errorf("%s: expected COMPLETE_GOAL, got %+v", viewer, items)
		}
	}
}
