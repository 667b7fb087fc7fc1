package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

const habitColumns = `id, partnership_id, name, category, frequency, duration_days,
	creator_id, status, current_turn, streak_count, pass_count, last_passed_by,
	passed_at, last_completed_at, started_at, resolved_at, dismissed, created_at`

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var passedAt, lastCompletedAt, startedAt, resolvedAt sql.NullString
	var createdAt string
	var dismissed int

	err := row.Scan(&h.ID, &h.PartnershipID, &h.Name, &h.Category, &h.Frequency,
		&h.DurationDays, &h.CreatorID, &h.Status, &h.CurrentTurn, &h.StreakCount,
		&h.PassCount, &h.LastPassedBy, &passedAt, &lastCompletedAt, &startedAt,
		&resolvedAt, &dismissed, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	if h.PassedAt, err = parseTimePtr(passedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse passed_at: %w", err)
	}
	if h.LastCompletedAt, err = parseTimePtr(lastCompletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse last_completed_at: %w", err)
	}
	if h.StartedAt, err = parseTimePtr(startedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if h.ResolvedAt, err = parseTimePtr(resolvedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse resolved_at: %w", err)
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	h.Dismissed = dismissed != 0

	return h, nil
}

func (s *Store) AddHabit(h models.Habit) error {
	dismissed := 0
	if h.Dismissed {
		dismissed = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.PartnershipID, h.Name, h.Category, h.Frequency, h.DurationDays,
		h.CreatorID, h.Status, h.CurrentTurn, h.StreakCount, h.PassCount,
		h.LastPassedBy, formatTimePtr(h.PassedAt), formatTimePtr(h.LastCompletedAt),
		formatTimePtr(h.StartedAt), formatTimePtr(h.ResolvedAt), dismissed, formatTime(h.CreatedAt))

	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (s *Store) GetHabitsForPartnership(partnershipID string) ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT `+habitColumns+` FROM habits
		WHERE partnership_id = ?
		ORDER BY created_at`, partnershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) ResolveHabitApproval(id string, approved bool, now time.Time) error {
	var result sql.Result
	var err error

	if approved {
		result, err = s.db.Exec(`
			UPDATE habits SET status = ?, started_at = ?, resolved_at = ?
			WHERE id = ? AND status = ?`,
			models.HabitActive, formatTime(now), formatTime(now), id, models.HabitPending)
	} else {
		result, err = s.db.Exec(`
			UPDATE habits SET status = ?, resolved_at = ?
			WHERE id = ? AND status = ?`,
			models.HabitCancelled, formatTime(now), id, models.HabitPending)
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errdefs.ErrInvalidState
	}

	return nil
}

func (s *Store) DismissHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET dismissed = 1
		WHERE id = ? AND status = ?`,
		id, models.HabitCancelled)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errdefs.ErrInvalidState
	}

	return nil
}

func (s *Store) PassHabitTurn(id, from, to string, now time.Time) error {
	result, err := s.db.Exec(`
		UPDATE habits
		SET current_turn = ?, pass_count = pass_count + 1, last_passed_by = ?, passed_at = ?
		WHERE id = ? AND status = ? AND current_turn = ?`,
		to, from, formatTime(now), id, models.HabitActive, from)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errdefs.ErrNotYourTurn
	}

	return nil
}

func (s *Store) CloseChallengeCycle(habitID, challengeID, nextTurn string, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	result, err := tx.Exec(`
		UPDATE challenges SET status = ?
		WHERE id = ? AND habit_id = ? AND status = ?`,
		models.ChallengeClosed, challengeID, habitID, models.ChallengeOpen)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if rows == 0 {
		// Another request closed the cycle first; the streak was already
		// incremented there.
		_ = tx.Rollback()
		return errdefs.ErrInvalidState
	}

	_, err = tx.Exec(`
		UPDATE habits
		SET streak_count = streak_count + 1, last_completed_at = ?, current_turn = ?
		WHERE id = ?`,
		formatTime(now), nextTurn, habitID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) ResetHabitStreak(id string) error {
	result, err := s.db.Exec(`UPDATE habits SET streak_count = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errdefs.ErrNotFound
	}

	return nil
}
