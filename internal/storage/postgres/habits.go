package postgres

import (
	"database/sql"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

const habitColumns = `id, partnership_id, name, category, frequency, duration_days,
	creator_id, status, current_turn, streak_count, pass_count, last_passed_by,
	passed_at, last_completed_at, started_at, resolved_at, dismissed, created_at`

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var passedAt, lastCompletedAt, startedAt, resolvedAt sql.NullTime

	err := row.Scan(&h.ID, &h.PartnershipID, &h.Name, &h.Category, &h.Frequency,
		&h.DurationDays, &h.CreatorID, &h.Status, &h.CurrentTurn, &h.StreakCount,
		&h.PassCount, &h.LastPassedBy, &passedAt, &lastCompletedAt, &startedAt,
		&resolvedAt, &h.Dismissed, &h.CreatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	if passedAt.Valid {
		t := passedAt.Time
		h.PassedAt = &t
	}
	if lastCompletedAt.Valid {
		t := lastCompletedAt.Time
		h.LastCompletedAt = &t
	}
	if startedAt.Valid {
		t := startedAt.Time
		h.StartedAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		h.ResolvedAt = &t
	}

	return h, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (s *Store) AddHabit(h models.Habit) error {
	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		h.ID, h.PartnershipID, h.Name, h.Category, h.Frequency, h.DurationDays,
		h.CreatorID, h.Status, h.CurrentTurn, h.StreakCount, h.PassCount,
		h.LastPassedBy, nullTime(h.PassedAt), nullTime(h.LastCompletedAt),
		nullTime(h.StartedAt), nullTime(h.ResolvedAt), h.Dismissed, h.CreatedAt)

	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (s *Store) GetHabitsForPartnership(partnershipID string) ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT `+habitColumns+` FROM habits
		WHERE partnership_id = $1
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
			UPDATE habits SET status = $1, started_at = $2, resolved_at = $2
			WHERE id = $3 AND status = $4`,
			models.HabitActive, now, id, models.HabitPending)
	} else {
		result, err = s.db.Exec(`
			UPDATE habits SET status = $1, resolved_at = $2
			WHERE id = $3 AND status = $4`,
			models.HabitCancelled, now, id, models.HabitPending)
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
		UPDATE habits SET dismissed = TRUE
		WHERE id = $1 AND status = $2`,
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
		SET current_turn = $1, pass_count = pass_count + 1, last_passed_by = $2, passed_at = $3
		WHERE id = $4 AND status = $5 AND current_turn = $6`,
		to, from, now, id, models.HabitActive, from)
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
		UPDATE challenges SET status = $1
		WHERE id = $2 AND habit_id = $3 AND status = $4`,
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
		_ = tx.Rollback()
		return errdefs.ErrInvalidState
	}

	_, err = tx.Exec(`
		UPDATE habits
		SET streak_count = streak_count + 1, last_completed_at = $1, current_turn = $2
		WHERE id = $3`,
		now, nextTurn, habitID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) ResetHabitStreak(id string) error {
	result, err := s.db.Exec(`UPDATE habits SET streak_count = 0 WHERE id = $1`, id)
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
