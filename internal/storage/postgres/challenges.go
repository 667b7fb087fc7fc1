package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

const challengeColumns = "id, habit_id, title, description, creator_id, due_day, status, created_at"
const completionColumns = "id, challenge_id, user_id, status, reflection, tags, photo_ref, completed_at"

func scanChallenge(row interface{ Scan(...any) error }) (models.Challenge, error) {
	var c models.Challenge
	err := row.Scan(&c.ID, &c.HabitID, &c.Title, &c.Description, &c.CreatorID,
		&c.DueDay, &c.Status, &c.CreatedAt)
	if err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}

func scanCompletion(row interface{ Scan(...any) error }) (models.Completion, error) {
	var c models.Completion
	var tags sql.NullString

	err := row.Scan(&c.ID, &c.ChallengeID, &c.UserID, &c.Status, &c.Reflection,
		&tags, &c.PhotoRef, &c.CompletedAt)
	if err != nil {
		return models.Completion{}, err
	}

	if tags.Valid && tags.String != "" {
		var t models.FeelingTags
		if err := json.Unmarshal([]byte(tags.String), &t); err != nil {
			return models.Completion{}, fmt.Errorf("failed to parse tags for completion %s: %w", c.ID, err)
		}
		c.Tags = &t
	}

	return c, nil
}

func (s *Store) AddChallenge(c models.Challenge) error {
	_, err := s.db.Exec(`
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.HabitID, c.Title, c.Description, c.CreatorID, c.DueDay,
		c.Status, c.CreatedAt)

	return uniqueViolation(err, errdefs.ErrDuplicateForDay)
}

func (s *Store) GetChallenge(id string) (models.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	c, err := scanChallenge(row)
	if err != nil {
		return models.Challenge{}, notFound(err)
	}

	if c.Completions, err = s.GetCompletions(c.ID); err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}

func (s *Store) GetChallengeForDay(habitID, day string) (models.Challenge, error) {
	row := s.db.QueryRow(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE habit_id = $1 AND due_day = $2`, habitID, day)
	c, err := scanChallenge(row)
	if err != nil {
		return models.Challenge{}, notFound(err)
	}

	if c.Completions, err = s.GetCompletions(c.ID); err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}

func (s *Store) GetChallengesForHabit(habitID string) ([]models.Challenge, error) {
	rows, err := s.db.Query(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE habit_id = $1
		ORDER BY due_day`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range challenges {
		if challenges[i].Completions, err = s.GetCompletions(challenges[i].ID); err != nil {
			return nil, err
		}
	}

	return challenges, nil
}

func (s *Store) AddCompletion(c models.Completion) error {
	var tags sql.NullString
	if c.Tags != nil && !c.Tags.IsZero() {
		data, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		tags = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO completions (`+completionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ChallengeID, c.UserID, c.Status, c.Reflection, tags,
		c.PhotoRef, c.CompletedAt)

	return uniqueViolation(err, errdefs.ErrAlreadyCompleted)
}

func (s *Store) GetCompletions(challengeID string) ([]models.Completion, error) {
	rows, err := s.db.Query(`
		SELECT `+completionColumns+` FROM completions
		WHERE challenge_id = $1
		ORDER BY completed_at`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}
