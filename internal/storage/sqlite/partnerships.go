package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

const partnershipColumns = "id, user_a, user_b, status, invite_code, timezone, created_at, updated_at"

func scanPartnership(row interface{ Scan(...any) error }) (models.Partnership, error) {
	var p models.Partnership
	var inviteCode sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserA, &p.UserB, &p.Status, &inviteCode, &p.Timezone, &createdAt, &updatedAt)
	if err != nil {
		return models.Partnership{}, err
	}

	if inviteCode.Valid {
		p.InviteCode = inviteCode.String
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Partnership{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Partnership{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return p, nil
}

func (s *Store) AddPartnership(p models.Partnership) error {
	var inviteCode sql.NullString
	if p.InviteCode != "" {
		inviteCode = sql.NullString{String: p.InviteCode, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO partnerships (id, user_a, user_b, status, invite_code, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserA, p.UserB, p.Status, inviteCode, p.Timezone,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))

	// The open-pair partial index rejects a second live partnership for the
	// same pair.
	return uniqueViolation(err, errdefs.ErrInvalidState)
}

func (s *Store) GetPartnership(id string) (models.Partnership, error) {
	row := s.db.QueryRow(`SELECT `+partnershipColumns+` FROM partnerships WHERE id = ?`, id)
	p, err := scanPartnership(row)
	if err != nil {
		return models.Partnership{}, notFound(err)
	}
	return p, nil
}

func (s *Store) GetPartnershipByCode(code string) (models.Partnership, error) {
	row := s.db.QueryRow(`SELECT `+partnershipColumns+` FROM partnerships WHERE invite_code = ?`, code)
	p, err := scanPartnership(row)
	if err != nil {
		return models.Partnership{}, notFound(err)
	}
	return p, nil
}

func (s *Store) GetPartnershipsForUser(userID string) ([]models.Partnership, error) {
	rows, err := s.db.Query(`
		SELECT `+partnershipColumns+` FROM partnerships
		WHERE user_a = ? OR user_b = ?
		ORDER BY created_at`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partnerships []models.Partnership
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			return nil, err
		}
		partnerships = append(partnerships, p)
	}

	return partnerships, rows.Err()
}

func (s *Store) ActivatePartnership(id, userB string, now time.Time) error {
	result, err := s.db.Exec(`
		UPDATE partnerships
		SET status = ?,
		    user_b = CASE WHEN user_b = '' THEN ? ELSE user_b END,
		    updated_at = ?
		WHERE id = ? AND status = ?`,
		models.PartnershipActive, userB, formatTime(now), id, models.PartnershipPending)
	if err != nil {
		return uniqueViolation(err, errdefs.ErrInvalidState)
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

func (s *Store) SetPartnershipStatus(id string, from, to models.PartnershipStatus, now time.Time) error {
	result, err := s.db.Exec(`
		UPDATE partnerships SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, formatTime(now), id, from)
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
