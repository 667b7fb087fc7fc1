package postgres

import (
	"database/sql"
	"time"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/models"
)

const partnershipColumns = "id, user_a, user_b, status, invite_code, timezone, created_at, updated_at"

func scanPartnership(row interface{ Scan(...any) error }) (models.Partnership, error) {
	var p models.Partnership
	var inviteCode sql.NullString

	err := row.Scan(&p.ID, &p.UserA, &p.UserB, &p.Status, &inviteCode, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Partnership{}, err
	}
	if inviteCode.Valid {
		p.InviteCode = inviteCode.String
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserA, p.UserB, p.Status, inviteCode, p.Timezone, p.CreatedAt, p.UpdatedAt)

	return uniqueViolation(err, errdefs.ErrInvalidState)
}

func (s *Store) GetPartnership(id string) (models.Partnership, error) {
	row := s.db.QueryRow(`SELECT `+partnershipColumns+` FROM partnerships WHERE id = $1`, id)
	p, err := scanPartnership(row)
	if err != nil {
		return models.Partnership{}, notFound(err)
	}
	return p, nil
}

func (s *Store) GetPartnershipByCode(code string) (models.Partnership, error) {
	row := s.db.QueryRow(`SELECT `+partnershipColumns+` FROM partnerships WHERE invite_code = $1`, code)
	p, err := scanPartnership(row)
	if err != nil {
		return models.Partnership{}, notFound(err)
	}
	return p, nil
}

func (s *Store) GetPartnershipsForUser(userID string) ([]models.Partnership, error) {
	rows, err := s.db.Query(`
		SELECT `+partnershipColumns+` FROM partnerships
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at`, userID)
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
		SET status = $1,
		    user_b = CASE WHEN user_b = '' THEN $2 ELSE user_b END,
		    updated_at = $3
		WHERE id = $4 AND status = $5`,
		models.PartnershipActive, userB, now, id, models.PartnershipPending)
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
		UPDATE partnerships SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		to, now, id, from)
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
