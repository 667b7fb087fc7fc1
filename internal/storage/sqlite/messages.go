package sqlite

import (
	"fmt"

	"github.com/tandem-app/tandem/internal/models"
)

func (s *Store) AddMessage(m models.Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, partnership_id, sender_id, kind, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.PartnershipID, m.SenderID, m.Kind, m.Body, formatTime(m.CreatedAt))

	return err
}

func (s *Store) GetMessages(partnershipID string, limit int) ([]models.Message, error) {
	// Newest window, presented oldest first.
	rows, err := s.db.Query(`
		SELECT id, partnership_id, sender_id, kind, body, created_at
		FROM (
			SELECT id, partnership_id, sender_id, kind, body, created_at
			FROM messages WHERE partnership_id = ?
			ORDER BY created_at DESC LIMIT ?
		) ORDER BY created_at`, partnershipID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var createdAt string

		if err := rows.Scan(&m.ID, &m.PartnershipID, &m.SenderID, &m.Kind, &m.Body, &createdAt); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for message %s: %w", m.ID, err)
		}

		messages = append(messages, m)
	}

	return messages, rows.Err()
}
