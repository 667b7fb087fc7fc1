package postgres

import "github.com/tandem-app/tandem/internal/models"

func (s *Store) AddMessage(m models.Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, partnership_id, sender_id, kind, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.PartnershipID, m.SenderID, m.Kind, m.Body, m.CreatedAt)

	return err
}

func (s *Store) GetMessages(partnershipID string, limit int) ([]models.Message, error) {
	// Newest window, presented oldest first.
	rows, err := s.db.Query(`
		SELECT id, partnership_id, sender_id, kind, body, created_at
		FROM (
			SELECT id, partnership_id, sender_id, kind, body, created_at
			FROM messages WHERE partnership_id = $1
			ORDER BY created_at DESC LIMIT $2
		) newest ORDER BY created_at`, partnershipID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.PartnershipID, &m.SenderID, &m.Kind, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
