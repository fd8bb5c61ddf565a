package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/racha/internal/models"
)

// CreateParticipant inserts a new participant into the directory.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	var paymentKey any
	if p.PaymentKey != "" {
		paymentKey = p.PaymentKey
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (name, payment_key, created_at) VALUES (?, ?, ?)",
		p.Name, paymentKey, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read participant id: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	p := &models.Participant{}
	var paymentKey sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, payment_key, created_at FROM participants WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &paymentKey, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("participant", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if paymentKey.Valid {
		p.PaymentKey = paymentKey.String
	}
	return p, nil
}

// listEventParticipants returns the members of an event ordered by id.
func listEventParticipants(ctx context.Context, q queryer, eventID int64) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT p.id, p.name, p.payment_key, p.created_at
		 FROM participants p JOIN event_members m ON m.participant_id = p.id
		 WHERE m.event_id = ? ORDER BY p.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list event participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var paymentKey sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &paymentKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if paymentKey.Valid {
			p.PaymentKey = paymentKey.String
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}
