package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/racha/internal/models"
)

// CreateEvent persists a new event together with its initial members.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO events (name, created_at) VALUES (?, ?)",
		event.Name, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	event.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read event id: %w", err)
	}

	if err := insertMembers(ctx, tx, event.ID, event.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEvent retrieves an event and its member ids.
func (s *SQLiteStore) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return getEvent(ctx, s.db, id)
}

// AddEventMembers adds participants to an event, skipping existing members.
func (s *SQLiteStore) AddEventMembers(ctx context.Context, eventID int64, participantIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getEvent(ctx, tx, eventID); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, eventID, participantIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, q queryer, eventID int64, participantIDs []int64) error {
	for _, pid := range participantIDs {
		var exists int
		err := q.QueryRowContext(ctx, "SELECT 1 FROM participants WHERE id = ?", pid).Scan(&exists)
		if err == sql.ErrNoRows {
			return notFound("participant", pid)
		}
		if err != nil {
			return fmt.Errorf("failed to check participant existence: %w", err)
		}

		_, err = q.ExecContext(ctx,
			"INSERT OR IGNORE INTO event_members (event_id, participant_id) VALUES (?, ?)",
			eventID, pid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event member: %w", err)
		}
	}
	return nil
}

func getEvent(ctx context.Context, q queryer, id int64) (*models.Event, error) {
	event := &models.Event{}
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM events WHERE id = ?",
		id,
	).Scan(&event.ID, &event.Name, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT participant_id FROM event_members WHERE event_id = ? ORDER BY participant_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get event members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("failed to scan event member: %w", err)
		}
		event.Members = append(event.Members, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event members: %w", err)
	}
	return event, nil
}
