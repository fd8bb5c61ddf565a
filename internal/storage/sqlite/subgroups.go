package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/storage"
)

// CreateSubgroup persists a subgroup and its members.
// A participant already in another subgroup of the event yields storage.ErrConflict.
func (s *SQLiteStore) CreateSubgroup(ctx context.Context, subgroup *models.Subgroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getEvent(ctx, tx, subgroup.EventID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO subgroups (event_id, name) VALUES (?, ?)",
		subgroup.EventID, subgroup.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subgroup: %w", err)
	}
	subgroup.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read subgroup id: %w", err)
	}

	for _, pid := range subgroup.Members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO subgroup_members (subgroup_id, event_id, participant_id) VALUES (?, ?, ?)",
			subgroup.ID, subgroup.EventID, pid,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("participant %d already belongs to a subgroup of event %d: %w",
				pid, subgroup.EventID, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert subgroup member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubgroup retrieves a subgroup by ID.
func (s *SQLiteStore) GetSubgroup(ctx context.Context, id int64) (*models.Subgroup, error) {
	subgroup := &models.Subgroup{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, event_id, name FROM subgroups WHERE id = ?",
		id,
	).Scan(&subgroup.ID, &subgroup.EventID, &subgroup.Name)
	if err == sql.ErrNoRows {
		return nil, notFound("subgroup", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subgroup: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id FROM subgroup_members WHERE subgroup_id = ? ORDER BY participant_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get subgroup members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("failed to scan subgroup member: %w", err)
		}
		subgroup.Members = append(subgroup.Members, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subgroup members: %w", err)
	}
	return subgroup, nil
}

// DeleteSubgroup removes a subgroup; its members become individuals again.
func (s *SQLiteStore) DeleteSubgroup(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subgroups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subgroup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return notFound("subgroup", id)
	}
	return nil
}

func listSubgroups(ctx context.Context, q queryer, eventID int64) ([]models.Subgroup, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT g.id, g.event_id, g.name, m.participant_id
		 FROM subgroups g LEFT JOIN subgroup_members m ON m.subgroup_id = g.id
		 WHERE g.event_id = ? ORDER BY g.id, m.participant_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subgroups: %w", err)
	}
	defer rows.Close()

	var subgroups []models.Subgroup
	for rows.Next() {
		var g models.Subgroup
		var member sql.NullInt64
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &member); err != nil {
			return nil, fmt.Errorf("failed to scan subgroup: %w", err)
		}
		if n := len(subgroups); n == 0 || subgroups[n-1].ID != g.ID {
			subgroups = append(subgroups, g)
		}
		if member.Valid {
			last := &subgroups[len(subgroups)-1]
			last.Members = append(last.Members, member.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subgroups: %w", err)
	}
	return subgroups, nil
}
