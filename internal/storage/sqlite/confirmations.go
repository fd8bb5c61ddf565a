package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/racha/internal/models"
)

const confirmationColumns = `kind, from_kind, from_id, to_kind, to_id, amount,
	paid, paid_by, paid_at, confirmed, confirmed_by, confirmed_at`

// Existing stamps are kept and only the amount is refreshed, so repeating a
// mark is a no-op and a paid mark never clears a confirmation. Dropping a
// status whose amount drifted is up to the caller.
const markPaidSQL = `
INSERT INTO confirmations (event_id, kind, from_kind, from_id, to_kind, to_id, amount, paid, paid_by, paid_at)
VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (event_id, kind, from_kind, from_id, to_kind, to_id) DO UPDATE SET
    paid_by = CASE WHEN confirmations.paid = 1 THEN confirmations.paid_by ELSE excluded.paid_by END,
    paid_at = CASE WHEN confirmations.paid = 1 THEN confirmations.paid_at ELSE excluded.paid_at END,
    paid = 1,
    amount = excluded.amount`

const markConfirmedSQL = `
INSERT INTO confirmations (event_id, kind, from_kind, from_id, to_kind, to_id, amount,
    paid, paid_by, paid_at, confirmed, confirmed_by, confirmed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, 1, ?, ?)
ON CONFLICT (event_id, kind, from_kind, from_id, to_kind, to_id) DO UPDATE SET
    paid_by = CASE WHEN confirmations.paid = 1 THEN confirmations.paid_by ELSE excluded.paid_by END,
    paid_at = CASE WHEN confirmations.paid = 1 THEN confirmations.paid_at ELSE excluded.paid_at END,
    confirmed_by = CASE WHEN confirmations.confirmed = 1
        THEN confirmations.confirmed_by ELSE excluded.confirmed_by END,
    confirmed_at = CASE WHEN confirmations.confirmed = 1
        THEN confirmations.confirmed_at ELSE excluded.confirmed_at END,
    paid = 1,
    confirmed = 1,
    amount = excluded.amount`

// ListConfirmations returns the persisted statuses of one settlement kind.
func (s *SQLiteStore) ListConfirmations(ctx context.Context, eventID int64, kind models.SuggestionKind) (map[models.SuggestionKey]models.Confirmation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+confirmationColumns+" FROM confirmations WHERE event_id = ? AND kind = ?",
		eventID, int(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	defer rows.Close()

	result := make(map[models.SuggestionKey]models.Confirmation)
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, err
		}
		c.EventID = eventID
		result[c.Key] = *c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmations: %w", err)
	}
	return result, nil
}

// MarkPaid upserts the paid flag for c.Key using c.Amount, c.PaidBy and c.PaidAt.
func (s *SQLiteStore) MarkPaid(ctx context.Context, c *models.Confirmation) (*models.Confirmation, error) {
	k := c.Key
	return s.upsertConfirmation(ctx, c.EventID, k, markPaidSQL,
		c.EventID, int(k.Kind), int(k.From.Kind), k.From.ID, int(k.To.Kind), k.To.ID, int64(c.Amount),
		c.PaidBy, c.PaidAt,
	)
}

// MarkConfirmed upserts the confirmed flag for c.Key. A row that was never
// marked paid is stamped paid by the same actor.
func (s *SQLiteStore) MarkConfirmed(ctx context.Context, c *models.Confirmation) (*models.Confirmation, error) {
	k := c.Key
	return s.upsertConfirmation(ctx, c.EventID, k, markConfirmedSQL,
		c.EventID, int(k.Kind), int(k.From.Kind), k.From.ID, int(k.To.Kind), k.To.ID, int64(c.Amount),
		c.ConfirmedBy, c.ConfirmedAt, c.ConfirmedBy, c.ConfirmedAt,
	)
}

// DeleteConfirmations removes the given keys. Missing rows are ignored.
func (s *SQLiteStore) DeleteConfirmations(ctx context.Context, eventID int64, keys []models.SuggestionKey) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM confirmations WHERE event_id = ? AND kind = ?
			 AND from_kind = ? AND from_id = ? AND to_kind = ? AND to_id = ?`,
			eventID, int(k.Kind), int(k.From.Kind), k.From.ID, int(k.To.Kind), k.To.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete confirmation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) upsertConfirmation(ctx context.Context, eventID int64, k models.SuggestionKey, query string, args ...any) (*models.Confirmation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert confirmation: %w", err)
	}

	row, err := tx.QueryContext(ctx,
		`SELECT `+confirmationColumns+` FROM confirmations WHERE event_id = ? AND kind = ?
		 AND from_kind = ? AND from_id = ? AND to_kind = ? AND to_id = ?`,
		eventID, int(k.Kind), int(k.From.Kind), k.From.ID, int(k.To.Kind), k.To.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !row.Next() {
		row.Close()
		return nil, fmt.Errorf("confirmation %v vanished after upsert", k)
	}
	c, err := scanConfirmation(row)
	row.Close()
	if err != nil {
		return nil, err
	}
	c.EventID = eventID

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func scanConfirmation(rows *sql.Rows) (*models.Confirmation, error) {
	var (
		c                      models.Confirmation
		kind, fromKind, toKind int
		amount                 int64
		paidBy, confirmedBy    sql.NullString
		paidAt, confirmedAt    sql.NullInt64
	)
	if err := rows.Scan(&kind, &fromKind, &c.Key.From.ID, &toKind, &c.Key.To.ID, &amount,
		&c.Paid, &paidBy, &paidAt, &c.Confirmed, &confirmedBy, &confirmedAt); err != nil {
		return nil, fmt.Errorf("failed to scan confirmation: %w", err)
	}
	c.Key.Kind = models.SuggestionKind(kind)
	c.Key.From.Kind = models.NodeKind(fromKind)
	c.Key.To.Kind = models.NodeKind(toKind)
	c.Amount = moneyFromDB(amount)
	c.PaidBy = paidBy.String
	c.PaidAt = paidAt.Int64
	c.ConfirmedBy = confirmedBy.String
	c.ConfirmedAt = confirmedAt.Int64
	return &c, nil
}
