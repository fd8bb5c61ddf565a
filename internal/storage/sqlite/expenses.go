package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/racha/internal/models"
)

// CreateExpense persists a new expense and its participations.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.SpentAt == 0 {
		expense.SpentAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getEvent(ctx, tx, expense.EventID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (event_id, description, total, payer_id, spent_at) VALUES (?, ?, ?, ?, ?)",
		expense.EventID, expense.Description, int64(expense.Total), expense.PayerID, expense.SpentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	if err := insertParticipations(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its participations.
func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	expense := &models.Expense{}
	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, event_id, description, total, payer_id, spent_at FROM expenses WHERE id = ?",
		id,
	).Scan(&expense.ID, &expense.EventID, &expense.Description, &total, &expense.PayerID, &expense.SpentAt)
	if err == sql.ErrNoRows {
		return nil, notFound("expense", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Total = moneyFromDB(total)

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, participant_id, share FROM participations WHERE expense_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		part, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		expense.Participations = append(expense.Participations, part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participations: %w", err)
	}
	return expense, nil
}

// UpdateExpense replaces an expense's fields and participations.
// The owning event cannot change.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenses SET description = ?, total = ?, payer_id = ?, spent_at = ? WHERE id = ?",
		expense.Description, int64(expense.Total), expense.PayerID, expense.SpentAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return notFound("expense", expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM participations WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete participations: %w", err)
	}
	if err := insertParticipations(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; participations cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return notFound("expense", id)
	}
	return nil
}

// ListExpenses retrieves all expenses of an event, oldest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, eventID int64) ([]models.Expense, error) {
	if _, err := getEvent(ctx, s.db, eventID); err != nil {
		return nil, err
	}
	return listExpenses(ctx, s.db, eventID)
}

func insertParticipations(ctx context.Context, q queryer, expense *models.Expense) error {
	for i := range expense.Participations {
		part := &expense.Participations[i]
		part.ExpenseID = expense.ID
		_, err := q.ExecContext(ctx,
			"INSERT INTO participations (expense_id, participant_id, share) VALUES (?, ?, ?)",
			expense.ID, part.ParticipantID, int64(part.Share),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participation: %w", err)
		}
	}
	return nil
}

func listExpenses(ctx context.Context, q queryer, eventID int64) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, event_id, description, total, payer_id, spent_at
		 FROM expenses WHERE event_id = ? ORDER BY spent_at, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[int64]int)
	for rows.Next() {
		var e models.Expense
		var total int64
		if err := rows.Scan(&e.ID, &e.EventID, &e.Description, &total, &e.PayerID, &e.SpentAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Total = moneyFromDB(total)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	partRows, err := q.QueryContext(ctx,
		`SELECT p.expense_id, p.participant_id, p.share
		 FROM participations p JOIN expenses e ON e.id = p.expense_id
		 WHERE e.event_id = ? ORDER BY p.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	defer partRows.Close()

	for partRows.Next() {
		part, err := scanParticipation(partRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[part.ExpenseID]; ok {
			expenses[i].Participations = append(expenses[i].Participations, part)
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participations: %w", err)
	}
	return expenses, nil
}

func scanParticipation(rows *sql.Rows) (models.Participation, error) {
	var part models.Participation
	var share int64
	if err := rows.Scan(&part.ExpenseID, &part.ParticipantID, &share); err != nil {
		return part, fmt.Errorf("failed to scan participation: %w", err)
	}
	part.Share = moneyFromDB(share)
	return part, nil
}
