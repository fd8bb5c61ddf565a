package models

import "github.com/mmynk/racha/internal/money"

// Expense is a single payment made by one participant on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID int64

	// EventID is the event this expense belongs to.
	EventID int64

	// Description is a free-form label (e.g., "Groceries").
	Description string

	// Total is the full amount paid.
	Total money.Cents

	// PayerID is the participant who paid.
	PayerID int64

	// SpentAt is the Unix timestamp of the expense.
	SpentAt int64

	// Participations are the shares owed by each participant.
	// Their sum is expected to equal Total.
	Participations []Participation
}

// Participation is one participant's share of an expense.
type Participation struct {
	ExpenseID     int64
	ParticipantID int64
	Share         money.Cents
}

// ShareSum returns the sum of all participation shares.
func (e *Expense) ShareSum() money.Cents {
	var sum money.Cents
	for _, p := range e.Participations {
		sum += p.Share
	}
	return sum
}
