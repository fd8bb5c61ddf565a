// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/racha/internal/models"
)

var (
	// ErrNotFound is wrapped by every lookup of a missing record.
	ErrNotFound = errors.New("not found")

	// ErrConflict is wrapped when a write violates a uniqueness rule, such as
	// a participant joining a second subgroup of the same event.
	ErrConflict = errors.New("conflict")
)

// EventSnapshot is everything the settlement engine reads for one event,
// loaded at a single point in time.
type EventSnapshot struct {
	Event        models.Event
	Participants []models.Participant // Event members, ordered by id
	Expenses     []models.Expense
	Subgroups    []models.Subgroup
}

// Store defines the interface for racha storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ParticipantStore
	EventStore
	ExpenseStore
	SubgroupStore
	ConfirmationStore

	// LoadEventSnapshot reads the event, its members, expenses and subgroups
	// in one transaction so the engine never sees a half-applied write.
	LoadEventSnapshot(ctx context.Context, eventID int64) (*EventSnapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// ParticipantStore persists the participant directory.
type ParticipantStore interface {
	// CreateParticipant persists a new participant; ID and CreatedAt are set by the store.
	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
}

// EventStore persists events and their membership.
type EventStore interface {
	// CreateEvent persists a new event with its initial members.
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)

	// AddEventMembers adds participants to an event; existing members are ignored.
	AddEventMembers(ctx context.Context, eventID int64, participantIDs []int64) error
}

// ExpenseStore persists expenses together with their participations.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)

	// UpdateExpense replaces the expense fields and all its participations.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, eventID int64) ([]models.Expense, error)
}

// SubgroupStore persists subgroups of an event.
type SubgroupStore interface {
	// CreateSubgroup fails with ErrConflict if a member already belongs to
	// another subgroup of the same event.
	CreateSubgroup(ctx context.Context, subgroup *models.Subgroup) error
	GetSubgroup(ctx context.Context, id int64) (*models.Subgroup, error)
	DeleteSubgroup(ctx context.Context, id int64) error
}

// ConfirmationStore persists the paid/confirmed status of suggestions.
// All writes are idempotent upserts keyed by (event, suggestion key).
type ConfirmationStore interface {
	ListConfirmations(ctx context.Context, eventID int64, kind models.SuggestionKind) (map[models.SuggestionKey]models.Confirmation, error)

	// MarkPaid records that the suggestion was paid. Repeating the call keeps
	// the original actor and timestamp, and an existing confirmation is kept.
	// Only the recorded amount is refreshed.
	MarkPaid(ctx context.Context, c *models.Confirmation) (*models.Confirmation, error)

	// MarkConfirmed records that the payee confirmed receipt, implying paid.
	MarkConfirmed(ctx context.Context, c *models.Confirmation) (*models.Confirmation, error)

	// DeleteConfirmations removes the given keys; missing keys are not an error.
	DeleteConfirmations(ctx context.Context, eventID int64, keys []models.SuggestionKey) error
}
