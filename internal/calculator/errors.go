package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistent is matched by every *ConsistencyError.
	ErrInconsistent = errors.New("inconsistent balances")

	// ErrUnknownReference marks a reference to a participant or subgroup that
	// is not part of the event.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrOverlappingSubgroups marks a participant listed in two subgroups of
	// the same event.
	ErrOverlappingSubgroups = errors.New("participant belongs to more than one subgroup")
)

// ConsistencyError reports input that violates the conservation invariant
// beyond rounding tolerance. Settling anyway would be financially misleading,
// so it is never recovered from.
type ConsistencyError struct {
	// ExpenseID is the offending expense, or zero when the violation is not
	// attributable to a single expense.
	ExpenseID int64
	Reason    string
}

func (e *ConsistencyError) Error() string {
	if e.ExpenseID != 0 {
		return fmt.Sprintf("inconsistent expense %d: %s", e.ExpenseID, e.Reason)
	}
	return fmt.Sprintf("inconsistent balances: %s", e.Reason)
}

func (e *ConsistencyError) Unwrap() error { return ErrInconsistent }

// Fields returns the error attributes for structured error details.
func (e *ConsistencyError) Fields() map[string]any {
	fields := map[string]any{"reason": e.Reason}
	if e.ExpenseID != 0 {
		fields["expense_id"] = e.ExpenseID
	}
	return fields
}

// FatalDataError reports an expense, participation or subgroup that points at
// something the event does not know about.
type FatalDataError struct {
	// Kind is what was referenced: "participant", "subgroup" or "expense".
	Kind string
	ID   int64

	// Source describes where the reference was found, e.g. "expense 12 payer".
	Source string

	// Err is ErrUnknownReference or ErrOverlappingSubgroups.
	Err error
}

func (e *FatalDataError) Error() string {
	return fmt.Sprintf("%s %d in %s: %v", e.Kind, e.ID, e.Source, e.Err)
}

func (e *FatalDataError) Unwrap() error { return e.Err }

// Fields returns the error attributes for structured error details.
func (e *FatalDataError) Fields() map[string]any {
	return map[string]any{
		"kind":   e.Kind,
		"id":     e.ID,
		"source": e.Source,
		"reason": e.Err.Error(),
	}
}

func unknownParticipant(id int64, source string) *FatalDataError {
	return &FatalDataError{Kind: "participant", ID: id, Source: source, Err: ErrUnknownReference}
}
