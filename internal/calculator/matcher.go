package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

// StatusPolicy decides what happens to a persisted status when the amount of
// the matching suggestion changed since it was marked.
type StatusPolicy int

const (
	// StatusPolicyReset drops the status back to unconfirmed.
	StatusPolicyReset StatusPolicy = iota
	// StatusPolicyCarryOver keeps the status regardless of the new amount.
	StatusPolicyCarryOver
)

func (p StatusPolicy) String() string {
	if p == StatusPolicyCarryOver {
		return "carry"
	}
	return "reset"
}

// ParseStatusPolicy accepts "reset" or "carry".
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch s {
	case "reset":
		return StatusPolicyReset, nil
	case "carry":
		return StatusPolicyCarryOver, nil
	default:
		return 0, fmt.Errorf("unknown status policy %q (want reset or carry)", s)
	}
}

// MatchOptions tunes Merge.
type MatchOptions struct {
	Policy StatusPolicy

	// AmountTolerance is the largest amount drift still treated as unchanged.
	AmountTolerance money.Cents
}

// Suggestion is a transfer enriched with its confirmation status and the
// display data needed by clients.
type Suggestion struct {
	Key    models.SuggestionKey
	Amount money.Cents

	FromName   string
	ToName     string
	PaymentKey string // Payee's Pix key

	Status      models.SuggestionStatus
	PaidBy      string
	PaidAt      int64
	ConfirmedBy string
	ConfirmedAt int64

	// RecordedAmount is the amount the persisted status was recorded for,
	// zero when there is none.
	RecordedAmount money.Cents
}

// MergeResult is the output of Merge.
type MergeResult struct {
	Suggestions []Suggestion

	// Stale lists persisted keys that no longer describe a live suggestion:
	// the pair is settled or reversed, or under StatusPolicyReset the amount
	// moved. They can be discarded.
	Stale []models.SuggestionKey
}

// Merge attaches persisted confirmations to freshly solved transfers.
// Matching is by (kind, from, to), never by position.
func Merge(kind models.SuggestionKind, transfers []Transfer, persisted map[models.SuggestionKey]models.Confirmation, opts MatchOptions) MergeResult {
	result := MergeResult{Suggestions: make([]Suggestion, 0, len(transfers))}
	live := make(map[models.SuggestionKey]bool, len(transfers))

	for _, t := range transfers {
		key := models.SuggestionKey{Kind: kind, From: t.From, To: t.To}
		live[key] = true
		s := Suggestion{Key: key, Amount: t.Amount, Status: models.StatusUnconfirmed}

		conf, ok := persisted[key]
		if ok {
			changed := (conf.Amount - t.Amount).Abs() > opts.AmountTolerance
			if changed && opts.Policy == StatusPolicyReset {
				result.Stale = append(result.Stale, key)
			} else {
				applyConfirmation(&s, conf)
			}
		}
		result.Suggestions = append(result.Suggestions, s)
	}

	for key := range persisted {
		if key.Kind == kind && !live[key] {
			result.Stale = append(result.Stale, key)
		}
	}
	sort.Slice(result.Stale, func(i, j int) bool {
		a, b := result.Stale[i], result.Stale[j]
		if a.From != b.From {
			return a.From.Less(b.From)
		}
		return a.To.Less(b.To)
	})
	return result
}

func applyConfirmation(s *Suggestion, conf models.Confirmation) {
	s.Status = conf.Status()
	s.RecordedAmount = conf.Amount
	if conf.Paid {
		s.PaidBy = conf.PaidBy
		s.PaidAt = conf.PaidAt
	}
	if conf.Confirmed {
		s.ConfirmedBy = conf.ConfirmedBy
		s.ConfirmedAt = conf.ConfirmedAt
	}
}

// Find returns the suggestion with the given key.
func Find(suggestions []Suggestion, key models.SuggestionKey) (Suggestion, bool) {
	for _, s := range suggestions {
		if s.Key == key {
			return s, true
		}
	}
	return Suggestion{}, false
}
