package service

import (
	"fmt"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/calculator"
	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

func toAPIParticipant(p *models.Participant) api.Participant {
	return api.Participant{
		ID:         p.ID,
		Name:       p.Name,
		PaymentKey: p.PaymentKey,
		CreatedAt:  p.CreatedAt,
	}
}

func toAPIEvent(e *models.Event) api.Event {
	ids := e.Members
	if ids == nil {
		ids = []int64{}
	}
	return api.Event{
		ID:             e.ID,
		Name:           e.Name,
		ParticipantIDs: ids,
		CreatedAt:      e.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	parts := make([]api.Participation, len(e.Participations))
	for i, p := range e.Participations {
		parts[i] = api.Participation{
			ParticipantID: p.ParticipantID,
			Share:         int64(p.Share),
			ShareDisplay:  p.Share.String(),
		}
	}
	return api.Expense{
		ID:             e.ID,
		EventID:        e.EventID,
		Description:    e.Description,
		Total:          int64(e.Total),
		TotalDisplay:   e.Total.String(),
		PayerID:        e.PayerID,
		SpentAt:        e.SpentAt,
		Participations: parts,
	}
}

func toAPISubgroup(g *models.Subgroup) api.Subgroup {
	ids := g.Members
	if ids == nil {
		ids = []int64{}
	}
	return api.Subgroup{
		ID:        g.ID,
		EventID:   g.EventID,
		Name:      g.Name,
		MemberIDs: ids,
	}
}

func toAPIBalance(b calculator.Balance, dir *calculator.Directory) api.Balance {
	return api.Balance{
		ParticipantID:    b.Node.ID,
		Name:             dir.Name(b.Node),
		TotalPaid:        int64(b.TotalPaid),
		TotalOwed:        int64(b.TotalOwed),
		Net:              int64(b.Net),
		TotalPaidDisplay: b.TotalPaid.String(),
		TotalOwedDisplay: b.TotalOwed.String(),
		NetDisplay:       b.Net.String(),
	}
}

func toAPIGroupBalance(g calculator.GroupBalance) api.GroupBalance {
	ids := g.Members
	if ids == nil {
		ids = []int64{}
	}
	return api.GroupBalance{
		SubgroupID: g.SubgroupID,
		Name:       g.Name,
		MemberIDs:  ids,
		TotalPaid:  int64(g.TotalPaid),
		TotalOwed:  int64(g.TotalOwed),
		Net:        int64(g.Net),
		NetDisplay: g.Net.String(),
	}
}

func toAPINode(ref models.NodeRef) api.Node {
	return api.Node{Kind: ref.Kind.String(), ID: ref.ID}
}

func toAPISuggestion(s calculator.Suggestion) api.Suggestion {
	return api.Suggestion{
		Kind:          s.Key.Kind.String(),
		From:          toAPINode(s.Key.From),
		FromName:      s.FromName,
		To:            toAPINode(s.Key.To),
		ToName:        s.ToName,
		Amount:        int64(s.Amount),
		AmountDisplay: s.Amount.String(),
		PaymentKey:    s.PaymentKey,
		Status:        s.Status.String(),
		PaidBy:        s.PaidBy,
		PaidAt:        s.PaidAt,
		ConfirmedBy:   s.ConfirmedBy,
		ConfirmedAt:   s.ConfirmedAt,
	}
}

// parseAmount reads an amount given either in cents or as a decimal string.
// Cents win when both are set.
func parseAmount(cents int64, display, field string) (money.Cents, error) {
	if cents != 0 || display == "" {
		return money.Cents(cents), nil
	}
	c, err := money.Parse(display)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return c, nil
}

func parseSuggestionKind(s string) (models.SuggestionKind, error) {
	if s == "" {
		return models.SuggestionIndividual, nil
	}
	return models.ParseSuggestionKind(s)
}

func parseNode(n api.Node, field string) (models.NodeRef, error) {
	kind, err := models.ParseNodeKind(n.Kind)
	if err != nil {
		return models.NodeRef{}, fmt.Errorf("%s: %w", field, err)
	}
	if n.ID <= 0 {
		return models.NodeRef{}, fmt.Errorf("%s: id required", field)
	}
	return models.NodeRef{Kind: kind, ID: n.ID}, nil
}

func parseSuggestionRef(ref api.SuggestionRef) (models.SuggestionKey, error) {
	if ref.EventID <= 0 {
		return models.SuggestionKey{}, fmt.Errorf("event_id required")
	}
	kind, err := parseSuggestionKind(ref.Kind)
	if err != nil {
		return models.SuggestionKey{}, err
	}
	from, err := parseNode(ref.From, "from")
	if err != nil {
		return models.SuggestionKey{}, err
	}
	to, err := parseNode(ref.To, "to")
	if err != nil {
		return models.SuggestionKey{}, err
	}
	if kind == models.SuggestionIndividual && (from.Kind != models.NodeParticipant || to.Kind != models.NodeParticipant) {
		return models.SuggestionKey{}, fmt.Errorf("INDIVIDUAL suggestions only connect participants")
	}
	return models.SuggestionKey{Kind: kind, From: from, To: to}, nil
}
