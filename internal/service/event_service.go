package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/calculator"
	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
	"github.com/mmynk/racha/internal/storage"
)

// EventService implements the Connect EventService: the records the
// settlement engine reads.
type EventService struct {
	api.UnimplementedEventServiceHandler
	store storage.Store
	locks *EventLocks
}

// NewEventService creates a new EventService. locks must be shared with the
// SettlementService serving the same store.
func NewEventService(store storage.Store, locks *EventLocks) *EventService {
	return &EventService{store: store, locks: locks}
}

// CreateParticipant adds a participant to the directory.
func (s *EventService) CreateParticipant(ctx context.Context, req *connect.Request[api.CreateParticipantRequest]) (*connect.Response[api.CreateParticipantResponse], error) {
	slog.Info("CreateParticipant request received", "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument(errors.New("name required"))
	}

	p := &models.Participant{Name: name, PaymentKey: strings.TrimSpace(req.Msg.PaymentKey)}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		slog.Error("CreateParticipant failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Participant created", "participant_id", p.ID)
	return connect.NewResponse(&api.CreateParticipantResponse{Participant: toAPIParticipant(p)}), nil
}

// CreateEvent creates an event with its initial members.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	slog.Info("CreateEvent request received",
		"name", req.Msg.Name,
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument(errors.New("name required"))
	}

	event := &models.Event{Name: name, Members: dedupe(req.Msg.ParticipantIDs)}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event created", "event_id", event.ID)
	return connect.NewResponse(&api.CreateEventResponse{Event: toAPIEvent(event)}), nil
}

// AddEventParticipants adds members to an existing event.
func (s *EventService) AddEventParticipants(ctx context.Context, req *connect.Request[api.AddEventParticipantsRequest]) (*connect.Response[api.AddEventParticipantsResponse], error) {
	slog.Info("AddEventParticipants request received",
		"event_id", req.Msg.EventID,
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	if req.Msg.EventID <= 0 {
		return nil, invalidArgument(errors.New("event_id required"))
	}

	unlock := s.locks.Lock(req.Msg.EventID)
	defer unlock()

	if err := s.store.AddEventMembers(ctx, req.Msg.EventID, dedupe(req.Msg.ParticipantIDs)); err != nil {
		slog.Error("AddEventParticipants failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}
	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddEventParticipantsResponse{Event: toAPIEvent(event)}), nil
}

// CreateExpense records an expense. Shares must add up to the total.
func (s *EventService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"event_id", req.Msg.EventID,
		"payer_id", req.Msg.PayerID,
		"participations_count", len(req.Msg.Participations),
	)

	if req.Msg.EventID <= 0 {
		return nil, invalidArgument(errors.New("event_id required"))
	}

	unlock := s.locks.Lock(req.Msg.EventID)
	defer unlock()

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}

	expense, err := buildExpense(event, req.Msg.Description, req.Msg.Total, req.Msg.TotalDisplay,
		req.Msg.PayerID, req.Msg.SpentAt, req.Msg.Participations)
	if err != nil {
		slog.Warn("CreateExpense rejected", "event_id", event.ID, "error", err)
		return nil, invalidArgument(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "event_id", event.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "event_id", event.ID, "expense_id", expense.ID, "total", expense.Total)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense and all of its participations.
func (s *EventService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID <= 0 {
		return nil, invalidArgument(errors.New("expense_id required"))
	}

	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.locks.Lock(existing.EventID)
	defer unlock()

	event, err := s.store.GetEvent(ctx, existing.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}

	spentAt := req.Msg.SpentAt
	if spentAt == 0 {
		spentAt = existing.SpentAt
	}
	expense, err := buildExpense(event, req.Msg.Description, req.Msg.Total, req.Msg.TotalDisplay,
		req.Msg.PayerID, spentAt, req.Msg.Participations)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", existing.ID, "error", err)
		return nil, invalidArgument(err)
	}
	expense.ID = existing.ID

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "event_id", event.ID, "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense.
func (s *EventService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID <= 0 {
		return nil, invalidArgument(errors.New("expense_id required"))
	}

	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.locks.Lock(existing.EventID)
	defer unlock()

	if err := s.store.DeleteExpense(ctx, existing.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "event_id", existing.EventID, "expense_id", existing.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns every expense of an event.
func (s *EventService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "event_id", req.Msg.EventID)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("ListExpenses failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// CreateSubgroup groups event members into one settlement unit.
func (s *EventService) CreateSubgroup(ctx context.Context, req *connect.Request[api.CreateSubgroupRequest]) (*connect.Response[api.CreateSubgroupResponse], error) {
	slog.Info("CreateSubgroup request received",
		"event_id", req.Msg.EventID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument(errors.New("name required"))
	}
	members := dedupe(req.Msg.MemberIDs)
	if len(members) == 0 {
		return nil, invalidArgument(errors.New("subgroup needs at least one member"))
	}

	unlock := s.locks.Lock(req.Msg.EventID)
	defer unlock()

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	for _, id := range members {
		if !slices.Contains(event.Members, id) {
			return nil, invalidArgument(fmt.Errorf("participant %d is not a member of event %d", id, event.ID))
		}
	}

	subgroup := &models.Subgroup{EventID: event.ID, Name: name, Members: members}
	if err := s.store.CreateSubgroup(ctx, subgroup); err != nil {
		slog.Warn("CreateSubgroup failed", "event_id", event.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Subgroup created", "event_id", event.ID, "subgroup_id", subgroup.ID)
	return connect.NewResponse(&api.CreateSubgroupResponse{Subgroup: toAPISubgroup(subgroup)}), nil
}

// DeleteSubgroup dissolves a subgroup; its members settle individually again.
func (s *EventService) DeleteSubgroup(ctx context.Context, req *connect.Request[api.DeleteSubgroupRequest]) (*connect.Response[api.DeleteSubgroupResponse], error) {
	slog.Info("DeleteSubgroup request received", "subgroup_id", req.Msg.SubgroupID)

	subgroup, err := s.store.GetSubgroup(ctx, req.Msg.SubgroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.locks.Lock(subgroup.EventID)
	defer unlock()

	if err := s.store.DeleteSubgroup(ctx, subgroup.ID); err != nil {
		slog.Error("DeleteSubgroup failed", "subgroup_id", subgroup.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Subgroup deleted", "event_id", subgroup.EventID, "subgroup_id", subgroup.ID)
	return connect.NewResponse(&api.DeleteSubgroupResponse{}), nil
}

// buildExpense validates an expense against its event before it is stored.
func buildExpense(event *models.Event, description string, total int64, totalDisplay string, payerID, spentAt int64, parts []api.Participation) (*models.Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("description required")
	}
	amount, err := parseAmount(total, totalDisplay, "total")
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("total must be positive, got %s", amount)
	}
	if amount > money.MaxAmount {
		return nil, fmt.Errorf("total %s exceeds the maximum of %s", amount, money.MaxAmount)
	}
	if !slices.Contains(event.Members, payerID) {
		return nil, fmt.Errorf("payer %d is not a member of event %d", payerID, event.ID)
	}
	if len(parts) == 0 {
		return nil, errors.New("at least one participation required")
	}

	expense := &models.Expense{
		EventID:        event.ID,
		Description:    description,
		Total:          amount,
		PayerID:        payerID,
		SpentAt:        spentAt,
		Participations: make([]models.Participation, 0, len(parts)),
	}
	for i, p := range parts {
		share, err := parseAmount(p.Share, p.ShareDisplay, fmt.Sprintf("participations[%d].share", i))
		if err != nil {
			return nil, err
		}
		if share < 0 || share > money.MaxAmount {
			return nil, fmt.Errorf("participations[%d]: share %s out of range", i, share)
		}
		if !slices.Contains(event.Members, p.ParticipantID) {
			return nil, fmt.Errorf("participant %d is not a member of event %d", p.ParticipantID, event.ID)
		}
		expense.Participations = append(expense.Participations, models.Participation{
			ParticipantID: p.ParticipantID,
			Share:         share,
		})
	}

	if diff := (expense.ShareSum() - expense.Total).Abs(); diff > calculator.RoundingTolerance {
		return nil, fmt.Errorf("shares sum to %s but total is %s", expense.ShareSum(), expense.Total)
	}
	return expense, nil
}

// dedupe drops repeated ids while keeping first-seen order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
