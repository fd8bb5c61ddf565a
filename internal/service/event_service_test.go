package service

import (
	"context"
	"math"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/money"
)

func TestCreateParticipant(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())

	resp, err := ts.events.CreateParticipant(context.Background(), connect.NewRequest(&api.CreateParticipantRequest{
		Name:       "  Alice ",
		PaymentKey: "alice@pix",
	}))
	if err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}
	if resp.Msg.Participant.ID == 0 {
		t.Error("expected participant ID")
	}
	if resp.Msg.Participant.Name != "Alice" {
		t.Errorf("name: expected 'Alice', got '%s'", resp.Msg.Participant.Name)
	}

	_, err = ts.events.CreateParticipant(context.Background(), connect.NewRequest(&api.CreateParticipantRequest{}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected InvalidArgument for empty name, got %v", err)
	}
}

func TestCreateEventAndAddParticipants(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())
	a := ts.participant(t, "A", "")
	b := ts.participant(t, "B", "")

	resp, err := ts.events.CreateEvent(context.Background(), connect.NewRequest(&api.CreateEventRequest{
		Name:           "Trip",
		ParticipantIDs: []int64{a, a},
	}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if len(resp.Msg.Event.ParticipantIDs) != 1 {
		t.Errorf("expected duplicate ids to collapse, got %v", resp.Msg.Event.ParticipantIDs)
	}

	added, err := ts.events.AddEventParticipants(context.Background(), connect.NewRequest(&api.AddEventParticipantsRequest{
		EventID:        resp.Msg.Event.ID,
		ParticipantIDs: []int64{b},
	}))
	if err != nil {
		t.Fatalf("AddEventParticipants failed: %v", err)
	}
	if len(added.Msg.Event.ParticipantIDs) != 2 {
		t.Errorf("expected 2 members, got %v", added.Msg.Event.ParticipantIDs)
	}

	_, err = ts.events.AddEventParticipants(context.Background(), connect.NewRequest(&api.AddEventParticipantsRequest{
		EventID:        resp.Msg.Event.ID,
		ParticipantIDs: []int64{999},
	}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected NotFound for unknown participant, got %v", err)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())
	a := ts.participant(t, "A", "")
	b := ts.participant(t, "B", "")
	outsider := ts.participant(t, "X", "")
	eventID := ts.event(t, "Dinner", a, b)

	tests := []struct {
		name string
		req  *api.CreateExpenseRequest
		want connect.Code
	}{
		{
			name: "shares do not add up",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 3000, PayerID: a,
				Participations: []api.Participation{{ParticipantID: a, Share: 1000}, {ParticipantID: b, Share: 1000}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "payer outside event",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 1000, PayerID: outsider,
				Participations: []api.Participation{{ParticipantID: a, Share: 1000}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "participant outside event",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 1000, PayerID: a,
				Participations: []api.Participation{{ParticipantID: outsider, Share: 1000}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "negative share",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 1000, PayerID: a,
				Participations: []api.Participation{{ParticipantID: a, Share: 1500}, {ParticipantID: b, Share: -500}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "no participations",
			req:  &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 1000, PayerID: a},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "decimal total beyond int64",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", TotalDisplay: "184467440737095517.16", PayerID: a,
				Participations: []api.Participation{{ParticipantID: a, Share: 100}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "total above maximum",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: int64(money.MaxAmount) + 1, PayerID: a,
				Participations: []api.Participation{{ParticipantID: a, Share: int64(money.MaxAmount) + 1}}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "shares overflowing to the total",
			req: &api.CreateExpenseRequest{EventID: eventID, Description: "Pizza", Total: 1, PayerID: a,
				Participations: []api.Participation{
					{ParticipantID: a, Share: math.MaxInt64},
					{ParticipantID: b, Share: math.MaxInt64},
					{ParticipantID: a, Share: 3},
				}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown event",
			req: &api.CreateExpenseRequest{EventID: eventID + 50, Description: "Pizza", Total: 1000, PayerID: a,
				Participations: []api.Participation{{ParticipantID: a, Share: 1000}}},
			want: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.events.CreateExpense(context.Background(), connect.NewRequest(tt.req))
			if connect.CodeOf(err) != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateExpenseAcceptsDecimalStrings(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())
	a := ts.participant(t, "A", "")
	b := ts.participant(t, "B", "")
	c := ts.participant(t, "C", "")
	eventID := ts.event(t, "Taxi", a, b, c)

	// 100.00 over three people leaves a one cent residue.
	resp, err := ts.events.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		EventID:      eventID,
		Description:  "Taxi",
		TotalDisplay: "100.00",
		PayerID:      a,
		Participations: []api.Participation{
			{ParticipantID: a, ShareDisplay: "33.33"},
			{ParticipantID: b, ShareDisplay: "33.33"},
			{ParticipantID: c, ShareDisplay: "33.33"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if resp.Msg.Expense.Total != 10000 || resp.Msg.Expense.TotalDisplay != "100.00" {
		t.Errorf("unexpected total %+v", resp.Msg.Expense)
	}

	balances, err := ts.settlements.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{EventID: eventID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	var sum int64
	for _, b := range balances.Msg.Balances {
		sum += b.Net
	}
	if sum != 0 {
		t.Errorf("rounding residue broke conservation: sum %d", sum)
	}

	_, err = ts.events.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		EventID:        eventID,
		Description:    "Bad",
		TotalDisplay:   "1.005",
		PayerID:        a,
		Participations: []api.Participation{{ParticipantID: a, Share: 100}},
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected InvalidArgument for three decimals, got %v", err)
	}
}

func TestUpdateAndListExpenses(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())
	a := ts.participant(t, "A", "")
	b := ts.participant(t, "B", "")
	eventID := ts.event(t, "Dinner", a, b)
	expenseID := ts.equalExpense(t, eventID, a, 2000, a, b)

	updated, err := ts.events.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID:      expenseID,
		Description:    "Dinner and drinks",
		Total:          3000,
		PayerID:        b,
		Participations: []api.Participation{{ParticipantID: a, Share: 3000}},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Msg.Expense.PayerID != b || updated.Msg.Expense.SpentAt == 0 {
		t.Errorf("unexpected update result %+v", updated.Msg.Expense)
	}

	list, err := ts.events.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{EventID: eventID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 || list.Msg.Expenses[0].Total != 3000 {
		t.Fatalf("unexpected expenses %+v", list.Msg.Expenses)
	}

	got := ts.suggestions(t, eventID, "")
	if len(got) != 1 || got[0].From != participantNode(a) || got[0].To != participantNode(b) || got[0].Amount != 3000 {
		t.Errorf("suggestions did not follow the update: %+v", got)
	}

	_, err = ts.events.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: 9999}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSubgroupLifecycle(t *testing.T) {
	ts := setupTestServer(t, defaultOptions())
	a := ts.participant(t, "A", "")
	b := ts.participant(t, "B", "")
	c := ts.participant(t, "C", "")
	outsider := ts.participant(t, "X", "")
	eventID := ts.event(t, "Trip", a, b, c)

	created, err := ts.events.CreateSubgroup(context.Background(), connect.NewRequest(&api.CreateSubgroupRequest{
		EventID: eventID, Name: "Family", MemberIDs: []int64{a, b},
	}))
	if err != nil {
		t.Fatalf("CreateSubgroup failed: %v", err)
	}

	tests := []struct {
		name string
		req  *api.CreateSubgroupRequest
		want connect.Code
	}{
		{"overlapping member", &api.CreateSubgroupRequest{EventID: eventID, Name: "Friends", MemberIDs: []int64{b, c}}, connect.CodeAlreadyExists},
		{"non-member", &api.CreateSubgroupRequest{EventID: eventID, Name: "Friends", MemberIDs: []int64{outsider}}, connect.CodeInvalidArgument},
		{"empty", &api.CreateSubgroupRequest{EventID: eventID, Name: "Friends"}, connect.CodeInvalidArgument},
		{"no name", &api.CreateSubgroupRequest{EventID: eventID, MemberIDs: []int64{c}}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.events.CreateSubgroup(context.Background(), connect.NewRequest(tt.req))
			if connect.CodeOf(err) != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ts.events.DeleteSubgroup(context.Background(), connect.NewRequest(&api.DeleteSubgroupRequest{
		SubgroupID: created.Msg.Subgroup.ID,
	})); err != nil {
		t.Fatalf("DeleteSubgroup failed: %v", err)
	}
	_, err = ts.events.DeleteSubgroup(context.Background(), connect.NewRequest(&api.DeleteSubgroupRequest{
		SubgroupID: created.Msg.Subgroup.ID,
	}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}
