package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/metrics"
	"github.com/mmynk/racha/internal/middleware"
	"github.com/mmynk/racha/internal/storage/sqlite"
)

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, middleware.UserIDKey, "Alice")
			return next(ctx, req)
		}
	}
}

type testServer struct {
	events      api.EventServiceClient
	settlements api.SettlementServiceClient
	store       *sqlite.SQLiteStore
	registry    *prometheus.Registry
}

// setupTestServer creates a test server over a temp SQLite database.
func setupTestServer(t *testing.T, opts SettlementOptions) *testServer {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "racha-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	registry := prometheus.NewRegistry()
	locks := NewEventLocks()
	authInterceptor := connect.WithInterceptors(testAuthInterceptor())

	eventPath, eventHandler := api.NewEventServiceHandler(NewEventService(store, locks), authInterceptor)
	settlementSvc := NewSettlementService(store, locks, opts, metrics.NewSettlementMetrics(registry))
	settlementPath, settlementHandler := api.NewSettlementServiceHandler(settlementSvc, authInterceptor)

	mux := http.NewServeMux()
	mux.Handle(eventPath, eventHandler)
	mux.Handle(settlementPath, settlementHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testServer{
		events:      api.NewEventServiceClient(http.DefaultClient, server.URL),
		settlements: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		store:       store,
		registry:    registry,
	}
}

func defaultOptions() SettlementOptions {
	return SettlementOptions{PruneStale: true}
}

// participant creates a participant and returns its id.
func (ts *testServer) participant(t *testing.T, name, paymentKey string) int64 {
	t.Helper()
	resp, err := ts.events.CreateParticipant(context.Background(), connect.NewRequest(&api.CreateParticipantRequest{
		Name:       name,
		PaymentKey: paymentKey,
	}))
	if err != nil {
		t.Fatalf("CreateParticipant(%s) failed: %v", name, err)
	}
	return resp.Msg.Participant.ID
}

func (ts *testServer) event(t *testing.T, name string, members ...int64) int64 {
	t.Helper()
	resp, err := ts.events.CreateEvent(context.Background(), connect.NewRequest(&api.CreateEventRequest{
		Name:           name,
		ParticipantIDs: members,
	}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return resp.Msg.Event.ID
}

// equalExpense records an expense paid by payer and split equally between ids.
// The total must divide evenly.
func (ts *testServer) equalExpense(t *testing.T, eventID, payer, total int64, ids ...int64) int64 {
	t.Helper()
	parts := make([]api.Participation, len(ids))
	for i, id := range ids {
		parts[i] = api.Participation{ParticipantID: id, Share: total / int64(len(ids))}
	}
	resp, err := ts.events.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		EventID:        eventID,
		Description:    "shared",
		Total:          total,
		PayerID:        payer,
		Participations: parts,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense.ID
}

func (ts *testServer) suggestions(t *testing.T, eventID int64, kind string) []api.Suggestion {
	t.Helper()
	resp, err := ts.settlements.GetSuggestions(context.Background(), connect.NewRequest(&api.GetSuggestionsRequest{
		EventID: eventID,
		Kind:    kind,
	}))
	if err != nil {
		t.Fatalf("GetSuggestions failed: %v", err)
	}
	return resp.Msg.Suggestions
}

func participantNode(id int64) api.Node { return api.Node{Kind: "participant", ID: id} }

func subgroupNode(id int64) api.Node { return api.Node{Kind: "subgroup", ID: id} }
