package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/calculator"
	"github.com/mmynk/racha/internal/metrics"
	"github.com/mmynk/racha/internal/middleware"
	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
	"github.com/mmynk/racha/internal/storage"
)

// SettlementOptions configures how balances and suggestions are computed.
type SettlementOptions struct {
	Ledger calculator.LedgerOptions
	Match  calculator.MatchOptions

	// PruneStale deletes persisted confirmations whose suggestion no longer
	// exists, or whose amount changed under the reset policy.
	PruneStale bool
}

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	api.UnimplementedSettlementServiceHandler
	store   storage.Store
	locks   *EventLocks
	opts    SettlementOptions
	metrics *metrics.SettlementMetrics
	now     func() time.Time
}

// NewSettlementService creates a new SettlementService. m may be nil.
func NewSettlementService(store storage.Store, locks *EventLocks, opts SettlementOptions, m *metrics.SettlementMetrics) *SettlementService {
	return &SettlementService{
		store:   store,
		locks:   locks,
		opts:    opts,
		metrics: m,
		now:     time.Now,
	}
}

// ledger is one event's snapshot run through the ExpenseLedger.
type ledger struct {
	snapshot *storage.EventSnapshot
	dir      *calculator.Directory
	balances []calculator.Balance
}

func (s *SettlementService) loadLedger(ctx context.Context, eventID int64) (*ledger, error) {
	snap, err := s.store.LoadEventSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	balances, err := calculator.ComputeBalances(snap.Expenses, snap.Participants, s.opts.Ledger)
	if err != nil {
		return nil, err
	}
	return &ledger{
		snapshot: snap,
		dir:      calculator.NewDirectory(snap.Participants, snap.Subgroups),
		balances: balances,
	}, nil
}

// suggest runs the full pipeline for one settlement kind. The caller holds
// the event lock.
func (s *SettlementService) suggest(ctx context.Context, eventID int64, kind models.SuggestionKind) (calculator.MergeResult, error) {
	l, err := s.loadLedger(ctx, eventID)
	if err != nil {
		return calculator.MergeResult{}, err
	}

	nodes := calculator.Nodes(l.balances)
	if kind == models.SuggestionGroup {
		nodes, _, err = calculator.Aggregate(l.balances, l.snapshot.Subgroups, l.dir)
		if err != nil {
			return calculator.MergeResult{}, err
		}
	}

	transfers, err := calculator.Solve(nodes)
	if err != nil {
		return calculator.MergeResult{}, err
	}

	persisted, err := s.store.ListConfirmations(ctx, eventID, kind)
	if err != nil {
		return calculator.MergeResult{}, err
	}

	result := calculator.Merge(kind, transfers, persisted, s.opts.Match)
	calculator.ResolvePaymentKeys(result.Suggestions, l.dir)
	return result, nil
}

// GetBalances returns per-participant and per-subgroup positions.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "event_id", req.Msg.EventID)
	start := time.Now()

	unlock := s.locks.RLock(req.Msg.EventID)
	defer unlock()

	l, err := s.loadLedger(ctx, req.Msg.EventID)
	if err != nil {
		return nil, s.fail("balances", start, req.Msg.EventID, err)
	}
	_, groups, err := calculator.Aggregate(l.balances, l.snapshot.Subgroups, l.dir)
	if err != nil {
		return nil, s.fail("balances", start, req.Msg.EventID, err)
	}

	resp := &api.GetBalancesResponse{
		Balances:      make([]api.Balance, len(l.balances)),
		GroupBalances: make([]api.GroupBalance, len(groups)),
	}
	for i, b := range l.balances {
		resp.Balances[i] = toAPIBalance(b, l.dir)
	}
	for i, g := range groups {
		resp.GroupBalances[i] = toAPIGroupBalance(g)
	}

	s.metrics.ObserveComputation("balances", metrics.OutcomeOK, time.Since(start))
	slog.Info("GetBalances successful",
		"event_id", req.Msg.EventID,
		"balances_count", len(resp.Balances),
		"groups_count", len(resp.GroupBalances),
	)
	return connect.NewResponse(resp), nil
}

// GetSuggestions returns the transfers that settle the event, with the
// confirmation status of each.
func (s *SettlementService) GetSuggestions(ctx context.Context, req *connect.Request[api.GetSuggestionsRequest]) (*connect.Response[api.GetSuggestionsResponse], error) {
	slog.Info("GetSuggestions request received", "event_id", req.Msg.EventID, "kind", req.Msg.Kind)
	start := time.Now()

	kind, err := parseSuggestionKind(req.Msg.Kind)
	if err != nil {
		return nil, invalidArgument(err)
	}

	unlock := s.locks.RLock(req.Msg.EventID)
	defer unlock()

	result, err := s.suggest(ctx, req.Msg.EventID, kind)
	if err != nil {
		return nil, s.fail(kind.String(), start, req.Msg.EventID, err)
	}
	s.prune(ctx, req.Msg.EventID, result.Stale)

	resp := &api.GetSuggestionsResponse{Suggestions: make([]api.Suggestion, len(result.Suggestions))}
	amounts := make([]money.Cents, len(result.Suggestions))
	for i, sg := range result.Suggestions {
		resp.Suggestions[i] = toAPISuggestion(sg)
		amounts[i] = sg.Amount
	}
	total := money.Sum(amounts...)
	resp.Total = int64(total)
	resp.TotalDisplay = total.String()

	s.metrics.ObserveComputation(kind.String(), metrics.OutcomeOK, time.Since(start))
	s.metrics.ObserveTransfers(kind.String(), len(result.Suggestions))
	slog.Info("GetSuggestions successful",
		"event_id", req.Msg.EventID,
		"kind", kind,
		"suggestions_count", len(resp.Suggestions),
		"stale_count", len(result.Stale),
	)
	return connect.NewResponse(resp), nil
}

// MarkSuggestionPaid records that the debtor paid. Repeating the call is a no-op.
func (s *SettlementService) MarkSuggestionPaid(ctx context.Context, req *connect.Request[api.MarkSuggestionPaidRequest]) (*connect.Response[api.SuggestionResponse], error) {
	slog.Info("MarkSuggestionPaid request received", "event_id", req.Msg.EventID, "from", req.Msg.From, "to", req.Msg.To)

	return s.mark(ctx, req.Msg.SuggestionRef, "paid", func(sg calculator.Suggestion, actor string, at int64) (*models.Confirmation, error) {
		return s.store.MarkPaid(ctx, &models.Confirmation{
			EventID: req.Msg.EventID,
			Key:     sg.Key,
			Amount:  sg.Amount,
			PaidBy:  actor,
			PaidAt:  at,
		})
	})
}

// ConfirmSuggestion records that the creditor received the money. It
// implies paid.
func (s *SettlementService) ConfirmSuggestion(ctx context.Context, req *connect.Request[api.ConfirmSuggestionRequest]) (*connect.Response[api.SuggestionResponse], error) {
	slog.Info("ConfirmSuggestion request received", "event_id", req.Msg.EventID, "from", req.Msg.From, "to", req.Msg.To)

	return s.mark(ctx, req.Msg.SuggestionRef, "confirmed", func(sg calculator.Suggestion, actor string, at int64) (*models.Confirmation, error) {
		return s.store.MarkConfirmed(ctx, &models.Confirmation{
			EventID:     req.Msg.EventID,
			Key:         sg.Key,
			Amount:      sg.Amount,
			ConfirmedBy: actor,
			ConfirmedAt: at,
		})
	})
}

// ClearSuggestionStatus drops any paid or confirmed mark. Clearing an
// unmarked suggestion succeeds.
func (s *SettlementService) ClearSuggestionStatus(ctx context.Context, req *connect.Request[api.ClearSuggestionStatusRequest]) (*connect.Response[api.SuggestionResponse], error) {
	slog.Info("ClearSuggestionStatus request received", "event_id", req.Msg.EventID, "from", req.Msg.From, "to", req.Msg.To)

	return s.mark(ctx, req.Msg.SuggestionRef, "cleared", func(sg calculator.Suggestion, _ string, _ int64) (*models.Confirmation, error) {
		if err := s.store.DeleteConfirmations(ctx, req.Msg.EventID, []models.SuggestionKey{sg.Key}); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

type markFunc func(sg calculator.Suggestion, actor string, at int64) (*models.Confirmation, error)

// mark applies a status change to a suggestion that exists in the current
// computation, under the event write lock.
func (s *SettlementService) mark(ctx context.Context, ref api.SuggestionRef, action string, apply markFunc) (*connect.Response[api.SuggestionResponse], error) {
	key, err := parseSuggestionRef(ref)
	if err != nil {
		return nil, invalidArgument(err)
	}
	actor := middleware.GetUserID(ctx)
	if actor == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("no actor identity on request"))
	}

	unlock := s.locks.Lock(ref.EventID)
	defer unlock()

	start := time.Now()
	result, err := s.suggest(ctx, ref.EventID, key.Kind)
	if err != nil {
		return nil, s.fail(key.Kind.String(), start, ref.EventID, err)
	}

	sg, ok := calculator.Find(result.Suggestions, key)
	if !ok {
		slog.Warn("Suggestion not found", "event_id", ref.EventID, "key", key)
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("no current suggestion %s in event %d", key, ref.EventID))
	}

	// Under reset a status recorded for another amount no longer applies; drop
	// it so the new mark starts fresh.
	if s.opts.Match.Policy == calculator.StatusPolicyReset && slices.Contains(result.Stale, key) {
		if err := s.store.DeleteConfirmations(ctx, ref.EventID, []models.SuggestionKey{key}); err != nil {
			slog.Error("Dropping drifted status failed", "event_id", ref.EventID, "key", key, "error", err)
			return nil, toConnectError(err)
		}
	}

	conf, err := apply(sg, actor, s.now().Unix())
	if err != nil {
		slog.Error("Status change failed", "event_id", ref.EventID, "key", key, "action", action, "error", err)
		return nil, toConnectError(err)
	}
	if conf != nil {
		applyStatus(&sg, conf)
	} else {
		clearStatus(&sg)
	}

	s.metrics.IncMark(action)
	slog.Info("Suggestion status changed",
		"event_id", ref.EventID,
		"key", key,
		"status", sg.Status,
		"actor", actor,
	)
	return connect.NewResponse(&api.SuggestionResponse{Suggestion: toAPISuggestion(sg)}), nil
}

// prune discards stale confirmations. Failures are logged, not returned:
// the computed suggestions are already correct without the cleanup.
func (s *SettlementService) prune(ctx context.Context, eventID int64, stale []models.SuggestionKey) {
	if !s.opts.PruneStale || len(stale) == 0 {
		return
	}
	if err := s.store.DeleteConfirmations(ctx, eventID, stale); err != nil {
		slog.Warn("Pruning stale confirmations failed", "event_id", eventID, "error", err)
		return
	}
	s.metrics.AddPruned(len(stale))
	slog.Debug("Pruned stale confirmations", "event_id", eventID, "count", len(stale))
}

func (s *SettlementService) fail(view string, start time.Time, eventID int64, err error) error {
	outcome := metrics.OutcomeError
	switch {
	case errors.Is(err, calculator.ErrInconsistent):
		outcome = metrics.OutcomeInconsistent
	case errors.Is(err, calculator.ErrUnknownReference), errors.Is(err, calculator.ErrOverlappingSubgroups):
		outcome = metrics.OutcomeFatal
	}
	s.metrics.ObserveComputation(view, outcome, time.Since(start))
	slog.Error("Settlement computation failed", "event_id", eventID, "view", view, "error", err)
	return toConnectError(err)
}

func applyStatus(sg *calculator.Suggestion, conf *models.Confirmation) {
	sg.Status = conf.Status()
	sg.RecordedAmount = conf.Amount
	sg.PaidBy, sg.PaidAt = conf.PaidBy, conf.PaidAt
	sg.ConfirmedBy, sg.ConfirmedAt = conf.ConfirmedBy, conf.ConfirmedAt
}

func clearStatus(sg *calculator.Suggestion) {
	sg.Status = models.StatusUnconfirmed
	sg.RecordedAmount = 0
	sg.PaidBy, sg.PaidAt = "", 0
	sg.ConfirmedBy, sg.ConfirmedAt = "", 0
}
