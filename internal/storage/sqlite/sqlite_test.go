package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
	"github.com/mmynk/racha/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "racha-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createParticipants(t *testing.T, store *SQLiteStore, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		p := &models.Participant{Name: name}
		if err := store.CreateParticipant(context.Background(), p); err != nil {
			t.Fatalf("CreateParticipant(%s) failed: %v", name, err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := createParticipants(t, store, "Alice", "Bob", "Carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	event := &models.Event{Name: "Beach trip", Members: []int64{alice, bob, carol}}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	t.Run("CreateParticipant stores payment key", func(t *testing.T) {
		p := &models.Participant{Name: "Dave", PaymentKey: "dave@pix"}
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}
		if p.ID == 0 {
			t.Error("Expected participant ID to be generated")
		}
		if p.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetParticipant(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if got.PaymentKey != "dave@pix" {
			t.Errorf("PaymentKey mismatch: got %q, want %q", got.PaymentKey, "dave@pix")
		}
	})

	t.Run("GetParticipant returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetParticipant(ctx, 9999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetEvent returns members in id order", func(t *testing.T) {
		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Name != "Beach trip" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
		want := []int64{alice, bob, carol}
		if len(got.Members) != len(want) {
			t.Fatalf("Members count mismatch: got %d, want %d", len(got.Members), len(want))
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("Member %d: got %d, want %d", i, got.Members[i], want[i])
			}
		}
	})

	t.Run("AddEventMembers ignores existing members", func(t *testing.T) {
		extra := createParticipants(t, store, "Eve")[0]
		if err := store.AddEventMembers(ctx, event.ID, []int64{alice, extra}); err != nil {
			t.Fatalf("AddEventMembers failed: %v", err)
		}
		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if len(got.Members) != 4 {
			t.Errorf("Expected 4 members, got %d", len(got.Members))
		}
	})

	t.Run("AddEventMembers rejects unknown participant", func(t *testing.T) {
		err := store.AddEventMembers(ctx, event.ID, []int64{4242})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := createParticipants(t, store, "Alice", "Bob")
	alice, bob := ids[0], ids[1]
	event := &models.Event{Name: "Dinner", Members: ids}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	expense := &models.Expense{
		EventID:     event.ID,
		Description: "Pizza",
		Total:       3000,
		PayerID:     alice,
		Participations: []models.Participation{
			{ParticipantID: alice, Share: 1500},
			{ParticipantID: bob, Share: 1000},
			{ParticipantID: bob, Share: 500},
		},
	}

	t.Run("CreateExpense keeps repeated shares", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == 0 {
			t.Fatal("Expected expense ID to be generated")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Total != 3000 {
			t.Errorf("Total mismatch: got %d, want 3000", got.Total)
		}
		if len(got.Participations) != 3 {
			t.Errorf("Expected 3 participations, got %d", len(got.Participations))
		}
		if got.ShareSum() != got.Total {
			t.Errorf("ShareSum %d != Total %d", got.ShareSum(), got.Total)
		}
	})

	t.Run("CreateExpense rejects unknown event", func(t *testing.T) {
		err := store.CreateExpense(ctx, &models.Expense{EventID: 777, Description: "x", Total: 1, PayerID: alice})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense replaces participations", func(t *testing.T) {
		updated := *expense
		updated.Total = 2000
		updated.PayerID = bob
		updated.Participations = []models.Participation{
			{ParticipantID: alice, Share: 2000},
		}
		if err := store.UpdateExpense(ctx, &updated); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		list, err := store.ListExpenses(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("Expected 1 expense, got %d", len(list))
		}
		if list[0].PayerID != bob || list[0].Total != 2000 {
			t.Errorf("Unexpected expense after update: %+v", list[0])
		}
		if len(list[0].Participations) != 1 || list[0].Participations[0].ParticipantID != alice {
			t.Errorf("Participations not replaced: %+v", list[0].Participations)
		}
	})

	t.Run("UpdateExpense returns ErrNotFound for missing expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: 555, EventID: event.ID, Total: 1, PayerID: alice})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpense removes expense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSubgroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := createParticipants(t, store, "Alice", "Bob", "Carol")
	event := &models.Event{Name: "Trip", Members: ids}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	family := &models.Subgroup{EventID: event.ID, Name: "Family", Members: []int64{ids[1], ids[0]}}
	if err := store.CreateSubgroup(ctx, family); err != nil {
		t.Fatalf("CreateSubgroup failed: %v", err)
	}

	t.Run("GetSubgroup returns sorted members", func(t *testing.T) {
		got, err := store.GetSubgroup(ctx, family.ID)
		if err != nil {
			t.Fatalf("GetSubgroup failed: %v", err)
		}
		if len(got.Members) != 2 || got.Members[0] != ids[0] || got.Members[1] != ids[1] {
			t.Errorf("Unexpected members: %v", got.Members)
		}
	})

	t.Run("CreateSubgroup rejects overlapping member", func(t *testing.T) {
		other := &models.Subgroup{EventID: event.ID, Name: "Friends", Members: []int64{ids[1], ids[2]}}
		err := store.CreateSubgroup(ctx, other)
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("Expected ErrConflict, got %v", err)
		}

		snap, err := store.LoadEventSnapshot(ctx, event.ID)
		if err != nil {
			t.Fatalf("LoadEventSnapshot failed: %v", err)
		}
		if len(snap.Subgroups) != 1 {
			t.Errorf("Failed subgroup insert was not rolled back: %d subgroups", len(snap.Subgroups))
		}
	})

	t.Run("DeleteSubgroup frees members", func(t *testing.T) {
		if err := store.DeleteSubgroup(ctx, family.ID); err != nil {
			t.Fatalf("DeleteSubgroup failed: %v", err)
		}
		again := &models.Subgroup{EventID: event.ID, Name: "Friends", Members: []int64{ids[1], ids[2]}}
		if err := store.CreateSubgroup(ctx, again); err != nil {
			t.Errorf("CreateSubgroup after delete failed: %v", err)
		}
	})
}

func TestLoadEventSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := createParticipants(t, store, "Alice", "Bob")
	event := &models.Event{Name: "Snapshot", Members: ids}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	for _, total := range []money.Cents{1000, 2500} {
		err := store.CreateExpense(ctx, &models.Expense{
			EventID:        event.ID,
			Description:    "Taxi",
			Total:          total,
			PayerID:        ids[0],
			Participations: []models.Participation{{ParticipantID: ids[1], Share: total}},
		})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	snap, err := store.LoadEventSnapshot(ctx, event.ID)
	if err != nil {
		t.Fatalf("LoadEventSnapshot failed: %v", err)
	}
	if len(snap.Participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(snap.Participants))
	}
	if len(snap.Expenses) != 2 {
		t.Fatalf("Expected 2 expenses, got %d", len(snap.Expenses))
	}
	for _, e := range snap.Expenses {
		if len(e.Participations) != 1 {
			t.Errorf("Expense %d: expected 1 participation, got %d", e.ID, len(e.Participations))
		}
	}

	if _, err := store.LoadEventSnapshot(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing event, got %v", err)
	}
}

func TestConfirmations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := createParticipants(t, store, "Alice", "Bob")
	event := &models.Event{Name: "Confirm", Members: ids}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	key := models.SuggestionKey{
		Kind: models.SuggestionIndividual,
		From: models.ParticipantNode(ids[1]),
		To:   models.ParticipantNode(ids[0]),
	}

	t.Run("MarkPaid is idempotent for the same amount", func(t *testing.T) {
		first, err := store.MarkPaid(ctx, &models.Confirmation{
			EventID: event.ID, Key: key, Amount: 1500, PaidBy: "bob", PaidAt: 100,
		})
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if first.Status() != models.StatusPaid {
			t.Errorf("Expected paid, got %s", first.Status())
		}

		second, err := store.MarkPaid(ctx, &models.Confirmation{
			EventID: event.ID, Key: key, Amount: 1500, PaidBy: "alice", PaidAt: 200,
		})
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if second.PaidBy != "bob" || second.PaidAt != 100 {
			t.Errorf("Repeat mark changed stamps: by=%s at=%d", second.PaidBy, second.PaidAt)
		}
	})

	t.Run("MarkConfirmed keeps paid stamps", func(t *testing.T) {
		c, err := store.MarkConfirmed(ctx, &models.Confirmation{
			EventID: event.ID, Key: key, Amount: 1500, ConfirmedBy: "alice", ConfirmedAt: 300,
		})
		if err != nil {
			t.Fatalf("MarkConfirmed failed: %v", err)
		}
		if c.Status() != models.StatusConfirmed {
			t.Errorf("Expected confirmed, got %s", c.Status())
		}
		if c.PaidBy != "bob" || c.ConfirmedBy != "alice" || c.ConfirmedAt != 300 {
			t.Errorf("Unexpected stamps: %+v", c)
		}
	})

	t.Run("MarkPaid with a new amount keeps the confirmation", func(t *testing.T) {
		c, err := store.MarkPaid(ctx, &models.Confirmation{
			EventID: event.ID, Key: key, Amount: 1800, PaidBy: "alice", PaidAt: 400,
		})
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if c.Status() != models.StatusConfirmed || c.ConfirmedBy != "alice" || c.ConfirmedAt != 300 {
			t.Errorf("Paid mark downgraded the confirmation: %+v", c)
		}
		if c.Amount != 1800 || c.PaidBy != "bob" || c.PaidAt != 100 {
			t.Errorf("Expected refreshed amount with original stamps, got %+v", c)
		}
	})

	t.Run("MarkConfirmed without prior paid implies paid", func(t *testing.T) {
		reverse := models.SuggestionKey{Kind: models.SuggestionGroup, From: key.To, To: key.From}
		c, err := store.MarkConfirmed(ctx, &models.Confirmation{
			EventID: event.ID, Key: reverse, Amount: 700, ConfirmedBy: "bob", ConfirmedAt: 50,
		})
		if err != nil {
			t.Fatalf("MarkConfirmed failed: %v", err)
		}
		if !c.Paid || c.PaidBy != "bob" {
			t.Errorf("Expected implied paid stamp, got %+v", c)
		}
	})

	t.Run("ListConfirmations filters by kind", func(t *testing.T) {
		individual, err := store.ListConfirmations(ctx, event.ID, models.SuggestionIndividual)
		if err != nil {
			t.Fatalf("ListConfirmations failed: %v", err)
		}
		if len(individual) != 1 {
			t.Fatalf("Expected 1 individual confirmation, got %d", len(individual))
		}
		if _, ok := individual[key]; !ok {
			t.Errorf("Key %v missing from %v", key, individual)
		}

		group, err := store.ListConfirmations(ctx, event.ID, models.SuggestionGroup)
		if err != nil {
			t.Fatalf("ListConfirmations failed: %v", err)
		}
		if len(group) != 1 {
			t.Errorf("Expected 1 group confirmation, got %d", len(group))
		}
	})

	t.Run("DeleteConfirmations removes keys", func(t *testing.T) {
		if err := store.DeleteConfirmations(ctx, event.ID, []models.SuggestionKey{key}); err != nil {
			t.Fatalf("DeleteConfirmations failed: %v", err)
		}
		left, err := store.ListConfirmations(ctx, event.ID, models.SuggestionIndividual)
		if err != nil {
			t.Fatalf("ListConfirmations failed: %v", err)
		}
		if len(left) != 0 {
			t.Errorf("Expected no confirmations, got %d", len(left))
		}
	})
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	got := strings.TrimSpace(extractUp(content))
	if got != "CREATE TABLE a (id INTEGER);" {
		t.Errorf("extractUp = %q", got)
	}
}
