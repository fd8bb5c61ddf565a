package calculator

import (
	"errors"
	"testing"

	"github.com/mmynk/racha/internal/models"
)

func TestAggregate_FamilyAndIndividual(t *testing.T) {
	// Alice pays 90 split equally; Alice and Bob form a family.
	participants := people(3)
	family := models.Subgroup{ID: 1, EventID: 1, Name: "Family", Members: []int64{2, 1}}
	dir := NewDirectory(participants, []models.Subgroup{family})

	balances, err := ComputeBalances([]models.Expense{equalExpense(1, 1, 9000, 1, 2, 3)}, participants, LedgerOptions{})
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}

	nodes, groups, err := Aggregate(balances, []models.Subgroup{family}, dir)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %+v", len(nodes), nodes)
	}
	if nodes[0].Ref != p(3) || nodes[0].Net != -3000 {
		t.Errorf("individual node = %+v, want Charlie at -3000", nodes[0])
	}
	if nodes[1].Ref != g(1) || nodes[1].Net != 3000 {
		t.Errorf("group node = %+v, want Family at +3000", nodes[1])
	}

	if len(groups) != 1 {
		t.Fatalf("got %d group balances, want 1", len(groups))
	}
	fam := groups[0]
	if fam.TotalPaid != 9000 || fam.TotalOwed != 6000 || fam.Net != 3000 {
		t.Errorf("Family = %+v, want paid 9000 owed 6000 net 3000", fam)
	}
	if fam.Members[0] != 1 || fam.Members[1] != 2 {
		t.Errorf("members not sorted: %v", fam.Members)
	}

	transfers, err := Solve(nodes)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if len(transfers) != 1 {
		t.Fatalf("got %d transfers, want a single one: %+v", len(transfers), transfers)
	}
	want := Transfer{From: p(3), To: g(1), Amount: 3000}
	if transfers[0] != want {
		t.Errorf("transfer = %+v, want %+v", transfers[0], want)
	}
}

func TestAggregate_ZeroSubgroupsAreDropped(t *testing.T) {
	participants := people(4)
	subgroups := []models.Subgroup{
		{ID: 1, Name: "Empty"},
		{ID: 2, Name: "Idle", Members: []int64{4}},
	}
	dir := NewDirectory(participants, subgroups)
	balances, err := ComputeBalances([]models.Expense{equalExpense(1, 1, 1000, 1, 2)}, participants, LedgerOptions{})
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}

	nodes, groups, err := Aggregate(balances, subgroups, dir)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	for _, n := range nodes {
		if n.Ref.Kind == models.NodeSubgroup {
			t.Errorf("zero subgroup %s reached the solver input", n.Ref)
		}
	}
	if len(groups) != 2 {
		t.Errorf("got %d group balances, want 2", len(groups))
	}
	for _, gb := range groups {
		if gb.Net != 0 {
			t.Errorf("%s net = %d, want 0", gb.Name, gb.Net)
		}
	}
}

func TestAggregate_WholeEventInOneSubgroup(t *testing.T) {
	participants := people(2)
	all := models.Subgroup{ID: 3, Name: "Couple", Members: []int64{1, 2}}
	dir := NewDirectory(participants, []models.Subgroup{all})
	balances, err := ComputeBalances([]models.Expense{equalExpense(1, 1, 1000, 1, 2)}, participants, LedgerOptions{})
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}

	nodes, _, err := Aggregate(balances, []models.Subgroup{all}, dir)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	transfers, err := Solve(nodes)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected no self-transfers, got %+v", transfers)
	}
}

func TestAggregate_Errors(t *testing.T) {
	participants := people(3)
	tests := []struct {
		name      string
		subgroups []models.Subgroup
		want      error
	}{
		{
			name:      "unknown member",
			subgroups: []models.Subgroup{{ID: 1, Members: []int64{1, 42}}},
			want:      ErrUnknownReference,
		},
		{
			name: "member of two subgroups",
			subgroups: []models.Subgroup{
				{ID: 1, Members: []int64{1, 2}},
				{ID: 2, Members: []int64{2, 3}},
			},
			want: ErrOverlappingSubgroups,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := NewDirectory(participants, tt.subgroups)
			_, _, err := Aggregate(nil, tt.subgroups, dir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Aggregate() error = %v, want %v", err, tt.want)
			}
			var fe *FatalDataError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FatalDataError, got %T", err)
			}
		})
	}
}
