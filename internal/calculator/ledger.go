package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

// RoundingTolerance is the largest difference between an expense total and the
// sum of its shares that is accepted as a rounding residue.
const RoundingTolerance money.Cents = 1

// Balance is a node's net position within one event.
type Balance struct {
	Node      models.NodeRef
	TotalPaid money.Cents
	TotalOwed money.Cents
	Net       money.Cents // Positive = is owed money, negative = owes money
}

// LedgerOptions tunes ComputeBalances.
type LedgerOptions struct {
	// IncludeIdle returns participants without any payment or share with a
	// zero balance. When false they are omitted.
	IncludeIdle bool
}

// ComputeBalances aggregates expenses into per-participant balances.
//
// Algorithm:
//   - For each expense: payer is credited with the amount distributed
//   - For each participation: the participant owes its share
//   - net = total_paid - total_owed
//
// Every payer and participant must be in participants, otherwise a
// *FatalDataError is returned. An expense whose shares differ from its total
// by more than RoundingTolerance yields a *ConsistencyError. Within tolerance
// the payer is credited with the sum of shares so the event still balances to
// zero. TotalPaid then differs by that residue from what the payer actually
// spent. Amounts outside [0, money.MaxAmount] are also a *ConsistencyError.
//
// The result is sorted by participant id.
func ComputeBalances(expenses []models.Expense, participants []models.Participant, opts LedgerOptions) ([]Balance, error) {
	balances := make(map[int64]*Balance, len(participants))
	for _, p := range participants {
		balances[p.ID] = &Balance{Node: models.ParticipantNode(p.ID)}
	}
	active := make(map[int64]bool)

	for i := range expenses {
		expense := &expenses[i]

		payer, ok := balances[expense.PayerID]
		if !ok {
			return nil, unknownParticipant(expense.PayerID, fmt.Sprintf("expense %d payer", expense.ID))
		}

		if err := checkRange(expense); err != nil {
			return nil, err
		}

		shares := expense.ShareSum()
		if diff := (shares - expense.Total).Abs(); diff > RoundingTolerance {
			return nil, &ConsistencyError{
				ExpenseID: expense.ID,
				Reason:    fmt.Sprintf("shares sum to %s but total is %s", shares, expense.Total),
			}
		}

		for _, part := range expense.Participations {
			if part.ExpenseID != 0 && part.ExpenseID != expense.ID {
				return nil, &FatalDataError{
					Kind:   "expense",
					ID:     part.ExpenseID,
					Source: fmt.Sprintf("participation listed under expense %d", expense.ID),
					Err:    ErrUnknownReference,
				}
			}
			owner, ok := balances[part.ParticipantID]
			if !ok {
				return nil, unknownParticipant(part.ParticipantID, fmt.Sprintf("expense %d participation", expense.ID))
			}
			owner.TotalOwed += part.Share
			active[part.ParticipantID] = true
		}

		payer.TotalPaid += shares
		active[expense.PayerID] = true
	}

	result := make([]Balance, 0, len(balances))
	var sum money.Cents
	for id, bal := range balances {
		bal.Net = bal.TotalPaid - bal.TotalOwed
		sum += bal.Net
		if !opts.IncludeIdle && !active[id] {
			continue
		}
		result = append(result, *bal)
	}
	if sum != 0 {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("balances sum to %s", sum)}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Node.Less(result[j].Node)
	})
	return result, nil
}

// checkRange keeps sums of amounts clear of int64 overflow.
func checkRange(expense *models.Expense) error {
	if expense.Total < 0 || expense.Total > money.MaxAmount {
		return &ConsistencyError{ExpenseID: expense.ID, Reason: fmt.Sprintf("total %s out of range", expense.Total)}
	}
	for _, part := range expense.Participations {
		if part.Share < 0 || part.Share > money.MaxAmount {
			return &ConsistencyError{
				ExpenseID: expense.ID,
				Reason:    fmt.Sprintf("share %s of participant %d out of range", part.Share, part.ParticipantID),
			}
		}
	}
	return nil
}

// Nodes converts individual balances into solver input.
func Nodes(balances []Balance) []Node {
	nodes := make([]Node, 0, len(balances))
	for _, b := range balances {
		nodes = append(nodes, Node{Ref: b.Node, Net: b.Net})
	}
	return nodes
}
