package calculator

import (
	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

// people returns participants with ids 1..n named Alice, Bob, Charlie, ...
func people(n int) []models.Participant {
	names := []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Heidi"}
	out := make([]models.Participant, n)
	for i := range out {
		out[i] = models.Participant{ID: int64(i + 1), Name: names[i%len(names)]}
	}
	return out
}

// equalExpense splits total evenly among ids; the first ids absorb the remainder.
func equalExpense(id, payer int64, total money.Cents, ids ...int64) models.Expense {
	e := models.Expense{ID: id, EventID: 1, Total: total, PayerID: payer}
	share := total / money.Cents(len(ids))
	rest := total - share*money.Cents(len(ids))
	for i, pid := range ids {
		s := share
		if money.Cents(i) < rest {
			s++
		}
		e.Participations = append(e.Participations, models.Participation{ExpenseID: id, ParticipantID: pid, Share: s})
	}
	return e
}

func p(id int64) models.NodeRef { return models.ParticipantNode(id) }
func g(id int64) models.NodeRef { return models.SubgroupNode(id) }

func netOf(balances []Balance, ref models.NodeRef) (money.Cents, bool) {
	for _, b := range balances {
		if b.Node == ref {
			return b.Net, true
		}
	}
	return 0, false
}

// apply settles the transfers against the nodes and returns the resulting nets.
func apply(nodes []Node, transfers []Transfer) map[models.NodeRef]money.Cents {
	nets := make(map[models.NodeRef]money.Cents, len(nodes))
	for _, n := range nodes {
		nets[n.Ref] = n.Net
	}
	for _, t := range transfers {
		nets[t.From] += t.Amount
		nets[t.To] -= t.Amount
	}
	return nets
}
