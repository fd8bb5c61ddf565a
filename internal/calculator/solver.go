package calculator

import (
	"container/heap"
	"fmt"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

// Node is a settlement participant: an individual or a netted subgroup.
type Node struct {
	Ref models.NodeRef
	Net money.Cents
}

// Transfer is a payment that moves Amount from a debtor to a creditor.
type Transfer struct {
	From   models.NodeRef // Who pays
	To     models.NodeRef // Who receives
	Amount money.Cents
}

// Solve simplifies debts into at most n-1 transfers for n nonzero nodes.
//
// Greedy matching: the creditor owed the most is paid by the debtor owing the
// most, for the smaller of the two amounts, until every node is at zero. Ties
// are broken by ascending node ref so identical input always yields an
// identical transfer list.
//
// Nodes must sum to zero. A single nonzero node, or any imbalance, is an
// upstream bug and returns a *ConsistencyError.
func Solve(nodes []Node) ([]Transfer, error) {
	var creditors, debtors nodeHeap
	var sum money.Cents
	seen := make(map[models.NodeRef]bool, len(nodes))

	for _, n := range nodes {
		if seen[n.Ref] {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("node %s listed twice", n.Ref)}
		}
		seen[n.Ref] = true
		sum += n.Net
		switch {
		case n.Net > 0:
			creditors = append(creditors, n)
		case n.Net < 0:
			debtors = append(debtors, n)
		}
	}

	nonzero := len(creditors) + len(debtors)
	if nonzero == 0 {
		return []Transfer{}, nil
	}
	if nonzero == 1 {
		return nil, &ConsistencyError{Reason: "exactly one node has a nonzero balance"}
	}
	if sum != 0 {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("nodes sum to %s", sum)}
	}

	heap.Init(&creditors)
	heap.Init(&debtors)

	transfers := make([]Transfer, 0, nonzero-1)
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(&creditors).(Node)
		debtor := heap.Pop(&debtors).(Node)

		amount := min(creditor.Net, -debtor.Net)
		transfers = append(transfers, Transfer{From: debtor.Ref, To: creditor.Ref, Amount: amount})

		creditor.Net -= amount
		debtor.Net += amount
		if creditor.Net > 0 {
			heap.Push(&creditors, creditor)
		}
		if debtor.Net < 0 {
			heap.Push(&debtors, debtor)
		}
	}

	if creditors.Len() > 0 || debtors.Len() > 0 {
		return nil, &ConsistencyError{Reason: "unmatched balance left after settlement"}
	}
	return transfers, nil
}

// nodeHeap pops the node with the largest absolute net first, lowest ref on ties.
type nodeHeap []Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	ai, aj := h[i].Net.Abs(), h[j].Net.Abs()
	if ai != aj {
		return ai > aj
	}
	return h[i].Ref.Less(h[j].Ref)
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
