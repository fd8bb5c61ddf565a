package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/racha/internal/models"
	"github.com/mmynk/racha/internal/money"
)

// GroupBalance is the combined position of a subgroup.
type GroupBalance struct {
	SubgroupID int64
	Name       string
	Members    []int64
	TotalPaid  money.Cents
	TotalOwed  money.Cents
	Net        money.Cents
}

// Aggregate collapses subgroup members into one node per subgroup.
//
// Participants outside any subgroup pass through unchanged. Subgroups whose
// combined net is zero are reported in the group balances but left out of the
// returned nodes, so the solver never sees a self-transfer.
//
// Members must exist in dir. A member that is missing from balances (an idle
// participant omitted by the ledger) contributes zero.
func Aggregate(balances []Balance, subgroups []models.Subgroup, dir *Directory) ([]Node, []GroupBalance, error) {
	owner := make(map[int64]int64)
	for _, g := range subgroups {
		for _, member := range g.Members {
			if _, ok := dir.Participant(member); !ok {
				return nil, nil, unknownParticipant(member, fmt.Sprintf("subgroup %d members", g.ID))
			}
			if other, taken := owner[member]; taken && other != g.ID {
				return nil, nil, &FatalDataError{
					Kind:   "participant",
					ID:     member,
					Source: fmt.Sprintf("subgroups %d and %d", other, g.ID),
					Err:    ErrOverlappingSubgroups,
				}
			}
			owner[member] = g.ID
		}
	}

	byParticipant := make(map[int64]Balance, len(balances))
	nodes := make([]Node, 0, len(balances)+len(subgroups))
	for _, b := range balances {
		if b.Node.Kind != models.NodeParticipant {
			return nil, nil, fmt.Errorf("aggregate expects participant balances, got %s", b.Node)
		}
		byParticipant[b.Node.ID] = b
		if _, grouped := owner[b.Node.ID]; !grouped {
			nodes = append(nodes, Node{Ref: b.Node, Net: b.Net})
		}
	}

	groups := make([]GroupBalance, 0, len(subgroups))
	for _, g := range subgroups {
		gb := GroupBalance{
			SubgroupID: g.ID,
			Name:       g.Name,
			Members:    append([]int64(nil), g.Members...),
		}
		sort.Slice(gb.Members, func(i, j int) bool { return gb.Members[i] < gb.Members[j] })
		for _, member := range gb.Members {
			b := byParticipant[member]
			gb.TotalPaid += b.TotalPaid
			gb.TotalOwed += b.TotalOwed
			gb.Net += b.Net
		}
		groups = append(groups, gb)
		if gb.Net != 0 {
			nodes = append(nodes, Node{Ref: models.SubgroupNode(g.ID), Net: gb.Net})
		}
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Ref.Less(nodes[j].Ref) })
	sort.Slice(groups, func(i, j int) bool { return groups[i].SubgroupID < groups[j].SubgroupID })
	return nodes, groups, nil
}
