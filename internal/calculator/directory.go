package calculator

import (
	"sort"

	"github.com/mmynk/racha/internal/models"
)

// Directory resolves ids to the participants and subgroups of one event.
type Directory struct {
	participants map[int64]models.Participant
	subgroups    map[int64]models.Subgroup
}

// NewDirectory indexes the given participants and subgroups.
func NewDirectory(participants []models.Participant, subgroups []models.Subgroup) *Directory {
	d := &Directory{
		participants: make(map[int64]models.Participant, len(participants)),
		subgroups:    make(map[int64]models.Subgroup, len(subgroups)),
	}
	for _, p := range participants {
		d.participants[p.ID] = p
	}
	for _, g := range subgroups {
		d.subgroups[g.ID] = g
	}
	return d
}

// Participant looks up a participant by id.
func (d *Directory) Participant(id int64) (models.Participant, bool) {
	p, ok := d.participants[id]
	return p, ok
}

// Subgroup looks up a subgroup by id.
func (d *Directory) Subgroup(id int64) (models.Subgroup, bool) {
	g, ok := d.subgroups[id]
	return g, ok
}

// Name returns the display name of a node, or "" if unknown.
func (d *Directory) Name(ref models.NodeRef) string {
	switch ref.Kind {
	case models.NodeParticipant:
		return d.participants[ref.ID].Name
	case models.NodeSubgroup:
		return d.subgroups[ref.ID].Name
	}
	return ""
}

// PaymentKey returns where money for ref should be sent.
// A subgroup has no key of its own; the key of its lowest-id member that has
// one is used instead.
func (d *Directory) PaymentKey(ref models.NodeRef) string {
	switch ref.Kind {
	case models.NodeParticipant:
		return d.participants[ref.ID].PaymentKey
	case models.NodeSubgroup:
		members := append([]int64(nil), d.subgroups[ref.ID].Members...)
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		for _, id := range members {
			if key := d.participants[id].PaymentKey; key != "" {
				return key
			}
		}
	}
	return ""
}
