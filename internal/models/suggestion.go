package models

import (
	"fmt"

	"github.com/mmynk/racha/internal/money"
)

// NodeKind tells whether a settlement node is a participant or a subgroup.
type NodeKind int

const (
	NodeParticipant NodeKind = iota + 1
	NodeSubgroup
)

// String returns the wire name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeParticipant:
		return "participant"
	case NodeSubgroup:
		return "subgroup"
	default:
		return "unknown"
	}
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "participant":
		return NodeParticipant, nil
	case "subgroup":
		return NodeSubgroup, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// NodeRef identifies a settlement node.
type NodeRef struct {
	Kind NodeKind
	ID   int64
}

// ParticipantNode returns a NodeRef for a participant id.
func ParticipantNode(id int64) NodeRef { return NodeRef{Kind: NodeParticipant, ID: id} }

// SubgroupNode returns a NodeRef for a subgroup id.
func SubgroupNode(id int64) NodeRef { return NodeRef{Kind: NodeSubgroup, ID: id} }

// Less orders participants before subgroups, then by ascending id.
func (r NodeRef) Less(other NodeRef) bool {
	if r.Kind != other.Kind {
		return r.Kind < other.Kind
	}
	return r.ID < other.ID
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// SuggestionKind is the settlement mode that produced a suggestion.
type SuggestionKind int

const (
	// SuggestionIndividual settles every participant separately.
	SuggestionIndividual SuggestionKind = iota + 1
	// SuggestionGroup nets subgroups into single nodes first.
	SuggestionGroup
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestionIndividual:
		return "INDIVIDUAL"
	case SuggestionGroup:
		return "GROUP"
	default:
		return "UNKNOWN"
	}
}

// ParseSuggestionKind is the inverse of SuggestionKind.String.
func ParseSuggestionKind(s string) (SuggestionKind, error) {
	switch s {
	case "INDIVIDUAL":
		return SuggestionIndividual, nil
	case "GROUP":
		return SuggestionGroup, nil
	default:
		return 0, fmt.Errorf("unknown suggestion kind %q", s)
	}
}

// SuggestionKey is the stable identity of a suggested transfer.
// It survives recomputation as long as the same pair of nodes stays
// unsettled in the same direction.
type SuggestionKey struct {
	Kind SuggestionKind
	From NodeRef
	To   NodeRef
}

func (k SuggestionKey) String() string {
	return fmt.Sprintf("%s/%s->%s", k.Kind, k.From, k.To)
}

// SuggestionStatus is the confirmation state of a suggestion.
type SuggestionStatus int

const (
	StatusUnconfirmed SuggestionStatus = iota
	StatusPaid
	StatusConfirmed
)

func (s SuggestionStatus) String() string {
	switch s {
	case StatusPaid:
		return "paid"
	case StatusConfirmed:
		return "confirmed"
	default:
		return "unconfirmed"
	}
}

// Confirmation is the durable status attached to a suggestion key.
type Confirmation struct {
	EventID int64
	Key     SuggestionKey

	// Amount is the suggestion amount at the time it was last marked.
	Amount money.Cents

	Paid   bool
	PaidBy string
	PaidAt int64

	Confirmed   bool
	ConfirmedBy string
	ConfirmedAt int64
}

// Status derives the suggestion status from the flags.
func (c *Confirmation) Status() SuggestionStatus {
	switch {
	case c.Confirmed:
		return StatusConfirmed
	case c.Paid:
		return StatusPaid
	default:
		return StatusUnconfirmed
	}
}
