package models

// Event groups expenses that are settled together.
type Event struct {
	ID   int64
	Name string

	// Members are the participant ids taking part in the event.
	Members []int64

	CreatedAt int64
}

// Subgroup is a set of event members that settle among themselves off-ledger
// and appear to everyone else as a single node.
// A participant belongs to at most one subgroup per event.
type Subgroup struct {
	ID      int64
	EventID int64
	Name    string
	Members []int64
}
