package models

// Participant is a person known to the directory.
type Participant struct {
	// ID is the unique identifier for the participant.
	ID int64

	// Name is the display name.
	Name string

	// PaymentKey is the participant's preferred Pix key, if any.
	PaymentKey string

	// CreatedAt is the Unix timestamp when the participant was created.
	CreatedAt int64
}
