package api

// Amounts are integer minor units (cents). Fields ending in _display carry
// the same amount formatted with two decimals. On requests a _display value
// such as "12.50" is accepted in place of a zero cents field.

// Participant is a directory entry.
type Participant struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PaymentKey string `json:"payment_key,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// Event groups expenses settled together.
type Event struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	ParticipantIDs []int64 `json:"participant_ids"`
	CreatedAt      int64   `json:"created_at"`
}

// Participation is one share of an expense.
type Participation struct {
	ParticipantID int64  `json:"participant_id"`
	Share         int64  `json:"share"`
	ShareDisplay  string `json:"share_display,omitempty"`
}

// Expense is a payment by one participant split across participations.
type Expense struct {
	ID             int64           `json:"id"`
	EventID        int64           `json:"event_id"`
	Description    string          `json:"description"`
	Total          int64           `json:"total"`
	TotalDisplay   string          `json:"total_display,omitempty"`
	PayerID        int64           `json:"payer_id"`
	SpentAt        int64           `json:"spent_at"`
	Participations []Participation `json:"participations"`
}

// Subgroup is a set of event members settling as one unit.
type Subgroup struct {
	ID        int64   `json:"id"`
	EventID   int64   `json:"event_id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

// Node identifies a settlement party: kind is "participant" or "subgroup".
type Node struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Balance is one participant's position in an event.
type Balance struct {
	ParticipantID    int64  `json:"participant_id"`
	Name             string `json:"name"`
	TotalPaid        int64  `json:"total_paid"`
	TotalOwed        int64  `json:"total_owed"`
	Net              int64  `json:"net"`
	TotalPaidDisplay string `json:"total_paid_display"`
	TotalOwedDisplay string `json:"total_owed_display"`
	NetDisplay       string `json:"net_display"`
}

// GroupBalance is the aggregated position of a subgroup.
type GroupBalance struct {
	SubgroupID int64   `json:"subgroup_id"`
	Name       string  `json:"name"`
	MemberIDs  []int64 `json:"member_ids"`
	TotalPaid  int64   `json:"total_paid"`
	TotalOwed  int64   `json:"total_owed"`
	Net        int64   `json:"net"`
	NetDisplay string  `json:"net_display"`
}

// Suggestion is a proposed transfer with its confirmation status.
type Suggestion struct {
	Kind          string `json:"kind"`
	From          Node   `json:"from"`
	FromName      string `json:"from_name"`
	To            Node   `json:"to"`
	ToName        string `json:"to_name"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	PaymentKey    string `json:"payment_key,omitempty"`
	Status        string `json:"status"`
	PaidBy        string `json:"paid_by,omitempty"`
	PaidAt        int64  `json:"paid_at,omitempty"`
	ConfirmedBy   string `json:"confirmed_by,omitempty"`
	ConfirmedAt   int64  `json:"confirmed_at,omitempty"`
}

type CreateParticipantRequest struct {
	Name       string `json:"name"`
	PaymentKey string `json:"payment_key,omitempty"`
}

type CreateParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type CreateEventRequest struct {
	Name           string  `json:"name"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type CreateEventResponse struct {
	Event Event `json:"event"`
}

type AddEventParticipantsRequest struct {
	EventID        int64   `json:"event_id"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type AddEventParticipantsResponse struct {
	Event Event `json:"event"`
}

type CreateExpenseRequest struct {
	EventID        int64           `json:"event_id"`
	Description    string          `json:"description"`
	Total          int64           `json:"total"`
	TotalDisplay   string          `json:"total_display,omitempty"`
	PayerID        int64           `json:"payer_id"`
	SpentAt        int64           `json:"spent_at,omitempty"`
	Participations []Participation `json:"participations"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID      int64           `json:"expense_id"`
	Description    string          `json:"description"`
	Total          int64           `json:"total"`
	TotalDisplay   string          `json:"total_display,omitempty"`
	PayerID        int64           `json:"payer_id"`
	SpentAt        int64           `json:"spent_at,omitempty"`
	Participations []Participation `json:"participations"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID int64 `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	EventID int64 `json:"event_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type CreateSubgroupRequest struct {
	EventID   int64   `json:"event_id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

type CreateSubgroupResponse struct {
	Subgroup Subgroup `json:"subgroup"`
}

type DeleteSubgroupRequest struct {
	SubgroupID int64 `json:"subgroup_id"`
}

type DeleteSubgroupResponse struct{}

type GetBalancesRequest struct {
	EventID int64 `json:"event_id"`
}

type GetBalancesResponse struct {
	Balances      []Balance      `json:"balances"`
	GroupBalances []GroupBalance `json:"group_balances"`
}

type GetSuggestionsRequest struct {
	EventID int64 `json:"event_id"`
	// Kind is "INDIVIDUAL" or "GROUP"; empty means INDIVIDUAL.
	Kind string `json:"kind,omitempty"`
}

type GetSuggestionsResponse struct {
	Suggestions  []Suggestion `json:"suggestions"`
	Total        int64        `json:"total"`
	TotalDisplay string       `json:"total_display"`
}

// SuggestionRef addresses one suggestion by its stable key.
type SuggestionRef struct {
	EventID int64  `json:"event_id"`
	Kind    string `json:"kind"`
	From    Node   `json:"from"`
	To      Node   `json:"to"`
}

type MarkSuggestionPaidRequest struct {
	SuggestionRef
}

type ConfirmSuggestionRequest struct {
	SuggestionRef
}

type ClearSuggestionStatusRequest struct {
	SuggestionRef
}

// SuggestionResponse is returned by every status-changing call.
type SuggestionResponse struct {
	Suggestion Suggestion `json:"suggestion"`
}
