// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON; amounts are decimal strings.
package api

import "github.com/shopspring/decimal"

// Group is a set of members sharing expenses.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// Balance is one member's position in a currency ledger.
type Balance struct {
	Member string          `json:"member"`
	Paid   decimal.Decimal `json:"paid"`
	Owed   decimal.Decimal `json:"owed"`
	Net    decimal.Decimal `json:"net"`
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	Debtor   string          `json:"debtor"`
	Creditor string          `json:"creditor"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Integrity reports whether net balances in a currency sum to zero.
type Integrity struct {
	Total   decimal.Decimal `json:"total"`
	Corrupt bool            `json:"corrupt"`
}

// Share is a member's portion of a payment or split.
type Share struct {
	Member string          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Kind        string          `json:"kind"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   int64           `json:"created_at"`
	Payments    []Share         `json:"payments"`
	Splits      []Share         `json:"splits"`
}

// Outstanding is a non-zero balance blocking a membership change.
type Outstanding struct {
	Member   string          `json:"member"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// CurrencySummary is the state of one currency ledger. Transfers is empty
// when the ledger is corrupt.
type CurrencySummary struct {
	Currency  string     `json:"currency"`
	Balances  []Balance  `json:"balances"`
	Integrity Integrity  `json:"integrity"`
	Transfers []Transfer `json:"transfers"`
}

// LedgerService messages.

type NetBalancesRequest struct {
	GroupID  string `json:"group_id"`
	Currency string `json:"currency,omitempty"`
}

type NetBalancesResponse struct {
	Currency string    `json:"currency"`
	Balances []Balance `json:"balances"`
}

type IntegrityRequest struct {
	GroupID  string `json:"group_id"`
	Currency string `json:"currency,omitempty"`
}

type IntegrityResponse struct {
	Currency  string    `json:"currency"`
	Integrity Integrity `json:"integrity"`
}

type SimplifyRequest struct {
	GroupID  string `json:"group_id"`
	Currency string `json:"currency,omitempty"`
}

// SimplifyResponse carries no transfers when Integrity reports corruption.
type SimplifyResponse struct {
	Currency  string     `json:"currency"`
	Transfers []Transfer `json:"transfers"`
	Integrity Integrity  `json:"integrity"`
}

// SettleUpRequest settles the caller's debt to Target. The amount is always
// recomputed on the server.
type SettleUpRequest struct {
	GroupID  string `json:"group_id"`
	Target   string `json:"target"`
	Currency string `json:"currency,omitempty"`
}

type SettleUpResponse struct {
	Expense *Expense        `json:"expense"`
	Amount  decimal.Decimal `json:"amount"`
}

type CanRemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	Member  string `json:"member"`
}

type CanRemoveMemberResponse struct {
	Allowed     bool          `json:"allowed"`
	Outstanding []Outstanding `json:"outstanding"`
}

type CanDeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type CanDeleteGroupResponse struct {
	Allowed     bool          `json:"allowed"`
	Outstanding []Outstanding `json:"outstanding"`
}

type GetSummaryRequest struct {
	GroupID string `json:"group_id"`
}

type GetSummaryResponse struct {
	Group      *Group            `json:"group"`
	Currencies []CurrencySummary `json:"currencies"`
}

// ExpenseFields are the editable fields of an expense. SplitMode is EQUAL or
// EXACT, PaymentMode is SINGLE or MULTIPLE.
type ExpenseFields struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	SplitMode    string          `json:"split_mode"`
	Participants []string        `json:"participants,omitempty"`
	Splits       []Share         `json:"splits,omitempty"`
	PaymentMode  string          `json:"payment_mode"`
	Payer        string          `json:"payer,omitempty"`
	Payments     []Share         `json:"payments,omitempty"`
}

type AddExpenseRequest struct {
	GroupID string `json:"group_id"`
	ExpenseFields
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type EditExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
	ExpenseFields
}

type EditExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID  string `json:"group_id"`
	Currency string `json:"currency,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID string   `json:"group_id"`
	Members []string `json:"members"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"group_id"`
}

type LeaveGroupResponse struct{}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	Member  string `json:"member"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// NotificationService messages.

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unread_only,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}

type MarkReadRequest struct {
	NotificationID string `json:"notification_id"`
}

type MarkReadResponse struct{}

type MarkAllReadRequest struct{}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
