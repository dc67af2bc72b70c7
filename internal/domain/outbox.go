package domain

import "time"

type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "PENDING"
	IntentStatusConfirmed IntentStatus = "CONFIRMED"
)

// LedgerIntent is a pending ledger write recorded before the rental
// mutation and the ledger append happen as two separate saves. If the
// process dies between the two, the reconciliation sweep replays the
// intent so the ledger entry is not lost.
type LedgerIntent struct {
	ID          string       `json:"id"`
	Entry       LedgerEntry  `json:"entry"`
	DayDate     DateKey      `json:"day_date"`
	Status      IntentStatus `json:"status"`
	CreatedOn   time.Time    `json:"created_on"`
	ConfirmedOn *time.Time   `json:"confirmed_on,omitempty"`
}
