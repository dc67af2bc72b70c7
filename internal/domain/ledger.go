package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodCash || m == PaymentMethodUPI
}

type EntryKind string

const (
	EntryKindReturn            EntryKind = "RETURN"
	EntryKindCreditRepayment   EntryKind = "CREDIT_REPAYMENT"
	EntryKindAccessoryPurchase EntryKind = "ACCESSORY_PURCHASE"
	EntryKindDebit             EntryKind = "DEBIT"
	EntryKindCredit            EntryKind = "CREDIT"
)

// Ledger entry categories. Expense categories are the fixed set offered
// for debits; the remaining three are reserved for entries the system
// writes itself.
const (
	CategoryRentUtilities    = "Rent & Utilities"
	CategoryLabourCharges    = "Labour Charges"
	CategoryTeaSnacks        = "Tea & Snacks"
	CategoryToolMaintenance  = "Tool Inventory & Maintenance"
	CategoryStationary       = "Stationary"
	CategoryMiscellaneous    = "Miscellaneous"
	CategoryInternalTransfer = "Internal Transfer"
	CategoryManualCredit     = "Manual Credit"
	CategoryOpeningBalance   = "Opening Balance"
)

// ExpenseCategories lists the categories accepted for debit entries.
var ExpenseCategories = []string{
	CategoryRentUtilities,
	CategoryLabourCharges,
	CategoryTeaSnacks,
	CategoryToolMaintenance,
	CategoryStationary,
	CategoryMiscellaneous,
}

// ValidExpenseCategory reports whether c is an accepted debit category.
func ValidExpenseCategory(c string) bool {
	for _, ec := range ExpenseCategories {
		if c == ec {
			return true
		}
	}
	return false
}

// LedgerEntry is one cash/UPI movement within a ledger day. IntentID is
// set only on entries forwarded from the billing engine; its uniqueness
// in storage makes intent replays idempotent.
type LedgerEntry struct {
	ID            int64         `json:"id"`
	IntentID      string        `json:"-"`
	RentalID      *int64        `json:"rental_id,omitempty"`
	CustomerID    *int64        `json:"customer_id,omitempty"`
	AmountPaise   int64         `json:"amount_paise"`
	Kind          EntryKind     `json:"kind"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Category      string        `json:"category,omitempty"`
	Description   string        `json:"description"`
	Notes         string        `json:"notes,omitempty"`
	CreatedOn     time.Time     `json:"created_on"`
}

// LedgerDay holds all entries for one calendar date. Closing and opening
// balances are frozen snapshots; running balances are always recomputed
// from the entries.
type LedgerDay struct {
	ID                 int64         `json:"id"`
	Date               DateKey       `json:"date"`
	Entries            []LedgerEntry `json:"entries"`
	IsClosed           bool          `json:"is_closed"`
	ClosedAt           *time.Time    `json:"closed_at,omitempty"`
	ClosingCashPaise   int64         `json:"closing_cash_paise"`
	ClosingUPIPaise    int64         `json:"closing_upi_paise"`
	ClosingTotalPaise  int64         `json:"closing_total_paise"`
	OpeningCashPaise   int64         `json:"opening_cash_paise"`
	OpeningUPIPaise    int64         `json:"opening_upi_paise"`
	OpeningTotalPaise  int64         `json:"opening_total_paise"`
	OpeningCarriedFrom DateKey       `json:"opening_carried_from,omitempty"`
	CreatedOn          time.Time     `json:"created_on"`
}

// Balance returns the running balance for one payment method: credits
// minus debits over that method's entries. Opening-balance entries are
// ordinary credits, so they participate without special-casing.
func (d *LedgerDay) Balance(m PaymentMethod) int64 {
	var sum int64
	for _, e := range d.Entries {
		if e.PaymentMethod != m {
			continue
		}
		if e.Kind == EntryKindDebit {
			sum -= e.AmountPaise
		} else {
			sum += e.AmountPaise
		}
	}
	return sum
}

// AvailableBalance returns the combined Cash + UPI running balance.
func (d *LedgerDay) AvailableBalance() int64 {
	return d.Balance(PaymentMethodCash) + d.Balance(PaymentMethodUPI)
}

// HasOpeningBalance reports whether an opening balance was already
// carried into this day.
func (d *LedgerDay) HasOpeningBalance() bool {
	return d.OpeningTotalPaise > 0
}
