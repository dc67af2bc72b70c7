package service

import (
	"context"
	"time"

	"rentalshop-backend/internal/domain"
)

// Clock supplies "now" to the services so date-sensitive logic (day
// charges, the undo-close window) is testable.
type Clock func() time.Time

type RentalItemInput struct {
	ToolID int64
	Count  int32
}

type CreateRentalInput struct {
	CustomerID             int64
	Items                  []RentalItemInput
	Notes                  []string
	AccessoryPaymentMethod domain.PaymentMethod
}

type MarkReturnInput struct {
	RentalID      int64
	ToolID        int64
	Count         int32
	ReturnDate    *time.Time
	DiscountPaise int64
	CreditPaise   int64
	PaymentMethod domain.PaymentMethod
	Note          string
}

type MarkAllReturnedInput struct {
	RentalID      int64
	ReturnDate    *time.Time
	DiscountPaise int64
	CreditPaise   int64
	PaymentMethod domain.PaymentMethod
	Note          string
}

// RentalProjection is a rental together with its live, non-persisted
// remaining-amount projection and adjustment totals.
type RentalProjection struct {
	Rental               *domain.Rental `json:"rental"`
	RemainingAmountPaise int64          `json:"remaining_amount_paise"`
	TotalDiscountPaise   int64          `json:"total_discount_paise"`
	TotalCreditPaise     int64          `json:"total_credit_paise"`
}

type RentalService interface {
	CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error)
	TrackRental(ctx context.Context, id int64) (*RentalProjection, error)
	MarkReturn(ctx context.Context, in MarkReturnInput) (*RentalProjection, error)
	MarkAllReturned(ctx context.Context, in MarkAllReturnedInput) (*RentalProjection, error)
	ListRentals(ctx context.Context, search, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type EntryInput struct {
	AmountPaise   int64
	PaymentMethod domain.PaymentMethod
	Category      string
	Description   string
	Notes         string
	Date          domain.DateKey // empty means today
}

type TransferInput struct {
	AmountPaise int64
	From        domain.PaymentMethod
	To          domain.PaymentMethod
	Notes       string
	Date        domain.DateKey // empty means today
}

type LedgerService interface {
	GetDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
	AddDebit(ctx context.Context, in EntryInput) (*domain.LedgerDay, error)
	AddCredit(ctx context.Context, in EntryInput) (*domain.LedgerDay, error)
	Transfer(ctx context.Context, in TransferInput) (*domain.LedgerDay, error)
	CloseDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
	UndoClose(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
	SetOpeningBalance(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
}

type RepayCreditInput struct {
	CustomerID    int64
	RentalID      *int64 // nil repays every outstanding credit
	PaymentMethod domain.PaymentMethod
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	ListCustomers(ctx context.Context, search string, page, pageSize int32) ([]domain.Customer, int32, error)
	RepayCredit(ctx context.Context, in RepayCreditInput) (*domain.Customer, error)
}

type ToolService interface {
	AddTool(ctx context.Context, tool *domain.Tool) error
	GetTool(ctx context.Context, id int64) (*domain.Tool, error)
	UpdateTool(ctx context.Context, tool *domain.Tool) error
	DeleteTool(ctx context.Context, id int64) error
	ListTools(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error)
}
