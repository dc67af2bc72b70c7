package repository

import (
	"context"
	"time"

	"rentalshop-backend/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context, search string, page, pageSize int32) ([]domain.Customer, int32, error)

	AppendOrderHistory(ctx context.Context, customerID, rentalID int64) error
	AppendCredit(ctx context.Context, customerID int64, entry *domain.CreditEntry) error
	RemoveCreditsByRental(ctx context.Context, customerID, rentalID int64) error
	ClearCredits(ctx context.Context, customerID int64) error
	SetTotalCredit(ctx context.Context, customerID, totalPaise int64) error
}

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int64) (*domain.Tool, error)
	Update(ctx context.Context, tool *domain.Tool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error)

	// AdjustAvailableCount applies delta to the tool's available count.
	// The update is conditional so the count can never go negative.
	AdjustAvailableCount(ctx context.Context, toolID int64, delta int32) error
}

type RentalRepository interface {
	// Create persists the rental with all line items and notes in one
	// transaction.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	// Update saves the whole rental in one transaction: the aggregate
	// row, item return counts, and any child rows with a zero ID.
	Update(ctx context.Context, rental *domain.Rental) error
	List(ctx context.Context, search, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	// ListOpenBefore returns rentals still carrying unreturned tools
	// whose creation predates the cutoff.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error)
}

type LedgerRepository interface {
	// GetDay returns the day record with its entries, or NotFoundError.
	GetDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
	// GetOrCreateDay returns the day record, creating an empty one on
	// first use. Idempotent.
	GetOrCreateDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error)
	// AppendEntries adds entries to the day, creating it if absent.
	// Closed-day guarding happens in the service, not here.
	AppendEntries(ctx context.Context, date domain.DateKey, entries []domain.LedgerEntry) error
	// SaveClose persists the closing snapshot fields and the closed flag.
	SaveClose(ctx context.Context, day *domain.LedgerDay) error
	// SaveOpening persists the opening snapshot fields and appends the
	// carried-forward credit entries in one transaction.
	SaveOpening(ctx context.Context, day *domain.LedgerDay, entries []domain.LedgerEntry) error
}

type OutboxRepository interface {
	Create(ctx context.Context, intent *domain.LedgerIntent) error
	Confirm(ctx context.Context, id string, at time.Time) error
	// ListPendingBefore returns unconfirmed intents created before the
	// cutoff, oldest first.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.LedgerIntent, error)
}
