package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/logger"
	"rentalshop-backend/internal/repository"
)

// ledgerForwarder performs the two-phase ledger write used whenever a
// rental-side mutation also produces a daily-ledger entry. The intent is
// persisted before the rental save and confirmed after the entry lands,
// so a crash between the two saves leaves a pending intent the
// reconciliation sweep can replay instead of a silently missing entry.
type ledgerForwarder struct {
	ledgerRepo repository.LedgerRepository
	outboxRepo repository.OutboxRepository
	clock      Clock
}

func (f *ledgerForwarder) begin(ctx context.Context, date domain.DateKey, entry domain.LedgerEntry) (*domain.LedgerIntent, error) {
	entry.IntentID = uuid.NewString()
	intent := &domain.LedgerIntent{
		ID:      entry.IntentID,
		DayDate: date,
		Entry:   entry,
	}
	if err := f.outboxRepo.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("record ledger intent: %w", err)
	}
	return intent, nil
}

func (f *ledgerForwarder) commit(ctx context.Context, intent *domain.LedgerIntent) error {
	if err := f.ledgerRepo.AppendEntries(ctx, intent.DayDate, []domain.LedgerEntry{intent.Entry}); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	if err := f.outboxRepo.Confirm(ctx, intent.ID, f.clock()); err != nil {
		// The entry already landed; replaying the still-pending intent is
		// a no-op thanks to the intent_id uniqueness, so just log it.
		logger.Error("Failed to confirm ledger intent", "intent_id", intent.ID, "error", err)
		return nil
	}
	return nil
}
