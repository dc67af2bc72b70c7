package jobs

import (
	"context"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/logger"
)

// Intents younger than this are likely still mid-flight in a live
// request; the sweep leaves them alone.
const intentSettleAge = 10 * time.Minute

// ReconcileLedgerOutbox replays pending ledger intents whose originating
// request never confirmed them, typically after a crash between the
// rental save and the ledger append. Replays are idempotent.
func (jr *JobRunner) ReconcileLedgerOutbox() {
	jr.runWithRecovery("ReconcileLedgerOutbox", func() {
		ctx := context.Background()

		pending, err := jr.store.OutboxRepository.ListPendingBefore(ctx, time.Now().Add(-intentSettleAge))
		if err != nil {
			logger.Error("Failed to list pending ledger intents", "error", err)
			return
		}
		if len(pending) == 0 {
			return
		}

		replayed := 0
		for _, intent := range pending {
			if err := jr.store.LedgerRepository.AppendEntries(ctx, intent.DayDate, []domain.LedgerEntry{intent.Entry}); err != nil {
				logger.Error("Failed to replay ledger intent", "intent_id", intent.ID, "date", intent.DayDate, "error", err)
				continue
			}
			if err := jr.store.OutboxRepository.Confirm(ctx, intent.ID, time.Now()); err != nil {
				logger.Error("Failed to confirm replayed intent", "intent_id", intent.ID, "error", err)
				continue
			}
			replayed++
		}

		logger.Info("Reconciled ledger outbox", "pending", len(pending), "replayed", replayed)
	})
}

// RemindUnclosedDays logs a warning for recent past days that saw
// activity but were never closed, so the shop notices missed closes.
func (jr *JobRunner) RemindUnclosedDays() {
	jr.runWithRecovery("RemindUnclosedDays", func() {
		ctx := context.Background()

		today := domain.NewDateKey(time.Now())
		for i := 1; i <= 7; i++ {
			date := today.AddDays(-i)
			day, err := jr.store.LedgerRepository.GetDay(ctx, date)
			if domain.IsNotFound(err) {
				continue
			}
			if err != nil {
				logger.Error("Failed to load ledger day", "date", date, "error", err)
				return
			}
			if !day.IsClosed && len(day.Entries) > 0 {
				logger.Warn("Ledger day has entries but was never closed",
					"date", date, "entries", len(day.Entries), "available_paise", day.AvailableBalance())
			}
		}
	})
}
