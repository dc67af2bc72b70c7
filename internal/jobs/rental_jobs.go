package jobs

import (
	"context"
	"time"

	"rentalshop-backend/internal/billing"
	"rentalshop-backend/internal/logger"
)

// Rentals still carrying unreturned tools after this long are worth a
// follow-up call.
const overdueRentalAge = 7 * 24 * time.Hour

// ReportOverdueRentals logs every rental that has gone a week or more
// without being fully returned, with its accrued remaining amount.
func (jr *JobRunner) ReportOverdueRentals() {
	jr.runWithRecovery("ReportOverdueRentals", func() {
		ctx := context.Background()
		now := time.Now()

		rentals, err := jr.store.RentalRepository.ListOpenBefore(ctx, now.Add(-overdueRentalAge))
		if err != nil {
			logger.Error("Failed to list open rentals", "error", err)
			return
		}

		for i := range rentals {
			r := &rentals[i]
			logger.Warn("Rental overdue",
				"rental_id", r.ID,
				"customer_id", r.CustomerID,
				"created_on", r.CreatedOn.Format("2006-01-02"),
				"remaining_paise", billing.RemainingAmount(r, now))
		}

		logger.Info("Overdue rental report complete", "overdue", len(rentals))
	})
}
