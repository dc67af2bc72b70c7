package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository/postgres"
)

const testIntentID = "f2f2a6f0-6f0e-4a4c-9f31-5a9be2b6d001"

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOutboxRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rentalID := int64(42)
		intent := &domain.LedgerIntent{
			ID:      testIntentID,
			DayDate: testDate,
			Entry: domain.LedgerEntry{
				IntentID:      testIntentID,
				RentalID:      &rentalID,
				AmountPaise:   30000,
				Kind:          domain.EntryKindReturn,
				PaymentMethod: domain.PaymentMethodCash,
				Description:   "return",
			},
		}

		mock.ExpectExec("INSERT INTO ledger_intents").
			WithArgs(testIntentID, testDate, &rentalID, nil, int64(30000),
				domain.EntryKindReturn, domain.PaymentMethodCash, "", "return", "",
				domain.IntentStatusPending, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, intent)
		assert.NoError(t, err)
		assert.Equal(t, domain.IntentStatusPending, intent.Status)
	})
}

func TestOutboxRepository_Confirm(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOutboxRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		at := time.Now()
		mock.ExpectExec("UPDATE ledger_intents SET status").
			WithArgs(domain.IntentStatusConfirmed, at, testIntentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Confirm(ctx, testIntentID, at)
		assert.NoError(t, err)
	})

	t.Run("MissingIntentIsNotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE ledger_intents SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Confirm(ctx, "unknown", time.Now())
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestOutboxRepository_ListPendingBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOutboxRepository(db)
	ctx := context.Background()

	t.Run("RestoresIntentIDOnEntry", func(t *testing.T) {
		cutoff := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM ledger_intents WHERE status").
			WithArgs(domain.IntentStatusPending, cutoff).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "day_date", "rental_id", "customer_id", "amount_paise", "kind",
				"payment_method", "category", "description", "notes", "status", "created_on", "confirmed_on",
			}).AddRow(testIntentID, string(testDate), nil, nil, 30000, "RETURN",
				"Cash", "", "return", "", "PENDING", time.Now().Add(-time.Hour), nil))

		intents, err := repo.ListPendingBefore(ctx, cutoff)
		assert.NoError(t, err)
		assert.Len(t, intents, 1)
		// The entry must carry the intent id so a replay stays idempotent.
		assert.Equal(t, testIntentID, intents[0].Entry.IntentID)
		assert.Equal(t, testDate, intents[0].DayDate)
	})
}
