package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentalshop-backend/internal/billing"
	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository/postgres"
)

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("LoadsChildRecords", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT id, customer_id, initial_amount_paise, total_amount_paise, status, created_on FROM rentals").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "customer_id", "initial_amount_paise", "total_amount_paise", "status", "created_on",
			}).AddRow(42, 7, 20000, 50000, "PARTIAL_RETURN", now))
		mock.ExpectQuery("SELECT id, tool_id, tool_name, category, price_paise, count, returned_count, rental_date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "tool_id", "tool_name", "category", "price_paise", "count", "returned_count", "rental_date",
			}).AddRow(1, 1, "Angle Grinder", "POWER_TOOL", 10000, 2, 1, now.AddDate(0, 0, -2)))
		mock.ExpectQuery("SELECT e.id, e.item_id, e.count, e.date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "count", "date"}).
				AddRow(5, 1, 1, now.AddDate(0, 0, -1)))
		mock.ExpectQuery("SELECT id, kind, tool_id, amount_paise, event_date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "tool_id", "amount_paise", "event_date", "note", "created_on"}).
				AddRow(3, "DISCOUNT", 1, 1500, now.AddDate(0, 0, -1), "goodwill", now))
		mock.ExpectQuery("SELECT id, text, created_on FROM rental_notes").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_on"}).
				AddRow(9, "Rental created", now))

		rental, err := repo.GetByID(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPartialReturn, rental.Status)
		assert.Len(t, rental.Items, 1)
		assert.Len(t, rental.Items[0].ReturnEvents, 1)
		assert.Len(t, rental.Discounts, 1)
		assert.Empty(t, rental.Credits)
		assert.Len(t, rental.Notes, 1)
	})

	t.Run("ListOpenBeforeLoadsChildRecords", func(t *testing.T) {
		now := time.Now()
		cutoff := now.AddDate(0, 0, -7)
		mock.ExpectQuery("SELECT id, customer_id, initial_amount_paise, total_amount_paise, status, created_on\\s+FROM rentals WHERE status IN").
			WithArgs(domain.RentalStatusRented, domain.RentalStatusPartialReturn, cutoff).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "customer_id", "initial_amount_paise", "total_amount_paise", "status", "created_on",
			}).AddRow(42, 7, 20000, 20000, "RENTED", now.AddDate(0, 0, -10)))
		mock.ExpectQuery("SELECT id, tool_id, tool_name, category, price_paise, count, returned_count, rental_date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "tool_id", "tool_name", "category", "price_paise", "count", "returned_count", "rental_date",
			}).AddRow(1, 1, "Angle Grinder", "POWER_TOOL", 10000, 2, 0, now.AddDate(0, 0, -10)))
		mock.ExpectQuery("SELECT e.id, e.item_id, e.count, e.date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "count", "date"}))
		mock.ExpectQuery("SELECT id, kind, tool_id, amount_paise, event_date").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "tool_id", "amount_paise", "event_date", "note", "created_on"}))
		mock.ExpectQuery("SELECT id, text, created_on FROM rental_notes").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_on"}))

		rentals, err := repo.ListOpenBefore(ctx, cutoff)
		assert.NoError(t, err)
		assert.Len(t, rentals, 1)
		// The overdue report charges the unreturned units, so the line
		// items must come back with each rental.
		assert.Len(t, rentals[0].Items, 1)
		assert.Positive(t, billing.RemainingAmount(&rentals[0], now))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_id, initial_amount_paise, total_amount_paise, status, created_on FROM rentals").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, 99)
		assert.True(t, domain.IsNotFound(err))
	})
}
