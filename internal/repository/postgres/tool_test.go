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

func TestToolRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		tool := &domain.Tool{
			Name:           "Angle Grinder",
			Category:       domain.ToolCategoryPowerTool,
			PricePaise:     10000,
			AvailableCount: 5,
		}

		mock.ExpectQuery("INSERT INTO tools").
			WithArgs(tool.Name, tool.Category, tool.PricePaise, tool.AvailableCount, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.Create(ctx, tool)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), tool.ID)
	})
}

func TestToolRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT id, name, category, price_paise, available_count, created_on, updated_on FROM tools").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "price_paise", "available_count", "created_on", "updated_on"}).
				AddRow(1, "Angle Grinder", "POWER_TOOL", 10000, 5, now, now))

		tool, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Angle Grinder", tool.Name)
		assert.Equal(t, domain.ToolCategoryPowerTool, tool.Category)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, category, price_paise, available_count, created_on, updated_on FROM tools").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, 99)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestToolRepository_AdjustAvailableCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET available_count = available_count").
			WithArgs(int32(-2), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustAvailableCount(ctx, 1, -2)
		assert.NoError(t, err)
	})

	t.Run("WouldGoNegativeIsConflict", func(t *testing.T) {
		// The guarded UPDATE matches no rows when the count would drop
		// below zero.
		mock.ExpectExec("UPDATE tools SET available_count = available_count").
			WithArgs(int32(-10), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AdjustAvailableCount(ctx, 1, -10)
		assert.True(t, domain.IsConflict(err))
	})
}
