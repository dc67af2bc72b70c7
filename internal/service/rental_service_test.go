package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/service"
)

var testNow = time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type rentalFixture struct {
	rentals   *MockRentalRepo
	tools     *MockToolRepo
	customers *MockCustomerRepo
	ledger    *MockLedgerRepo
	outbox    *MockOutboxRepo
	svc       service.RentalService
}

func newRentalFixture() *rentalFixture {
	f := &rentalFixture{
		rentals:   new(MockRentalRepo),
		tools:     new(MockToolRepo),
		customers: new(MockCustomerRepo),
		ledger:    new(MockLedgerRepo),
		outbox:    new(MockOutboxRepo),
	}
	f.svc = service.NewRentalService(f.rentals, f.tools, f.customers, f.ledger, f.outbox, fixedClock)
	return f
}

func (f *rentalFixture) expectForward() {
	f.outbox.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("AppendEntries", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.outbox.On("Confirm", mock.Anything, mock.Anything, testNow).Return(nil)
}

func testCustomer() *domain.Customer {
	return &domain.Customer{ID: 7, Name: "Ravi Kumar", Phone: "9876543210"}
}

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()

	t.Run("PowerToolSuccess", func(t *testing.T) {
		f := newRentalFixture()
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("GetByID", ctx, int64(1)).Return(&domain.Tool{
			ID: 1, Name: "Angle Grinder", Category: domain.ToolCategoryPowerTool,
			PricePaise: 10000, AvailableCount: 5,
		}, nil)
		f.tools.On("AdjustAvailableCount", ctx, int64(1), int32(-2)).Return(nil)
		f.rentals.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Rental).ID = 42
		}).Return(nil)
		f.customers.On("AppendOrderHistory", ctx, int64(7), int64(42)).Return(nil)

		rental, err := f.svc.CreateRental(ctx, service.CreateRentalInput{
			CustomerID: 7,
			Items:      []service.RentalItemInput{{ToolID: 1, Count: 2}},
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusRented, rental.Status)
		assert.Equal(t, int64(20000), rental.InitialAmountPaise)
		// Day one charge equals the initial amount.
		assert.Equal(t, int64(20000), rental.TotalAmountPaise)
		assert.Len(t, rental.Notes, 1)
		f.tools.AssertExpectations(t)
		f.rentals.AssertExpectations(t)
	})

	t.Run("InsufficientInventoryIsConflict", func(t *testing.T) {
		f := newRentalFixture()
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("GetByID", ctx, int64(1)).Return(&domain.Tool{
			ID: 1, Name: "Angle Grinder", Category: domain.ToolCategoryPowerTool,
			PricePaise: 10000, AvailableCount: 1,
		}, nil)

		_, err := f.svc.CreateRental(ctx, service.CreateRentalInput{
			CustomerID: 7,
			Items:      []service.RentalItemInput{{ToolID: 1, Count: 2}},
		})
		assert.True(t, domain.IsConflict(err))
		f.tools.AssertNotCalled(t, "AdjustAvailableCount", mock.Anything, mock.Anything, mock.Anything)
		f.rentals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("NoItemsIsValidation", func(t *testing.T) {
		f := newRentalFixture()
		_, err := f.svc.CreateRental(ctx, service.CreateRentalInput{CustomerID: 7})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("AccessoryForwardsPurchaseToLedger", func(t *testing.T) {
		f := newRentalFixture()
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("GetByID", ctx, int64(2)).Return(&domain.Tool{
			ID: 2, Name: "Cutting Blade", Category: domain.ToolCategoryAccessory, PricePaise: 2500,
		}, nil)
		f.rentals.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Rental).ID = 43
		}).Return(nil)
		f.customers.On("AppendOrderHistory", ctx, int64(7), int64(43)).Return(nil)
		f.expectForward()

		rental, err := f.svc.CreateRental(ctx, service.CreateRentalInput{
			CustomerID:             7,
			Items:                  []service.RentalItemInput{{ToolID: 2, Count: 4}},
			AccessoryPaymentMethod: domain.PaymentMethodCash,
		})
		assert.NoError(t, err)
		// Accessory-only rentals have nothing outstanding.
		assert.Equal(t, domain.RentalStatusReturnCompleted, rental.Status)
		assert.Equal(t, int64(10000), rental.TotalAmountPaise)
		f.outbox.AssertExpectations(t)
		f.ledger.AssertExpectations(t)
		// Accessories never touch inventory.
		f.tools.AssertNotCalled(t, "AdjustAvailableCount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AccessoryWithoutPaymentMethodIsValidation", func(t *testing.T) {
		f := newRentalFixture()
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("GetByID", ctx, int64(2)).Return(&domain.Tool{
			ID: 2, Name: "Cutting Blade", Category: domain.ToolCategoryAccessory, PricePaise: 2500,
		}, nil)

		_, err := f.svc.CreateRental(ctx, service.CreateRentalInput{
			CustomerID: 7,
			Items:      []service.RentalItemInput{{ToolID: 2, Count: 4}},
		})
		assert.True(t, domain.IsValidation(err))
	})
}

func openRental() *domain.Rental {
	return &domain.Rental{
		ID:         42,
		CustomerID: 7,
		Items: []domain.RentalItem{{
			ID: 1, ToolID: 1, ToolName: "Angle Grinder",
			Category: domain.ToolCategoryPowerTool, PricePaise: 10000,
			Count: 2, RentalDate: testNow.AddDate(0, 0, -2),
		}},
		InitialAmountPaise: 20000,
		Status:             domain.RentalStatusRented,
	}
}

func TestRentalService_MarkReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialReturn", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("AdjustAvailableCount", ctx, int64(1), int32(1)).Return(nil)
		f.rentals.On("Update", ctx, mock.Anything).Return(nil)
		f.expectForward()

		res, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 1,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPartialReturn, res.Rental.Status)
		assert.Equal(t, int32(1), res.Rental.Items[0].ReturnedCount)
		assert.Len(t, res.Rental.Items[0].ReturnEvents, 1)
		// 1 unreturned unit x 3 days, still accruing.
		assert.Equal(t, int64(30000), res.RemainingAmountPaise)
		f.ledger.AssertExpectations(t)
		f.tools.AssertExpectations(t)
	})

	t.Run("LedgerEntryCarriesNetAfterAdjustments", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.customers.On("AppendCredit", ctx, int64(7), mock.Anything).Return(nil)
		f.customers.On("SetTotalCredit", ctx, int64(7), int64(5000)).Return(nil)
		f.tools.On("AdjustAvailableCount", ctx, int64(1), int32(1)).Return(nil)
		f.rentals.On("Update", ctx, mock.Anything).Return(nil)

		// Charge 30000 (1 unit x 3 days), discount 5000, credit 5000:
		// the forwarded entry records the 20000 actually collected,
		// dated on the return day.
		f.outbox.On("Create", mock.Anything, mock.MatchedBy(func(intent *domain.LedgerIntent) bool {
			return intent.DayDate == domain.DateKey("2026-03-12") &&
				intent.Entry.Kind == domain.EntryKindReturn &&
				intent.Entry.AmountPaise == 20000
		})).Return(nil)
		f.ledger.On("AppendEntries", mock.Anything, domain.DateKey("2026-03-12"),
			mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
				return len(entries) == 1 && entries[0].AmountPaise == 20000
			})).Return(nil)
		f.outbox.On("Confirm", mock.Anything, mock.Anything, testNow).Return(nil)

		_, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 1,
			DiscountPaise: 5000, CreditPaise: 5000,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.NoError(t, err)
		f.outbox.AssertExpectations(t)
		f.ledger.AssertExpectations(t)
	})

	t.Run("CreditUpdatesCustomer", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.customers.On("AppendCredit", ctx, int64(7), mock.Anything).Return(nil)
		f.customers.On("SetTotalCredit", ctx, int64(7), int64(5000)).Return(nil)
		f.tools.On("AdjustAvailableCount", ctx, int64(1), int32(1)).Return(nil)
		f.rentals.On("Update", ctx, mock.Anything).Return(nil)
		f.expectForward()

		res, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 1,
			CreditPaise:   5000,
			PaymentMethod: domain.PaymentMethodUPI,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(5000), res.TotalCreditPaise)
		f.customers.AssertExpectations(t)
	})

	t.Run("CountExceedsRemainingIsConflict", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)

		_, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 3,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsConflict(err))
		f.rentals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("AccessoryIsConflict", func(t *testing.T) {
		f := newRentalFixture()
		rental := openRental()
		rental.Items = append(rental.Items, domain.RentalItem{
			ID: 2, ToolID: 2, ToolName: "Cutting Blade",
			Category: domain.ToolCategoryAccessory, PricePaise: 2500, Count: 4,
			RentalDate: rental.Items[0].RentalDate,
		})
		f.rentals.On("GetByID", ctx, int64(42)).Return(rental, nil)

		_, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 2, Count: 1,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("OverAdjustmentIsConflict", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)

		// Charge for 1 unit x 3 days is 30000.
		_, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 1,
			DiscountPaise: 20000, CreditPaise: 15000,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("FutureReturnDateIsValidation", func(t *testing.T) {
		f := newRentalFixture()
		future := testNow.Add(48 * time.Hour)

		_, err := f.svc.MarkReturn(ctx, service.MarkReturnInput{
			RentalID: 42, ToolID: 1, Count: 1,
			ReturnDate:    &future,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestRentalService_MarkAllReturned(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsEverythingOutstanding", func(t *testing.T) {
		f := newRentalFixture()
		rental := openRental()
		rental.Items[0].ReturnedCount = 1
		rental.Items[0].ReturnEvents = []domain.ReturnEvent{{Count: 1, Date: testNow.AddDate(0, 0, -1)}}
		f.rentals.On("GetByID", ctx, int64(42)).Return(rental, nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)
		f.tools.On("AdjustAvailableCount", ctx, int64(1), int32(1)).Return(nil)
		f.rentals.On("Update", ctx, mock.Anything).Return(nil)
		f.expectForward()

		res, err := f.svc.MarkAllReturned(ctx, service.MarkAllReturnedInput{
			RentalID:      42,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReturnCompleted, res.Rental.Status)
		assert.Equal(t, int64(0), res.RemainingAmountPaise)
		assert.Len(t, res.Rental.Items[0].ReturnEvents, 2)
		f.ledger.AssertExpectations(t)
	})

	t.Run("NothingOutstandingIsConflict", func(t *testing.T) {
		f := newRentalFixture()
		rental := openRental()
		rental.Items[0].ReturnedCount = rental.Items[0].Count
		f.rentals.On("GetByID", ctx, int64(42)).Return(rental, nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)

		_, err := f.svc.MarkAllReturned(ctx, service.MarkAllReturnedInput{
			RentalID:      42,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("SharedAdjustmentCheckedAgainstTotal", func(t *testing.T) {
		f := newRentalFixture()
		f.rentals.On("GetByID", ctx, int64(42)).Return(openRental(), nil)
		f.customers.On("GetByID", ctx, int64(7)).Return(testCustomer(), nil)

		// Combined charge: 2 units x 3 days x 100 rupees = 60000.
		_, err := f.svc.MarkAllReturned(ctx, service.MarkAllReturnedInput{
			RentalID:      42,
			DiscountPaise: 70000,
			PaymentMethod: domain.PaymentMethodCash,
		})
		assert.True(t, domain.IsConflict(err))
	})
}
