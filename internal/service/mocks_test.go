package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentalshop-backend/internal/domain"
)

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Customer, int32, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]domain.Customer), args.Get(1).(int32), args.Error(2)
}
func (m *MockCustomerRepo) AppendOrderHistory(ctx context.Context, customerID, rentalID int64) error {
	args := m.Called(ctx, customerID, rentalID)
	return args.Error(0)
}
func (m *MockCustomerRepo) AppendCredit(ctx context.Context, customerID int64, entry *domain.CreditEntry) error {
	args := m.Called(ctx, customerID, entry)
	return args.Error(0)
}
func (m *MockCustomerRepo) RemoveCreditsByRental(ctx context.Context, customerID, rentalID int64) error {
	args := m.Called(ctx, customerID, rentalID)
	return args.Error(0)
}
func (m *MockCustomerRepo) ClearCredits(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}
func (m *MockCustomerRepo) SetTotalCredit(ctx context.Context, customerID, totalPaise int64) error {
	args := m.Called(ctx, customerID, totalPaise)
	return args.Error(0)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) Update(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockToolRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Tool), args.Get(1).(int32), args.Error(2)
}
func (m *MockToolRepo) AdjustAvailableCount(ctx context.Context, toolID int64, delta int32) error {
	args := m.Called(ctx, toolID, delta)
	return args.Error(0)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) List(ctx context.Context, search, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, search, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) GetDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerDay), args.Error(1)
}
func (m *MockLedgerRepo) GetOrCreateDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerDay), args.Error(1)
}
func (m *MockLedgerRepo) AppendEntries(ctx context.Context, date domain.DateKey, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, date, entries)
	return args.Error(0)
}
func (m *MockLedgerRepo) SaveClose(ctx context.Context, day *domain.LedgerDay) error {
	args := m.Called(ctx, day)
	return args.Error(0)
}
func (m *MockLedgerRepo) SaveOpening(ctx context.Context, day *domain.LedgerDay, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, day, entries)
	return args.Error(0)
}

// MockOutboxRepo
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, intent *domain.LedgerIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}
func (m *MockOutboxRepo) Confirm(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockOutboxRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.LedgerIntent, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.LedgerIntent), args.Error(1)
}
