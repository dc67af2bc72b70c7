package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentalshop-backend/internal/domain"
)

func TestDateKey(t *testing.T) {
	t.Run("NewDateKeyFormats", func(t *testing.T) {
		k := domain.NewDateKey(time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC))
		assert.Equal(t, domain.DateKey("2026-03-05"), k)
	})

	t.Run("ParseRejectsOtherLayouts", func(t *testing.T) {
		for _, bad := range []string{"05-03-2026", "2026/03/05", "2026-3-5", "yesterday"} {
			_, err := domain.ParseDateKey(bad)
			assert.True(t, domain.IsValidation(err), "expected rejection for %q", bad)
		}
	})

	t.Run("AddDaysCrossesMonths", func(t *testing.T) {
		k := domain.DateKey("2026-02-28")
		assert.Equal(t, domain.DateKey("2026-03-01"), k.AddDays(1).AddDays(1)) // leap year
		assert.Equal(t, domain.DateKey("2026-02-27"), k.AddDays(-1))
	})
}

func TestLedgerDayBalance(t *testing.T) {
	day := &domain.LedgerDay{Entries: []domain.LedgerEntry{
		{Kind: domain.EntryKindCredit, PaymentMethod: domain.PaymentMethodCash, AmountPaise: 50000},
		{Kind: domain.EntryKindReturn, PaymentMethod: domain.PaymentMethodCash, AmountPaise: 30000},
		{Kind: domain.EntryKindDebit, PaymentMethod: domain.PaymentMethodCash, AmountPaise: 20000},
		{Kind: domain.EntryKindCreditRepayment, PaymentMethod: domain.PaymentMethodUPI, AmountPaise: 5000},
		{Kind: domain.EntryKindAccessoryPurchase, PaymentMethod: domain.PaymentMethodUPI, AmountPaise: 2500},
	}}

	// Only DEBIT entries subtract; every other kind is money in.
	assert.Equal(t, int64(60000), day.Balance(domain.PaymentMethodCash))
	assert.Equal(t, int64(7500), day.Balance(domain.PaymentMethodUPI))
	assert.Equal(t, int64(67500), day.AvailableBalance())
}
