package service

import (
	"context"
	"fmt"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/logger"
	"rentalshop-backend/internal/repository"
)

// LedgerConfig tunes the day-close policies. Zero values fall back to
// the defaults below.
type LedgerConfig struct {
	UndoWindow           time.Duration // grace window after close during which undo is allowed
	CarryForwardScanDays int           // forward scan bound when checking carry-forward deps
	OpeningLookbackDays  int           // backward scan bound when deriving an opening balance
}

const (
	defaultUndoWindow           = 45 * time.Minute
	defaultCarryForwardScanDays = 365
	defaultOpeningLookbackDays  = 5 * 365
)

func (c LedgerConfig) withDefaults() LedgerConfig {
	if c.UndoWindow <= 0 {
		c.UndoWindow = defaultUndoWindow
	}
	if c.CarryForwardScanDays <= 0 {
		c.CarryForwardScanDays = defaultCarryForwardScanDays
	}
	if c.OpeningLookbackDays <= 0 {
		c.OpeningLookbackDays = defaultOpeningLookbackDays
	}
	return c
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	cfg        LedgerConfig
	clock      Clock
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, cfg LedgerConfig, clock Clock) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, cfg: cfg.withDefaults(), clock: clock}
}

func (s *ledgerService) resolveDate(date domain.DateKey) (domain.DateKey, error) {
	if date == "" {
		return domain.NewDateKey(s.clock()), nil
	}
	if _, err := domain.ParseDateKey(string(date)); err != nil {
		return "", err
	}
	return date, nil
}

func (s *ledgerService) GetDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	day, err := s.ledgerRepo.GetDay(ctx, date)
	if domain.IsNotFound(err) {
		// A day with no activity yet reads as an empty, open day.
		return &domain.LedgerDay{Date: date}, nil
	}
	return day, err
}

// openDay loads the day for a mutation, creating it on first use and
// rejecting closed days.
func (s *ledgerService) openDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	day, err := s.ledgerRepo.GetOrCreateDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if day.IsClosed {
		return nil, domain.Conflictf("day %s is closed; no further entries can be added", date)
	}
	return day, nil
}

func (s *ledgerService) AddDebit(ctx context.Context, in EntryInput) (*domain.LedgerDay, error) {
	if in.AmountPaise <= 0 {
		return nil, domain.Validationf("amount must be greater than zero")
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Validationf("payment method must be %q or %q", domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}
	if !domain.ValidExpenseCategory(in.Category) {
		return nil, domain.Validationf("category %q is not a recognized expense category", in.Category)
	}
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	day, err := s.openDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if balance := day.Balance(in.PaymentMethod); in.AmountPaise > balance {
		return nil, domain.Conflictf("insufficient %s balance: have %s, debit of %s requested",
			in.PaymentMethod, rupees(balance), rupees(in.AmountPaise))
	}

	entry := domain.LedgerEntry{
		AmountPaise:   in.AmountPaise,
		Kind:          domain.EntryKindDebit,
		PaymentMethod: in.PaymentMethod,
		Category:      in.Category,
		Description:   in.Description,
		Notes:         in.Notes,
	}
	if err := s.ledgerRepo.AppendEntries(ctx, date, []domain.LedgerEntry{entry}); err != nil {
		return nil, err
	}
	logger.Info("Expense recorded", "date", date, "category", in.Category, "method", in.PaymentMethod, "amount_paise", in.AmountPaise)
	return s.ledgerRepo.GetDay(ctx, date)
}

func (s *ledgerService) AddCredit(ctx context.Context, in EntryInput) (*domain.LedgerDay, error) {
	if in.AmountPaise <= 0 {
		return nil, domain.Validationf("amount must be greater than zero")
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Validationf("payment method must be %q or %q", domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.openDay(ctx, date); err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = domain.CategoryManualCredit
	}
	entry := domain.LedgerEntry{
		AmountPaise:   in.AmountPaise,
		Kind:          domain.EntryKindCredit,
		PaymentMethod: in.PaymentMethod,
		Category:      category,
		Description:   in.Description,
		Notes:         in.Notes,
	}
	if err := s.ledgerRepo.AppendEntries(ctx, date, []domain.LedgerEntry{entry}); err != nil {
		return nil, err
	}
	logger.Info("Income recorded", "date", date, "method", in.PaymentMethod, "amount_paise", in.AmountPaise)
	return s.ledgerRepo.GetDay(ctx, date)
}

func (s *ledgerService) Transfer(ctx context.Context, in TransferInput) (*domain.LedgerDay, error) {
	if in.AmountPaise <= 0 {
		return nil, domain.Validationf("transfer amount must be greater than zero")
	}
	if !domain.ValidPaymentMethod(in.From) || !domain.ValidPaymentMethod(in.To) {
		return nil, domain.Validationf("payment methods must be %q or %q", domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}
	if in.From == in.To {
		return nil, domain.Validationf("transfer source and destination must differ")
	}
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	day, err := s.openDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if balance := day.Balance(in.From); in.AmountPaise > balance {
		return nil, domain.Conflictf("insufficient %s balance for transfer: have %s, %s requested",
			in.From, rupees(balance), rupees(in.AmountPaise))
	}

	description := fmt.Sprintf("Transferred %s from %s to %s", rupees(in.AmountPaise), in.From, in.To)
	entries := []domain.LedgerEntry{
		{
			AmountPaise:   in.AmountPaise,
			Kind:          domain.EntryKindDebit,
			PaymentMethod: in.From,
			Category:      domain.CategoryInternalTransfer,
			Description:   description,
			Notes:         in.Notes,
		},
		{
			AmountPaise:   in.AmountPaise,
			Kind:          domain.EntryKindCredit,
			PaymentMethod: in.To,
			Category:      domain.CategoryInternalTransfer,
			Description:   description,
			Notes:         in.Notes,
		},
	}
	if err := s.ledgerRepo.AppendEntries(ctx, date, entries); err != nil {
		return nil, err
	}
	logger.Info("Internal transfer recorded", "date", date, "from", in.From, "to", in.To, "amount_paise", in.AmountPaise)
	return s.ledgerRepo.GetDay(ctx, date)
}

func (s *ledgerService) CloseDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	day, err := s.ledgerRepo.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if day.IsClosed {
		return nil, domain.Conflictf("day %s is already closed", date)
	}

	now := s.clock()
	day.IsClosed = true
	day.ClosedAt = &now
	day.ClosingCashPaise = day.Balance(domain.PaymentMethodCash)
	day.ClosingUPIPaise = day.Balance(domain.PaymentMethodUPI)
	day.ClosingTotalPaise = day.ClosingCashPaise + day.ClosingUPIPaise
	if err := s.ledgerRepo.SaveClose(ctx, day); err != nil {
		return nil, err
	}
	logger.Info("Day closed", "date", date, "closing_total_paise", day.ClosingTotalPaise)
	return day, nil
}

func (s *ledgerService) UndoClose(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	day, err := s.ledgerRepo.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if !day.IsClosed {
		return nil, domain.Conflictf("day %s is not closed", date)
	}
	if day.ClosedAt != nil {
		if elapsed := s.clock().Sub(*day.ClosedAt); elapsed > s.cfg.UndoWindow {
			return nil, domain.Conflictf("day %s was closed more than %s ago; undo is no longer allowed",
				date, s.cfg.UndoWindow)
		}
	}

	// A later day that carried this day's closing balance forward as its
	// opening balance depends on the frozen closing figures. Scan
	// forward until the bound, stopping at the first open day: nothing
	// can have been carried forward past a day that was never closed.
	cursor := date
	for i := 0; i < s.cfg.CarryForwardScanDays; i++ {
		cursor = cursor.AddDays(1)
		later, err := s.ledgerRepo.GetDay(ctx, cursor)
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if later.OpeningCarriedFrom == date && later.HasOpeningBalance() {
			return nil, domain.Conflictf("day %s carried forward the closing balance of %s; undo the dependency first",
				cursor, date)
		}
		if !later.IsClosed {
			break
		}
	}

	day.IsClosed = false
	day.ClosedAt = nil
	day.ClosingCashPaise = 0
	day.ClosingUPIPaise = 0
	day.ClosingTotalPaise = 0
	if err := s.ledgerRepo.SaveClose(ctx, day); err != nil {
		return nil, err
	}
	logger.Info("Day close undone", "date", date)
	return day, nil
}

func (s *ledgerService) SetOpeningBalance(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	day, err := s.ledgerRepo.GetOrCreateDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if day.IsClosed {
		return nil, domain.Conflictf("day %s is closed; no further entries can be added", date)
	}
	if day.HasOpeningBalance() {
		return nil, domain.Conflictf("opening balance for %s is already set (carried from %s)",
			date, day.OpeningCarriedFrom)
	}

	// Find the most recent closed day before this one.
	var source *domain.LedgerDay
	cursor := date
	for i := 0; i < s.cfg.OpeningLookbackDays; i++ {
		cursor = cursor.AddDays(-1)
		prev, err := s.ledgerRepo.GetDay(ctx, cursor)
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if prev.IsClosed {
			source = prev
			break
		}
	}
	if source == nil {
		return nil, domain.Conflictf("no closed day found before %s to carry a balance from", date)
	}
	if source.ClosingTotalPaise <= 0 {
		return nil, domain.Conflictf("closed day %s has no positive closing balance to carry forward", source.Date)
	}

	var entries []domain.LedgerEntry
	for _, m := range []struct {
		method domain.PaymentMethod
		amount int64
	}{
		{domain.PaymentMethodCash, source.ClosingCashPaise},
		{domain.PaymentMethodUPI, source.ClosingUPIPaise},
	} {
		if m.amount <= 0 {
			continue
		}
		entries = append(entries, domain.LedgerEntry{
			AmountPaise:   m.amount,
			Kind:          domain.EntryKindCredit,
			PaymentMethod: m.method,
			Category:      domain.CategoryOpeningBalance,
			Description:   fmt.Sprintf("Opening balance carried forward from %s", source.Date),
		})
	}

	day.OpeningCashPaise = source.ClosingCashPaise
	day.OpeningUPIPaise = source.ClosingUPIPaise
	day.OpeningTotalPaise = source.ClosingTotalPaise
	day.OpeningCarriedFrom = source.Date
	if err := s.ledgerRepo.SaveOpening(ctx, day, entries); err != nil {
		return nil, err
	}
	logger.Info("Opening balance carried forward", "date", date, "from", source.Date, "total_paise", day.OpeningTotalPaise)
	return s.ledgerRepo.GetDay(ctx, date)
}
