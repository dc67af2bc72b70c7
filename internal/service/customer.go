package service

import (
	"context"
	"fmt"
	"strings"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/logger"
	"rentalshop-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
	rentalRepo   repository.RentalRepository
	forwarder    *ledgerForwarder
	clock        Clock
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	rentalRepo repository.RentalRepository,
	ledgerRepo repository.LedgerRepository,
	outboxRepo repository.OutboxRepository,
	clock Clock,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		rentalRepo:   rentalRepo,
		forwarder:    &ledgerForwarder{ledgerRepo: ledgerRepo, outboxRepo: outboxRepo, clock: clock},
		clock:        clock,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return domain.Validationf("customer name is required")
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return domain.Validationf("customer phone is required")
	}
	return s.customerRepo.Create(ctx, customer)
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) UpdateCustomer(ctx context.Context, customer *domain.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return domain.Validationf("customer name is required")
	}
	return s.customerRepo.Update(ctx, customer)
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, pageSize int32) ([]domain.Customer, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.customerRepo.List(ctx, search, page, pageSize)
}

// repayment is the per-rental settlement slice of a credit repayment.
type repayment struct {
	rentalID int64
	amount   int64
}

// RepayCredit settles outstanding customer credit, either for one rental
// or for the whole account. Each settled rental gets its own
// credit-repayment ledger entry dated today, and an audit note.
func (s *customerService) RepayCredit(ctx context.Context, in RepayCreditInput) (*domain.Customer, error) {
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Validationf("payment method must be %q or %q", domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}
	customer, err := s.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(customer.Credits) == 0 || customer.TotalCreditPaise <= 0 {
		return nil, domain.Conflictf("customer %s has no outstanding credit", customer.Name)
	}

	var repayments []repayment
	if in.RentalID != nil {
		var amount int64
		for _, c := range customer.CreditForRental(*in.RentalID) {
			amount += c.AmountPaise
		}
		if amount <= 0 {
			return nil, domain.NotFoundf("no credit entries for rental %d on customer %s", *in.RentalID, customer.Name)
		}
		repayments = append(repayments, repayment{rentalID: *in.RentalID, amount: amount})
	} else {
		// Group the account's credit entries by their rental, keeping
		// first-seen order.
		index := make(map[int64]int)
		for _, c := range customer.Credits {
			if i, ok := index[c.RentalID]; ok {
				repayments[i].amount += c.AmountPaise
				continue
			}
			index[c.RentalID] = len(repayments)
			repayments = append(repayments, repayment{rentalID: c.RentalID, amount: c.AmountPaise})
		}
	}

	now := s.clock()
	dateKey := domain.NewDateKey(now)
	var (
		intents []*domain.LedgerIntent
		repaid  int64
	)
	for _, p := range repayments {
		rentalID := p.rentalID
		entry := domain.LedgerEntry{
			CustomerID:    &customer.ID,
			RentalID:      &rentalID,
			AmountPaise:   p.amount,
			Kind:          domain.EntryKindCreditRepayment,
			PaymentMethod: in.PaymentMethod,
			Description: fmt.Sprintf("Credit repayment of %s by %s for rental %d via %s",
				rupees(p.amount), customer.Name, p.rentalID, in.PaymentMethod),
		}
		intent, err := s.forwarder.begin(ctx, dateKey, entry)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
		repaid += p.amount
	}

	if in.RentalID != nil {
		if err := s.customerRepo.RemoveCreditsByRental(ctx, customer.ID, *in.RentalID); err != nil {
			return nil, err
		}
		remaining := customer.TotalCreditPaise - repaid
		if remaining < 0 {
			remaining = 0
		}
		if err := s.customerRepo.SetTotalCredit(ctx, customer.ID, remaining); err != nil {
			return nil, err
		}
	} else {
		if err := s.customerRepo.ClearCredits(ctx, customer.ID); err != nil {
			return nil, err
		}
		if err := s.customerRepo.SetTotalCredit(ctx, customer.ID, 0); err != nil {
			return nil, err
		}
	}

	for _, p := range repayments {
		if err := s.appendRepaymentNote(ctx, p, customer.Name, in.PaymentMethod); err != nil {
			return nil, err
		}
	}
	for _, intent := range intents {
		if err := s.forwarder.commit(ctx, intent); err != nil {
			return nil, err
		}
	}

	logger.Info("Credit repaid", "customer_id", customer.ID, "amount_paise", repaid, "rentals", len(repayments), "method", in.PaymentMethod)
	return s.customerRepo.GetByID(ctx, customer.ID)
}

func (s *customerService) appendRepaymentNote(ctx context.Context, p repayment, customerName string, method domain.PaymentMethod) error {
	rental, err := s.rentalRepo.GetByID(ctx, p.rentalID)
	if err != nil {
		// The rental may have been purged; the repayment still stands.
		if domain.IsNotFound(err) {
			logger.Warn("Rental missing while noting credit repayment", "rental_id", p.rentalID)
			return nil
		}
		return err
	}
	rental.Notes = append(rental.Notes, domain.RentalNote{
		Text: fmt.Sprintf("Credit of %s repaid by %s via %s", rupees(p.amount), customerName, method),
	})
	return s.rentalRepo.Update(ctx, rental)
}
