package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentalshop-backend/internal/billing"
	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/logger"
	"rentalshop-backend/internal/repository"
)

type rentalService struct {
	rentalRepo   repository.RentalRepository
	toolRepo     repository.ToolRepository
	customerRepo repository.CustomerRepository
	forwarder    *ledgerForwarder
	clock        Clock
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	toolRepo repository.ToolRepository,
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
	outboxRepo repository.OutboxRepository,
	clock Clock,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		toolRepo:     toolRepo,
		customerRepo: customerRepo,
		forwarder:    &ledgerForwarder{ledgerRepo: ledgerRepo, outboxRepo: outboxRepo, clock: clock},
		clock:        clock,
	}
}

func rupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error) {
	if len(in.Items) == 0 {
		return nil, domain.Validationf("at least one tool is required")
	}
	for _, text := range in.Notes {
		if strings.TrimSpace(text) == "" {
			return nil, domain.Validationf("each note must have non-empty text")
		}
	}

	customer, err := s.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var (
		initialAmount    int64
		accessoryAmount  int64
		items            []domain.RentalItem
		toolDetails      []string
		accessoryDetails []string
	)

	// Validate every item before touching inventory so a rejected
	// request leaves no side effects.
	for _, item := range in.Items {
		if item.Count < 1 {
			return nil, domain.Validationf("each tool must have a count >= 1")
		}
		tool, err := s.toolRepo.GetByID(ctx, item.ToolID)
		if err != nil {
			return nil, err
		}
		if tool.Category == domain.ToolCategoryPowerTool && tool.AvailableCount < item.Count {
			return nil, domain.Conflictf("insufficient count for tool %s: available %d, requested %d",
				tool.Name, tool.AvailableCount, item.Count)
		}

		itemTotal := int64(item.Count) * tool.PricePaise
		initialAmount += itemTotal
		detail := fmt.Sprintf("%d unit(s) of %s", item.Count, tool.Name)
		if tool.Category == domain.ToolCategoryAccessory {
			accessoryAmount += itemTotal
			accessoryDetails = append(accessoryDetails, detail)
			detail += " (Purchased)"
		}
		toolDetails = append(toolDetails, detail)

		items = append(items, domain.RentalItem{
			ToolID:     tool.ID,
			ToolName:   tool.Name,
			Category:   tool.Category,
			PricePaise: tool.PricePaise,
			Count:      item.Count,
			RentalDate: now,
		})
	}

	if accessoryAmount > 0 && !domain.ValidPaymentMethod(in.AccessoryPaymentMethod) {
		return nil, domain.Validationf("payment method for accessories must be %q or %q",
			domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}

	for i := range items {
		if items[i].Category == domain.ToolCategoryPowerTool {
			if err := s.toolRepo.AdjustAvailableCount(ctx, items[i].ToolID, -items[i].Count); err != nil {
				return nil, err
			}
		}
	}

	rental := &domain.Rental{
		CustomerID:         in.CustomerID,
		Items:              items,
		InitialAmountPaise: initialAmount,
	}
	defaultNote := fmt.Sprintf("Rental created for customer %s with %d item(s): %s. Initial Amount: %s",
		customer.Name, len(in.Items), strings.Join(toolDetails, ", "), rupees(initialAmount))
	rental.Notes = append(rental.Notes, domain.RentalNote{Text: defaultNote})
	for _, text := range in.Notes {
		rental.Notes = append(rental.Notes, domain.RentalNote{Text: text})
	}
	rental.TotalAmountPaise = billing.TotalAmount(rental, now)
	rental.Status = billing.Status(rental)

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}
	if err := s.customerRepo.AppendOrderHistory(ctx, in.CustomerID, rental.ID); err != nil {
		return nil, err
	}

	if accessoryAmount > 0 {
		entry := domain.LedgerEntry{
			RentalID:      &rental.ID,
			CustomerID:    &customer.ID,
			AmountPaise:   accessoryAmount,
			Kind:          domain.EntryKindAccessoryPurchase,
			PaymentMethod: in.AccessoryPaymentMethod,
			Description: fmt.Sprintf("Accessory purchase for customer %s (Rental created): %s, Amount: %s via %s",
				customer.Name, strings.Join(accessoryDetails, ", "), rupees(accessoryAmount), in.AccessoryPaymentMethod),
		}
		intent, err := s.forwarder.begin(ctx, domain.NewDateKey(now), entry)
		if err != nil {
			return nil, err
		}
		if err := s.forwarder.commit(ctx, intent); err != nil {
			return nil, err
		}
	}

	logger.Info("Rental created", "rental_id", rental.ID, "customer_id", customer.ID, "items", len(rental.Items))
	return rental, nil
}

func (s *rentalService) TrackRental(ctx context.Context, id int64) (*RentalProjection, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projection(rental), nil
}

func (s *rentalService) projection(rental *domain.Rental) *RentalProjection {
	return &RentalProjection{
		Rental:               rental,
		RemainingAmountPaise: billing.RemainingAmount(rental, s.clock()),
		TotalDiscountPaise:   rental.TotalDiscountPaise(),
		TotalCreditPaise:     rental.TotalCreditPaise(),
	}
}

func (s *rentalService) resolveReturnDate(in *time.Time) (time.Time, error) {
	now := s.clock()
	if in == nil {
		return now, nil
	}
	if in.After(now) {
		return time.Time{}, domain.Validationf("return date cannot be in the future")
	}
	return *in, nil
}

func validateAdjustments(discount, credit int64, method domain.PaymentMethod) error {
	if discount < 0 {
		return domain.Validationf("discount must be a non-negative amount")
	}
	if credit < 0 {
		return domain.Validationf("credit must be a non-negative amount")
	}
	if !domain.ValidPaymentMethod(method) {
		return domain.Validationf("payment method must be %q or %q", domain.PaymentMethodCash, domain.PaymentMethodUPI)
	}
	return nil
}

func (s *rentalService) MarkReturn(ctx context.Context, in MarkReturnInput) (*RentalProjection, error) {
	if in.Count < 1 {
		return nil, domain.Validationf("return count must be >= 1")
	}
	if err := validateAdjustments(in.DiscountPaise, in.CreditPaise, in.PaymentMethod); err != nil {
		return nil, err
	}
	returnDate, err := s.resolveReturnDate(in.ReturnDate)
	if err != nil {
		return nil, err
	}

	rental, err := s.rentalRepo.GetByID(ctx, in.RentalID)
	if err != nil {
		return nil, err
	}
	item := rental.Item(in.ToolID)
	if item == nil {
		return nil, domain.NotFoundf("tool %d not found in rental %d", in.ToolID, in.RentalID)
	}
	if item.Category == domain.ToolCategoryAccessory {
		return nil, domain.Conflictf("accessories are non-returnable")
	}
	if remaining := item.RemainingCount(); in.Count > remaining {
		return nil, domain.Conflictf("cannot return %d units of %s; only %d remaining", in.Count, item.ToolName, remaining)
	}

	charge := billing.ItemCharge(in.Count, item.PricePaise, item.RentalDate, returnDate)
	if in.DiscountPaise+in.CreditPaise > charge {
		return nil, domain.Conflictf("discount (%s) + credit (%s) cannot exceed charge (%s)",
			rupees(in.DiscountPaise), rupees(in.CreditPaise), rupees(charge))
	}

	customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID)
	if err != nil {
		return nil, err
	}

	item.ReturnedCount += in.Count
	item.ReturnEvents = append(item.ReturnEvents, domain.ReturnEvent{Count: in.Count, Date: returnDate})

	if in.DiscountPaise > 0 {
		note := in.Note
		if note == "" {
			note = "Discount applied on return"
		}
		rental.Discounts = append(rental.Discounts, domain.Adjustment{
			ToolID: &item.ToolID, AmountPaise: in.DiscountPaise, EventDate: returnDate, Note: note,
		})
	}
	if in.CreditPaise > 0 {
		note := in.Note
		if note == "" {
			note = "Credit applied on return"
		}
		rental.Credits = append(rental.Credits, domain.Adjustment{
			ToolID: &item.ToolID, AmountPaise: in.CreditPaise, EventDate: returnDate, Note: note,
		})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Returned %d unit(s) of %s on %s. Charge: %s, Payment Method: %s",
		in.Count, item.ToolName, domain.NewDateKey(returnDate), rupees(charge), in.PaymentMethod)
	if in.DiscountPaise > 0 {
		fmt.Fprintf(&sb, ", Discount: %s", rupees(in.DiscountPaise))
	}
	if in.CreditPaise > 0 {
		fmt.Fprintf(&sb, ", Credit: %s", rupees(in.CreditPaise))
	}
	if in.Note != "" {
		fmt.Fprintf(&sb, ", Note: %s", in.Note)
	}
	returnNote := sb.String()
	rental.Notes = append(rental.Notes, domain.RentalNote{Text: returnNote})

	now := s.clock()
	rental.TotalAmountPaise = billing.TotalAmount(rental, now)
	rental.Status = billing.Status(rental)

	// Everything validated; apply the side effects. A crash between the
	// saves below can leave the ledger entry pending, which the outbox
	// sweep repairs.
	var intent *domain.LedgerIntent
	if net := charge - in.DiscountPaise - in.CreditPaise; net > 0 {
		entry := domain.LedgerEntry{
			RentalID:      &rental.ID,
			CustomerID:    &customer.ID,
			AmountPaise:   net,
			Kind:          domain.EntryKindReturn,
			PaymentMethod: in.PaymentMethod,
			Description:   returnNote,
		}
		if intent, err = s.forwarder.begin(ctx, domain.NewDateKey(returnDate), entry); err != nil {
			return nil, err
		}
	}

	if in.CreditPaise > 0 {
		creditNote := in.Note
		if creditNote == "" {
			creditNote = fmt.Sprintf("Credit for rental of %s", item.ToolName)
		}
		entry := &domain.CreditEntry{RentalID: rental.ID, AmountPaise: in.CreditPaise, Note: creditNote}
		if err := s.customerRepo.AppendCredit(ctx, customer.ID, entry); err != nil {
			return nil, err
		}
		if err := s.customerRepo.SetTotalCredit(ctx, customer.ID, customer.TotalCreditPaise+in.CreditPaise); err != nil {
			return nil, err
		}
	}

	if err := s.toolRepo.AdjustAvailableCount(ctx, item.ToolID, in.Count); err != nil {
		// The catalog record may have been deleted since rental time;
		// the return itself still stands.
		if !domain.IsNotFound(err) {
			return nil, err
		}
		logger.Warn("Tool missing while restoring inventory", "tool_id", item.ToolID, "rental_id", rental.ID)
	}

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}
	if intent != nil {
		if err := s.forwarder.commit(ctx, intent); err != nil {
			return nil, err
		}
	}

	logger.Info("Return marked", "rental_id", rental.ID, "tool_id", item.ToolID, "count", in.Count, "status", rental.Status)
	return s.projection(rental), nil
}

func (s *rentalService) MarkAllReturned(ctx context.Context, in MarkAllReturnedInput) (*RentalProjection, error) {
	if err := validateAdjustments(in.DiscountPaise, in.CreditPaise, in.PaymentMethod); err != nil {
		return nil, err
	}
	returnDate, err := s.resolveReturnDate(in.ReturnDate)
	if err != nil {
		return nil, err
	}

	rental, err := s.rentalRepo.GetByID(ctx, in.RentalID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID)
	if err != nil {
		return nil, err
	}

	// First pass: compute the combined charge without mutating anything
	// so the over-adjustment check can reject cleanly.
	var totalCharge int64
	type pendingReturn struct {
		item  *domain.RentalItem
		count int32
	}
	var pending []pendingReturn
	for i := range rental.Items {
		item := &rental.Items[i]
		if item.Category == domain.ToolCategoryAccessory {
			continue
		}
		remaining := item.RemainingCount()
		if remaining <= 0 {
			continue
		}
		totalCharge += billing.ItemCharge(remaining, item.PricePaise, item.RentalDate, returnDate)
		pending = append(pending, pendingReturn{item: item, count: remaining})
	}
	if len(pending) == 0 {
		return nil, domain.Conflictf("no returnable tools left to mark as returned")
	}
	if in.DiscountPaise+in.CreditPaise > totalCharge {
		return nil, domain.Conflictf("discount (%s) + credit (%s) cannot exceed total charge (%s)",
			rupees(in.DiscountPaise), rupees(in.CreditPaise), rupees(totalCharge))
	}

	dateKey := domain.NewDateKey(returnDate)
	var toolDetails []string
	for _, p := range pending {
		charge := billing.ItemCharge(p.count, p.item.PricePaise, p.item.RentalDate, returnDate)
		p.item.ReturnedCount = p.item.Count
		p.item.ReturnEvents = append(p.item.ReturnEvents, domain.ReturnEvent{Count: p.count, Date: returnDate})
		toolDetails = append(toolDetails, fmt.Sprintf("%d unit(s) of %s", p.count, p.item.ToolName))
		rental.Notes = append(rental.Notes, domain.RentalNote{
			Text: fmt.Sprintf("Returned %d unit(s) of %s on %s. Charge: %s, Payment Method: %s",
				p.count, p.item.ToolName, dateKey, rupees(charge), in.PaymentMethod),
		})
	}

	if in.DiscountPaise > 0 {
		note := in.Note
		if note == "" {
			note = "Discount applied for marking all tools returned"
		}
		rental.Discounts = append(rental.Discounts, domain.Adjustment{
			AmountPaise: in.DiscountPaise, EventDate: returnDate, Note: note,
		})
	}
	if in.CreditPaise > 0 {
		note := in.Note
		if note == "" {
			note = "Credit applied for marking all tools returned"
		}
		rental.Credits = append(rental.Credits, domain.Adjustment{
			AmountPaise: in.CreditPaise, EventDate: returnDate, Note: note,
		})
	}
	if in.DiscountPaise > 0 || in.CreditPaise > 0 {
		var parts []string
		if in.DiscountPaise > 0 {
			parts = append(parts, fmt.Sprintf("%s discount", rupees(in.DiscountPaise)))
		}
		if in.CreditPaise > 0 {
			parts = append(parts, fmt.Sprintf("%s credit", rupees(in.CreditPaise)))
		}
		noteText := fmt.Sprintf("Applied %s on marking all tools returned: %s, Payment Method: %s",
			strings.Join(parts, " and "), strings.Join(toolDetails, ", "), in.PaymentMethod)
		if in.Note != "" {
			noteText += ", Note: " + in.Note
		}
		rental.Notes = append(rental.Notes, domain.RentalNote{Text: noteText})
	}

	now := s.clock()
	rental.TotalAmountPaise = billing.TotalAmount(rental, now)
	rental.Status = billing.Status(rental)

	var intent *domain.LedgerIntent
	if net := totalCharge - in.DiscountPaise - in.CreditPaise; net > 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Returned %s on %s. Total Charge: %s", strings.Join(toolDetails, ", "), dateKey, rupees(totalCharge))
		if in.DiscountPaise > 0 {
			fmt.Fprintf(&sb, ", Discount: %s", rupees(in.DiscountPaise))
		}
		if in.CreditPaise > 0 {
			fmt.Fprintf(&sb, ", Credit: %s", rupees(in.CreditPaise))
		}
		if in.Note != "" {
			fmt.Fprintf(&sb, ", Note: %s", in.Note)
		}
		entry := domain.LedgerEntry{
			RentalID:      &rental.ID,
			CustomerID:    &customer.ID,
			AmountPaise:   net,
			Kind:          domain.EntryKindReturn,
			PaymentMethod: in.PaymentMethod,
			Description:   sb.String(),
		}
		if intent, err = s.forwarder.begin(ctx, dateKey, entry); err != nil {
			return nil, err
		}
	}

	if in.CreditPaise > 0 {
		creditNote := in.Note
		if creditNote == "" {
			creditNote = "Credit for marking all tools returned"
		}
		entry := &domain.CreditEntry{RentalID: rental.ID, AmountPaise: in.CreditPaise, Note: creditNote}
		if err := s.customerRepo.AppendCredit(ctx, customer.ID, entry); err != nil {
			return nil, err
		}
		if err := s.customerRepo.SetTotalCredit(ctx, customer.ID, customer.TotalCreditPaise+in.CreditPaise); err != nil {
			return nil, err
		}
	}

	for _, p := range pending {
		if err := s.toolRepo.AdjustAvailableCount(ctx, p.item.ToolID, p.count); err != nil {
			if !domain.IsNotFound(err) {
				return nil, err
			}
			logger.Warn("Tool missing while restoring inventory", "tool_id", p.item.ToolID, "rental_id", rental.ID)
		}
	}

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}
	if intent != nil {
		if err := s.forwarder.commit(ctx, intent); err != nil {
			return nil, err
		}
	}

	logger.Info("All returnable tools marked returned", "rental_id", rental.ID, "tools", len(pending), "status", rental.Status)
	return s.projection(rental), nil
}

func (s *rentalService) ListRentals(ctx context.Context, search, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.rentalRepo.List(ctx, search, status, page, pageSize)
}
