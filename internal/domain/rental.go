package domain

import "time"

type RentalStatus string

const (
	RentalStatusRented          RentalStatus = "RENTED"
	RentalStatusPartialReturn   RentalStatus = "PARTIAL_RETURN"
	RentalStatusReturnCompleted RentalStatus = "RETURN_COMPLETED"
)

// ReturnEvent records one partial return against a rental item.
type ReturnEvent struct {
	ID    int64     `json:"id"`
	Count int32     `json:"count"`
	Date  time.Time `json:"date"`
}

// RentalItem is one tool entry within a rental. Name, category and price
// are snapshots captured at rental creation time; all charge calculations
// use these snapshots, not live tool records.
type RentalItem struct {
	ID            int64         `json:"id"`
	ToolID        int64         `json:"tool_id"`
	ToolName      string        `json:"tool_name"`
	Category      ToolCategory  `json:"category"`
	PricePaise    int64         `json:"price_paise"`
	Count         int32         `json:"count"`
	ReturnedCount int32         `json:"returned_count"`
	RentalDate    time.Time     `json:"rental_date"`
	ReturnEvents  []ReturnEvent `json:"return_events,omitempty"`
}

// RemainingCount returns the still-unreturned quantity.
func (it *RentalItem) RemainingCount() int32 {
	return it.Count - it.ReturnedCount
}

// Adjustment is a discount or credit recorded against a rental. A nil
// ToolID means the adjustment applies to the rental as a whole.
type Adjustment struct {
	ID          int64     `json:"id"`
	ToolID      *int64    `json:"tool_id,omitempty"`
	AmountPaise int64     `json:"amount_paise"`
	EventDate   time.Time `json:"event_date"`
	Note        string    `json:"note"`
	CreatedOn   time.Time `json:"created_on"`
}

// RentalNote is an append-only audit trail entry. Notes are never edited
// or deleted.
type RentalNote struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedOn time.Time `json:"created_on"`
}

type Rental struct {
	ID                 int64        `json:"id"`
	CustomerID         int64        `json:"customer_id"`
	Items              []RentalItem `json:"items"`
	InitialAmountPaise int64        `json:"initial_amount_paise"`
	TotalAmountPaise   int64        `json:"total_amount_paise"`
	Status             RentalStatus `json:"status"`
	Discounts          []Adjustment `json:"discounts,omitempty"`
	Credits            []Adjustment `json:"credits,omitempty"`
	Notes              []RentalNote `json:"notes,omitempty"`
	CreatedOn          time.Time    `json:"created_on"`
}

// Item returns the line item for the given tool, or nil.
func (r *Rental) Item(toolID int64) *RentalItem {
	for i := range r.Items {
		if r.Items[i].ToolID == toolID {
			return &r.Items[i]
		}
	}
	return nil
}

// TotalDiscountPaise sums every discount recorded on the rental.
func (r *Rental) TotalDiscountPaise() int64 {
	var sum int64
	for _, d := range r.Discounts {
		sum += d.AmountPaise
	}
	return sum
}

// TotalCreditPaise sums every credit recorded on the rental.
func (r *Rental) TotalCreditPaise() int64 {
	var sum int64
	for _, c := range r.Credits {
		sum += c.AmountPaise
	}
	return sum
}
