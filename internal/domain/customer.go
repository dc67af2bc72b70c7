package domain

import "time"

// CreditEntry is an amount owed back to a customer, always tied to the
// rental it originated from. Entries are removed when repaid.
type CreditEntry struct {
	ID          int64     `json:"id"`
	RentalID    int64     `json:"rental_id"`
	AmountPaise int64     `json:"amount_paise"`
	Note        string    `json:"note"`
	CreatedOn   time.Time `json:"created_on"`
}

type Customer struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Address          string        `json:"address,omitempty"`
	Phone            string        `json:"phone"`
	Aadhar           string        `json:"aadhar,omitempty"`
	Profession       string        `json:"profession,omitempty"`
	OrderHistory     []int64       `json:"order_history,omitempty"`
	Credits          []CreditEntry `json:"credits,omitempty"`
	TotalCreditPaise int64         `json:"total_credit_paise"`
	CreatedOn        time.Time     `json:"created_on"`
}

// CreditForRental returns every credit entry tied to the given rental.
// A rental can accumulate several entries across partial returns.
func (c *Customer) CreditForRental(rentalID int64) []CreditEntry {
	var out []CreditEntry
	for _, e := range c.Credits {
		if e.RentalID == rentalID {
			out = append(out, e)
		}
	}
	return out
}
