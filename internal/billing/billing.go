// Package billing holds the pure charge arithmetic for rentals: the
// inclusive calendar-day formula, per-event charges, and the running
// total and status derivation recomputed after every rental mutation.
package billing

import (
	"time"

	"rentalshop-backend/internal/domain"
)

// CalendarDays returns the inclusive number of calendar days between two
// dates: same-day counts as 1, next-day as 2. Never returns less than 1.
func CalendarDays(start, end time.Time) int32 {
	s := midnight(start)
	e := midnight(end)
	diff := e.Sub(s)
	days := int32(diff.Hours()/24) + 1
	if diff%(24*time.Hour) != 0 {
		// Partial day across a DST boundary still counts as a full day.
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ItemCharge computes the day-based charge for count units of a power
// tool rented from rentalDate through asOf.
func ItemCharge(count int32, pricePaise int64, rentalDate, asOf time.Time) int64 {
	return int64(count) * pricePaise * int64(CalendarDays(rentalDate, asOf))
}

// EventCharge is the charge for a single return event, frozen at the
// event's own date.
func EventCharge(item *domain.RentalItem, ev domain.ReturnEvent) int64 {
	if item.Category == domain.ToolCategoryAccessory {
		return int64(ev.Count) * item.PricePaise
	}
	return ItemCharge(ev.Count, item.PricePaise, item.RentalDate, ev.Date)
}

// TotalAmount recomputes the rental's running total: unreturned
// quantities are day-charged as of now, historical return events stay
// frozen at their return date, accessories are charged flat, and the
// rental's discounts and credits are subtracted at the end.
func TotalAmount(r *domain.Rental, now time.Time) int64 {
	var total int64
	for i := range r.Items {
		item := &r.Items[i]

		if remaining := item.RemainingCount(); remaining > 0 {
			if item.Category == domain.ToolCategoryAccessory {
				total += int64(remaining) * item.PricePaise
			} else {
				total += ItemCharge(remaining, item.PricePaise, item.RentalDate, now)
			}
		}

		for _, ev := range item.ReturnEvents {
			total += EventCharge(item, ev)
		}
	}
	return total - r.TotalDiscountPaise() - r.TotalCreditPaise()
}

// Status derives the rental status from the items' return state.
// Accessories never count: a rental of only accessories is completed.
func Status(r *domain.Rental) domain.RentalStatus {
	allReturned := true
	someReturned := false
	for i := range r.Items {
		item := &r.Items[i]
		if item.Category == domain.ToolCategoryAccessory {
			continue
		}
		if item.ReturnedCount < item.Count {
			allReturned = false
		}
		if item.ReturnedCount > 0 {
			someReturned = true
		}
	}
	switch {
	case allReturned:
		return domain.RentalStatusReturnCompleted
	case someReturned:
		return domain.RentalStatusPartialReturn
	default:
		return domain.RentalStatusRented
	}
}

// RemainingAmount is the live projection of what the unreturned portion
// would cost if everything came back now. It is never persisted.
func RemainingAmount(r *domain.Rental, now time.Time) int64 {
	var sum int64
	for i := range r.Items {
		item := &r.Items[i]
		if item.Category == domain.ToolCategoryAccessory {
			continue
		}
		if remaining := item.RemainingCount(); remaining > 0 {
			sum += ItemCharge(remaining, item.PricePaise, item.RentalDate, now)
		}
	}
	return sum
}
