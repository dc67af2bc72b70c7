package domain

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey is the canonical calendar-date key for ledger days, always in
// ISO yyyy-mm-dd form. Derive it through NewDateKey so every call site
// formats dates identically.
type DateKey string

// NewDateKey derives the date key for a point in time.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates a yyyy-mm-dd string and returns it as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return "", Validationf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return DateKey(s), nil
}

// Time returns the key's midnight in the local timezone.
func (k DateKey) Time() time.Time {
	t, _ := time.ParseInLocation(dateKeyLayout, string(k), time.Local)
	return t
}

// AddDays returns the key n calendar days away (n may be negative).
func (k DateKey) AddDays(n int) DateKey {
	return NewDateKey(k.Time().AddDate(0, 0, n))
}

func (k DateKey) String() string {
	return string(k)
}
