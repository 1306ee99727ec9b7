// internal/model/date.go
package model

import (
	"fmt"
	"time"
)

// Date is a calendar day in UTC. Freshness signals compare at day
// granularity: two timestamps on the same UTC day are the same signal.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DatesEqual reports whether two optional dates carry the same signal.
// Two absent dates are equal.
func DatesEqual(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
