// Package dateutil holds the calendar-date value type used across client
// and inventory records, plus the transfer-income filing deadline rule.
package dateutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate reports a date entry that is not a valid 8-digit
// YYYYMMDD value. Callers reject the edit and leave the field unset.
var ErrInvalidDate = errors.New("invalid date: expected YYYYMMDD")

// Date is a calendar-naive date. The zero value means "unset", which
// renders as an empty string. Day-of-month overflow against the month
// length is deliberately not checked; values are kept exactly as the
// user entered them.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON renders the date as a "YYYY-MM-DD" string ("" when unset).
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "", "YYYY-MM-DD" and "YYYYMMDD".
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseFixed(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseFixed parses an 8-digit numeric date. Dashes, dots and slashes
// are stripped first so "2025-04-05" and "20250405" both parse. Year
// must fall in [1900,2100], month in [1,12], day in [1,31].
func ParseFixed(s string) (Date, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) != 8 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year := atoi4(digits[0:4])
	month := atoi2(digits[4:6])
	day := atoi2(digits[6:8])
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

func atoi4(s string) int {
	return int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

// FilingDeadline computes the 예정신고 due date for a transfer date: the
// last calendar day of the month two months after the end of the
// transfer month. An unset transfer date yields an unset deadline.
func FilingDeadline(transfer Date) Date {
	if transfer.IsZero() {
		return Date{}
	}
	// Day 0 of month+3 normalizes to the last day of month+2.
	t := time.Date(transfer.Year, transfer.Month+3, 0, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}
