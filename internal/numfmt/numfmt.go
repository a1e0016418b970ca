// Package numfmt renders and parses comma-grouped won amounts.
package numfmt

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// FormatThousands renders n with thousands separators ("1,234,567").
// Zero renders as the empty string: the ledger and inventory grids treat
// a zero amount as a blank cell.
func FormatThousands(n int64) string {
	if n == 0 {
		return ""
	}
	return printer.Sprintf("%d", n)
}

// ParseThousands parses a comma-grouped amount back to an integer.
// Empty or unparseable input yields 0, never an error; grid cells arrive
// blank more often than not. A trailing 원 suffix and surrounding
// whitespace are tolerated, as are fractional strings from spreadsheet
// cells (truncated toward zero).
func ParseThousands(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
