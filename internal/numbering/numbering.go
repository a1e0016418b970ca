// Package numbering assigns and validates the user-facing sequence
// numbers on client records.
package numbering

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/atomtax/backoffice/internal/model"
)

// ErrDuplicateNumber reports a numbering collision detected at commit
// time. The save is aborted with no mutation.
var ErrDuplicateNumber = errors.New("client number already in use")

// Duplicate wraps ErrDuplicateNumber naming the conflicting value.
func Duplicate(number string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateNumber, number)
}

// NextAvailable returns the smallest positive integer not currently
// held by any client. Terminated clients are included here: their
// numbers stay reserved for gap-filling purposes even though they do
// not block explicit reuse. An empty list yields 1.
func NextAvailable(clients []model.Client) int {
	numbers := make([]int, 0, len(clients))
	for _, c := range clients {
		if n, err := strconv.Atoi(c.Number); err == nil && n > 0 {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)

	next := 1
	for _, n := range numbers {
		if n == next {
			next++
		} else if n > next {
			break
		}
	}
	return next
}

// IsDuplicate reports whether number is already held by a different,
// non-terminated client. excludeID skips the record being edited so a
// client can keep its own number. Numbers on terminated clients never
// count as duplicates.
func IsDuplicate(number, excludeID string, clients []model.Client) bool {
	for _, c := range clients {
		if c.IsTerminated {
			continue
		}
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if c.Number == number {
			return true
		}
	}
	return false
}
