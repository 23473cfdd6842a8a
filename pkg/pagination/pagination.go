// Package pagination holds the page arithmetic shared by the query engine and
// the REST layer. Pages are 1-indexed.
package pagination

import (
	"errors"
	"fmt"
)

// ErrInvalidPage is returned by ValidatePage for pages below 1.
var ErrInvalidPage = errors.New("page must be >= 1")

// PageCount returns ceil(total / limit). A zero total yields zero pages.
// A non-positive limit also yields zero pages.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return 1 + (total-1)/limit
}

// Offset returns the index of the first item on page. The caller must have
// validated 1 <= page <= PageCount, which keeps the product in range.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// IsIndexInBounds reports whether index falls in [offset, offset+limit).
func IsIndexInBounds(offset, limit, index int) bool {
	return index >= offset && index < offset+limit
}

// ValidatePage checks the 1-indexed page contract.
func ValidatePage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPage, page)
	}
	return nil
}

// Clamp bounds limit to [minLimit, maxLimit], using def when limit is zero or
// negative.
func Clamp(limit, minLimit, maxLimit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
