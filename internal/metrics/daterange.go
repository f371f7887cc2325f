package metrics

import (
	"errors"
	"fmt"

	"orderpulse/pkg/contracts/domain"
)

// ErrInvalidDateRange is returned when a window starts after it ends.
// It is distinct from an empty result: a valid window may simply hold no orders.
var ErrInvalidDateRange = errors.New("invalid date range: start is after end")

// ValidateWindow checks that the window is ordered
func ValidateWindow(window domain.DateWindow) error {
	if window.Start.After(window.End) {
		return fmt.Errorf("%w (start=%s, end=%s)", ErrInvalidDateRange, window.Start, window.End)
	}
	return nil
}

// FilterByDateRange returns the orders with start <= order_date <= end, in input order
func FilterByDateRange(orders []domain.Order, start, end domain.Date) ([]domain.Order, error) {
	window := domain.DateWindow{Start: start, End: end}
	if err := ValidateWindow(window); err != nil {
		return nil, err
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if window.Contains(o.OrderDate) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}
