package metrics

import (
	"math"
	"sort"
	"time"

	"orderpulse/pkg/contracts/domain"
)

// IsLate reports whether the order was delivered strictly after its estimated
// delivery date. Undelivered orders are never late.
func IsLate(o domain.Order) bool {
	return o.DeliveredCustomerDate != nil && o.DeliveredCustomerDate.After(o.EstimatedDeliveryDate)
}

// LateOrders returns the late rows in input order
func LateOrders(orders []domain.Order) []domain.Order {
	late := make([]domain.Order, 0)
	for _, o := range orders {
		if IsLate(o) {
			late = append(late, o)
		}
	}
	return late
}

// LateDays returns how many days late an order arrived, counting a partial day
// as a whole one. It is at least 1 for a late order and 0 otherwise.
func LateDays(o domain.Order) int {
	if !IsLate(o) {
		return 0
	}
	delay := o.DeliveredCustomerDate.Sub(o.EstimatedDeliveryDate)
	return int(math.Ceil(delay.Hours() / 24))
}

// ComputeSLA summarizes late deliveries among the orders.
//
// Each late order id is counted once, using its first row. AverageLateDays is
// nil when no order is late. TopLateStates holds up to TopN states by distinct
// late orders, ties in first encounter order.
func ComputeSLA(orders []domain.Order, states StateLookup) domain.SLAReport {
	late := distinctByOrderID(LateOrders(orders))

	report := domain.SLAReport{
		LateOrderCount: len(late),
		TopLateStates:  []domain.StateCount{},
	}
	if len(late) == 0 {
		return report
	}

	var totalDays int
	counts := make(map[string]int)
	encounter := make([]string, 0)
	for _, o := range late {
		totalDays += LateDays(o)

		state := states.StateOf(o.CustomerID)
		if _, seen := counts[state]; !seen {
			encounter = append(encounter, state)
		}
		counts[state]++
	}
	report.AverageLateDays = floatPtr(roundTo(float64(totalDays)/float64(len(late)), 2))

	ranked := make([]domain.StateCount, 0, len(encounter))
	for _, state := range encounter {
		ranked = append(ranked, domain.StateCount{CustomerState: state, Count: counts[state]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	report.TopLateStates = ranked

	return report
}

// LateRow is a late order flattened for tabular export
type LateRow struct {
	OrderID               string      `json:"order_id"`
	CustomerID            string      `json:"customer_id"`
	CustomerState         string      `json:"customer_state"`
	OrderDate             domain.Date `json:"order_date"`
	DeliveredCustomerDate time.Time   `json:"order_delivered_customer_date"`
	EstimatedDeliveryDate time.Time   `json:"order_estimated_delivery_date"`
	LateDays              int         `json:"late_days"`
}

// LateOrderTable returns one row per distinct late order with its resolved state
func LateOrderTable(orders []domain.Order, states StateLookup) []LateRow {
	late := distinctByOrderID(LateOrders(orders))
	rows := make([]LateRow, 0, len(late))
	for _, o := range late {
		rows = append(rows, LateRow{
			OrderID:               o.OrderID,
			CustomerID:            o.CustomerID,
			CustomerState:         states.StateOf(o.CustomerID),
			OrderDate:             o.OrderDate,
			DeliveredCustomerDate: *o.DeliveredCustomerDate,
			EstimatedDeliveryDate: o.EstimatedDeliveryDate,
			LateDays:              LateDays(o),
		})
	}
	return rows
}

func distinctByOrderID(orders []domain.Order) []domain.Order {
	seen := make(map[string]struct{}, len(orders))
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if _, dup := seen[o.OrderID]; dup {
			continue
		}
		seen[o.OrderID] = struct{}{}
		out = append(out, o)
	}
	return out
}
