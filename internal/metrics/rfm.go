package metrics

import (
	"sort"

	"orderpulse/pkg/contracts/domain"
)

// ComputeRFM groups the orders by customer state and returns one row per state,
// sorted by state code.
//
// anchor is the latest order date of the unfiltered dataset, so recency never
// goes negative and does not move when the window changes. Orders whose
// customer cannot be resolved are grouped under domain.UnknownState.
func ComputeRFM(orders []domain.Order, states StateLookup, anchor domain.Date) []domain.RFMRow {
	groups := make(map[string][]domain.Order)
	for _, o := range orders {
		state := states.StateOf(o.CustomerID)
		groups[state] = append(groups[state], o)
	}

	rows := make([]domain.RFMRow, 0, len(groups))
	for state, group := range groups {
		rows = append(rows, domain.RFMRow{
			CustomerState: state,
			Recency:       anchor.DaysSince(latestOrderDate(group)),
			Frequency:     countDistinctOrders(group),
			Monetary:      sumPaymentRows(group),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CustomerState < rows[j].CustomerState
	})
	return rows
}

// SummarizeRFM returns the headline averages of an RFM table: recency to one
// decimal place, frequency and monetary to two. All fields are nil for an empty table.
func SummarizeRFM(rows []domain.RFMRow) domain.RFMSummary {
	if len(rows) == 0 {
		return domain.RFMSummary{}
	}

	var recency, frequency, monetary float64
	for _, r := range rows {
		recency += float64(r.Recency)
		frequency += float64(r.Frequency)
		monetary += r.Monetary
	}
	n := float64(len(rows))

	return domain.RFMSummary{
		AverageRecency:   floatPtr(roundTo(recency/n, 1)),
		AverageFrequency: floatPtr(roundTo(frequency/n, 2)),
		AverageMonetary:  floatPtr(roundTo(monetary/n, 2)),
	}
}

// RankRFM returns the best TopN states per dimension: most recent first, then
// highest frequency and highest monetary. Ties keep the input order.
func RankRFM(rows []domain.RFMRow) domain.RFMRanking {
	return domain.RFMRanking{
		ByRecency: topRFM(rows, func(a, b domain.RFMRow) bool {
			return a.Recency < b.Recency
		}),
		ByFrequency: topRFM(rows, func(a, b domain.RFMRow) bool {
			return a.Frequency > b.Frequency
		}),
		ByMonetary: topRFM(rows, func(a, b domain.RFMRow) bool {
			return a.Monetary > b.Monetary
		}),
	}
}

func topRFM(rows []domain.RFMRow, less func(a, b domain.RFMRow) bool) []domain.RFMRow {
	ranked := make([]domain.RFMRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// countDistinctOrders counts unique order ids. Installment rows of the same
// order count once.
func countDistinctOrders(orders []domain.Order) int {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.OrderID] = struct{}{}
	}
	return len(seen)
}

// sumPaymentRows adds payment_value over every row. Installment rows of the
// same order all contribute.
func sumPaymentRows(orders []domain.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.PaymentValue
	}
	return total
}

func latestOrderDate(orders []domain.Order) domain.Date {
	var latest domain.Date
	for i, o := range orders {
		if i == 0 || o.OrderDate.After(latest) {
			latest = o.OrderDate
		}
	}
	return latest
}
