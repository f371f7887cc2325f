package metrics

import (
	"sort"

	"orderpulse/pkg/contracts/domain"
)

// MonthlyOrderVolume counts distinct orders per calendar month of order_date.
// Buckets are chronological and months without orders are absent. Peak and
// Trough pick the earliest bucket on ties and are nil for no orders.
func MonthlyOrderVolume(orders []domain.Order) domain.MonthlyVolumeSeries {
	perMonth := make(map[domain.YearMonth]map[string]struct{})
	for _, o := range orders {
		ym := domain.YearMonthOf(o.OrderDate)
		ids, ok := perMonth[ym]
		if !ok {
			ids = make(map[string]struct{})
			perMonth[ym] = ids
		}
		ids[o.OrderID] = struct{}{}
	}

	buckets := make([]domain.MonthlyVolume, 0, len(perMonth))
	for ym, ids := range perMonth {
		buckets = append(buckets, domain.MonthlyVolume{Month: ym, Count: len(ids)})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month.Before(buckets[j].Month)
	})

	series := domain.MonthlyVolumeSeries{Buckets: buckets}
	if len(buckets) == 0 {
		return series
	}

	peak, trough := buckets[0], buckets[0]
	for _, b := range buckets[1:] {
		// strict comparisons keep the earliest bucket on ties
		if b.Count > peak.Count {
			peak = b
		}
		if b.Count < trough.Count {
			trough = b
		}
	}
	series.Peak = &peak
	series.Trough = &trough

	return series
}
