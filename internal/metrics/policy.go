package metrics

import (
	"math"

	"orderpulse/pkg/contracts/domain"
)

// Table names, shared by the dashboard response, the exporter and the HTTP routes
const (
	TableRFM               = "rfm"
	TableRFMSummary        = "rfm_summary"
	TableRFMRanking        = "rfm_ranking"
	TableSLA               = "sla"
	TableMonthlyVolume     = "monthly_volume"
	TablePaymentMethods    = "payment_methods"
	TableReviewScores      = "review_scores"
	TableLowScoreReviews   = "low_score_reviews"
	TableTopCategories     = "top_categories"
	TableCustomersPerState = "customers_per_state"
)

// TopN is the length of every "top" ranking
const TopN = 5

// scopes is the filter policy of each table. Top categories and customers per
// state ignore the date window; whether that is intended is an open product
// question, so the policy is reported rather than unified.
var scopes = map[string]domain.FilterScope{
	TableRFM:               domain.FilterScopeDateRange,
	TableRFMSummary:        domain.FilterScopeDateRange,
	TableRFMRanking:        domain.FilterScopeDateRange,
	TableSLA:               domain.FilterScopeDateRange,
	TableMonthlyVolume:     domain.FilterScopeDateRange,
	TablePaymentMethods:    domain.FilterScopeDateRange,
	TableReviewScores:      domain.FilterScopeDateRange,
	TableLowScoreReviews:   domain.FilterScopeDateRange,
	TableTopCategories:     domain.FilterScopeUnfiltered,
	TableCustomersPerState: domain.FilterScopeUnfiltered,
}

// Scopes returns a copy of the filter policy keyed by table name
func Scopes() map[string]domain.FilterScope {
	out := make(map[string]domain.FilterScope, len(scopes))
	for table, scope := range scopes {
		out[table] = scope
	}
	return out
}

// ScopeOf returns the filter policy of a table; ok is false for unknown names
func ScopeOf(table string) (scope domain.FilterScope, ok bool) {
	scope, ok = scopes[table]
	return scope, ok
}

// Tables returns every table name in presentation order
func Tables() []string {
	return []string{
		TableRFM,
		TableRFMSummary,
		TableRFMRanking,
		TableSLA,
		TableMonthlyVolume,
		TablePaymentMethods,
		TableReviewScores,
		TableLowScoreReviews,
		TableTopCategories,
		TableCustomersPerState,
	}
}

// StateLookup resolves a customer id to a state code.
// Implementations return domain.UnknownState for ids they do not know.
type StateLookup interface {
	StateOf(customerID string) string
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

func floatPtr(v float64) *float64 {
	return &v
}
