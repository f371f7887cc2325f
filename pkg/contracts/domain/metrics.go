package domain

import (
	"time"
)

// FilterScope names whether an aggregate honors the caller's date window
type FilterScope string

const (
	// FilterScopeDateRange tables are computed from orders inside the window
	FilterScopeDateRange FilterScope = "date_range"
	// FilterScopeUnfiltered tables ignore the window entirely
	FilterScopeUnfiltered FilterScope = "unfiltered"
)

// DateWindow is an inclusive [Start, End] range of order dates
type DateWindow struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d lies inside the window, bounds included
func (w DateWindow) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// RFMRow holds recency, frequency and monetary value for one customer state
type RFMRow struct {
	CustomerState string  `json:"customer_state"`
	Recency       int     `json:"recency"`
	Frequency     int     `json:"frequency"`
	Monetary      float64 `json:"monetary"`
}

// RFMSummary holds the headline averages over an RFM table.
// A nil field means the table was empty.
type RFMSummary struct {
	AverageRecency   *float64 `json:"average_recency"`
	AverageFrequency *float64 `json:"average_frequency"`
	AverageMonetary  *float64 `json:"average_monetary"`
}

// RFMRanking lists the best states for each RFM dimension
type RFMRanking struct {
	ByRecency   []RFMRow `json:"by_recency"`
	ByFrequency []RFMRow `json:"by_frequency"`
	ByMonetary  []RFMRow `json:"by_monetary"`
}

// StateCount is a count keyed by customer state
type StateCount struct {
	CustomerState string `json:"customer_state"`
	Count         int    `json:"count"`
}

// SLAReport summarizes orders delivered after their estimated delivery date
type SLAReport struct {
	LateOrderCount  int          `json:"late_order_count"`
	AverageLateDays *float64     `json:"average_late_days"`
	TopLateStates   []StateCount `json:"top_late_states"`
}

// MonthlyVolume is the number of distinct orders in a calendar month
type MonthlyVolume struct {
	Month YearMonth `json:"month"`
	Count int       `json:"count"`
}

// MonthlyVolumeSeries is the chronological order volume with its extremes.
// Peak and Trough are nil when there are no buckets.
type MonthlyVolumeSeries struct {
	Buckets []MonthlyVolume `json:"buckets"`
	Peak    *MonthlyVolume  `json:"peak"`
	Trough  *MonthlyVolume  `json:"trough"`
}

// CategoryCount is a count keyed by a categorical label
type CategoryCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ReviewScoreCount is the number of distinct orders that received a score
type ReviewScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// ReviewComment is a low-score review with both title and message present
type ReviewComment struct {
	OrderID     string `json:"order_id"`
	ReviewScore int    `json:"review_score"`
	Title       string `json:"review_comment_title"`
	Message     string `json:"review_comment_message"`
}

// CategoryYearCount is the number of observations of a category in a year
type CategoryYearCount struct {
	ProductCategory string `json:"product_category"`
	Year            int    `json:"year"`
	OrderCount      int    `json:"order_count"`
}

// YearlyTopCategories holds the best selling categories of one year
type YearlyTopCategories struct {
	Year       int                 `json:"year"`
	Categories []CategoryYearCount `json:"categories"`
}

// Dashboard bundles every aggregate table computed for one window
type Dashboard struct {
	Window            DateWindow             `json:"window"`
	RecencyAnchor     Date                   `json:"recency_anchor"`
	RFM               []RFMRow               `json:"rfm"`
	RFMSummary        RFMSummary             `json:"rfm_summary"`
	RFMRanking        RFMRanking             `json:"rfm_ranking"`
	SLA               SLAReport              `json:"sla"`
	MonthlyVolume     MonthlyVolumeSeries    `json:"monthly_volume"`
	PaymentMethods    []CategoryCount        `json:"payment_methods"`
	ReviewScores      []ReviewScoreCount     `json:"review_scores"`
	LowScoreReviews   []ReviewComment        `json:"low_score_reviews"`
	TopCategories     []YearlyTopCategories  `json:"top_categories"`
	CustomersPerState []StateCount           `json:"customers_per_state"`
	FilterScopes      map[string]FilterScope `json:"filter_scopes"`
	GeneratedAt       time.Time              `json:"generated_at"`
}
