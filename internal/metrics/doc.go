// Package metrics is the aggregation core: pure functions that turn order,
// customer and product category records into the summary tables behind the
// dashboard.
//
// # Aggregators
//
// The package is organized by table family:
//
//  1. Date range filter: FilterByDateRange
//  2. RFM: ComputeRFM, SummarizeRFM, RankRFM
//  3. Delivery SLA: LateOrders, ComputeSLA
//  4. Order volume: MonthlyOrderVolume
//  5. Categorical: PaymentMethodCounts, ReviewScoreCounts, LowScoreReviews,
//     TopCategoriesPerYear, CustomersPerState
//
// # Filter scope
//
// Most tables are computed from orders inside the caller's window. Two are
// not: TopCategoriesPerYear and CustomersPerState always read the full
// collections. Scopes lists the policy of every table so callers can surface
// it instead of guessing.
//
// # Purity
//
// No function here performs I/O, keeps state between calls or mutates its
// inputs. Calling any aggregator twice with the same inputs yields identical
// output, so callers may run them concurrently over shared read-only slices.
//
// # Reductions
//
// Frequency and monetary deliberately use different reductions:
// countDistinctOrders counts unique order ids while sumPaymentRows adds every
// payment row, including several installments of one order.
package metrics
