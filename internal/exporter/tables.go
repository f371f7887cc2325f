package exporter

import (
	"fmt"

	"orderpulse/internal/metrics"
	"orderpulse/pkg/contracts/domain"
)

// TableLateOrders is the detail sheet listing every late order
const TableLateOrders = "late_orders"

// Sheet is one aggregate table flattened to string cells
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// TableSheet flattens the value of a named table. data must have the type the
// metrics service returns for that table.
func TableSheet(table string, data interface{}) (Sheet, error) {
	sheet := Sheet{Name: table}

	switch v := data.(type) {
	case []domain.RFMRow:
		sheet.Headers = []string{"customer_state", "recency", "frequency", "monetary"}
		sheet.Rows = rfmRows(v, "")
	case domain.RFMSummary:
		sheet.Headers = []string{"average_recency", "average_frequency", "average_monetary"}
		sheet.Rows = [][]string{{
			formatOptionalFloat(v.AverageRecency),
			formatOptionalFloat(v.AverageFrequency),
			formatOptionalFloat(v.AverageMonetary),
		}}
	case domain.RFMRanking:
		sheet.Headers = []string{"ranking", "customer_state", "recency", "frequency", "monetary"}
		sheet.Rows = append(sheet.Rows, rfmRows(v.ByRecency, "recency")...)
		sheet.Rows = append(sheet.Rows, rfmRows(v.ByFrequency, "frequency")...)
		sheet.Rows = append(sheet.Rows, rfmRows(v.ByMonetary, "monetary")...)
	case domain.SLAReport:
		sheet.Headers = []string{"late_order_count", "average_late_days", "rank", "customer_state", "late_orders"}
		summary := []string{formatInt(v.LateOrderCount), formatOptionalFloat(v.AverageLateDays)}
		if len(v.TopLateStates) == 0 {
			sheet.Rows = [][]string{append(summary, "", "", "")}
			break
		}
		for i, sc := range v.TopLateStates {
			sheet.Rows = append(sheet.Rows, append(append([]string{}, summary...),
				formatInt(i+1), sc.CustomerState, formatInt(sc.Count)))
		}
	case domain.MonthlyVolumeSeries:
		sheet.Headers = []string{"month", "order_count", "marker"}
		for _, b := range v.Buckets {
			marker := ""
			switch {
			case v.Peak != nil && v.Peak.Month == b.Month:
				marker = "peak"
			case v.Trough != nil && v.Trough.Month == b.Month:
				marker = "trough"
			}
			sheet.Rows = append(sheet.Rows, []string{b.Month.String(), formatInt(b.Count), marker})
		}
	case []domain.CategoryCount:
		sheet.Headers = []string{"payment_type", "order_count"}
		for _, c := range v {
			sheet.Rows = append(sheet.Rows, []string{c.Key, formatInt(c.Count)})
		}
	case []domain.ReviewScoreCount:
		sheet.Headers = []string{"review_score", "order_count"}
		for _, c := range v {
			sheet.Rows = append(sheet.Rows, []string{formatInt(c.Score), formatInt(c.Count)})
		}
	case []domain.ReviewComment:
		sheet.Headers = []string{"order_id", "review_score", "review_comment_title", "review_comment_message"}
		for _, c := range v {
			sheet.Rows = append(sheet.Rows, []string{c.OrderID, formatInt(c.ReviewScore), c.Title, c.Message})
		}
	case []domain.YearlyTopCategories:
		sheet.Headers = []string{"year", "rank", "product_category", "order_count"}
		for _, y := range v {
			for i, c := range y.Categories {
				sheet.Rows = append(sheet.Rows, []string{formatInt(y.Year), formatInt(i + 1), c.ProductCategory, formatInt(c.OrderCount)})
			}
		}
	case []domain.StateCount:
		sheet.Headers = []string{"customer_state", "customer_count"}
		for _, c := range v {
			sheet.Rows = append(sheet.Rows, []string{c.CustomerState, formatInt(c.Count)})
		}
	case []metrics.LateRow:
		sheet.Headers = []string{"order_id", "customer_id", "customer_state", "order_date",
			"order_delivered_customer_date", "order_estimated_delivery_date", "late_days"}
		for _, r := range v {
			sheet.Rows = append(sheet.Rows, []string{
				r.OrderID, r.CustomerID, r.CustomerState, formatDate(r.OrderDate),
				formatTimestamp(r.DeliveredCustomerDate), formatTimestamp(r.EstimatedDeliveryDate),
				formatInt(r.LateDays),
			})
		}
	default:
		return Sheet{}, fmt.Errorf("table %s: unsupported value %T", table, data)
	}

	return sheet, nil
}

func rfmRows(rows []domain.RFMRow, label string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := []string{r.CustomerState, formatInt(r.Recency), formatInt(r.Frequency), formatFloat(r.Monetary)}
		if label != "" {
			cells = append([]string{label}, cells...)
		}
		out = append(out, cells)
	}
	return out
}

// tableValues pairs each dashboard table with its value in presentation order
func tableValues(d domain.Dashboard) map[string]interface{} {
	return map[string]interface{}{
		metrics.TableRFM:               d.RFM,
		metrics.TableRFMSummary:        d.RFMSummary,
		metrics.TableRFMRanking:        d.RFMRanking,
		metrics.TableSLA:               d.SLA,
		metrics.TableMonthlyVolume:     d.MonthlyVolume,
		metrics.TablePaymentMethods:    d.PaymentMethods,
		metrics.TableReviewScores:      d.ReviewScores,
		metrics.TableLowScoreReviews:   d.LowScoreReviews,
		metrics.TableTopCategories:     d.TopCategories,
		metrics.TableCustomersPerState: d.CustomersPerState,
	}
}

// DashboardSheets flattens every table of the dashboard, followed by the
// late order detail when lateOrders is non-nil
func DashboardSheets(d domain.Dashboard, lateOrders []metrics.LateRow) ([]Sheet, error) {
	values := tableValues(d)
	sheets := make([]Sheet, 0, len(values)+1)
	for _, table := range metrics.Tables() {
		sheet, err := TableSheet(table, values[table])
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	if lateOrders != nil {
		sheet, err := TableSheet(TableLateOrders, lateOrders)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
