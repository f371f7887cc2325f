package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderpulse/internal/store"
	"orderpulse/pkg/contracts/domain"
)

// Expected values of the sample dataset over its full bounds
const (
	SampleFirstDate     = "2017-01-10"
	SampleLastDate      = "2018-03-20"
	SampleOrderRows     = 6
	SampleDistinctOrder = 5
	SampleLateOrders    = 3
	SampleSkippedRows   = 1 // CSV only: one row lacks an approval timestamp
)

// Sample CSV file names, matching the dataset export defaults
const (
	SampleOrdersFile     = "order_details.csv"
	SampleCustomersFile  = "customers.csv"
	SampleCategoriesFile = "order_prod_category.csv"
)

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// SampleOrders returns the canonical order rows.
//
//	o1 SP  2017-01-10 on time          100.00 credit_card  score 5
//	o2 RJ  2017-02-05 5 days late  50+25 boleto (2 rows) score 1 with comment
//	o3 SP  2017-02-20 3 days late       80.00 credit_card  score 2 no title
//	o4 MG  2018-03-15 not delivered     40.00 voucher
//	o5 ??  2018-03-20 2 days late       60.00 credit_card  score 4, unknown customer
func SampleOrders() []domain.Order {
	return []domain.Order{
		{
			OrderID: "o1", CustomerID: "c1", OrderDate: domain.MustParseDate("2017-01-10"),
			DeliveredCustomerDate: ptr(ts("2017-01-18 00:00:00")),
			EstimatedDeliveryDate: ts("2017-01-20 00:00:00"),
			PaymentValue:          100, PaymentType: domain.PaymentTypeCreditCard,
			ReviewScore: ptr(5),
		},
		{
			OrderID: "o2", CustomerID: "c2", OrderDate: domain.MustParseDate("2017-02-05"),
			DeliveredCustomerDate: ptr(ts("2017-02-20 00:00:00")),
			EstimatedDeliveryDate: ts("2017-02-15 00:00:00"),
			PaymentValue:          50, PaymentType: domain.PaymentTypeBoleto,
			ReviewScore: ptr(1), ReviewCommentTitle: ptr("Late"), ReviewCommentMessage: ptr("Arrived late"),
		},
		{
			OrderID: "o2", CustomerID: "c2", OrderDate: domain.MustParseDate("2017-02-05"),
			DeliveredCustomerDate: ptr(ts("2017-02-20 00:00:00")),
			EstimatedDeliveryDate: ts("2017-02-15 00:00:00"),
			PaymentValue:          25, PaymentType: domain.PaymentTypeBoleto,
			ReviewScore: ptr(1), ReviewCommentTitle: ptr("Late"), ReviewCommentMessage: ptr("Arrived late"),
		},
		{
			OrderID: "o3", CustomerID: "c3", OrderDate: domain.MustParseDate("2017-02-20"),
			DeliveredCustomerDate: ptr(ts("2017-03-04 00:00:00")),
			EstimatedDeliveryDate: ts("2017-03-01 00:00:00"),
			PaymentValue:          80, PaymentType: domain.PaymentTypeCreditCard,
			ReviewScore: ptr(2), ReviewCommentMessage: ptr("bad"),
		},
		{
			OrderID: "o4", CustomerID: "c4", OrderDate: domain.MustParseDate("2018-03-15"),
			EstimatedDeliveryDate: ts("2018-03-25 00:00:00"),
			PaymentValue:          40, PaymentType: domain.PaymentTypeVoucher,
		},
		{
			OrderID: "o5", CustomerID: "c5", OrderDate: domain.MustParseDate("2018-03-20"),
			DeliveredCustomerDate: ptr(ts("2018-04-01 00:00:00")),
			EstimatedDeliveryDate: ts("2018-03-30 00:00:00"),
			PaymentValue:          60, PaymentType: domain.PaymentTypeCreditCard,
			ReviewScore: ptr(4),
		},
	}
}

// SampleCustomers returns the customers; c5 is deliberately missing
func SampleCustomers() []domain.Customer {
	return []domain.Customer{
		{CustomerID: "c1", CustomerState: "SP"},
		{CustomerID: "c2", CustomerState: "RJ"},
		{CustomerID: "c3", CustomerState: "SP"},
		{CustomerID: "c4", CustomerState: "MG"},
	}
}

// SampleCategories returns the product category observations
func SampleCategories() []domain.ProductCategoryObservation {
	return []domain.ProductCategoryObservation{
		{ProductCategory: "bed_bath_table", Year: 2017},
		{ProductCategory: "toys", Year: 2017},
		{ProductCategory: "bed_bath_table", Year: 2017},
		{ProductCategory: "toys", Year: 2018},
	}
}

// SampleStore builds a store over the sample dataset
func SampleStore() *store.Store {
	return store.New(SampleOrders(), SampleCustomers(), SampleCategories())
}

// SampleWindow is the full bounds of the sample dataset
func SampleWindow() domain.DateWindow {
	return domain.DateWindow{
		Start: domain.MustParseDate(SampleFirstDate),
		End:   domain.MustParseDate(SampleLastDate),
	}
}

// WriteCSVDataset writes the sample dataset as CSV files into dir and
// returns dir. The orders file starts with a UTF-8 BOM like spreadsheet exports.
func WriteCSVDataset(t *testing.T, dir string) string {
	t.Helper()

	orders := [][]string{
		{"order_id", "customer_id", "order_approved_at", "order_delivered_customer_date",
			"order_estimated_delivery_date", "payment_value", "payment_type",
			"review_score", "review_comment_title", "review_comment_message"},
		{"o1", "c1", "2017-01-10 09:30:00", "2017-01-18 00:00:00", "2017-01-20 00:00:00", "100.00", "credit_card", "5", "", ""},
		{"o2", "c2", "2017-02-05 14:00:00", "2017-02-20 00:00:00", "2017-02-15 00:00:00", "50.00", "boleto", "1", "Late", "Arrived late"},
		{"o2", "c2", "2017-02-05 14:00:00", "2017-02-20 00:00:00", "2017-02-15 00:00:00", "25.00", "boleto", "1", "Late", "Arrived late"},
		{"o3", "c3", "2017-02-20 08:00:00", "2017-03-04 00:00:00", "2017-03-01 00:00:00", "80.00", "credit_card", "2", "", "bad"},
		{"o4", "c4", "2018-03-15 11:00:00", "", "2018-03-25 00:00:00", "40.00", "voucher", "", "", ""},
		{"o5", "c5", "2018-03-20 23:59:00", "2018-04-01 00:00:00", "2018-03-30 00:00:00", "60.00", "credit_card", "4.0", "", ""},
		{"o6", "c1", "", "", "2018-04-10 00:00:00", "12.00", "credit_card", "", "", ""},
	}
	customers := [][]string{
		{"customer_id", "customer_state"},
		{"c1", "SP"},
		{"c2", "RJ"},
		{"c3", "SP"},
		{"c4", "MG"},
	}
	categories := [][]string{
		{"product_category", "year"},
		{"bed_bath_table", "2017"},
		{"toys", "2017"},
		{"bed_bath_table", "2017"},
		{"toys", "2018"},
	}

	writeCSV(t, filepath.Join(dir, SampleOrdersFile), orders, true)
	writeCSV(t, filepath.Join(dir, SampleCustomersFile), customers, false)
	writeCSV(t, filepath.Join(dir, SampleCategoriesFile), categories, false)
	return dir
}

func writeCSV(t *testing.T, path string, records [][]string, bom bool) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if bom {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			t.Fatalf("write BOM: %v", err)
		}
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
