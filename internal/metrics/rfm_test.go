package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpulse/pkg/contracts/domain"
)

func rfmFixture() ([]domain.Order, mapLookup) {
	states := mapLookup{"c1": "SP", "c2": "SP", "c3": "RJ", "c4": "MG"}
	orders := []domain.Order{
		// o1 paid in two installments
		newOrder("o1", "c1", "2021-01-10", withPayment(30, domain.PaymentTypeCreditCard)),
		newOrder("o1", "c1", "2021-01-10", withPayment(20, domain.PaymentTypeVoucher)),
		newOrder("o2", "c2", "2021-03-01", withPayment(15.5, domain.PaymentTypeBoleto)),
		newOrder("o3", "c3", "2021-02-01", withPayment(100, domain.PaymentTypeCreditCard)),
		newOrder("o4", "c4", "2020-12-31", withPayment(7.25, domain.PaymentTypeDebitCard)),
		// customer missing from the lookup
		newOrder("o5", "ghost", "2021-02-20", withPayment(9, domain.PaymentTypeCreditCard)),
	}
	return orders, states
}

func TestComputeRFM(t *testing.T) {
	orders, states := rfmFixture()
	anchor := domain.MustParseDate("2021-03-11")

	rows := ComputeRFM(orders, states, anchor)
	require.Len(t, rows, 4)

	expected := []domain.RFMRow{
		{CustomerState: "MG", Recency: 70, Frequency: 1, Monetary: 7.25},
		{CustomerState: "RJ", Recency: 38, Frequency: 1, Monetary: 100},
		{CustomerState: "SP", Recency: 10, Frequency: 2, Monetary: 65.5},
		{CustomerState: domain.UnknownState, Recency: 19, Frequency: 1, Monetary: 9},
	}
	for i, want := range expected {
		assert.Equal(t, want.CustomerState, rows[i].CustomerState)
		assert.Equal(t, want.Recency, rows[i].Recency, want.CustomerState)
		assert.Equal(t, want.Frequency, rows[i].Frequency, want.CustomerState)
		assert.InDelta(t, want.Monetary, rows[i].Monetary, 1e-9, want.CustomerState)
	}
}

func TestComputeRFM_Properties(t *testing.T) {
	orders, states := rfmFixture()
	anchor := domain.MustParseDate("2021-03-01")

	t.Run("monetary mass is conserved", func(t *testing.T) {
		rows := ComputeRFM(orders, states, anchor)
		var fromRows float64
		for _, r := range rows {
			fromRows += r.Monetary
		}
		assert.InDelta(t, sumPaymentRows(orders), fromRows, 1e-9)
	})

	t.Run("recency is never negative", func(t *testing.T) {
		for _, r := range ComputeRFM(orders, states, anchor) {
			assert.GreaterOrEqual(t, r.Recency, 0, r.CustomerState)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, ComputeRFM(orders, states, anchor), ComputeRFM(orders, states, anchor))
	})

	t.Run("anchor is independent of the window", func(t *testing.T) {
		filtered, err := FilterByDateRange(orders, domain.MustParseDate("2021-01-01"), domain.MustParseDate("2021-01-31"))
		require.NoError(t, err)

		rows := ComputeRFM(filtered, states, anchor)
		require.Len(t, rows, 1)
		assert.Equal(t, "SP", rows[0].CustomerState)
		// measured from the global anchor, not from 2021-01-31
		assert.Equal(t, 50, rows[0].Recency)
	})

	t.Run("empty window has no rows", func(t *testing.T) {
		rows := ComputeRFM(nil, states, anchor)
		assert.Empty(t, rows)
	})
}

func TestReducersDiffer(t *testing.T) {
	rows := []domain.Order{
		newOrder("o1", "c1", "2021-01-01", withPayment(10, domain.PaymentTypeCreditCard)),
		newOrder("o1", "c1", "2021-01-01", withPayment(5, domain.PaymentTypeVoucher)),
		newOrder("o2", "c1", "2021-01-02", withPayment(1, domain.PaymentTypeBoleto)),
	}
	assert.Equal(t, 2, countDistinctOrders(rows))
	assert.InDelta(t, 16.0, sumPaymentRows(rows), 1e-9)
}

func TestSummarizeRFM(t *testing.T) {
	t.Run("averages are rounded", func(t *testing.T) {
		rows := []domain.RFMRow{
			{CustomerState: "A", Recency: 1, Frequency: 1, Monetary: 10},
			{CustomerState: "B", Recency: 2, Frequency: 1, Monetary: 10},
			{CustomerState: "C", Recency: 2, Frequency: 2, Monetary: 10.01},
		}
		s := SummarizeRFM(rows)
		require.NotNil(t, s.AverageRecency)
		require.NotNil(t, s.AverageFrequency)
		require.NotNil(t, s.AverageMonetary)
		assert.InDelta(t, 1.7, *s.AverageRecency, 1e-9)
		assert.InDelta(t, 1.33, *s.AverageFrequency, 1e-9)
		assert.InDelta(t, 10.0, *s.AverageMonetary, 1e-9)
	})

	t.Run("empty table has no values", func(t *testing.T) {
		s := SummarizeRFM(nil)
		assert.Nil(t, s.AverageRecency)
		assert.Nil(t, s.AverageFrequency)
		assert.Nil(t, s.AverageMonetary)
	})
}

func TestRankRFM(t *testing.T) {
	rows := []domain.RFMRow{
		{CustomerState: "AC", Recency: 5, Frequency: 1, Monetary: 100},
		{CustomerState: "BA", Recency: 1, Frequency: 9, Monetary: 50},
		{CustomerState: "CE", Recency: 3, Frequency: 4, Monetary: 400},
		{CustomerState: "DF", Recency: 1, Frequency: 2, Monetary: 10},
		{CustomerState: "ES", Recency: 8, Frequency: 9, Monetary: 20},
		{CustomerState: "GO", Recency: 2, Frequency: 3, Monetary: 300},
		{CustomerState: "MA", Recency: 9, Frequency: 1, Monetary: 1},
	}

	states := func(rs []domain.RFMRow) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.CustomerState)
		}
		return out
	}

	ranking := RankRFM(rows)
	assert.Equal(t, []string{"BA", "DF", "GO", "CE", "AC"}, states(ranking.ByRecency))
	assert.Equal(t, []string{"BA", "ES", "CE", "GO", "DF"}, states(ranking.ByFrequency))
	assert.Equal(t, []string{"CE", "GO", "AC", "BA", "ES"}, states(ranking.ByMonetary))

	// input untouched
	assert.Equal(t, "AC", rows[0].CustomerState)
}
