package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderHeader = []string{
	"order_id", "customer_id", "order_approved_at", "order_delivered_customer_date",
	"order_estimated_delivery_date", "payment_value", "payment_type", "review_score",
	"review_comment_title", "review_comment_message",
}

func TestDecodeOrders(t *testing.T) {
	rows := [][]string{
		{"o1", "c1", "2017-10-02 11:07:15", "2017-10-10 21:25:13", "2017-10-18 00:00:00", "18.12", "credit_card", "4.0", "", ""},
		{"o2", "c2", "", "", "2017-10-18 00:00:00", "10", "boleto", "", "", ""},
		{"o3", "c3", "2018-08-08 08:55:23", "", "2018-08-20 00:00:00", "141.46", "voucher", "1", "ruim", "nao chegou"},
	}

	orders, skipped, err := decodeOrders(orderHeader, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "o1", first.OrderID)
	assert.Equal(t, "2017-10-02", first.OrderDate.String())
	require.NotNil(t, first.DeliveredCustomerDate)
	assert.Equal(t, 10, first.DeliveredCustomerDate.Day())
	assert.InDelta(t, 18.12, first.PaymentValue, 1e-9)
	require.NotNil(t, first.ReviewScore)
	assert.Equal(t, 4, *first.ReviewScore)
	assert.Nil(t, first.ReviewCommentTitle)
	assert.Nil(t, first.ReviewCommentMessage)

	second := orders[1]
	assert.False(t, second.IsDelivered())
	require.NotNil(t, second.ReviewCommentTitle)
	assert.Equal(t, "ruim", *second.ReviewCommentTitle)
	assert.Equal(t, 2018, second.Year())
}

func TestDecodeOrders_Errors(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		row    []string
		column string
	}{
		{
			name:   "bad approval timestamp",
			header: orderHeader,
			row:    []string{"o1", "c1", "yesterday", "", "2017-10-18 00:00:00", "1", "boleto", "", "", ""},
			column: colOrderApprovedAt,
		},
		{
			name:   "bad payment value",
			header: orderHeader,
			row:    []string{"o1", "c1", "2017-10-02 11:07:15", "", "2017-10-18 00:00:00", "ten", "boleto", "", "", ""},
			column: colPaymentValue,
		},
		{
			name:   "bad review score",
			header: orderHeader,
			row:    []string{"o1", "c1", "2017-10-02 11:07:15", "", "2017-10-18 00:00:00", "1", "boleto", "great", "", ""},
			column: colReviewScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeOrders(tt.header, [][]string{tt.row})
			require.Error(t, err)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, tt.column, rowErr.Column)
			assert.Equal(t, 2, rowErr.Row)
		})
	}
}

func TestDecodeOrders_MissingColumns(t *testing.T) {
	_, _, err := decodeOrders([]string{"order_id", "customer_id"}, nil)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestDecodeOrders_OrderDateColumn(t *testing.T) {
	header := []string{"order_id", "customer_id", "order_date", "order_estimated_delivery_date", "payment_value"}
	orders, skipped, err := decodeOrders(header, [][]string{{"o1", "c1", "2018-01-05", "2018-01-20", "5"}})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, orders, 1)
	assert.Equal(t, "2018-01-05", orders[0].OrderDate.String())
}

func TestIndexHeader_StripsBOM(t *testing.T) {
	idx := indexHeader([]string{"\ufeffcustomer_id", " Customer_State "})
	assert.Equal(t, 0, idx[colCustomerID])
	assert.Equal(t, 1, idx[colCustomerState])
}

func TestDecodeCategories(t *testing.T) {
	obs, err := decodeCategories(
		[]string{"product_category", "year"},
		[][]string{{"bed_bath_table", "2017"}, {"", "2018"}, {"toys", "2018.0"}},
	)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 2018, obs[1].Year)

	_, err = decodeCategories([]string{"product_category", "year"}, [][]string{{"toys", "soon"}})
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2017-10-02 11:07:15",
		"2017-10-02 11:07:15+00",
		"2017-10-02 11:07:15.123+00",
		"2017-10-02T11:07:15Z",
		"2017-10-02",
	} {
		t.Run(s, func(t *testing.T) {
			ts, err := parseTimestamp(s)
			require.NoError(t, err)
			assert.Equal(t, 2, ts.Day())
		})
	}

	_, err := parseTimestamp("02/10/2017")
	assert.Error(t, err)
}
