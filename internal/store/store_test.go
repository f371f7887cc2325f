package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpulse/pkg/contracts/domain"
)

func sampleStore() *Store {
	orders := []domain.Order{
		{OrderID: "o1", CustomerID: "c1", OrderDate: domain.MustParseDate("2021-03-04"), PaymentValue: 10},
		{OrderID: "o2", CustomerID: "c2", OrderDate: domain.MustParseDate("2020-11-20"), PaymentValue: 20},
		{OrderID: "o3", CustomerID: "c1", OrderDate: domain.MustParseDate("2021-08-01"), PaymentValue: 30},
	}
	customers := []domain.Customer{
		{CustomerID: "c1", CustomerState: "SP"},
		{CustomerID: "c2", CustomerState: "RJ"},
		{CustomerID: "c1", CustomerState: "MG"},
	}
	categories := []domain.ProductCategoryObservation{
		{ProductCategory: "toys", Year: 2021},
	}
	return New(orders, customers, categories)
}

func TestStore_Bounds(t *testing.T) {
	s := sampleStore()

	window, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, "2020-11-20", window.Start.String())
	assert.Equal(t, "2021-08-01", window.End.String())

	anchor, ok := s.RecencyAnchor()
	require.True(t, ok)
	assert.Equal(t, window.End, anchor)
}

func TestStore_Empty(t *testing.T) {
	s := New(nil, nil, nil)

	assert.True(t, s.IsEmpty())
	_, ok := s.Bounds()
	assert.False(t, ok)
	_, ok = s.RecencyAnchor()
	assert.False(t, ok)
	assert.Empty(t, s.Orders())
}

func TestStore_Immutable(t *testing.T) {
	orders := []domain.Order{{OrderID: "o1", CustomerID: "c1", OrderDate: domain.MustParseDate("2021-01-01")}}
	s := New(orders, nil, nil)

	// caller mutation after construction is not observed
	orders[0].OrderID = "changed"
	assert.Equal(t, "o1", s.Orders()[0].OrderID)

	// accessor results are copies
	got := s.Orders()
	got[0].OrderID = "changed"
	assert.Equal(t, "o1", s.Orders()[0].OrderID)
}

func TestStore_Counts(t *testing.T) {
	s := sampleStore()
	assert.Equal(t, 3, s.OrderCount())
	assert.Equal(t, 3, s.CustomerCount())
	assert.Equal(t, 1, s.CategoryCount())
	assert.Len(t, s.Customers(), 3)
	assert.Len(t, s.Categories(), 1)
}

func TestCustomerIndex(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		expected   string
	}{
		{"known customer", "c2", "RJ"},
		{"first occurrence wins", "c1", "SP"},
		{"missing customer", "ghost", domain.UnknownState},
	}

	idx := sampleStore().CustomerStates()
	standalone := IndexCustomers([]domain.Customer{
		{CustomerID: "c1", CustomerState: "SP"},
		{CustomerID: "c2", CustomerState: "RJ"},
		{CustomerID: "c1", CustomerState: "MG"},
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, idx.StateOf(tt.customerID))
			assert.Equal(t, tt.expected, standalone.StateOf(tt.customerID))
		})
	}
}
