package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpulse/pkg/contracts/domain"
)

func TestFilterByDateRange(t *testing.T) {
	orders := []domain.Order{
		newOrder("o3", "c1", "2021-03-01"),
		newOrder("o1", "c1", "2021-01-01"),
		newOrder("o2", "c2", "2021-02-15"),
		newOrder("o4", "c2", "2021-04-30"),
	}

	tests := []struct {
		name     string
		start    string
		end      string
		expected []string
	}{
		{"inclusive bounds", "2021-01-01", "2021-03-01", []string{"o3", "o1", "o2"}},
		{"single day", "2021-02-15", "2021-02-15", []string{"o2"}},
		{"whole range", "2020-01-01", "2022-01-01", []string{"o3", "o1", "o2", "o4"}},
		{"no orders in window", "2022-01-01", "2022-12-31", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterByDateRange(orders, domain.MustParseDate(tt.start), domain.MustParseDate(tt.end))
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, o := range got {
				ids = append(ids, o.OrderID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilterByDateRange_InvalidRange(t *testing.T) {
	orders := []domain.Order{newOrder("o1", "c1", "2021-01-01")}

	got, err := FilterByDateRange(orders, domain.MustParseDate("2021-02-01"), domain.MustParseDate("2021-01-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Nil(t, got)
}

func TestFilterByDateRange_DoesNotMutateInput(t *testing.T) {
	orders := []domain.Order{
		newOrder("o1", "c1", "2021-01-01"),
		newOrder("o2", "c1", "2021-06-01"),
	}
	snapshot := append([]domain.Order(nil), orders...)

	_, err := FilterByDateRange(orders, domain.MustParseDate("2021-01-01"), domain.MustParseDate("2021-01-31"))
	require.NoError(t, err)
	assert.Equal(t, snapshot, orders)
}

func TestScopes(t *testing.T) {
	s := Scopes()
	assert.Len(t, s, len(Tables()))
	assert.Equal(t, domain.FilterScopeUnfiltered, s[TableTopCategories])
	assert.Equal(t, domain.FilterScopeUnfiltered, s[TableCustomersPerState])
	assert.Equal(t, domain.FilterScopeDateRange, s[TableRFM])

	// callers get a copy
	s[TableRFM] = domain.FilterScopeUnfiltered
	scope, ok := ScopeOf(TableRFM)
	require.True(t, ok)
	assert.Equal(t, domain.FilterScopeDateRange, scope)

	_, ok = ScopeOf("nope")
	assert.False(t, ok)
}
