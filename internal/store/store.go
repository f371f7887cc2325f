// Package store holds the parsed e-commerce records that every aggregate is
// computed from. A Store is immutable once built: it copies its inputs and
// hands out copies, so one value can be shared by concurrent readers without
// locking. There is no package-level dataset; callers pass a *Store explicitly.
package store

import (
	"orderpulse/pkg/contracts/domain"
)

// Store is an immutable snapshot of orders, customers and category observations
type Store struct {
	orders     []domain.Order
	customers  []domain.Customer
	categories []domain.ProductCategoryObservation

	customerStates map[string]string
	minOrderDate   domain.Date
	maxOrderDate   domain.Date
}

// New builds a Store from already parsed records.
// The slices are copied; later changes by the caller are not observed.
func New(orders []domain.Order, customers []domain.Customer, categories []domain.ProductCategoryObservation) *Store {
	s := &Store{
		orders:         cloneSlice(orders),
		customers:      cloneSlice(customers),
		categories:     cloneSlice(categories),
		customerStates: make(map[string]string, len(customers)),
	}

	// First occurrence wins for duplicate customer ids
	for _, c := range s.customers {
		if _, exists := s.customerStates[c.CustomerID]; !exists {
			s.customerStates[c.CustomerID] = c.CustomerState
		}
	}

	for i, o := range s.orders {
		if i == 0 || o.OrderDate.Before(s.minOrderDate) {
			s.minOrderDate = o.OrderDate
		}
		if i == 0 || o.OrderDate.After(s.maxOrderDate) {
			s.maxOrderDate = o.OrderDate
		}
	}

	return s
}

// Orders returns a copy of every order row
func (s *Store) Orders() []domain.Order {
	return cloneSlice(s.orders)
}

// Customers returns a copy of every customer
func (s *Store) Customers() []domain.Customer {
	return cloneSlice(s.customers)
}

// Categories returns a copy of every product category observation
func (s *Store) Categories() []domain.ProductCategoryObservation {
	return cloneSlice(s.categories)
}

// OrderCount returns the number of order rows
func (s *Store) OrderCount() int { return len(s.orders) }

// CustomerCount returns the number of customers
func (s *Store) CustomerCount() int { return len(s.customers) }

// CategoryCount returns the number of category observations
func (s *Store) CategoryCount() int { return len(s.categories) }

// IsEmpty reports whether the store holds no orders
func (s *Store) IsEmpty() bool { return len(s.orders) == 0 }

// CustomerStates returns a lookup from customer id to state
func (s *Store) CustomerStates() CustomerIndex {
	return CustomerIndex(s.customerStates)
}

// RecencyAnchor returns the latest order date across the whole dataset.
// It does not depend on any filter window. ok is false for an empty store.
func (s *Store) RecencyAnchor() (anchor domain.Date, ok bool) {
	if s.IsEmpty() {
		return domain.Date{}, false
	}
	return s.maxOrderDate, true
}

// Bounds returns the earliest and latest order dates, the default filter window
func (s *Store) Bounds() (window domain.DateWindow, ok bool) {
	if s.IsEmpty() {
		return domain.DateWindow{}, false
	}
	return domain.DateWindow{Start: s.minOrderDate, End: s.maxOrderDate}, true
}

// CustomerIndex resolves a customer id to a state
type CustomerIndex map[string]string

// IndexCustomers builds a CustomerIndex; the first occurrence of an id wins
func IndexCustomers(customers []domain.Customer) CustomerIndex {
	idx := make(CustomerIndex, len(customers))
	for _, c := range customers {
		if _, exists := idx[c.CustomerID]; !exists {
			idx[c.CustomerID] = c.CustomerState
		}
	}
	return idx
}

// StateOf returns the customer's state, or domain.UnknownState when the id is not indexed
func (idx CustomerIndex) StateOf(customerID string) string {
	if state, ok := idx[customerID]; ok {
		return state
	}
	return domain.UnknownState
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
