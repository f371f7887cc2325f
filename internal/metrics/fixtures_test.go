package metrics

import (
	"time"

	"orderpulse/pkg/contracts/domain"
)

type orderOpt func(*domain.Order)

func newOrder(id, customer, date string, opts ...orderOpt) domain.Order {
	d := domain.MustParseDate(date)
	o := domain.Order{
		OrderID:               id,
		CustomerID:            customer,
		OrderDate:             d,
		EstimatedDeliveryDate: d.Time().AddDate(0, 0, 10),
		PaymentValue:          10,
		PaymentType:           domain.PaymentTypeCreditCard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func withPayment(value float64, paymentType string) orderOpt {
	return func(o *domain.Order) {
		o.PaymentValue = value
		o.PaymentType = paymentType
	}
}

func withDelivery(estimated, delivered time.Time) orderOpt {
	return func(o *domain.Order) {
		o.EstimatedDeliveryDate = estimated
		o.DeliveredCustomerDate = &delivered
	}
}

func withReview(score int, title, message *string) orderOpt {
	return func(o *domain.Order) {
		o.ReviewScore = &score
		o.ReviewCommentTitle = title
		o.ReviewCommentMessage = message
	}
}

func strPtr(s string) *string { return &s }

// mapLookup is a StateLookup over a plain map
type mapLookup map[string]string

func (m mapLookup) StateOf(customerID string) string {
	if state, ok := m[customerID]; ok {
		return state
	}
	return domain.UnknownState
}

func day(s string) time.Time {
	return domain.MustParseDate(s).Time()
}
