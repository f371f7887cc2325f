package domain

import (
	"time"
)

// UnknownState is the customer_state assigned when an order's customer_id has
// no match in the customer collection. Orders are never dropped by a failed join.
const UnknownState = "UNKNOWN"

// Order is one payment row of an order. An order paid in several
// installments appears once per installment with the same OrderID.
type Order struct {
	OrderID               string     `json:"order_id" db:"order_id" validate:"required"`
	CustomerID            string     `json:"customer_id" db:"customer_id" validate:"required"`
	OrderDate             Date       `json:"order_date" db:"order_date"`
	DeliveredCustomerDate *time.Time `json:"order_delivered_customer_date,omitempty" db:"order_delivered_customer_date"`
	EstimatedDeliveryDate time.Time  `json:"order_estimated_delivery_date" db:"order_estimated_delivery_date"`
	PaymentValue          float64    `json:"payment_value" db:"payment_value" validate:"min=0"`
	PaymentType           string     `json:"payment_type" db:"payment_type"`
	ReviewScore           *int       `json:"review_score,omitempty" db:"review_score" validate:"omitempty,min=1,max=5"`
	ReviewCommentTitle    *string    `json:"review_comment_title,omitempty" db:"review_comment_title"`
	ReviewCommentMessage  *string    `json:"review_comment_message,omitempty" db:"review_comment_message"`
}

// Year returns the calendar year of the order date
func (o Order) Year() int {
	return o.OrderDate.Year()
}

// IsDelivered reports whether the order reached the customer
func (o Order) IsDelivered() bool {
	return o.DeliveredCustomerDate != nil
}

// Customer is a buyer and the state they live in
type Customer struct {
	CustomerID    string `json:"customer_id" db:"customer_id" validate:"required"`
	CustomerState string `json:"customer_state" db:"customer_state" validate:"required"`
}

// ProductCategoryObservation records that an order contained a product of a category
type ProductCategoryObservation struct {
	ProductCategory string `json:"product_category" db:"product_category"`
	Year            int    `json:"year" db:"year"`
}

// PaymentType values observed in the dataset
const (
	PaymentTypeCreditCard = "credit_card"
	PaymentTypeBoleto     = "boleto"
	PaymentTypeVoucher    = "voucher"
	PaymentTypeDebitCard  = "debit_card"
	PaymentTypeNotDefined = "not_defined"
)
