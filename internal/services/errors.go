package services

import "errors"

var (
	// ErrNoData is returned when the store holds no orders
	ErrNoData = errors.New("no order data loaded")

	// ErrUnknownTable is returned for a table name the service cannot compute
	ErrUnknownTable = errors.New("unknown table")
)
