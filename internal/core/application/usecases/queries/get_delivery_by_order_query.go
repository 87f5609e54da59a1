package queries

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetDeliveryByOrderQueryIsNotConstructed = errors.New(
	"GetDeliveryByOrderQuery must be created via NewGetDeliveryByOrderQuery constructor",
)

// GetDeliveryByOrderQuery retrieves the delivery created for an upstream
// order. Customer-facing clients usually only know the order reference.
type GetDeliveryByOrderQuery struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewGetDeliveryByOrderQuery creates a query keyed by order reference.
// Validates that the order reference is not empty.
func NewGetDeliveryByOrderQuery(orderID string) (GetDeliveryByOrderQuery, error) {
	query := GetDeliveryByOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetDeliveryByOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDeliveryByOrderQueryIsNotConstructed if validation fails.
func (q GetDeliveryByOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryByOrderQueryIsNotConstructed)
}

// OrderID returns the upstream order reference.
func (q GetDeliveryByOrderQuery) OrderID() string {
	return q.orderID
}

func (q *GetDeliveryByOrderQuery) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	q.orderID = orderID
	return nil
}
