package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDeliveryByOrderQueryHandler resolves a delivery by its order reference.
type GetDeliveryByOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryByOrderQueryHandler creates a handler for order-keyed lookups.
// Requires a GORM database connection for query execution.
func NewGetDeliveryByOrderQueryHandler(db *gorm.DB) GetDeliveryByOrderQueryHandler {
	return GetDeliveryByOrderQueryHandler{db: db}
}

// Handle executes the query.
// Returns *errs.ObjectNotFoundError when no delivery exists for the order.
func (h GetDeliveryByOrderQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryByOrderQuery,
) (DeliveryResponse, error) {
	if err := query.Validate(); err != nil {
		return DeliveryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = ?`,
		query.OrderID(),
	).Row()

	response, err := scanDeliveryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryResponse{}, errs.NewObjectNotFoundError("orderID", query.OrderID())
	}
	if err != nil {
		return DeliveryResponse{}, err
	}

	return response, nil
}
