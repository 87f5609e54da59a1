package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDeliveryQueryHandler retrieves a single delivery from the database.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryQueryHandler creates a handler for single-delivery lookups.
// Requires a GORM database connection for query execution.
func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// Handle executes the query.
// Returns *errs.ObjectNotFoundError when no delivery matches the identifier.
func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (DeliveryResponse, error) {
	if err := query.Validate(); err != nil {
		return DeliveryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`,
		query.DeliveryID().String(),
	).Row()

	response, err := scanDeliveryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryResponse{}, errs.NewObjectNotFoundError("deliveryID", query.DeliveryID().String())
	}
	if err != nil {
		return DeliveryResponse{}, err
	}

	return response, nil
}
