// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"database/sql"
	"time"
)

// DeliveryResponse is the read model for a single delivery.
// Positions and fulfillment timestamps are pointers because they are unset
// for deliveries that have not progressed far enough.
type DeliveryResponse struct {
	ID           string `json:"id"`
	OrderID      string `json:"order_id"`
	CustomerID   string `json:"customer_id"`
	RestaurantID string `json:"restaurant_id"`

	PickupAddress   AddressResponse `json:"pickup_address"`
	DeliveryAddress AddressResponse `json:"delivery_address"`

	DriverID *string `json:"driver_id,omitempty"`
	Status   string  `json:"status"`

	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time,omitempty"`
	ActualPickupTime      *time.Time `json:"actual_pickup_time,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time,omitempty"`

	CurrentLatitude  *float64 `json:"current_latitude,omitempty"`
	CurrentLongitude *float64 `json:"current_longitude,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddressResponse is the read model for a delivery address.
type AddressResponse struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state,omitempty"`
	ZipCode   string  `json:"zip_code,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// deliveryColumns is the shared select list for delivery read queries.
// The scan order must match scanDeliveryRow.
const deliveryColumns = `
	id,
	order_id,
	customer_id,
	restaurant_id,
	pickup_street, pickup_city, pickup_state, pickup_zip, pickup_latitude, pickup_longitude,
	delivery_street, delivery_city, delivery_state, delivery_zip, delivery_latitude, delivery_longitude,
	driver_id,
	status,
	estimated_pickup_time,
	actual_pickup_time,
	estimated_delivery_time,
	actual_delivery_time,
	current_latitude,
	current_longitude,
	created_at,
	updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeliveryRow(row rowScanner) (DeliveryResponse, error) {
	var response DeliveryResponse
	var driverID sql.NullString

	err := row.Scan(
		&response.ID,
		&response.OrderID,
		&response.CustomerID,
		&response.RestaurantID,
		&response.PickupAddress.Street,
		&response.PickupAddress.City,
		&response.PickupAddress.State,
		&response.PickupAddress.ZipCode,
		&response.PickupAddress.Latitude,
		&response.PickupAddress.Longitude,
		&response.DeliveryAddress.Street,
		&response.DeliveryAddress.City,
		&response.DeliveryAddress.State,
		&response.DeliveryAddress.ZipCode,
		&response.DeliveryAddress.Latitude,
		&response.DeliveryAddress.Longitude,
		&driverID,
		&response.Status,
		&response.EstimatedPickupTime,
		&response.ActualPickupTime,
		&response.EstimatedDeliveryTime,
		&response.ActualDeliveryTime,
		&response.CurrentLatitude,
		&response.CurrentLongitude,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		return DeliveryResponse{}, err
	}

	if driverID.Valid {
		response.DriverID = &driverID.String
	}
	return response, nil
}
