// Package deliveryrepo provides data transfer objects and mapping functions for delivery persistence.
// A delivery row owns its tracking_events child rows; history rows are insert-only
// and ordered by occurrence time on load.
package deliveryrepo

import (
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for persisting delivery aggregates.
// Both addresses are embedded with column prefixes so read queries can select
// them without joins.
type DeliveryDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	CustomerID   string    `gorm:"type:varchar(64);not null"`
	RestaurantID string    `gorm:"type:varchar(64);not null"`

	Pickup   AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Delivery AddressDTO `gorm:"embedded;embeddedPrefix:delivery_"`

	DriverID *uuid.UUID `gorm:"type:uuid;index"`
	Status   string     `gorm:"type:varchar(32);not null;index"`

	EstimatedPickupTime   *time.Time
	ActualPickupTime      *time.Time
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time

	CurrentLatitude  *float64 `gorm:"type:double precision"`
	CurrentLongitude *float64 `gorm:"type:double precision"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	TrackingEvents []TrackingEventDTO `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for delivery entities.
// Overrides GORM's default naming convention to use "deliveries" instead of "delivery_dtos".
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// AddressDTO represents an embedded address within the delivery table.
type AddressDTO struct {
	Street    string  `gorm:"type:varchar(255);not null"`
	City      string  `gorm:"type:varchar(128);not null"`
	State     string  `gorm:"type:varchar(64)"`
	Zip       string  `gorm:"type:varchar(16)"`
	Latitude  float64 `gorm:"type:double precision;not null"`
	Longitude float64 `gorm:"type:double precision;not null"`
}

// TrackingEventDTO represents one row of a delivery's tracking history.
// Rows are never updated or deleted after insertion; the serial primary key
// breaks ordering ties between entries sharing an occurrence timestamp.
type TrackingEventDTO struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	DeliveryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(32);not null"`
	Description string    `gorm:"type:varchar(255);not null"`
	Latitude    *float64  `gorm:"type:double precision"`
	Longitude   *float64  `gorm:"type:double precision"`
	OccurredAt  time.Time `gorm:"not null;index"`
}

// TableName specifies the database table name for tracking history entries.
func (TrackingEventDTO) TableName() string {
	return "tracking_events"
}

// fromDomain converts a delivery domain aggregate to its database representation.
// The tracking history is mapped separately because existing rows must never
// be rewritten on update.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	deliveryID := aggregate.ID().Bytes()

	dto := DeliveryDTO{
		ID:                    deliveryID,
		OrderID:               aggregate.OrderID(),
		CustomerID:            aggregate.CustomerID(),
		RestaurantID:          aggregate.RestaurantID(),
		Pickup:                addressFromDomain(aggregate.PickupAddress()),
		Delivery:              addressFromDomain(aggregate.DeliveryAddress()),
		Status:                aggregate.Status().String(),
		EstimatedPickupTime:   aggregate.EstimatedPickupTime(),
		ActualPickupTime:      aggregate.ActualPickupTime(),
		EstimatedDeliveryTime: aggregate.EstimatedDeliveryTime(),
		ActualDeliveryTime:    aggregate.ActualDeliveryTime(),
		CreatedAt:             aggregate.CreatedAt(),
		UpdatedAt:             aggregate.UpdatedAt(),
	}

	if driverID := aggregate.Driver(); driverID != nil {
		raw := driverID.Bytes()
		dto.DriverID = &raw
	}

	if location := aggregate.CurrentLocation(); location != nil {
		latitude := location.Latitude()
		longitude := location.Longitude()
		dto.CurrentLatitude = &latitude
		dto.CurrentLongitude = &longitude
	}

	return dto
}

func addressFromDomain(address kernel.Address) AddressDTO {
	return AddressDTO{
		Street:    address.Street(),
		City:      address.City(),
		State:     address.State(),
		Zip:       address.ZipCode(),
		Latitude:  address.Coordinates().Latitude(),
		Longitude: address.Coordinates().Longitude(),
	}
}

func trackingFromDomain(deliveryID uuid.UUID, event delivery.TrackingEvent) TrackingEventDTO {
	dto := TrackingEventDTO{
		DeliveryID:  deliveryID,
		Kind:        event.Kind(),
		Description: event.Description(),
		OccurredAt:  event.OccurredAt(),
	}

	if location := event.Location(); location != nil {
		latitude := location.Latitude()
		longitude := location.Longitude()
		dto.Latitude = &latitude
		dto.Longitude = &longitude
	}

	return dto
}

// toDomain converts a database DTO to a delivery domain aggregate.
// Expects dto.TrackingEvents to be preloaded in chronological order.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	pickupAddress, err := addressToDomain(dto.Pickup)
	if err != nil {
		return nil, err
	}

	deliveryAddress, err := addressToDomain(dto.Delivery)
	if err != nil {
		return nil, err
	}

	status, err := delivery.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		driver, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &driver
	}

	var currentLocation *kernel.Location
	if dto.CurrentLatitude != nil && dto.CurrentLongitude != nil {
		location, locErr := kernel.NewLocation(*dto.CurrentLatitude, *dto.CurrentLongitude)
		if locErr != nil {
			return nil, locErr
		}
		currentLocation = &location
	}

	history := make([]delivery.TrackingEvent, 0, len(dto.TrackingEvents))
	for _, eventDto := range dto.TrackingEvents {
		event, eventErr := trackingToDomain(eventDto)
		if eventErr != nil {
			return nil, eventErr
		}
		history = append(history, event)
	}

	return delivery.RestoreDelivery(delivery.RestoreParams{
		ID:                    id,
		OrderID:               dto.OrderID,
		CustomerID:            dto.CustomerID,
		RestaurantID:          dto.RestaurantID,
		PickupAddress:         pickupAddress,
		DeliveryAddress:       deliveryAddress,
		DriverID:              driverID,
		Status:                status,
		EstimatedPickupTime:   dto.EstimatedPickupTime,
		ActualPickupTime:      dto.ActualPickupTime,
		EstimatedDeliveryTime: dto.EstimatedDeliveryTime,
		ActualDeliveryTime:    dto.ActualDeliveryTime,
		CurrentLocation:       currentLocation,
		TrackingHistory:       history,
		CreatedAt:             dto.CreatedAt,
		UpdatedAt:             dto.UpdatedAt,
	})
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	coordinates, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return kernel.Address{}, err
	}

	return kernel.NewAddress(dto.Street, dto.City, dto.State, dto.Zip, coordinates)
}

func trackingToDomain(dto TrackingEventDTO) (delivery.TrackingEvent, error) {
	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, err := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if err != nil {
			return delivery.TrackingEvent{}, err
		}
		location = &loc
	}

	return delivery.NewTrackingEvent(dto.Kind, dto.Description, location, dto.OccurredAt)
}
