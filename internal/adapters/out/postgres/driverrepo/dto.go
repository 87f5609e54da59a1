// Package driverrepo provides data transfer objects and mapping functions for driver persistence.
// This package implements the repository pattern for the driver domain aggregate, handling
// the conversion between domain entities and database representations.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure for persisting driver aggregates.
// Status is stored as its string form so read queries and the matching pool
// lookup can filter on it directly.
type DriverDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Phone       string    `gorm:"type:varchar(32);not null"`
	Email       string    `gorm:"type:varchar(255);not null"`
	VehicleType string    `gorm:"type:varchar(32);not null"`

	Status    string   `gorm:"type:varchar(32);not null;index"`
	Latitude  *float64 `gorm:"type:double precision"`
	Longitude *float64 `gorm:"type:double precision"`

	CurrentDeliveryID *uuid.UUID `gorm:"type:uuid;index"`

	Rating          float64 `gorm:"type:numeric(3,2);not null"`
	TotalDeliveries int     `gorm:"type:int;not null"`
	IsActive        bool    `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for driver entities.
// Overrides GORM's default naming convention to use "drivers" instead of "driver_dtos".
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver domain aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:              aggregate.ID().Bytes(),
		Name:            aggregate.Name(),
		Phone:           aggregate.Phone(),
		Email:           aggregate.Email(),
		VehicleType:     aggregate.VehicleType(),
		Status:          aggregate.Status().String(),
		Rating:          aggregate.Rating(),
		TotalDeliveries: aggregate.TotalDeliveries(),
		IsActive:        aggregate.IsActive(),
		CreatedAt:       aggregate.CreatedAt(),
		UpdatedAt:       aggregate.UpdatedAt(),
	}

	if location := aggregate.CurrentLocation(); location != nil {
		latitude := location.Latitude()
		longitude := location.Longitude()
		dto.Latitude = &latitude
		dto.Longitude = &longitude
	}

	if deliveryID := aggregate.CurrentDelivery(); deliveryID != nil {
		raw := deliveryID.Bytes()
		dto.CurrentDeliveryID = &raw
	}

	return dto
}

// toDomain converts a database DTO to a driver domain aggregate.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := driver.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, locErr := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	var currentDeliveryID *kernel.UUID
	if dto.CurrentDeliveryID != nil {
		deliveryID, deliveryErr := kernel.UUIDFromBytes((*dto.CurrentDeliveryID)[:])
		if deliveryErr != nil {
			return nil, deliveryErr
		}
		currentDeliveryID = &deliveryID
	}

	return driver.RestoreDriver(driver.RestoreParams{
		ID:                id,
		Name:              dto.Name,
		Phone:             dto.Phone,
		Email:             dto.Email,
		VehicleType:       dto.VehicleType,
		Status:            status,
		CurrentLocation:   location,
		CurrentDeliveryID: currentDeliveryID,
		Rating:            dto.Rating,
		TotalDeliveries:   dto.TotalDeliveries,
		IsActive:          dto.IsActive,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	})
}
