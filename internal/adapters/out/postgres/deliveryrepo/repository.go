package deliveryrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery to the database together with its initial
// tracking history.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	if err := r.appendTracking(ctx, aggregate, 0); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing delivery and appends any tracking entries added
// since it was loaded. History rows already in the database are left
// untouched; the table is insert-only.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	result := r.db.WithContext(ctx).Omit("TrackingEvents").Save(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
	}

	var persisted int64
	err := r.db.WithContext(ctx).
		Model(&TrackingEventDTO{}).
		Where("delivery_id = ?", aggregate.ID().Bytes()).
		Count(&persisted).Error
	if err != nil {
		return err
	}

	if err := r.appendTracking(ctx, aggregate, int(persisted)); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// appendTracking inserts history entries starting at the given offset.
// The aggregate only ever appends to its history, so everything past the
// persisted count is new.
func (r *GormDeliveryRepository) appendTracking(ctx context.Context, aggregate *delivery.Delivery, from int) error {
	history := aggregate.TrackingHistory()
	if from >= len(history) {
		return nil
	}

	deliveryID := aggregate.ID().Bytes()
	rows := make([]TrackingEventDTO, 0, len(history)-from)
	for _, event := range history[from:] {
		rows = append(rows, trackingFromDomain(deliveryID, event))
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

// Get retrieves a delivery by ID with its full tracking history.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves a delivery by ID and locks its row for the rest of
// the transaction. A concurrent transition on the same delivery blocks here
// until the holding transaction commits, so it re-reads the committed status
// and cannot overwrite a terminal state.
func (r *GormDeliveryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	return r.get(ctx, id, true)
}

func (r *GormDeliveryRepository) get(ctx context.Context, id kernel.UUID, forUpdate bool) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Preload("TrackingEvents", orderTracking)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto DeliveryDTO
	if err := query.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByOrder retrieves the delivery created for an upstream order.
func (r *GormDeliveryRepository) GetByOrder(ctx context.Context, orderID string) (*delivery.Delivery, error) {
	return r.getByOrder(ctx, orderID, false)
}

// GetByOrderForUpdate is GetByOrder with the row lock of GetForUpdate.
func (r *GormDeliveryRepository) GetByOrderForUpdate(ctx context.Context, orderID string) (*delivery.Delivery, error) {
	return r.getByOrder(ctx, orderID, true)
}

func (r *GormDeliveryRepository) getByOrder(ctx context.Context, orderID string, forUpdate bool) (*delivery.Delivery, error) {
	if orderID == "" {
		return nil, errs.NewValueIsRequiredError("orderID")
	}

	query := r.db.WithContext(ctx).Preload("TrackingEvents", orderTracking)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto DeliveryDTO
	if err := query.First(&dto, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", orderID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// List retrieves deliveries matching the filter, newest first.
func (r *GormDeliveryRepository) List(ctx context.Context, filter ports.DeliveryFilter) ([]*delivery.Delivery, error) {
	query := r.db.WithContext(ctx).
		Preload("TrackingEvents", orderTracking).
		Order("created_at DESC")

	if filter.Status != nil {
		if err := filter.Status.Validate(); err != nil {
			return nil, err
		}
		query = query.Where("status = ?", filter.Status.String())
	}

	if filter.DriverID != nil {
		if err := filter.DriverID.Validate(); err != nil {
			return nil, err
		}
		query = query.Where("driver_id = ?", filter.DriverID.Bytes())
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var dtos []DeliveryDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllPending retrieves deliveries still waiting for a driver, oldest
// first, so the redispatch job serves the longest-waiting orders first.
// The rows are locked for the sweep's transaction; a delivery being cancelled
// concurrently is either excluded from the sweep or holds the sweep back
// until its terminal status is visible.
func (r *GormDeliveryRepository) GetAllPending(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	err := r.db.WithContext(ctx).
		Preload("TrackingEvents", orderTracking).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", delivery.Pending.String()).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []DeliveryDTO) ([]*delivery.Delivery, error) {
	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, aggregate)
	}
	return deliveries, nil
}

func orderTracking(db *gorm.DB) *gorm.DB {
	return db.Order("occurred_at, id")
}
