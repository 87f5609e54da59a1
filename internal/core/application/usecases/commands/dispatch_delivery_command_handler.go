package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrOrderAlreadyDispatched is returned when a delivery already exists for the
// order. Redelivered order-confirmed messages are expected from the bus, so
// callers treat this as a benign duplicate.
var ErrOrderAlreadyDispatched = errors.New("order already dispatched")

// DispatchDeliveryCommandHandler orchestrates the delivery dispatch workflow:
// create the delivery, rank nearby available drivers, and claim the best one.
//
// The claim closes the race between reading the candidate list and reserving
// a driver from it: the repository's Claim performs an atomic conditional
// reservation, and a lost claim falls through to the next ranked candidate.
// When every claim is lost, or no driver is available at all, the delivery is
// still persisted in pending status for the redispatch job to pick up.
//
// Example:
//
//	handler := NewDispatchDeliveryCommandHandler(uowFactory, matcher, publisher, broadcaster, logger)
//	cmd, _ := NewDispatchDeliveryCommand(kernel.NewUUID(), "ord-17", "cus-3", "res-9", pickup, dropoff)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrOrderAlreadyDispatched):
//	    log.Println("Duplicate order-confirmed message")
//	case err != nil:
//	    log.Printf("Dispatch failed: %v", err)
//	}
type DispatchDeliveryCommandHandler struct {
	uowFactory  UoWFactory
	matcher     services.DriverMatcher
	publisher   ports.EventPublisher
	broadcaster ports.TrackingBroadcaster
	logger      *slog.Logger
}

// NewDispatchDeliveryCommandHandler creates a handler for delivery dispatch operations.
// Requires a UoWFactory for coordinating transactional updates across repositories,
// the driver matching strategy, and the post-commit notification ports.
func NewDispatchDeliveryCommandHandler(
	uowFactory UoWFactory,
	matcher services.DriverMatcher,
	publisher ports.EventPublisher,
	broadcaster ports.TrackingBroadcaster,
	logger *slog.Logger,
) DispatchDeliveryCommandHandler {
	return DispatchDeliveryCommandHandler{
		uowFactory:  uowFactory,
		matcher:     matcher,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle processes the dispatch command.
// Creates the delivery, tries to claim the nearest available driver, and
// persists everything in a single transaction. After the commit it publishes
// the created event and pushes the first tracking updates to live subscribers.
func (h DispatchDeliveryCommandHandler) Handle(ctx context.Context, command DispatchDeliveryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()
	driverRepo := uow.DriverRepository()

	if _, err := deliveryRepo.GetByOrder(ctx, command.OrderID()); err == nil {
		return ErrOrderAlreadyDispatched
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	newDelivery, err := delivery.NewDelivery(
		command.DeliveryID(),
		command.OrderID(),
		command.CustomerID(),
		command.RestaurantID(),
		command.PickupAddress(),
		command.DeliveryAddress(),
		now,
	)
	if err != nil {
		return err
	}

	if err = h.tryAssignDriver(ctx, driverRepo, newDelivery, now); err != nil {
		return err
	}

	if err = deliveryRepo.Add(ctx, newDelivery); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notify(ctx, newDelivery, now)
	return nil
}

// tryAssignDriver walks the ranked candidates and claims the first one still
// available. An empty candidate pool or a fully contested one leaves the
// delivery pending, which is not an error.
func (h DispatchDeliveryCommandHandler) tryAssignDriver(
	ctx context.Context,
	driverRepo ports.DriverRepository,
	newDelivery *delivery.Delivery,
	now time.Time,
) error {
	drivers, err := driverRepo.GetAllAvailable(ctx)
	if err != nil {
		return err
	}

	pickup := newDelivery.PickupAddress().Coordinates()
	ranked, err := h.matcher.Rank(pickup, drivers)
	if errors.Is(err, services.ErrNoDriverAvailable) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, candidate := range ranked {
		claimErr := driverRepo.Claim(ctx, candidate.ID(), newDelivery.ID())
		if errors.Is(claimErr, ports.ErrDriverAlreadyReserved) {
			continue
		}
		if claimErr != nil {
			return claimErr
		}

		eta, etaErr := services.EstimateDeliveryTime(now, pickup, newDelivery.DeliveryAddress().Coordinates())
		if etaErr != nil {
			return etaErr
		}

		return newDelivery.AssignDriver(candidate.ID(), eta, now)
	}

	return nil
}

func (h DispatchDeliveryCommandHandler) notify(ctx context.Context, d *delivery.Delivery, now time.Time) {
	publishEvent(ctx, h.logger, h.publisher, newDeliveryEvent(ports.EventKindCreated, d, now))

	for _, event := range d.TrackingHistory() {
		h.broadcaster.Broadcast(newTrackingUpdate(event.Kind(), event.Description(), d, event.OccurredAt()))
	}
}
