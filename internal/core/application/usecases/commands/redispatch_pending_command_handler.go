package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// RedispatchPendingCommandHandler retries driver matching for deliveries left
// pending by earlier dispatch attempts. Each sweep runs in one transaction:
// the oldest pending deliveries get first pick of the available drivers.
type RedispatchPendingCommandHandler struct {
	uowFactory  UoWFactory
	matcher     services.DriverMatcher
	publisher   ports.EventPublisher
	broadcaster ports.TrackingBroadcaster
	logger      *slog.Logger
}

// NewRedispatchPendingCommandHandler creates a handler for redispatch sweeps.
func NewRedispatchPendingCommandHandler(
	uowFactory UoWFactory,
	matcher services.DriverMatcher,
	publisher ports.EventPublisher,
	broadcaster ports.TrackingBroadcaster,
	logger *slog.Logger,
) RedispatchPendingCommandHandler {
	return RedispatchPendingCommandHandler{
		uowFactory:  uowFactory,
		matcher:     matcher,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle processes one redispatch sweep.
// Walks pending deliveries oldest first and claims the nearest driver still
// available for each. Deliveries that cannot be matched stay pending for the
// next sweep. After the commit, assignment events go out for every delivery
// that found a driver.
func (h RedispatchPendingCommandHandler) Handle(ctx context.Context, command RedispatchPendingCommand) error {
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

	pending, err := deliveryRepo.GetAllPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return uow.Commit(ctx)
	}

	assigned := make([]*delivery.Delivery, 0, len(pending))
	for _, aggregate := range pending {
		matched, matchErr := h.matchOne(ctx, driverRepo, aggregate, now)
		if matchErr != nil {
			return matchErr
		}
		if !matched {
			continue
		}

		if err = deliveryRepo.Update(ctx, aggregate); err != nil {
			return err
		}
		assigned = append(assigned, aggregate)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, aggregate := range assigned {
		publishEvent(ctx, h.logger, h.publisher, newDeliveryEvent(ports.EventKindStatusChanged, aggregate, now))
		h.broadcaster.Broadcast(newTrackingUpdate(
			delivery.Assigned.String(), delivery.Assigned.Description(), aggregate, now))
	}
	return nil
}

func (h RedispatchPendingCommandHandler) matchOne(
	ctx context.Context,
	driverRepo ports.DriverRepository,
	aggregate *delivery.Delivery,
	now time.Time,
) (bool, error) {
	drivers, err := driverRepo.GetAllAvailable(ctx)
	if err != nil {
		return false, err
	}

	pickup := aggregate.PickupAddress().Coordinates()
	ranked, err := h.matcher.Rank(pickup, drivers)
	if errors.Is(err, services.ErrNoDriverAvailable) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for _, candidate := range ranked {
		claimErr := driverRepo.Claim(ctx, candidate.ID(), aggregate.ID())
		if errors.Is(claimErr, ports.ErrDriverAlreadyReserved) {
			continue
		}
		if claimErr != nil {
			return false, claimErr
		}

		eta, etaErr := services.EstimateDeliveryTime(now, pickup, aggregate.DeliveryAddress().Coordinates())
		if etaErr != nil {
			return false, etaErr
		}

		if err = aggregate.AssignDriver(candidate.ID(), eta, now); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
