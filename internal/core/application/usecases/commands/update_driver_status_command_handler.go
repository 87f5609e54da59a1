package commands

import (
	"context"
	"time"
)

// UpdateDriverStatusCommandHandler applies operator-selected availability
// changes to drivers. The aggregate rejects selecting busy and rejects moving
// a driver that holds an active reservation.
type UpdateDriverStatusCommandHandler struct {
	uowFactory DriverUoWFactory
}

// NewUpdateDriverStatusCommandHandler creates a handler for driver availability changes.
func NewUpdateDriverStatusCommandHandler(uowFactory DriverUoWFactory) UpdateDriverStatusCommandHandler {
	return UpdateDriverStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the availability change.
// Returns *errs.ObjectNotFoundError when the driver does not exist and
// driver.ErrDriverIsBusy when it holds a reservation.
func (h UpdateDriverStatusCommandHandler) Handle(ctx context.Context, command UpdateDriverStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()

	aggregate, err := driverRepo.Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	if err = aggregate.ChangeStatus(command.Target(), time.Now().UTC()); err != nil {
		return err
	}

	if err = driverRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
