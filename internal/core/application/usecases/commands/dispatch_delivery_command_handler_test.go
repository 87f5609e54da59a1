package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, lat, lon float64) kernel.Address {
	t.Helper()
	location, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	address, err := kernel.NewAddress("123 Main St", "Springfield", "IL", "62701", location)
	require.NoError(t, err)
	return address
}

func testDispatchCommand(t *testing.T) commands.DispatchDeliveryCommand {
	t.Helper()
	cmd, err := commands.NewDispatchDeliveryCommand(
		kernel.NewUUID(),
		"order-1", "customer-1", "restaurant-1",
		testAddress(t, 40.0, -74.0),
		testAddress(t, 40.1, -74.1),
	)
	require.NoError(t, err)
	return cmd
}

func testAvailableDriver(t *testing.T, lat, lon float64) *driver.Driver {
	t.Helper()
	now := time.Now()
	d, err := driver.NewDriver(kernel.NewUUID(), "Bob", "+15550002222", "bob@example.com", "car", now)
	require.NoError(t, err)
	location, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	require.NoError(t, d.UpdateLocation(location, now))
	require.NoError(t, d.ChangeStatus(driver.Available, now))
	return d
}

func notFound(orderID string) error {
	return errs.NewObjectNotFoundError("orderID", orderID)
}

func TestDispatchDeliveryCommandHandler_Handle_AssignsNearestDriver(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	near := testAvailableDriver(t, 40.01, -74.0)
	far := testAvailableDriver(t, 41.0, -74.0)

	deliveryRepo := new(MockDeliveryRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		deliveryRepo.On("GetByOrder", ctx, "order-1").Return(nil, notFound("order-1")).Once(),
		driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{far, near}, nil).Once(),
		driverRepo.On("Claim", ctx, near.ID(), cmd.DeliveryID()).Return(nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) {
				added := args.Get(1).(*delivery.Delivery)
				assert.Equal(t, delivery.Assigned, added.Status())
				require.NotNil(t, added.Driver())
				assert.True(t, added.Driver().IsEqual(near.ID()))
				require.NotNil(t, added.EstimatedDeliveryTime())
			}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(event ports.DeliveryEvent) bool {
		return event.Kind == ports.EventKindCreated && event.OrderID == "order-1"
	})).Return(nil).Once()

	broadcaster := new(MockTrackingBroadcaster)
	broadcaster.On("Broadcast", mock.AnythingOfType("ports.TrackingUpdate")).Return()

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), publisher, broadcaster, slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	deliveryRepo.AssertExpectations(t)
	driverRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestDispatchDeliveryCommandHandler_Handle_NoDriversLeavesPending(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	deliveryRepo := new(MockDeliveryRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		deliveryRepo.On("GetByOrder", ctx, "order-1").Return(nil, notFound("order-1")).Once(),
		driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{}, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) {
				added := args.Get(1).(*delivery.Delivery)
				assert.Equal(t, delivery.Pending, added.Status())
				assert.Nil(t, added.Driver())
				assert.Len(t, added.TrackingHistory(), 1)
			}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("ports.DeliveryEvent")).Return(nil).Once()

	broadcaster := new(MockTrackingBroadcaster)
	broadcaster.On("Broadcast", mock.AnythingOfType("ports.TrackingUpdate")).Return()

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), publisher, broadcaster, slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	deliveryRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestDispatchDeliveryCommandHandler_Handle_LostClaimFallsToNextCandidate(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	near := testAvailableDriver(t, 40.01, -74.0)
	far := testAvailableDriver(t, 40.5, -74.0)

	deliveryRepo := new(MockDeliveryRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		deliveryRepo.On("GetByOrder", ctx, "order-1").Return(nil, notFound("order-1")).Once(),
		driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{near, far}, nil).Once(),
		driverRepo.On("Claim", ctx, near.ID(), cmd.DeliveryID()).
			Return(ports.ErrDriverAlreadyReserved).Once(),
		driverRepo.On("Claim", ctx, far.ID(), cmd.DeliveryID()).Return(nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) {
				added := args.Get(1).(*delivery.Delivery)
				require.NotNil(t, added.Driver())
				assert.True(t, added.Driver().IsEqual(far.ID()))
			}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("ports.DeliveryEvent")).Return(nil).Once()

	broadcaster := new(MockTrackingBroadcaster)
	broadcaster.On("Broadcast", mock.AnythingOfType("ports.TrackingUpdate")).Return()

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), publisher, broadcaster, slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	driverRepo.AssertExpectations(t)
}

func TestDispatchDeliveryCommandHandler_Handle_EveryClaimLostLeavesPending(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	only := testAvailableDriver(t, 40.01, -74.0)

	deliveryRepo := new(MockDeliveryRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		deliveryRepo.On("GetByOrder", ctx, "order-1").Return(nil, notFound("order-1")).Once(),
		driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{only}, nil).Once(),
		driverRepo.On("Claim", ctx, only.ID(), cmd.DeliveryID()).
			Return(ports.ErrDriverAlreadyReserved).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) {
				added := args.Get(1).(*delivery.Delivery)
				assert.Equal(t, delivery.Pending, added.Status())
				assert.Nil(t, added.Driver())
			}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("ports.DeliveryEvent")).Return(nil).Once()

	broadcaster := new(MockTrackingBroadcaster)
	broadcaster.On("Broadcast", mock.AnythingOfType("ports.TrackingUpdate")).Return()

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), publisher, broadcaster, slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	driverRepo.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
}

func TestDispatchDeliveryCommandHandler_Handle_DuplicateOrder(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	existing, err := delivery.NewDelivery(
		kernel.NewUUID(), "order-1", "customer-1", "restaurant-1",
		testAddress(t, 40.0, -74.0), testAddress(t, 40.1, -74.1), time.Now())
	require.NoError(t, err)

	deliveryRepo := new(MockDeliveryRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		deliveryRepo.On("GetByOrder", ctx, "order-1").Return(existing, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), new(MockEventPublisher),
		new(MockTrackingBroadcaster), slog.New(slog.DiscardHandler))
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrOrderAlreadyDispatched)
	deliveryRepo.AssertExpectations(t)
}

func TestDispatchDeliveryCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := context.Background()
	cmd := commands.DispatchDeliveryCommand{} // not constructed properly

	factory := new(MockUoWFactory)
	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), new(MockEventPublisher),
		new(MockTrackingBroadcaster), slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrDispatchDeliveryCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestDispatchDeliveryCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := context.Background()
	cmd := testDispatchCommand(t)

	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewDispatchDeliveryCommandHandler(
		factory, services.NewNearestDriverMatcher(), new(MockEventPublisher),
		new(MockTrackingBroadcaster), slog.New(slog.DiscardHandler))
	err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "begin error")
}
