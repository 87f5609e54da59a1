package cmd

import (
	"context"
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	rabbitin "dispatch/internal/adapters/in/rabbit"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/postgres"
	rabbitout "dispatch/internal/adapters/out/rabbit"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	matcher    services.NearestDriverMatcher
	publisher  ports.EventPublisher
	hub        *ws.Hub
	logger     *slog.Logger
}

func NewCompositionRoot(
	_ Config,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		matcher:    services.NewNearestDriverMatcher(),
		publisher:  publisher,
		hub:        ws.NewHub(logger),
		logger:     logger,
	}
}

func (c *CompositionRoot) TrackingHub() *ws.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateDispatchDeliveryCommandHandler() commands.DispatchDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchDeliveryCommandHandler(f, c.matcher, c.publisher, c.hub, c.logger)
}

func (c *CompositionRoot) CreateChangeDeliveryStatusCommandHandler() commands.ChangeDeliveryStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeDeliveryStatusCommandHandler(f, c.publisher, c.hub, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderDeliveryCommandHandler() commands.CancelOrderDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderDeliveryCommandHandler(f, c.publisher, c.hub, c.logger)
}

func (c *CompositionRoot) CreateUpdateDeliveryLocationCommandHandler() commands.UpdateDeliveryLocationCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDeliveryLocationCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateMarkPaymentConfirmedCommandHandler() commands.MarkPaymentConfirmedCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMarkPaymentConfirmedCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterDriverCommandHandler(f)
}

func (c *CompositionRoot) CreateUpdateDriverStatusCommandHandler() commands.UpdateDriverStatusCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDriverStatusCommandHandler(f)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDriverLocationCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateRedispatchPendingCommandHandler() commands.RedispatchPendingCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRedispatchPendingCommandHandler(f, c.matcher, c.publisher, c.hub, c.logger)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryByOrderQueryHandler() queries.GetDeliveryByOrderQueryHandler {
	return queries.NewGetDeliveryByOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDeliveriesQueryHandler() queries.ListDeliveriesQueryHandler {
	return queries.NewListDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryTrackingQueryHandler() queries.GetDeliveryTrackingQueryHandler {
	return queries.NewGetDeliveryTrackingQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableDriversQueryHandler() queries.GetAvailableDriversQueryHandler {
	return queries.NewGetAvailableDriversQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStatisticsQueryHandler() queries.GetStatisticsQueryHandler {
	return queries.NewGetStatisticsQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every route handler into the REST server.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	var checker httpin.HealthChecker
	if sqlDB, err := c.gormDB.DB(); err == nil {
		checker = sqlDB
	} else {
		c.logger.Error("health check disabled, cannot reach sql pool", "error", err)
	}

	return httpin.NewServer(
		c.CreateDispatchDeliveryCommandHandler(),
		c.CreateChangeDeliveryStatusCommandHandler(),
		c.CreateUpdateDeliveryLocationCommandHandler(),
		c.CreateRegisterDriverCommandHandler(),
		c.CreateUpdateDriverStatusCommandHandler(),
		c.CreateUpdateDriverLocationCommandHandler(),
		c.CreateGetDeliveryQueryHandler(),
		c.CreateGetDeliveryByOrderQueryHandler(),
		c.CreateListDeliveriesQueryHandler(),
		c.CreateGetDeliveryTrackingQueryHandler(),
		c.CreateGetAvailableDriversQueryHandler(),
		c.CreateGetStatisticsQueryHandler(),
		c.hub,
		checker,
	)
}

// CreateOrderConsumer wires the order events consumer.
func (c *CompositionRoot) CreateOrderConsumer() *rabbitin.Consumer {
	return rabbitin.NewConsumer(
		c.CreateDispatchDeliveryCommandHandler(),
		c.CreateMarkPaymentConfirmedCommandHandler(),
		c.CreateCancelOrderDeliveryCommandHandler(),
		c.logger,
	)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager(schedule string) *jobs.JobManager {
	return jobs.NewJobManager(c.CreateRedispatchPendingCommandHandler(), schedule, c.logger)
}

// NoopEventPublisher drops events. Used when the message broker is not
// configured, so the service still runs standalone.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(_ context.Context, _ ports.DeliveryEvent) error {
	return nil
}

var _ ports.EventPublisher = (*rabbitout.Publisher)(nil)

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}
