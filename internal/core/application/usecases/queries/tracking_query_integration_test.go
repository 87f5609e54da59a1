package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/deliveryrepo"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TrackingQueryIntegrationTestSuite verifies the composite tracking read
// model against a real database: delivery progress, driver contact card and
// event history assembled in one response.
type TrackingQueryIntegrationTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
	handler   queries.GetDeliveryTrackingQueryHandler
}

func (suite *TrackingQueryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&driverrepo.DriverDTO{},
		&deliveryrepo.DeliveryDTO{},
		&deliveryrepo.TrackingEventDTO{},
	))
}

func (suite *TrackingQueryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE tracking_events, deliveries, drivers").Error)
	suite.factory = postgres.NewGormUnitOfWorkFactory(suite.db)
	suite.handler = queries.NewGetDeliveryTrackingQueryHandler(suite.db)
}

func (suite *TrackingQueryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *TrackingQueryIntegrationTestSuite) TestHandle_ReturnsProgressDriverAndHistory() {
	ctx := context.Background()
	now := time.Now().UTC()

	candidate := suite.createAvailableDriver(now)
	aggregate := suite.createTestDelivery("order-1", now)

	eta := now.Add(30 * time.Minute)
	suite.Require().NoError(aggregate.AssignDriver(candidate.ID(), eta, now))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.DriverRepository().Add(ctx, candidate))
	suite.Require().NoError(uow.DeliveryRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))

	query, err := queries.NewGetDeliveryTrackingQuery(aggregate.ID())
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal(aggregate.ID().String(), response.DeliveryID)
	suite.Equal("order-1", response.OrderID)
	suite.Equal(delivery.Assigned.String(), response.Status)
	suite.Require().NotNil(response.EstimatedDeliveryTime)
	suite.WithinDuration(eta, *response.EstimatedDeliveryTime, time.Second)

	suite.Require().NotNil(response.Driver)
	suite.Equal(candidate.ID().String(), response.Driver.ID)
	suite.Equal("Test Driver", response.Driver.Name)
	suite.Equal("+15550100", response.Driver.Phone)
	suite.Equal("bike", response.Driver.VehicleType)

	suite.Require().Len(response.History, 2)
	suite.Equal(delivery.TrackingEventCreated, response.History[0].Kind)
}

func (suite *TrackingQueryIntegrationTestSuite) TestHandle_UnassignedDeliveryHasNoDriver() {
	ctx := context.Background()
	aggregate := suite.createTestDelivery("order-1", time.Now().UTC())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.DeliveryRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))

	query, err := queries.NewGetDeliveryTrackingQuery(aggregate.ID())
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal(delivery.Pending.String(), response.Status)
	suite.Nil(response.Driver)
	suite.Nil(response.EstimatedDeliveryTime)
	suite.Require().Len(response.History, 1)
}

func (suite *TrackingQueryIntegrationTestSuite) TestHandle_UnknownDeliveryNotFound() {
	query, err := queries.NewGetDeliveryTrackingQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TrackingQueryIntegrationTestSuite) createTestDelivery(orderID string, now time.Time) *delivery.Delivery {
	pickupCoordinates, err := kernel.NewLocation(40.7128, -74.0060)
	suite.Require().NoError(err)
	pickup, err := kernel.NewAddress("1 Restaurant Row", "New York", "NY", "10001", pickupCoordinates)
	suite.Require().NoError(err)

	dropoffCoordinates, err := kernel.NewLocation(40.7306, -73.9352)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewAddress("2 Customer Ct", "New York", "NY", "10002", dropoffCoordinates)
	suite.Require().NoError(err)

	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(), orderID, "customer-1", "restaurant-1", pickup, dropoff, now,
	)
	suite.Require().NoError(err)
	return aggregate
}

func (suite *TrackingQueryIntegrationTestSuite) createAvailableDriver(now time.Time) *driver.Driver {
	aggregate, err := driver.NewDriver(
		kernel.NewUUID(), "Test Driver", "+15550100", "driver@example.com", "bike", now,
	)
	suite.Require().NoError(err)

	location, err := kernel.NewLocation(40.7128, -74.0060)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.UpdateLocation(location, now))
	suite.Require().NoError(aggregate.ChangeStatus(driver.Available, now))

	return aggregate
}

func TestTrackingQueryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TrackingQueryIntegrationTestSuite))
}
