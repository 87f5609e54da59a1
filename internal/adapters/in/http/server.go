// Package http exposes the dispatch REST API over echo.
// It translates requests into commands and queries and maps domain errors
// onto HTTP status codes; no business logic lives here.
package http

import (
	"context"
	"net/http"

	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether the server's backing store is reachable.
// *sql.DB satisfies it directly.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	dispatchDeliveryHandler       commands.DispatchDeliveryCommandHandler
	changeDeliveryStatusHandler   commands.ChangeDeliveryStatusCommandHandler
	updateDeliveryLocationHandler commands.UpdateDeliveryLocationCommandHandler
	registerDriverHandler         commands.RegisterDriverCommandHandler
	updateDriverStatusHandler     commands.UpdateDriverStatusCommandHandler
	updateDriverLocationHandler   commands.UpdateDriverLocationCommandHandler

	// Query handlers
	getDeliveryHandler         queries.GetDeliveryQueryHandler
	getDeliveryByOrderHandler  queries.GetDeliveryByOrderQueryHandler
	listDeliveriesHandler      queries.ListDeliveriesQueryHandler
	getDeliveryTrackingHandler queries.GetDeliveryTrackingQueryHandler
	getAvailableDriversHandler queries.GetAvailableDriversQueryHandler
	getStatisticsHandler       queries.GetStatisticsQueryHandler

	hub     *ws.Hub
	checker HealthChecker
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	dispatchDeliveryHandler commands.DispatchDeliveryCommandHandler,
	changeDeliveryStatusHandler commands.ChangeDeliveryStatusCommandHandler,
	updateDeliveryLocationHandler commands.UpdateDeliveryLocationCommandHandler,
	registerDriverHandler commands.RegisterDriverCommandHandler,
	updateDriverStatusHandler commands.UpdateDriverStatusCommandHandler,
	updateDriverLocationHandler commands.UpdateDriverLocationCommandHandler,
	getDeliveryHandler queries.GetDeliveryQueryHandler,
	getDeliveryByOrderHandler queries.GetDeliveryByOrderQueryHandler,
	listDeliveriesHandler queries.ListDeliveriesQueryHandler,
	getDeliveryTrackingHandler queries.GetDeliveryTrackingQueryHandler,
	getAvailableDriversHandler queries.GetAvailableDriversQueryHandler,
	getStatisticsHandler queries.GetStatisticsQueryHandler,
	hub *ws.Hub,
	checker HealthChecker,
) *Server {
	return &Server{
		dispatchDeliveryHandler:       dispatchDeliveryHandler,
		changeDeliveryStatusHandler:   changeDeliveryStatusHandler,
		updateDeliveryLocationHandler: updateDeliveryLocationHandler,
		registerDriverHandler:         registerDriverHandler,
		updateDriverStatusHandler:     updateDriverStatusHandler,
		updateDriverLocationHandler:   updateDriverLocationHandler,
		getDeliveryHandler:            getDeliveryHandler,
		getDeliveryByOrderHandler:     getDeliveryByOrderHandler,
		listDeliveriesHandler:         listDeliveriesHandler,
		getDeliveryTrackingHandler:    getDeliveryTrackingHandler,
		getAvailableDriversHandler:    getAvailableDriversHandler,
		getStatisticsHandler:          getStatisticsHandler,
		hub:                           hub,
		checker:                       checker,
	}
}

// RegisterRoutes wires all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")

	api.POST("/deliveries", s.DispatchDelivery)
	api.GET("/deliveries", s.ListDeliveries)
	api.GET("/deliveries/:deliveryID", s.GetDelivery)
	api.GET("/deliveries/order/:orderID", s.GetDeliveryByOrder)
	api.GET("/deliveries/:deliveryID/tracking", s.GetDeliveryTracking)
	api.PATCH("/deliveries/:deliveryID/status", s.ChangeDeliveryStatus)
	api.PATCH("/deliveries/:deliveryID/location", s.UpdateDeliveryLocation)

	api.POST("/drivers", s.RegisterDriver)
	api.GET("/drivers/available", s.GetAvailableDrivers)
	api.PATCH("/drivers/:driverID/status", s.UpdateDriverStatus)
	api.PATCH("/drivers/:driverID/location", s.UpdateDriverLocation)

	api.GET("/statistics", s.GetStatistics)

	e.GET("/ws/deliveries/:deliveryID", ws.Handler(s.hub))
}

// Health handles GET /health.
// Reports unavailable when the backing store cannot be reached, so load
// balancers stop routing to an instance that lost its database.
func (s *Server) Health(ctx echo.Context) error {
	if s.checker == nil || s.checker.PingContext(ctx.Request().Context()) != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// AddressRequest carries an address in request bodies.
type AddressRequest struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r AddressRequest) toDomain() (kernel.Address, error) {
	coordinates, err := kernel.NewLocation(r.Latitude, r.Longitude)
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(r.Street, r.City, r.State, r.ZipCode, coordinates)
}

// DispatchDeliveryRequest is the body for POST /api/v1/deliveries.
type DispatchDeliveryRequest struct {
	OrderID         string         `json:"order_id"`
	CustomerID      string         `json:"customer_id"`
	RestaurantID    string         `json:"restaurant_id"`
	PickupAddress   AddressRequest `json:"pickup_address"`
	DeliveryAddress AddressRequest `json:"delivery_address"`
}

// DispatchDelivery handles POST /api/v1/deliveries - creates a delivery for an
// order and tries to match a driver.
func (s *Server) DispatchDelivery(ctx echo.Context) error {
	var request DispatchDeliveryRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	pickup, err := request.PickupAddress.toDomain()
	if err != nil {
		return respondError(ctx, err)
	}

	dropoff, err := request.DeliveryAddress.toDomain()
	if err != nil {
		return respondError(ctx, err)
	}

	deliveryID := kernel.NewUUID()
	command, err := commands.NewDispatchDeliveryCommand(
		deliveryID, request.OrderID, request.CustomerID, request.RestaurantID, pickup, dropoff,
	)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.dispatchDeliveryHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"delivery_id": deliveryID.String()})
}

// GetDelivery handles GET /api/v1/deliveries/:deliveryID.
func (s *Server) GetDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("deliveryID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid delivery ID")
	}

	query, err := queries.NewGetDeliveryQuery(deliveryID)
	if err != nil {
		return respondError(ctx, err)
	}

	response, err := s.getDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetDeliveryByOrder handles GET /api/v1/deliveries/order/:orderID.
func (s *Server) GetDeliveryByOrder(ctx echo.Context) error {
	query, err := queries.NewGetDeliveryByOrderQuery(ctx.Param("orderID"))
	if err != nil {
		return respondError(ctx, err)
	}

	response, err := s.getDeliveryByOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ListDeliveries handles GET /api/v1/deliveries with optional status,
// driver_id, limit and offset query parameters.
func (s *Server) ListDeliveries(ctx echo.Context) error {
	var status *delivery.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		parsed, err := delivery.StatusFromString(raw)
		if err != nil {
			return respondBadRequest(ctx, "Invalid status filter")
		}
		status = &parsed
	}

	var driverID *kernel.UUID
	if raw := ctx.QueryParam("driver_id"); raw != "" {
		parsed, err := kernel.UUIDFromString(raw)
		if err != nil {
			return respondBadRequest(ctx, "Invalid driver ID filter")
		}
		driverID = &parsed
	}

	limit, offset := 0, 0
	err := echo.QueryParamsBinder(ctx).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError()
	if err != nil {
		return respondBadRequest(ctx, "Invalid pagination parameters")
	}

	query, err := queries.NewListDeliveriesQuery(status, driverID, limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}

	response, err := s.listDeliveriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetDeliveryTracking handles GET /api/v1/deliveries/:deliveryID/tracking.
func (s *Server) GetDeliveryTracking(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("deliveryID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid delivery ID")
	}

	query, err := queries.NewGetDeliveryTrackingQuery(deliveryID)
	if err != nil {
		return respondError(ctx, err)
	}

	response, err := s.getDeliveryTrackingHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ChangeDeliveryStatusRequest is the body for PATCH /api/v1/deliveries/:deliveryID/status.
type ChangeDeliveryStatusRequest struct {
	Status string `json:"status"`
}

// ChangeDeliveryStatus handles PATCH /api/v1/deliveries/:deliveryID/status.
func (s *Server) ChangeDeliveryStatus(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("deliveryID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid delivery ID")
	}

	var request ChangeDeliveryStatusRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	target, err := delivery.StatusFromString(request.Status)
	if err != nil {
		return respondError(ctx, err)
	}

	command, err := commands.NewChangeDeliveryStatusCommand(deliveryID, target)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.changeDeliveryStatusHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// LocationRequest is the body for location update endpoints.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateDeliveryLocation handles PATCH /api/v1/deliveries/:deliveryID/location.
func (s *Server) UpdateDeliveryLocation(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("deliveryID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid delivery ID")
	}

	var request LocationRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(request.Latitude, request.Longitude)
	if err != nil {
		return respondError(ctx, err)
	}

	command, err := commands.NewUpdateDeliveryLocationCommand(deliveryID, location)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.updateDeliveryLocationHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterDriverRequest is the body for POST /api/v1/drivers.
type RegisterDriverRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	VehicleType string `json:"vehicle_type"`
}

// RegisterDriver handles POST /api/v1/drivers - registers a new driver.
// Drivers start offline; a status update brings them into the matching pool.
func (s *Server) RegisterDriver(ctx echo.Context) error {
	var request RegisterDriverRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	driverID := kernel.NewUUID()
	command, err := commands.NewRegisterDriverCommand(
		driverID, request.Name, request.Phone, request.Email, request.VehicleType,
	)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.registerDriverHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"driver_id": driverID.String()})
}

// GetAvailableDrivers handles GET /api/v1/drivers/available.
func (s *Server) GetAvailableDrivers(ctx echo.Context) error {
	response, err := s.getAvailableDriversHandler.Handle(
		ctx.Request().Context(), queries.NewGetAvailableDriversQuery(),
	)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// UpdateDriverStatusRequest is the body for PATCH /api/v1/drivers/:driverID/status.
type UpdateDriverStatusRequest struct {
	Status string `json:"status"`
}

// UpdateDriverStatus handles PATCH /api/v1/drivers/:driverID/status.
func (s *Server) UpdateDriverStatus(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("driverID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid driver ID")
	}

	var request UpdateDriverStatusRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	target, err := driver.StatusFromString(request.Status)
	if err != nil {
		return respondError(ctx, err)
	}

	command, err := commands.NewUpdateDriverStatusCommand(driverID, target)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.updateDriverStatusHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateDriverLocation handles PATCH /api/v1/drivers/:driverID/location.
// When the driver carries a delivery, the position report also advances that
// delivery's tracking.
func (s *Server) UpdateDriverLocation(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("driverID"))
	if err != nil {
		return respondBadRequest(ctx, "Invalid driver ID")
	}

	var request LocationRequest
	if err := ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(request.Latitude, request.Longitude)
	if err != nil {
		return respondError(ctx, err)
	}

	command, err := commands.NewUpdateDriverLocationCommand(driverID, location)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.updateDriverLocationHandler.Handle(ctx.Request().Context(), command); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetStatistics handles GET /api/v1/statistics.
func (s *Server) GetStatistics(ctx echo.Context) error {
	response, err := s.getStatisticsHandler.Handle(
		ctx.Request().Context(), queries.NewGetStatisticsQuery(),
	)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}
