// Package rabbit consumes order lifecycle events from the message bus and
// turns them into dispatch commands. The ordering service publishes under
// "order.*" on the shared topic exchange; this consumer binds a durable
// queue to that pattern and reacts to confirmations, payments and
// cancellations.
package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/adapters/out/rabbit"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is the durable queue holding order events for this service.
const Queue = "delivery_events"

// ordersBinding captures every order lifecycle event on the exchange.
const ordersBinding = "order.*"

// Order event types this consumer reacts to. Anything else is acknowledged
// and dropped.
const (
	eventOrderConfirmed   = "order_confirmed"
	eventPaymentSucceeded = "payment_successful"
	eventOrderCancelled   = "order_cancelled"
)

// orderMessage is the envelope the ordering service publishes.
type orderMessage struct {
	EventType string        `json:"event_type"`
	OrderID   string        `json:"order_id"`
	Order     *orderPayload `json:"order,omitempty"`
}

type orderPayload struct {
	ID                string         `json:"id"`
	CustomerID        string         `json:"customer_id"`
	RestaurantID      string         `json:"restaurant_id"`
	RestaurantAddress addressPayload `json:"restaurant_address"`
	DeliveryAddress   addressPayload `json:"delivery_address"`
}

type addressPayload struct {
	Street      string             `json:"street"`
	City        string             `json:"city"`
	State       string             `json:"state"`
	ZipCode     string             `json:"zip_code"`
	Coordinates coordinatesPayload `json:"coordinates"`
}

type coordinatesPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Consumer bridges order events into the command layer.
type Consumer struct {
	dispatchHandler commands.DispatchDeliveryCommandHandler
	paymentHandler  commands.MarkPaymentConfirmedCommandHandler
	cancelHandler   commands.CancelOrderDeliveryCommandHandler
	logger          *slog.Logger
}

// NewConsumer creates a consumer wired to the dispatch, payment and
// cancellation command handlers.
func NewConsumer(
	dispatchHandler commands.DispatchDeliveryCommandHandler,
	paymentHandler commands.MarkPaymentConfirmedCommandHandler,
	cancelHandler commands.CancelOrderDeliveryCommandHandler,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		dispatchHandler: dispatchHandler,
		paymentHandler:  paymentHandler,
		cancelHandler:   cancelHandler,
		logger:          logger.With("component", "order_consumer"),
	}
}

// Run declares the queue, binds it to the order events and consumes until
// the context is cancelled. Messages are acknowledged manually: business
// rejections are acknowledged and dropped, decode failures are rejected
// without requeue so a malformed message cannot loop forever.
func (c *Consumer) Run(ctx context.Context, channel *amqp.Channel) error {
	err := channel.ExchangeDeclare(rabbit.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", rabbit.Exchange, err)
	}

	queue, err := channel.QueueDeclare(Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", Queue, err)
	}

	if err := channel.QueueBind(queue.Name, ordersBinding, rabbit.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue.Name, ordersBinding, err)
	}

	deliveries, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", queue.Name, err)
	}

	c.logger.Info("consuming order events", "queue", queue.Name, "binding", ordersBinding)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message, ok := <-deliveries:
			if !ok {
				return errors.New("order events channel closed")
			}
			c.consume(ctx, message)
		}
	}
}

func (c *Consumer) consume(ctx context.Context, message amqp.Delivery) {
	var envelope orderMessage
	if err := json.Unmarshal(message.Body, &envelope); err != nil {
		c.logger.Error("rejecting undecodable message",
			"routing_key", message.RoutingKey, "error", err)
		_ = message.Reject(false)
		return
	}

	if err := c.handleMessage(ctx, envelope); err != nil {
		if isBusinessRejection(err) {
			// Redeliveries and out-of-order events are settled, not retried.
			c.logger.Warn("dropping order event",
				"event_type", envelope.EventType, "order_id", envelope.OrderID, "error", err)
			_ = message.Ack(false)
			return
		}

		c.logger.Error("failed to process order event",
			"event_type", envelope.EventType, "order_id", envelope.OrderID, "error", err)
		_ = message.Nack(false, false)
		return
	}

	_ = message.Ack(false)
}

// handleMessage routes an order event to its command handler.
// Unknown event types are dropped silently so new upstream events do not
// poison the queue.
func (c *Consumer) handleMessage(ctx context.Context, envelope orderMessage) error {
	switch envelope.EventType {
	case eventOrderConfirmed:
		return c.handleOrderConfirmed(ctx, envelope)
	case eventPaymentSucceeded:
		return c.handlePaymentSucceeded(ctx, envelope)
	case eventOrderCancelled:
		return c.handleOrderCancelled(ctx, envelope)
	default:
		c.logger.Debug("ignoring order event", "event_type", envelope.EventType)
		return nil
	}
}

func (c *Consumer) handleOrderConfirmed(ctx context.Context, envelope orderMessage) error {
	if envelope.Order == nil {
		return errs.NewValueIsRequiredError("order")
	}

	pickup, err := toAddress(envelope.Order.RestaurantAddress)
	if err != nil {
		return fmt.Errorf("restaurant address: %w", err)
	}

	dropoff, err := toAddress(envelope.Order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("delivery address: %w", err)
	}

	command, err := commands.NewDispatchDeliveryCommand(
		kernel.NewUUID(),
		envelope.Order.ID,
		envelope.Order.CustomerID,
		envelope.Order.RestaurantID,
		pickup,
		dropoff,
	)
	if err != nil {
		return err
	}

	return c.dispatchHandler.Handle(ctx, command)
}

func (c *Consumer) handlePaymentSucceeded(ctx context.Context, envelope orderMessage) error {
	command, err := commands.NewMarkPaymentConfirmedCommand(envelope.OrderID)
	if err != nil {
		return err
	}

	return c.paymentHandler.Handle(ctx, command)
}

func (c *Consumer) handleOrderCancelled(ctx context.Context, envelope orderMessage) error {
	command, err := commands.NewCancelOrderDeliveryCommand(envelope.OrderID)
	if err != nil {
		return err
	}

	return c.cancelHandler.Handle(ctx, command)
}

// isBusinessRejection reports whether an error is a final business answer
// rather than a transient failure. Duplicate dispatches are redelivered
// messages, illegal transitions are stale events for an already-settled
// delivery, and not-found means the order never reached this service.
func isBusinessRejection(err error) bool {
	return errors.Is(err, commands.ErrOrderAlreadyDispatched) ||
		errors.Is(err, delivery.ErrIllegalTransition) ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid)
}

func toAddress(payload addressPayload) (kernel.Address, error) {
	coordinates, err := kernel.NewLocation(payload.Coordinates.Latitude, payload.Coordinates.Longitude)
	if err != nil {
		return kernel.Address{}, err
	}

	return kernel.NewAddress(payload.Street, payload.City, payload.State, payload.ZipCode, coordinates)
}
