// Package rabbit provides the RabbitMQ transport for delivery integration
// events. Events are published to a topic exchange with routing keys of the
// form "delivery.<kind>", so downstream services bind only to the kinds they
// care about.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the shared topic exchange of the ordering platform.
const Exchange = "food_ordering"

// routingKeyPrefix namespaces delivery events on the shared exchange.
const routingKeyPrefix = "delivery."

// Publisher implements EventPublisher on top of an AMQP channel.
// Messages are marked persistent so a broker restart does not drop them.
type Publisher struct {
	channel *amqp.Channel
}

// NewPublisher declares the topic exchange and returns a publisher bound
// to it. The channel is owned by the caller and must outlive the publisher.
func NewPublisher(channel *amqp.Channel) (*Publisher, error) {
	err := channel.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	return &Publisher{channel: channel}, nil
}

// Publish sends a delivery event to the exchange under "delivery.<kind>".
func (p *Publisher) Publish(ctx context.Context, event ports.DeliveryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal delivery event: %w", err)
	}

	return p.channel.PublishWithContext(ctx,
		Exchange,
		routingKeyPrefix+event.Kind,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
}
