// Package rabbitmq publishes domain events to an optional AMQP broker.
// The whole package is nil-safe: a nil *Publisher silently drops events,
// so the broker stays optional in local setups.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// ExchangeEvents is the topic exchange carrying diary domain events.
	ExchangeEvents = "overmind.events"
	// RoutingKeyDiaryGenerated is the routing key of diary.generated events.
	RoutingKeyDiaryGenerated = "diary.generated"
)

// Connect dials the broker and declares the events exchange.
func Connect(connectionString string) (*amqp.Connection, *amqp.Channel, error) {
	const op = "rabbitmq.Connect"

	conn, err := amqp.Dial(connectionString)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = ch.ExchangeDeclare(ExchangeEvents, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return conn, ch, nil
}
