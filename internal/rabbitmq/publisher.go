package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// DiaryGeneratedEvent is emitted after a diary entry has been persisted.
type DiaryGeneratedEvent struct {
	UserID    int64     `json:"user_id"`
	DiaryID   int64     `json:"diary_id"`
	EntryDate string    `json:"entry_date"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher publishes events to the events exchange.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher wraps an open channel.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish sends one JSON message; a nil Publisher drops it.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "rabbitmq.Publish"
	if p == nil || p.ch == nil {
		return nil
	}
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		ExchangeEvents,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
