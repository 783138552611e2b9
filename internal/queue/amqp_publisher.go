package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// AMQPPublisher publishes rental events to a durable RabbitMQ queue. Each
// Publish dials, declares the queue and closes again; rentals are rare
// enough that a pooled connection is not worth its reconnect handling.
type AMQPPublisher struct {
	url   string
	queue string
}

// NewAMQPPublisher returns a publisher for queueName on the broker at url.
func NewAMQPPublisher(url, queueName string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queueName}
}

// Publish marshals ev and sends it as a persistent message through the
// default exchange. Errors are logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, ev RentalEvent) error {
	logger := log.WithFields(log.Fields{"queue": p.queue, "event": ev.Type, "rental_id": ev.RentalID})

	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: dial failed")
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()
	// Channel setup and declare take no context; closing the connection
	// when ctx ends unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareQueue(ch, p.queue); err != nil {
		logger.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		logger.WithError(err).Warn("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// defaultDialTimeout applies when the caller's context has no deadline.
const defaultDialTimeout = 5 * time.Second

// dialTimeout is the time left before ctx's deadline. It covers the TCP
// connect and the AMQP handshake.
func dialTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	if left := time.Until(deadline); left > time.Millisecond {
		return left
	}
	return time.Millisecond
}

// declareQueue makes sure the durable queue exists. Idempotent.
func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("queue declare %s: %w", name, err)
	}
	return nil
}
