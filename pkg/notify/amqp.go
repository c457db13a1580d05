package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishTimeout bounds how long a single AMQP publish may take before
// Publish gives up rather than stalling the scheduler job that called it.
const publishTimeout = 5 * time.Second

// AMQPNotifier publishes operational update messages to a RabbitMQ broker,
// one queue per declaration, matching the reference system's pika-backed
// NotificationHelper. This is the deployment option for a multi-process
// Flight Blender install where operator dashboards subscribe independently
// of the engine process.
type AMQPNotifier struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPNotifier dials url and opens a channel.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening AMQP channel: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch}, nil
}

// Publish declares (idempotently) the per-declaration queue and publishes
// msg to it.
func (n *AMQPNotifier) Publish(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	name := queueName(msg.DeclarationID)
	if _, err := n.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue %s: %w", name, err)
	}

	body, err := marshalMessage(msg)
	if err != nil {
		return fmt.Errorf("marshaling notification message: %w", err)
	}

	return n.ch.PublishWithContext(ctx, "", name, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   msg.Timestamp,
	})
}

// Close closes the channel and connection.
func (n *AMQPNotifier) Close() error {
	chErr := n.ch.Close()
	connErr := n.conn.Close()
	if chErr != nil {
		return chErr
	}
	return connErr
}
