package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dialTimeout caps the TCP and handshake time of a publish so a broker
// outage cannot stall the booking request that triggered it.
const dialTimeout = 3 * time.Second

// Publisher sends reservation events to RabbitMQ.  It opens a
// connection per event; bookings are infrequent compared to the cost
// of keeping a reconnecting channel alive.
type Publisher struct {
	URL   string
	Queue string
}

// NewPublisher returns a Publisher for the reservation queue.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Queue: ReservationQueue}
}

// Publish sends ev as a persistent JSON message on the default exchange
// routed to p.Queue, declaring the durable queue first.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", p.Queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
