package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LogFile is the audit log written by the consumer inside its log dir.
const LogFile = "parking.log"

// Consumer listens to the reservation queue and appends one line per
// event to <Dir>/parking.log.
type Consumer struct {
	URL   string
	Queue string
	Dir   string
}

// NewConsumer returns a Consumer for the reservation queue writing into dir.
func NewConsumer(url, dir string) *Consumer {
	if dir == "" {
		dir = "logs"
	}
	return &Consumer{URL: url, Queue: ReservationQueue, Dir: dir}
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx
// is cancelled.  Broker outages are retried with exponential backoff
// capped at 30s; messages that cannot be handled are rejected without
// requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.DialConfig(c.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
		if err != nil {
			log.Printf("reservation-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reservation-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				log.Printf("reservation-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends it to the audit log.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == 0 {
		return errors.New("event missing type or reservation_id")
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev ReservationEvent) string {
	switch ev.Type {
	case EventReleased:
		return fmt.Sprintf("[%s] Spot released | reservation_id=%d | user_id=%d | lot=\"%s\" | spot=%s | vehicle=%s | start=%s | end=%s | total=%.2f\n",
			ev.OccurredAt, ev.ReservationID, ev.UserID, ev.LotName, ev.SpotNumber, ev.VehicleNumber, ev.StartTime, ev.EndTime, ev.TotalCost)
	default:
		return fmt.Sprintf("[%s] Spot booked | reservation_id=%d | user_id=%d | lot=\"%s\" | spot=%s | vehicle=%s | start=%s\n",
			ev.OccurredAt, ev.ReservationID, ev.UserID, ev.LotName, ev.SpotNumber, ev.VehicleNumber, ev.StartTime)
	}
}
