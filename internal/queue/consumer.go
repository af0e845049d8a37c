package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/logging"
)

// Consumer reads booking notifications and appends one line per message
// to <LogDir>/notifications.log, standing in for the WhatsApp sender.
type Consumer struct {
	URL    string
	Queue  string
	LogDir string
	Logger *logrus.Logger

	mu sync.Mutex
}

// NewConsumer returns a consumer for the notification queue writing under
// logs/.
func NewConsumer(url string, logger *logrus.Logger) *Consumer {
	return &Consumer{URL: url, Queue: NotificationQueue, LogDir: "logs", Logger: logging.OrDiscard(logger)}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled.  Broker failures are retried with exponential
// backoff capped at 30s; a message that cannot be handled is rejected
// without requeue so one bad payload cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Logger.WithField("component", "notification-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.WithError(err).Warn("notification-consumer: set QoS failed")
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
				c.Logger.WithError(err).Warn("notification-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends its line to the log file.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingNotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event without booking id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "notifications.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
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
func FormatLine(ev BookingNotificationEvent) string {
	return fmt.Sprintf("[%s] WhatsApp to %s | event=%s | booking_id=%s | kit=%q | start=%s | nights=%d | total=%s | status=%q | message=%q\n",
		ev.OccurredAt, ev.Phone, ev.Event, ev.BookingID, ev.KitName, ev.StartDate, ev.Nights, ev.TotalLabel, ev.StatusLabel, Message(ev))
}

// Message is the text the customer would receive.
func Message(ev BookingNotificationEvent) string {
	if ev.PreviousStatus == "" {
		return fmt.Sprintf("Hi %s, your booking %s for %s starting %s is %s. Total %s.",
			ev.FullName, ev.BookingID, ev.KitName, ev.StartDate, ev.StatusLabel, ev.TotalLabel)
	}
	return fmt.Sprintf("Hi %s, your booking %s for %s is now %s.",
		ev.FullName, ev.BookingID, ev.KitName, ev.StatusLabel)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
