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

	"github.com/dholimara/homestay-api/internal/logger"
)

const (
	maxBackoff = 30 * time.Second
	logFile    = "booking.log"
)

// Consumer reads booking events from both booking queues and appends one
// line per event to <dir>/booking.log.
type Consumer struct {
	url string
	dir string
	log *logger.Logger

	mu sync.Mutex // serializes writes to the log file
}

func NewConsumer(url, dir string, log *logger.Logger) *Consumer {
	return &Consumer{url: url, dir: dir, log: log.With("component", "booking-consumer")}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set qos failed", "error", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, q := range []string{BookingCreatedQueue, BookingCancelledQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", q, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				if err := c.Handle(d.Body); err != nil {
					c.log.Error("handle booking event failed", "queue", q, "error", err)
					_ = d.Nack(false, false) // dropped, requeueing a bad message would spin
					continue
				}
				_ = d.Ack(false)
			}
			errs <- fmt.Errorf("%s: deliveries closed", q)
		}()
	}

	select {
	case <-ctx.Done():
		_ = ch.Close()
		wg.Wait()
		return ctx.Err()
	case err := <-errs:
		_ = ch.Close()
		wg.Wait()
		return err
	}
}

// Handle decodes one message body and appends it to the log.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 {
		return errors.New("event without booking_id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single log line ending in a newline.
func FormatLine(ev BookingEvent) string {
	action := "Booking created"
	if ev.Type == BookingCancelledQueue {
		action = "Booking cancelled"
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | homestay=%q | room=%q | stay=%s..%s | nights=%d | guests=%d | total=%d cents | status=%s\n",
		ev.OccurredAt, action, ev.BookingID, ev.UserID, ev.HomestayName, ev.RoomName,
		ev.CheckInDate, ev.CheckOutDate, ev.Nights, ev.Guests, ev.TotalAmountCents, ev.Status)
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
