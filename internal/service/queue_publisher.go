package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/projectdesk/internal/queue"
)

// Publisher delivers audit events after the change they describe has
// committed.  Callers ignore the returned error beyond logging it.
type Publisher interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// NoopPublisher drops every event.  Used when EVENTS_ENABLED is off and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, queue.AuditEvent) error { return nil }

// RabbitPublisher publishes events to the durable audit queue over the
// default exchange.  Each call opens its own connection, so it is safe for
// concurrent use.
type RabbitPublisher struct {
	URL string
}

func (p RabbitPublisher) Publish(ctx context.Context, ev queue.AuditEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.AuditQueueName, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.At,
		Type:         ev.Kind,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.AuditQueueName, false, false, pub); err != nil {
		log.WithError(err).WithField("kind", ev.Kind).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// publishTimeout bounds a detached publish, dial included.
const publishTimeout = 3 * time.Second

// dialTimeout is the time left before ctx's deadline, or publishTimeout
// when ctx has none.
func dialTimeout(ctx context.Context) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return publishTimeout
	}
	if left := time.Until(dl); left > 0 {
		return left
	}
	return time.Millisecond
}

// Publish sends ev through p and logs a failure instead of returning it.
// The request context may already be near its deadline, so a short detached
// context is used.
func Publish(p Publisher, ev queue.AuditEvent) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.WithError(err).WithField("kind", ev.Kind).Warn("audit event dropped")
	}
}
