// Package events publishes interview lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event types.
const (
	InterviewStarted   = "interview.started"
	AnswerEvaluated    = "answer.evaluated"
	InterviewCompleted = "interview.completed"
	ReportGenerated    = "report.generated"
)

// Event is the JSON message body published for every lifecycle change.
type Event struct {
	Type        string         `json:"type"`
	InterviewID uuid.UUID      `json:"interview_id"`
	OwnerID     uuid.UUID      `json:"owner_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType string, owner, interviewID uuid.UUID, data map[string]any) Event {
	return Event{
		Type:        eventType,
		InterviewID: interviewID,
		OwnerID:     owner,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}

// Publisher delivers events. Publishing is best effort; callers log failures.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dummy drops every event.
type Dummy struct{}

// Publish implements Publisher.
func (Dummy) Publish(context.Context, Event) error {
	return nil
}

// Rabbit publishes events to a durable queue, dialing per publish.
type Rabbit struct {
	url        string
	queue      string
	expiration time.Duration
	logger     *zap.Logger
}

// NewRabbit returns a Rabbit publisher. expiration of zero leaves messages without a TTL.
func NewRabbit(url, queue string, expiration time.Duration, logger *zap.Logger) *Rabbit {
	if queue == "" {
		queue = "interview-events"
	}
	return &Rabbit{url: url, queue: queue, expiration: expiration, logger: logging.OrNop(logger)}
}

// Publish implements Publisher.
func (r *Rabbit) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	q, err := ch.QueueDeclare(r.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", r.queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if r.expiration > 0 {
		msg.Expiration = fmt.Sprintf("%d", r.expiration.Milliseconds())
	}

	if err := ch.PublishWithContext(ctx, "", q.Name, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	r.logger.Debug("event published",
		zap.String("type", event.Type),
		zap.String(logging.FieldInterviewID, event.InterviewID.String()),
		zap.String("queue", q.Name),
	)
	return nil
}
