// Package events publishes lifecycle events to an AMQP topic exchange so
// downstream collaborators (notification, payment reconciliation) can react
// to proposal and project state changes.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/metrics"
)

// Routing keys for lifecycle events.
const (
	ProposalSubmitted = "proposal.submitted"
	ProposalAccepted  = "proposal.accepted"
	ProposalRejected  = "proposal.rejected"
	ProjectCompleted  = "project.completed"
	ReviewCreated     = "review.created"
)

// Publisher emits lifecycle events. Publishing is best-effort: failures are
// reported to the caller for logging but must never roll back the state
// change that produced the event.
type Publisher interface {
	Publish(routingKey string, payload any) error
	Close()
}

// amqpPublisher publishes events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher connects to the broker and declares the topic exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &amqpPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger.Named("events"),
	}, nil
}

var _ Publisher = (*amqpPublisher)(nil)

func (p *amqpPublisher) Publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordEventPublished(routingKey, "failed")
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now().UTC(),
			DeliveryMode: amqp091.Persistent,
		},
	)
	if err != nil {
		metrics.RecordEventPublished(routingKey, "failed")
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	metrics.RecordEventPublished(routingKey, "success")
	return nil
}

func (p *amqpPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// nopPublisher drops all events. Used when no AMQP URL is configured.
type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(routingKey string, payload any) error { return nil }
func (nopPublisher) Close()                                       {}
