// Package events publishes domain events after the owning transaction has
// committed. Publishing is best effort: failures are logged and counted but
// never undo or fail the business operation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RigelNana/arktutor/pkg/metrics"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	TypeUserRegistered = "user.registered"
	TypeGradeRecorded  = "grade.recorded"
	TypeSessionLogged  = "session.logged"
)

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DefaultPublishTimeout bounds a single Publish when no timeout is given.
const DefaultPublishTimeout = 2 * time.Second

type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	service string
	timeout time.Duration
	logger  *logrus.Logger
}

func NewKafkaPublisher(brokers []string, topic, service string, timeout time.Duration, logger *logrus.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	// one event per request: flush right away instead of waiting for a full batch
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
		MaxAttempts:  3,
		WriteTimeout: timeout,
	})
	return NewKafkaPublisherWithWriter(w, topic, service, timeout, logger)
}

func NewKafkaPublisherWithWriter(w MessageWriter, topic, service string, timeout time.Duration, logger *logrus.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &KafkaPublisher{writer: w, topic: topic, service: service, timeout: timeout, logger: logger}
}

// Publish writes e and gives up once the publish timeout elapses.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.KafkaMessagesTotal.WithLabelValues(p.service, p.topic, status).Inc()
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }

// PublishBestEffort publishes e and logs a failure instead of returning it.
func PublishBestEffort(ctx context.Context, p Publisher, logger *logrus.Logger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"event_type": e.Type,
			"key":        e.Key,
		}).Warn("publish event failed")
	}
}
