package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

// blockingWriter never completes a write on its own.
type blockingWriter struct{}

func (blockingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingWriter) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisherWithWriter(w, "arktutor.events", "events-test", 0, quietLogger())

	err := p.Publish(context.Background(), Event{
		Type:    TypeUserRegistered,
		Key:     "user-1",
		Payload: map[string]string{"user_type": "student"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "user-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeUserRegistered, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypeUserRegistered, decoded["type"])
	assert.Equal(t, "user-1", decoded["key"])
	assert.NotEmpty(t, decoded["occurred_at"])
}

func TestPublishBestEffort_SwallowsErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := NewKafkaPublisherWithWriter(w, "arktutor.events", "events-test", 0, quietLogger())

	assert.Error(t, p.Publish(context.Background(), Event{Type: TypeGradeRecorded, Key: "g-1"}))
	assert.NotPanics(t, func() {
		PublishBestEffort(context.Background(), p, quietLogger(), Event{Type: TypeGradeRecorded, Key: "g-1"})
	})
}

func TestKafkaPublisher_PublishIsBounded(t *testing.T) {
	p := NewKafkaPublisherWithWriter(blockingWriter{}, "arktutor.events", "events-test", 50*time.Millisecond, quietLogger())

	start := time.Now()
	err := p.Publish(context.Background(), Event{Type: TypeSessionLogged, Key: "s-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	start = time.Now()
	PublishBestEffort(context.Background(), p, quietLogger(), Event{Type: TypeSessionLogged, Key: "s-1"})
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewKafkaPublisherWithWriter_DefaultTimeout(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&recordingWriter{}, "arktutor.events", "events-test", 0, quietLogger())
	assert.Equal(t, DefaultPublishTimeout, p.timeout)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeSessionLogged}))
	assert.NoError(t, p.Close())
}
