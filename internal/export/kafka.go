// Package export publishes gesture events to external systems.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/ayusman/nayana/internal/stats"
)

// KafkaConfig configures the Kafka event sink.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	BatchSize     int           `yaml:"batch_size"`
	BatchTimeout  time.Duration `yaml:"batch_timeout"`
	IncludeCursor bool          `yaml:"include_cursor"`
}

// DefaultKafkaConfig returns the sink defaults. The sink is disabled.
// Cursor events fire every frame and are left out unless IncludeCursor is set.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "nayana.gestures",
		BatchSize:    100,
		BatchTimeout: 100 * time.Millisecond,
	}
}

// GestureMessage is the JSON value of every published message.
type GestureMessage struct {
	SessionID string     `json:"session_id"`
	Kind      stats.Kind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
	Succeeded bool       `json:"succeeded"`
	LatencyMs float64    `json:"latency_ms"`
	Error     string     `json:"error,omitempty"`
}

// NewGestureMessage converts a recorded event.
func NewGestureMessage(sessionID string, ev stats.Event) GestureMessage {
	msg := GestureMessage{
		SessionID: sessionID,
		Kind:      ev.Kind,
		Timestamp: ev.Timestamp,
		Succeeded: ev.Succeeded,
		LatencyMs: ev.LatencyMs(),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes the events of one session, keyed by session ID.
type KafkaSink struct {
	writer        messageWriter
	sessionID     string
	includeCursor bool

	mu     sync.Mutex
	closed bool
	sent   int
}

// NewKafkaSink creates an asynchronous producer for cfg.Topic.
func NewKafkaSink(cfg KafkaConfig, sessionID string) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	d := DefaultKafkaConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = d.BatchTimeout
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Warn().Err(err).Int("messages", len(messages)).Msg("kafka delivery failed")
			}
		},
	}

	return newKafkaSink(w, sessionID, cfg.IncludeCursor), nil
}

func newKafkaSink(w messageWriter, sessionID string, includeCursor bool) *KafkaSink {
	return &KafkaSink{
		writer:        w,
		sessionID:     sessionID,
		includeCursor: includeCursor,
	}
}

// Attach subscribes the sink to a recorder.
func (s *KafkaSink) Attach(rec *stats.Recorder) {
	rec.Subscribe(s.Observe)
}

// Observe publishes one event. The writer is asynchronous so this does not
// wait for the broker.
func (s *KafkaSink) Observe(ev stats.Event) {
	if ev.Kind == stats.Cursor && !s.includeCursor {
		return
	}

	msg, err := s.message(ev)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode gesture event")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err := s.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Warn().Err(err).Str("gesture", ev.Kind.String()).Msg("failed to publish gesture event")
		return
	}
	s.sent++
}

func (s *KafkaSink) message(ev stats.Event) (kafka.Message, error) {
	data, err := json.Marshal(NewGestureMessage(s.sessionID, ev))
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(s.sessionID),
		Value: data,
		Time:  ev.Timestamp,
	}, nil
}

// Sent returns how many messages were handed to the writer.
func (s *KafkaSink) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close flushes pending messages and stops the producer.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
