package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadintake_backend/platform/config"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/metrics"

	"github.com/segmentio/kafka-go"
)

const streamWriteTimeout = 10 * time.Second

// streamWriter is the slice of kafka.Writer the forwarder needs.
type streamWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StreamForwarder mirrors lead events onto a Kafka topic so downstream
// consumers (CRM sync, analytics) can follow the intake flow without
// polling the API. A nil forwarder is safe to use and does nothing.
type StreamForwarder struct {
	writer streamWriter
	topic  string
	log    *logger.Logger
}

// NewStreamForwarder returns nil when no brokers or topic are configured.
func NewStreamForwarder(cfg config.StreamConfig, log *logger.Logger) *StreamForwarder {
	if !cfg.IsStreamEnabled() {
		return nil
	}

	topic := cfg.GetKafkaLeadTopic()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.GetKafkaBrokers()...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: streamWriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}

	return &StreamForwarder{
		writer: writer,
		topic:  topic,
		log:    log,
	}
}

// RegisterHandlers subscribes the forwarder to every lead event.
func (f *StreamForwarder) RegisterHandlers(bus Bus) {
	if f == nil || bus == nil {
		return
	}

	for _, name := range []string{
		LeadCreated{}.EventName(),
		LeadAssigned{}.EventName(),
		LeadUpdated{}.EventName(),
		LeadQueued{}.EventName(),
	} {
		bus.Subscribe(name, f)
	}

	f.log.Info("lead event stream forwarder registered", "topic", f.topic)
}

// streamEnvelope is the wire format written to the stream.
type streamEnvelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       Event     `json:"data"`
}

func (f *StreamForwarder) Handle(ctx context.Context, event Event) error {
	if f == nil || f.writer == nil {
		return nil
	}

	value, err := json.Marshal(streamEnvelope{
		Event:      event.EventName(),
		OccurredAt: event.OccurredAt(),
		Data:       event,
	})
	if err != nil {
		metrics.StreamEventsTotal.WithLabelValues(event.EventName(), "failed").Inc()
		return fmt.Errorf("encode %s for topic %s: %w", event.EventName(), f.topic, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()

	if err := f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   streamKey(event),
		Value: value,
	}); err != nil {
		metrics.StreamEventsTotal.WithLabelValues(event.EventName(), "failed").Inc()
		return fmt.Errorf("forward %s to topic %s: %w", event.EventName(), f.topic, err)
	}

	metrics.StreamEventsTotal.WithLabelValues(event.EventName(), "forwarded").Inc()
	return nil
}

func (f *StreamForwarder) Close() error {
	if f == nil || f.writer == nil {
		return nil
	}
	return f.writer.Close()
}

// streamKey keys messages by lead so consumers see per-lead ordering.
// Queued submissions have no lead id yet and fall back to balancing.
func streamKey(event Event) []byte {
	switch e := event.(type) {
	case LeadCreated:
		return []byte(e.LeadID.String())
	case LeadAssigned:
		return []byte(e.LeadID.String())
	case LeadUpdated:
		return []byte(e.LeadID.String())
	default:
		return nil
	}
}

var _ Handler = (*StreamForwarder)(nil)
