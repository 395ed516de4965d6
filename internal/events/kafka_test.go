package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"leadintake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type fakeStreamWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeStreamWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeStreamWriter) Close() error { return nil }

type streamTestConfig struct {
	brokers []string
	topic   string
}

func (c streamTestConfig) GetKafkaBrokers() []string { return c.brokers }
func (c streamTestConfig) GetKafkaLeadTopic() string { return c.topic }
func (c streamTestConfig) IsStreamEnabled() bool     { return len(c.brokers) > 0 && c.topic != "" }

type recordingStreamBus struct {
	subs []string
}

func (b *recordingStreamBus) Publish(ctx context.Context, event Event) {}

func (b *recordingStreamBus) PublishSync(ctx context.Context, event Event) error { return nil }

func (b *recordingStreamBus) Subscribe(eventName string, handler Handler) {
	b.subs = append(b.subs, eventName)
}

func TestStreamForwarderWritesKeyedEnvelope(t *testing.T) {
	w := &fakeStreamWriter{}
	f := &StreamForwarder{writer: w, topic: "leads", log: logger.New("development")}

	leadID := uuid.New()
	evt := LeadAssigned{
		BaseEvent: NewBaseEvent(),
		LeadID:    leadID,
		LeadName:  "Jane Doe",
		AgentID:   uuid.New(),
		AgentName: "Alex Vermeer",
	}

	if err := f.Handle(context.Background(), evt); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != leadID.String() {
		t.Errorf("expected message keyed by lead id, got %q", w.msgs[0].Key)
	}

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.msgs[0].Value, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Event != "intake.lead.assigned" {
		t.Errorf("expected event name in envelope, got %q", envelope.Event)
	}

	var data LeadAssigned
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.LeadName != "Jane Doe" {
		t.Errorf("expected lead name in payload, got %q", data.LeadName)
	}
}

func TestStreamForwarderLeavesQueuedEventsUnkeyed(t *testing.T) {
	w := &fakeStreamWriter{}
	f := &StreamForwarder{writer: w, topic: "leads", log: logger.New("development")}

	evt := LeadQueued{BaseEvent: NewBaseEvent(), Name: "Jane Doe", Source: "website"}
	if err := f.Handle(context.Background(), evt); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if len(w.msgs[0].Key) != 0 {
		t.Errorf("queued submissions have no lead id, expected no key, got %q", w.msgs[0].Key)
	}
}

func TestStreamForwarderReturnsWriteErrors(t *testing.T) {
	writeErr := errors.New("broker unreachable")
	f := &StreamForwarder{writer: &fakeStreamWriter{err: writeErr}, topic: "leads", log: logger.New("development")}

	err := f.Handle(context.Background(), LeadUpdated{BaseEvent: NewBaseEvent(), LeadID: uuid.New()})
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error to surface, got %v", err)
	}
}

func TestStreamForwarderSubscribesToLeadEvents(t *testing.T) {
	bus := &recordingStreamBus{}
	f := &StreamForwarder{writer: &fakeStreamWriter{}, topic: "leads", log: logger.New("development")}

	f.RegisterHandlers(bus)

	want := []string{
		"intake.lead.created",
		"intake.lead.assigned",
		"intake.lead.updated",
		"intake.lead.queued",
	}
	if len(bus.subs) != len(want) {
		t.Fatalf("expected %d subscriptions, got %d", len(want), len(bus.subs))
	}
	for i, name := range want {
		if bus.subs[i] != name {
			t.Errorf("subscription %d: expected %q, got %q", i, name, bus.subs[i])
		}
	}
}

func TestNilStreamForwarderIsSafe(t *testing.T) {
	var f *StreamForwarder

	f.RegisterHandlers(&recordingStreamBus{})
	if err := f.Handle(context.Background(), LeadQueued{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("nil forwarder should be a no-op, got %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("nil forwarder close should be a no-op, got %v", err)
	}
}

func TestNewStreamForwarderDisabledWithoutConfig(t *testing.T) {
	if f := NewStreamForwarder(streamTestConfig{}, logger.New("development")); f != nil {
		t.Fatal("expected nil forwarder when the stream is not configured")
	}
	if f := NewStreamForwarder(streamTestConfig{brokers: []string{"localhost:9092"}}, logger.New("development")); f != nil {
		t.Fatal("expected nil forwarder when no topic is configured")
	}
}
