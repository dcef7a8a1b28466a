package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/resume-analyzer/apiserver/config"
)

// stubBackend records calls so the Events wrapper can be exercised
// without a running broker.
type stubBackend struct {
	published []Message
	delivered []Message
	closed    bool
}

func (s *stubBackend) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	s.published = append(s.published, Message{ID: topic, Data: data, Attributes: attrs})
	return topic, nil
}

func (s *stubBackend) Subscribe(ctx context.Context, topic string, handler Handler) error {
	for _, msg := range s.delivered {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func TestEventsPublish(t *testing.T) {
	backend := &stubBackend{}
	events := New(backend)

	id, err := events.Publish(context.Background(), TopicResumeUploaded, []byte(`{"resume_id":1}`), map[string]string{"source": "api"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id != TopicResumeUploaded {
		t.Errorf("Publish() id = %q", id)
	}
	if len(backend.published) != 1 {
		t.Fatalf("backend saw %d publishes, want 1", len(backend.published))
	}
	if backend.published[0].Attributes["source"] != "api" {
		t.Errorf("attributes not forwarded: %v", backend.published[0].Attributes)
	}
}

func TestEventsSubscribe(t *testing.T) {
	backend := &stubBackend{
		delivered: []Message{
			{ID: "a", Data: []byte("one")},
			{ID: "b", Data: []byte("two")},
		},
	}
	events := New(backend)

	var seen []string
	err := events.Subscribe(context.Background(), TopicApplicationCreated, func(ctx context.Context, msg Message) error {
		seen = append(seen, msg.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("handler saw %v, want [a b]", seen)
	}
}

func TestEventsSubscribeHandlerError(t *testing.T) {
	backend := &stubBackend{delivered: []Message{{ID: "a"}}}
	events := New(backend)

	wantErr := errors.New("handler failed")
	err := events.Subscribe(context.Background(), TopicApplicationCreated, func(ctx context.Context, msg Message) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Subscribe() error = %v, want the handler's error", err)
	}
}

func TestEventsClose(t *testing.T) {
	backend := &stubBackend{}
	events := New(backend)

	if err := events.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !backend.closed {
		t.Error("Close() did not reach the backend")
	}
}

func TestNewFromConfigDisabled(t *testing.T) {
	events, err := NewFromConfig(context.Background(), config.MQConfig{})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if events != nil {
		t.Error("NewFromConfig() with no backend should return nil events")
	}
}

func TestNewFromConfigUnknownBackend(t *testing.T) {
	_, err := NewFromConfig(context.Background(), config.MQConfig{Backend: "kafka"})
	if err == nil {
		t.Fatal("NewFromConfig() accepted an unknown backend")
	}
}
