// Package mq publishes platform events (resume uploads, new
// applications) to a message broker for downstream analysis workers.
// Publishing is best effort: the request that triggered the event never
// fails because the broker is down.
package mq

import (
	"context"
	"fmt"

	"github.com/resume-analyzer/apiserver/config"
)

// Topics the platform publishes to.
const (
	TopicResumeUploaded     = "resumes.uploaded"
	TopicApplicationCreated = "applications.created"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Events wraps a backend with a stable API.
type Events struct {
	backend Backend
}

// New constructs an Events bus for the provided backend.
func New(backend Backend) *Events {
	return &Events{backend: backend}
}

// NewFromConfig selects a broker by config. Returns (nil, nil) when
// events are disabled.
func NewFromConfig(ctx context.Context, cfg config.MQConfig) (*Events, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "pubsub":
		backend, err := NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// Publish sends an event to the named topic.
func (e *Events) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	return e.backend.Publish(ctx, topic, data, attrs)
}

// Subscribe consumes events from the named topic. The API server only
// publishes; this is the entry point for external analysis workers
// built on the same package.
func (e *Events) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return e.backend.Subscribe(ctx, topic, handler)
}

// Close closes the underlying backend.
func (e *Events) Close() error {
	return e.backend.Close()
}
