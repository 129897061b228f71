package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
	// PubID prefixes event types to align with subscription filters
	// (e.g. "", "beta", "qa", "stage").
	PubID string `mapstructure:"pub_id"`
}

// EventType enumerates the scheduling events published for the external
// dispatcher and analytics consumers. Publishing is data flow only; the
// dispatcher decides whether and when to act on it.
type EventType string

const (
	EventAttemptRecorded   EventType = "attempt.recorded"
	EventCallbackScheduled EventType = "callback.scheduled"
	EventCallbackCompleted EventType = "callback.completed"
)

// SchedulingEvent is the JSON envelope published for every event type.
type SchedulingEvent struct {
	ID          string     `json:"id"`
	Type        EventType  `json:"type"`
	ContactID   string     `json:"contact_id"`
	CallbackID  string     `json:"callback_id,omitempty"`
	Outcome     string     `json:"outcome,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	Accuracy    *float64   `json:"accuracy,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PubSubService struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	config *PubSubConfig
}

// NewPubSubService creates a Pub/Sub publisher for scheduling events.
// Returns an error when the project is unreachable; callers treat the
// service as optional and run without it.
func NewPubSubService(ctx context.Context, config *PubSubConfig) (*PubSubService, error) {
	if config == nil || config.ProjectID == "" {
		return nil, fmt.Errorf("pubsub project ID is required")
	}

	client, err := pubsub.NewClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(config.TopicName)

	return &PubSubService{
		client: client,
		topic:  topic,
		config: config,
	}, nil
}

// Publish sends a scheduling event. Failures are returned, not fatal;
// the caller logs and continues since event delivery is best-effort.
func (s *PubSubService) Publish(ctx context.Context, event SchedulingEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduling event: %w", err)
	}

	eventType := string(event.Type)
	if s.config.PubID != "" {
		eventType = fmt.Sprintf("%s.%s", s.config.PubID, eventType)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": eventType,
			"contact_id": event.ContactID,
		},
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish scheduling event: %w", err)
	}

	logger.Base().Debug("published scheduling event",
		zap.String("event_type", eventType),
		zap.String("contact_id", event.ContactID))
	return nil
}

// Close flushes and releases the Pub/Sub client.
func (s *PubSubService) Close() error {
	if s.topic != nil {
		s.topic.Stop()
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
