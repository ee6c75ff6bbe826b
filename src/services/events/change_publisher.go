package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"feedbackflow/src/domain"
	"feedbackflow/src/infra/kafka"
)

// Producer é o lado de publicação do KafkaClient.
type Producer interface {
	Producer(messages []kafka.Message, topic string) error
}

// ChangePublisher publica alterações confirmadas de groups, locations e users
// no change feed. A chave da mensagem é a organização, então a ordem é
// preservada por organização.
type ChangePublisher struct {
	logger   *slog.Logger
	producer Producer
	topic    string
	observe  func(entity string)
}

func NewChangePublisher(logger *slog.Logger, producer Producer, topic string, observe func(entity string)) *ChangePublisher {
	return &ChangePublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
		observe:  observe,
	}
}

func (p *ChangePublisher) Publish(ctx context.Context, events ...domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("ChangePublisher.Publish - invalid event %s: %w", event.EventID, err)
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("ChangePublisher.Publish - failed to marshal event %s: %w", event.EventID, err)
		}

		messages = append(messages, kafka.Message{
			Key:     event.OrganizationID,
			Value:   payload,
			Headers: changeHeaders(event),
		})
	}

	if err := p.producer.Producer(messages, p.topic); err != nil {
		return fmt.Errorf("ChangePublisher.Publish - failed to publish to topic %s: %w", p.topic, err)
	}

	for _, event := range events {
		if p.observe != nil {
			p.observe(string(event.Kind))
		}
		p.logger.Debug("Change event published",
			"event_id", event.EventID,
			"organization_id", event.OrganizationID,
			"kind", event.Kind,
			"operation", event.Operation,
			"id", event.ID)
	}
	return nil
}

// changeHeaders permite que consumidores filtrem sem desserializar o corpo.
func changeHeaders(event domain.ChangeEvent) map[string]string {
	return map[string]string{
		"event_id":        event.EventID,
		"event_type":      fmt.Sprintf("%s.%s", event.Kind, event.Operation),
		"entity_type":     string(event.Kind),
		"organization_id": event.OrganizationID,
		"source_service":  "feedbackflow-api",
		"schema_version":  "v1",
	}
}
