package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"feedbackflow/src/domain"
	"feedbackflow/src/infra/kafka"
)

// Subscriber é o lado de consumo do KafkaClient.
type Subscriber interface {
	Consumer(ctx context.Context, handler kafka.Handler, topic string) error
}

// Dispatcher entrega o evento ao workspace aberto da organização.
type Dispatcher interface {
	Dispatch(event domain.ChangeEvent) error
}

// ChangeFeedConsumer aplica o change feed nos workspaces abertos deste
// processo. Cada instância da API consome com o próprio consumer group, então
// todas recebem todos os eventos.
type ChangeFeedConsumer struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	observe    func(entity string)
}

func NewChangeFeedConsumer(logger *slog.Logger, dispatcher Dispatcher, observe func(entity string)) *ChangeFeedConsumer {
	return &ChangeFeedConsumer{
		logger:     logger,
		dispatcher: dispatcher,
		observe:    observe,
	}
}

func (c *ChangeFeedConsumer) Start(ctx context.Context, subscriber Subscriber, topic string) error {
	c.logger.Info("Starting change feed consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(messages)
	}

	return subscriber.Consumer(ctx, handler, topic)
}

// HandleMessages nunca devolve erro: uma mensagem inválida reentregue para
// sempre travaria a partição. Eventos que chegam enquanto o workspace ainda
// carrega ficam no backlog dele e são aplicados ao fim do load.
func (c *ChangeFeedConsumer) HandleMessages(messages []kafka.Message) error {
	for _, msg := range messages {
		var event domain.ChangeEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to unmarshal change event",
				"error", err,
				"key", msg.Key,
				"event_id", msg.Headers["event_id"])
			continue
		}

		if err := c.dispatcher.Dispatch(event); err != nil {
			c.logger.Error("Failed to apply change event",
				"error", err,
				"event_id", event.EventID,
				"organization_id", event.OrganizationID,
				"kind", event.Kind)
			continue
		}

		if c.observe != nil {
			c.observe(string(event.Kind))
		}
	}

	c.logger.Debug("Processed change feed batch", "count", len(messages))
	return nil
}
