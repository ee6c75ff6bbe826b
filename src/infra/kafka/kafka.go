package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

type KafkaClient struct {
	consumer  sarama.ConsumerGroup
	producer  sarama.SyncProducer
	logger    *slog.Logger
	batchSize int
}

type Message struct {
	Key      string
	Value    []byte
	Headers  map[string]string
	internal *sarama.ConsumerMessage
}

// Handler processa um lote. Um erro faz o lote inteiro ser reentregue.
type Handler func(messages []Message) error

func newConfig(batchSize int) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = "feedbackflow"

	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Group.Session.Timeout = 30 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 10 * time.Second
	config.Consumer.MaxProcessingTime = 10 * time.Second
	config.Consumer.MaxWaitTime = 100 * time.Millisecond
	config.ChannelBufferSize = batchSize * 2

	// Eventos de alteração são pequenos e sensíveis a latência.
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner

	return config
}

// NewKafkaClient cria producer e consumer group. groupID vazio cria apenas o producer.
func NewKafkaClient(brokers string, groupID string, batchSize int, logger *slog.Logger) (*KafkaClient, error) {
	brokerList := strings.Split(brokers, ",")
	config := newConfig(batchSize)

	producer, err := sarama.NewSyncProducer(brokerList, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	client := &KafkaClient{producer: producer, logger: logger, batchSize: batchSize}

	if groupID != "" {
		consumer, err := sarama.NewConsumerGroup(brokerList, groupID, config)
		if err != nil {
			_ = producer.Close()
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
		client.consumer = consumer
	}

	logger.Info("Kafka client initialized", "brokers", brokerList, "group_id", groupID, "batch_size", batchSize)
	return client, nil
}

// NewFromProducer monta um client só de publicação a partir de um producer existente.
func NewFromProducer(producer sarama.SyncProducer, logger *slog.Logger) *KafkaClient {
	return &KafkaClient{producer: producer, logger: logger, batchSize: 1}
}

// Consumer bloqueia até o contexto ser cancelado, reconectando após erros.
func (k *KafkaClient) Consumer(ctx context.Context, handler Handler, topic string) error {
	if k.consumer == nil {
		return errors.New("KafkaClient.Consumer - client was created without a consumer group")
	}

	consumerHandler := &consumerGroupHandler{
		handler:   handler,
		batchSize: k.batchSize,
		logger:    k.logger,
	}

	for {
		if err := k.consumer.Consume(ctx, []string{topic}, consumerHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			k.logger.Error("Error consuming from topic", "topic", topic, "error", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		if ctx.Err() != nil {
			k.logger.Info("Kafka consumer context cancelled", "topic", topic)
			return nil
		}
	}
}

// Producer envia as mensagens na ordem recebida; mensagens com a mesma chave
// caem na mesma partição e preservam a ordem.
func (k *KafkaClient) Producer(messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	kafkaMessages := make([]*sarama.ProducerMessage, 0, len(messages))
	for _, msg := range messages {
		headers := make([]sarama.RecordHeader, 0, len(msg.Headers))
		for key, value := range msg.Headers {
			headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
		}

		kafkaMessages = append(kafkaMessages, &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: headers,
		})
	}

	if err := k.producer.SendMessages(kafkaMessages); err != nil {
		var producerErrs sarama.ProducerErrors
		if errors.As(err, &producerErrs) {
			return fmt.Errorf("batch send failed: %d/%d messages failed: %w", len(producerErrs), len(messages), producerErrs[0].Err)
		}
		return fmt.Errorf("batch send failed: %w", err)
	}

	k.logger.Debug("Batch sent", "topic", topic, "messages", len(messages))
	return nil
}

func (k *KafkaClient) Close() error {
	var errs []error

	if k.consumer != nil {
		if err := k.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
		}
	}

	if err := k.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	return errors.Join(errs...)
}

// consumerGroupHandler implementa sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	handler   Handler
	batchSize int
	logger    *slog.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer group session setup", "batch_size", h.batchSize)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer group session cleanup")
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	batchTimeout := 200 * time.Millisecond

	messages := make([]Message, 0, h.batchSize)
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(messages) > 0 {
			h.processBatch(session, messages)
			messages = messages[:0]
		}
	}

	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}

			messages = append(messages, toMessage(message))
			if len(messages) >= h.batchSize {
				flush()
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)

		case <-session.Context().Done():
			flush()
			return nil
		}
	}
}

func toMessage(message *sarama.ConsumerMessage) Message {
	headers := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		if header != nil {
			headers[string(header.Key)] = string(header.Value)
		}
	}

	return Message{
		Key:      string(message.Key),
		Value:    message.Value,
		Headers:  headers,
		internal: message,
	}
}

func (h *consumerGroupHandler) processBatch(session sarama.ConsumerGroupSession, messages []Message) {
	if err := h.handler(messages); err != nil {
		// Mensagens não são marcadas e serão reentregues.
		h.logger.Error("Handler error for batch", "messages", len(messages), "error", err)
		return
	}

	for _, msg := range messages {
		if msg.internal != nil {
			session.MarkMessage(msg.internal, "")
		}
	}
}
