package kafka_test

import (
	"errors"
	"io"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/infra/kafka"
)

var _ = Describe("KafkaClient.Producer", func() {
	var (
		producer *mocks.SyncProducer
		client   *kafka.KafkaClient
	)

	BeforeEach(func() {
		producer = mocks.NewSyncProducer(GinkgoT(), mocks.NewTestConfig())
		client = kafka.NewFromProducer(producer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("sends key, value and headers to the topic", func() {
		// ARRANGE
		var sent *sarama.ProducerMessage
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			sent = msg
			return nil
		})

		// ACT
		err := client.Producer([]kafka.Message{{
			Key:     "org1",
			Value:   []byte(`{"kind":"group"}`),
			Headers: map[string]string{"event_type": "group.upsert"},
		}}, "feedbackflow.changes")

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(sent.Topic).To(Equal("feedbackflow.changes"))
		key, _ := sent.Key.Encode()
		Expect(string(key)).To(Equal("org1"))
		Expect(sent.Headers).To(ConsistOf(sarama.RecordHeader{Key: []byte("event_type"), Value: []byte("group.upsert")}))
		Expect(producer.Close()).To(Succeed())
	})

	It("reports failed sends", func() {
		producer.ExpectSendMessageAndFail(errors.New("leader not available"))

		err := client.Producer([]kafka.Message{{Key: "org1", Value: []byte(`{}`)}}, "t")

		Expect(err).To(MatchError(ContainSubstring("leader not available")))
	})

	It("does nothing for an empty batch", func() {
		Expect(client.Producer(nil, "t")).To(Succeed())
		Expect(producer.Close()).To(Succeed())
	})
})
