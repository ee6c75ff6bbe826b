package consumers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/adapters/kafka/consumers"
	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/kafka"
	"feedbackflow/src/services/workspace"
	"feedbackflow/src/test_artefacts/fakes"
	"feedbackflow/src/test_artefacts/stubs"
)

type stubSubscriber struct {
	messages []kafka.Message
	topic    string
	err      error
}

func (s *stubSubscriber) Consumer(_ context.Context, handler kafka.Handler, topic string) error {
	s.topic = topic
	s.err = handler(s.messages)
	return nil
}

var _ = Describe("ChangeFeedConsumer", func() {
	const orgID = "org1"

	var (
		ctx      context.Context
		registry *workspace.Registry
		groups   *fakes.Remote[entities.Group, domain.GroupDraft, domain.GroupPatch]
		consumed []string
		consumer *consumers.ChangeFeedConsumer
	)

	message := func(event domain.ChangeEvent) kafka.Message {
		raw, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		return kafka.Message{Key: event.OrganizationID, Value: raw, Headers: map[string]string{"event_id": event.EventID}}
	}

	upsert := func(group entities.Group) domain.ChangeEvent {
		record, err := json.Marshal(group)
		Expect(err).NotTo(HaveOccurred())
		return domain.ChangeEvent{
			EventID:        "evt-" + group.ID,
			Kind:           domain.KindGroup,
			Operation:      domain.OperationUpsert,
			OrganizationID: group.OrganizationID,
			ID:             group.ID,
			Record:         record,
			OccurredAt:     time.Now().UTC(),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		groups = fakes.NewRemote[entities.Group, domain.GroupDraft, domain.GroupPatch]()
		groups.Seed(orgID, stubs.NewGroupStub().WithID("g1").WithOrganizationID(orgID).Get())
		registry = workspace.NewRegistry(logger, workspace.Remotes{
			Groups:    groups,
			Locations: fakes.NewRemote[entities.Location, domain.LocationDraft, domain.LocationPatch](),
			Users:     fakes.NewRemote[entities.User, domain.UserDraft, domain.UserPatch](),
		}, nil)
		consumed = nil
		consumer = consumers.NewChangeFeedConsumer(logger, registry, func(entity string) { consumed = append(consumed, entity) })
	})

	It("applies upserts and deletes to the open workspace", func() {
		// ARRANGE
		ws, err := registry.Open(ctx, orgID)
		Expect(err).NotTo(HaveOccurred())
		added := stubs.NewGroupStub().WithID("g2").WithOrganizationID(orgID).Get()
		subscriber := &stubSubscriber{messages: []kafka.Message{
			message(upsert(added)),
			message(domain.ChangeEvent{EventID: "evt-del", Kind: domain.KindGroup, Operation: domain.OperationDelete, OrganizationID: orgID, ID: "g1"}),
		}}

		// ACT
		Expect(consumer.Start(ctx, subscriber, "feedbackflow.changes")).To(Succeed())

		// ASSERT
		Expect(subscriber.topic).To(Equal("feedbackflow.changes"))
		Expect(subscriber.err).NotTo(HaveOccurred())
		Expect(ws.Groups.Items()).To(Equal([]entities.Group{added}))
		Expect(consumed).To(Equal([]string{"group", "group"}))
	})

	It("ignores events of organizations without an open workspace", func() {
		other := stubs.NewGroupStub().WithID("g9").WithOrganizationID("org2").Get()

		Expect(consumer.HandleMessages([]kafka.Message{message(upsert(other))})).To(Succeed())
		Expect(registry.Len()).To(BeZero())
	})

	It("skips malformed messages and keeps processing the batch", func() {
		// ARRANGE
		ws, err := registry.Open(ctx, orgID)
		Expect(err).NotTo(HaveOccurred())
		added := stubs.NewGroupStub().WithID("g3").WithOrganizationID(orgID).Get()
		invalid := domain.ChangeEvent{EventID: "evt-bad", Kind: "survey", Operation: domain.OperationDelete, OrganizationID: orgID, ID: "x"}

		// ACT
		err = consumer.HandleMessages([]kafka.Message{
			{Key: orgID, Value: []byte("{not json")},
			message(invalid),
			message(upsert(added)),
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(ws.Groups.Items()).To(HaveLen(2))
		Expect(consumed).To(Equal([]string{"group"}))
	})
})
