package optimistic_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/optimistic"
	"feedbackflow/src/test_artefacts/fakes"
	"feedbackflow/src/test_artefacts/stubs"
)

var _ = Describe("ApplyChange", func() {
	const orgID = "org-1"

	var (
		ctx        context.Context
		remote     *groupRemote
		collection *groupCollection
		base       time.Time
		original   entities.Group
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		original = stubs.NewGroupStub().WithID("1").WithOrganizationID(orgID).WithName("A").WithUpdatedAt(base).Get()

		remote = fakes.NewRemote[entities.Group, domain.GroupDraft, domain.GroupPatch]()
		remote.Seed(orgID, original)
		collection = optimistic.NewCollection[entities.Group, domain.GroupDraft, domain.GroupPatch](orgID, remote)
		Expect(collection.Load(ctx)).To(Succeed())
	})

	Context("when no mutation is in flight", func() {
		It("appends unknown records", func() {
			pushed := stubs.NewGroupStub().WithID("2").WithOrganizationID(orgID).Get()

			queued := collection.ApplyChange(optimistic.Upserted(pushed))

			Expect(queued).To(BeFalse())
			Expect(ids(collection.Items())).To(Equal([]string{"1", "2"}))
		})

		It("replaces a record with a newer version", func() {
			newer := original
			newer.Name = "Z"
			newer.UpdatedAt = base.Add(time.Minute)

			collection.ApplyChange(optimistic.Upserted(newer))

			Expect(collection.Items()).To(Equal([]entities.Group{newer}))
		})

		It("drops an upsert older than the record it would replace", func() {
			stale := original
			stale.Name = "old"
			stale.UpdatedAt = base.Add(-time.Minute)

			collection.ApplyChange(optimistic.Upserted(stale))

			Expect(collection.Items()).To(Equal([]entities.Group{original}))
		})

		It("removes deleted records and ignores unknown deletes", func() {
			collection.ApplyChange(optimistic.Deleted[entities.Group]("404"))
			collection.ApplyChange(optimistic.Deleted[entities.Group]("1"))

			Expect(collection.Items()).To(BeEmpty())
		})
	})

	Context("when a mutation for the same id is in flight", func() {
		var (
			release chan struct{}
			started chan struct{}
		)

		BeforeEach(func() {
			release = make(chan struct{})
			started = make(chan struct{})
		})

		It("queues the push and replays it after a rolled back update", func() {
			// ARRANGE
			remote.UpdateErr = errors.New("rejected")
			remote.BeforeUpdate = func() {
				close(started)
				<-release
			}
			pushed := original
			pushed.Name = "from-another-admin"
			pushed.UpdatedAt = base.Add(time.Minute)

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := collection.Update(ctx, "1", domain.GroupPatch{Name: strPtr("mine")})
				done <- err
			}()
			Eventually(started).Should(BeClosed())

			// ACT
			queued := collection.ApplyChange(optimistic.Upserted(pushed))
			stillOptimistic := collection.Items()[0].Name
			close(release)

			// ASSERT
			Expect(queued).To(BeTrue())
			Expect(stillOptimistic).To(Equal("mine"))
			Eventually(done).Should(Receive(MatchError("rejected")))
			Expect(collection.Items()).To(Equal([]entities.Group{pushed}))
		})

		It("discards queued pushes once the delete is confirmed", func() {
			// ARRANGE
			remote.BeforeDelete = func() {
				close(started)
				<-release
			}
			pushed := original
			pushed.UpdatedAt = base.Add(time.Minute)

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				done <- collection.Delete(ctx, "1")
			}()
			Eventually(started).Should(BeClosed())

			// ACT
			Expect(collection.ApplyChange(optimistic.Upserted(pushed))).To(BeTrue())
			close(release)

			// ASSERT
			Eventually(done).Should(Receive(BeNil()))
			Expect(collection.Items()).To(BeEmpty())
		})
	})

	Context("when a push for the created id arrives before the create returns", func() {
		It("keeps a single entry for that id", func() {
			// ARRANGE
			remote.NewID = func(int) string { return "srv-9" }
			remote.BeforeCreate = func() {
				early := stubs.NewGroupStub().WithID("srv-9").WithOrganizationID(orgID).WithName("Eng").Get()
				collection.ApplyChange(optimistic.Upserted(early))
			}

			// ACT
			_, err := collection.Add(ctx, domain.GroupDraft{Name: "Eng"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(collection.Items())).To(Equal([]string{"1", "srv-9"}))
		})
	})
})
