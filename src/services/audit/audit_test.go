package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/audit"
)

type fakeRepository struct {
	inserted  []entities.AuditLog
	insertErr error
	deadline  bool
	filter    domain.AuditFilter
}

func (f *fakeRepository) Insert(ctx context.Context, entry entities.AuditLog) (entities.AuditLog, error) {
	_, f.deadline = ctx.Deadline()
	if f.insertErr != nil {
		return entities.AuditLog{}, f.insertErr
	}
	if err := ctx.Err(); err != nil {
		return entities.AuditLog{}, err
	}
	entry.ID = "a1"
	f.inserted = append(f.inserted, entry)
	return entry, nil
}

func (f *fakeRepository) List(_ context.Context, _ string, filter domain.AuditFilter) ([]entities.AuditLog, error) {
	f.filter = filter
	return f.inserted, nil
}

type recordingObserver struct{ results []string }

func (o *recordingObserver) ObserveAuditWrite(result string) { o.results = append(o.results, result) }

var _ = Describe("AuditService", func() {
	var (
		repo     *fakeRepository
		observer *recordingObserver
		service  *audit.AuditService
	)

	BeforeEach(func() {
		repo = &fakeRepository{}
		observer = &recordingObserver{}
		service = audit.NewAuditService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, observer)
	})

	It("records the actor carried by the context", func() {
		// ARRANGE
		ctx := audit.WithActor(context.Background(), audit.Actor{
			UserID: "u1", OrganizationID: "org1", IPAddress: "203.0.113.7", UserAgent: "curl/8",
		})

		// ACT
		service.Record(ctx, "org1", domain.AuditSurveyCreate, map[string]any{"id": "s1"})

		// ASSERT
		Expect(repo.inserted).To(HaveExactElements(entities.AuditLog{
			ID: "a1", OrganizationID: "org1", UserID: "u1", Action: "survey.create",
			Metadata: map[string]any{"id": "s1"}, IPAddress: "203.0.113.7", UserAgent: "curl/8",
		}))
		Expect(repo.deadline).To(BeTrue())
		Expect(observer.results).To(Equal([]string{"written"}))
	})

	It("writes even when the request context is already cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		service.Record(ctx, "org1", domain.AuditSurveyDelete, nil)

		Expect(repo.inserted).To(HaveLen(1))
		Expect(repo.inserted[0].UserID).To(BeEmpty())
	})

	It("only counts the failure when the insert fails", func() {
		repo.insertErr = errors.New("db down")

		Expect(func() {
			service.Record(context.Background(), "org1", domain.AuditUserLogin, nil)
		}).NotTo(Panic())

		Expect(observer.results).To(Equal([]string{"failed"}))
	})

	It("forwards the filter when listing", func() {
		before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		_, err := service.List(context.Background(), "org1", domain.AuditFilter{Action: domain.AuditSurveyDelete, Before: before, Limit: 5})

		Expect(err).NotTo(HaveOccurred())
		Expect(repo.filter).To(Equal(domain.AuditFilter{Action: domain.AuditSurveyDelete, Before: before, Limit: 5}))
	})
})
