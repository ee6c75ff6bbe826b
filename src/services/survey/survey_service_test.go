package survey_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/audit"
	"feedbackflow/src/services/survey"
	"feedbackflow/src/test_artefacts/fakes"
	"feedbackflow/src/test_artefacts/stubs"
)

var _ = Describe("SurveyService", func() {
	var (
		ctx     context.Context
		repo    *fakes.Surveys
		auditor *fakes.Auditor
		service *survey.SurveyService
	)

	BeforeEach(func() {
		ctx = audit.WithActor(context.Background(), audit.Actor{UserID: "u1", OrganizationID: "org1"})
		repo = fakes.NewSurveys()
		auditor = &fakes.Auditor{}
		service = survey.NewSurveyService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, auditor)
	})

	Context("Create", func() {
		It("stores the survey on behalf of the caller and audits it", func() {
			// ACT
			created, err := service.Create(ctx, "org1", domain.SurveyInput{
				Title:     "Support CSAT",
				Questions: []entities.SurveyQuestion{{ID: "q1", Type: entities.QuestionRating, Text: "Score"}},
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created.CreatedBy).To(Equal("u1"))
			Expect(created.IsActive).To(BeTrue())
			Expect(repo.CreatedBy).To(Equal([]string{"u1"}))
			Expect(auditor.Entries()).To(HaveExactElements(fakes.AuditEntry{
				OrganizationID: "org1",
				Action:         domain.AuditSurveyCreate,
				Metadata:       map[string]any{"survey_id": created.ID, "title": "Support CSAT"},
				Actor:          audit.Actor{UserID: "u1", OrganizationID: "org1"},
			}))
		})

		It("rejects invalid input without touching the repository", func() {
			_, err := service.Create(ctx, "org1", domain.SurveyInput{Title: "ab"})

			Expect(domain.IsValidation(err)).To(BeTrue())
			Expect(repo.CreatedBy).To(BeEmpty())
			Expect(auditor.Entries()).To(BeEmpty())
		})
	})

	Context("Update", func() {
		It("applies the patch and audits it", func() {
			// ARRANGE
			existing := stubs.NewSurveyStub().WithID("s1").WithOrganizationID("org1").Get()
			repo.Seed(existing)
			title := "Renamed survey"

			// ACT
			updated, err := service.Update(ctx, "org1", "s1", domain.SurveyPatchInput{Title: &title})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal(title))
			Expect(auditor.Actions()).To(Equal([]domain.AuditAction{domain.AuditSurveyUpdate}))
		})

		It("does not see surveys of another organization", func() {
			repo.Seed(stubs.NewSurveyStub().WithID("s1").WithOrganizationID("org2").Get())
			title := "Renamed survey"

			_, err := service.Update(ctx, "org1", "s1", domain.SurveyPatchInput{Title: &title})

			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(auditor.Entries()).To(BeEmpty())
		})
	})

	Context("DeleteMany", func() {
		It("removes only the organization's surveys and audits each one", func() {
			// ARRANGE
			repo.Seed(
				stubs.NewSurveyStub().WithID("s1").WithOrganizationID("org1").Get(),
				stubs.NewSurveyStub().WithID("s2").WithOrganizationID("org1").Get(),
				stubs.NewSurveyStub().WithID("s3").WithOrganizationID("org2").Get(),
			)

			// ACT
			deleted, err := service.DeleteMany(ctx, "org1", domain.SurveyIDsInput{IDs: []string{"s1", "s3", "s1", " s2 ", "ghost"}})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(ConsistOf("s1", "s2"))
			Expect(auditor.Actions()).To(Equal([]domain.AuditAction{domain.AuditSurveyDelete, domain.AuditSurveyDelete}))
			remaining, _ := repo.List(ctx, "org2")
			Expect(remaining).To(HaveLen(1))
		})

		It("returns an empty list when nothing matched", func() {
			deleted, err := service.DeleteMany(ctx, "org1", domain.SurveyIDsInput{IDs: []string{"ghost"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeEmpty())
			Expect(deleted).NotTo(BeNil())
		})

		It("requires at least one id", func() {
			_, err := service.DeleteMany(ctx, "org1", domain.SurveyIDsInput{IDs: []string{" "}})

			Expect(err).To(MatchError(ContainSubstring("ids")))
		})
	})

	It("audits single deletes", func() {
		repo.Seed(stubs.NewSurveyStub().WithID("s1").WithOrganizationID("org1").Get())

		Expect(service.Delete(ctx, "org1", "s1")).To(Succeed())
		Expect(service.Delete(ctx, "org1", "s1")).To(MatchError(domain.ErrEntityNotFound))

		Expect(auditor.Actions()).To(Equal([]domain.AuditAction{domain.AuditSurveyDelete}))
	})
})
