package signature_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/signature"
	"feedbackflow/src/services/tracking"
	"feedbackflow/src/test_artefacts/fakes"
	"feedbackflow/src/test_artefacts/stubs"
)

type userFinder map[string]entities.User

func (f userFinder) FindByID(_ context.Context, id string) (entities.User, error) {
	user, ok := f[id]
	if !ok {
		return entities.User{}, domain.ErrEntityNotFound
	}
	return user, nil
}

var _ = Describe("SignatureService", func() {
	var (
		ctx     context.Context
		repo    *fakes.Signatures
		auditor *fakes.Auditor
		users   userFinder
		service *signature.SignatureService
		owner   entities.User
		input   domain.SignatureInput
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = fakes.NewSignatures()
		auditor = &fakes.Auditor{}
		owner = stubs.NewUserStub().WithID("u1").WithOrganizationID("org1").WithGroupID("g1").WithLocationID("l1").Get()
		users = userFinder{"u1": owner}
		service = signature.NewSignatureService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, users, auditor, "https://app.acme.io")
		input = domain.SignatureInput{SurveyID: "s1", Style: signature.Style{Name: "Ana", Email: "ana@acme.io"}}
	})

	Context("Create", func() {
		It("issues the tracking code from the owner's profile", func() {
			// ACT
			saved, err := service.Create(ctx, "org1", "u1", input)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			decoded, ok := tracking.Decode(saved.TrackingCode)
			Expect(ok).To(BeTrue())
			Expect(decoded.Identifiers).To(Equal(tracking.Identifiers{SurveyID: "s1", UserID: "u1", GroupID: "g1", LocationID: "l1"}))
			Expect(saved.Style.Layout).To(Equal(signature.LayoutVertical))
			Expect(auditor.Actions()).To(Equal([]domain.AuditAction{domain.AuditSignatureCreate}))
		})

		It("refuses owners without a group or a location", func() {
			// ARRANGE
			owner.LocationID = ""
			users["u1"] = owner

			// ACT
			_, err := service.Create(ctx, "org1", "u1", input)

			// ASSERT
			Expect(err).To(MatchError(ContainSubstring("location")))
			listed, _ := repo.ListByUser(ctx, "org1", "u1")
			Expect(listed).To(BeEmpty())
		})

		It("refuses a caller whose profile belongs to another organization", func() {
			_, err := service.Create(ctx, "org2", "u1", input)

			Expect(err).To(MatchError(domain.ErrPermissionDenied))
			Expect(auditor.Entries()).To(BeEmpty())
		})

		It("validates the style before looking up the owner", func() {
			input.Style.Email = ""

			_, err := service.Create(ctx, "org1", "ghost", input)

			Expect(domain.IsValidation(err)).To(BeTrue())
		})
	})

	Context("RenderHTML", func() {
		It("renders the saved signature for its owner only", func() {
			// ARRANGE
			saved, err := service.Create(ctx, "org1", "u1", input)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			html, renderErr := service.RenderHTML(ctx, "org1", "u1", saved.ID)
			_, otherErr := service.RenderHTML(ctx, "org1", "u2", saved.ID)
			_, otherOrgErr := service.RenderHTML(ctx, "org2", "u1", saved.ID)

			// ASSERT
			Expect(renderErr).NotTo(HaveOccurred())
			Expect(html).To(ContainSubstring("https://app.acme.io/feedback/" + saved.TrackingCode + "/5"))
			Expect(otherErr).To(MatchError(domain.ErrEntityNotFound))
			Expect(otherOrgErr).To(MatchError(domain.ErrEntityNotFound))
		})
	})
})
