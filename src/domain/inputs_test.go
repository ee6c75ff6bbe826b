package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
)

func ptr[T any](v T) *T { return &v }

func fieldsOf(err error) map[string]string {
	var validationErr *domain.ValidationError
	Expect(errors.As(err, &validationErr)).To(BeTrue())
	return validationErr.Fields
}

var _ = Describe("Input parsing", func() {
	Context("groups", func() {
		It("trims and accepts a valid draft", func() {
			draft, err := domain.ParseGroupDraft(domain.GroupInput{Name: "  Support ", Description: "Front line"})

			Expect(err).NotTo(HaveOccurred())
			Expect(draft).To(Equal(domain.GroupDraft{Name: "Support", Description: "Front line"}))
		})

		It("reports every invalid field", func() {
			_, err := domain.ParseGroupDraft(domain.GroupInput{Name: "S", Description: strings.Repeat("x", 501)})

			Expect(domain.IsValidation(err)).To(BeTrue())
			Expect(fieldsOf(err)).To(HaveKeyWithValue("name", "group name must be at least 2 characters"))
			Expect(fieldsOf(err)).To(HaveKeyWithValue("description", "cannot exceed 500 characters"))
		})

		It("counts characters rather than bytes", func() {
			_, err := domain.ParseGroupDraft(domain.GroupInput{Name: strings.Repeat("é", 50)})

			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an empty patch", func() {
			_, err := domain.ParseGroupPatch(domain.GroupPatchInput{})

			Expect(fieldsOf(err)).To(HaveKey("patch"))
		})

		It("applies only the provided fields", func() {
			now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
			current := entities.Group{ID: "g1", Name: "Old", Description: "keep"}
			patch, err := domain.ParseGroupPatch(domain.GroupPatchInput{Name: ptr(" New ")})
			Expect(err).NotTo(HaveOccurred())

			next := patch.ApplyTo(current, now)

			Expect(next).To(Equal(entities.Group{ID: "g1", Name: "New", Description: "keep", UpdatedAt: now}))
			Expect(current.Name).To(Equal("Old"))
		})
	})

	Context("locations", func() {
		It("requires every address field", func() {
			_, err := domain.ParseLocationDraft(domain.LocationInput{Name: "HQ"})

			Expect(fieldsOf(err)).To(HaveKey("address"))
			Expect(fieldsOf(err)).To(HaveKey("city"))
			Expect(fieldsOf(err)).To(HaveKey("state"))
			Expect(fieldsOf(err)).To(HaveKey("country"))
			Expect(fieldsOf(err)).NotTo(HaveKey("name"))
		})

		It("builds the provisional entity from the draft", func() {
			now := time.Now().UTC()
			draft, err := domain.ParseLocationDraft(domain.LocationInput{
				Name: "HQ", Address: "Rua A, 100", City: "Recife", State: "PE", Country: "BR",
			})
			Expect(err).NotTo(HaveOccurred())

			location := draft.Provisional("tmp-1", "org1", now)

			Expect(location.ID).To(Equal("tmp-1"))
			Expect(location.OrganizationID).To(Equal("org1"))
			Expect(location.City).To(Equal("Recife"))
			Expect(location.CreatedAt).To(Equal(now))
		})
	})

	Context("users", func() {
		It("normalizes email and role", func() {
			draft, err := domain.ParseUserDraft(domain.UserInput{
				Email: "Ana@Example.com", FullName: "Ana Lima", Role: "ADMIN",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Email).To(Equal("ana@example.com"))
			Expect(draft.Role).To(Equal(domain.RoleAdmin))
		})

		It("rejects malformed email and unknown role", func() {
			_, err := domain.ParseUserDraft(domain.UserInput{Email: "Ana <ana@x.com>", FullName: "Ana", Role: "owner"})

			Expect(fieldsOf(err)).To(HaveKeyWithValue("email", "invalid email address"))
			Expect(fieldsOf(err)).To(HaveKey("role"))
		})

		It("validates a role change in a patch", func() {
			patch, err := domain.ParseUserPatch(domain.UserPatchInput{Role: ptr("manager")})

			Expect(err).NotTo(HaveOccurred())
			Expect(*patch.Role).To(Equal(domain.RoleManager))
			Expect(patch.ApplyTo(entities.User{Role: "user"}, time.Now()).Role).To(Equal("manager"))
		})
	})
})

var _ = Describe("ChangeEvent", func() {
	It("requires a record on upserts", func() {
		err := domain.ChangeEvent{Kind: domain.KindGroup, Operation: domain.OperationUpsert, OrganizationID: "o", ID: "1"}.Validate()

		Expect(err).To(MatchError(ContainSubstring("no record")))
	})

	It("accepts deletes without a record", func() {
		err := domain.ChangeEvent{Kind: domain.KindUser, Operation: domain.OperationDelete, OrganizationID: "o", ID: "1"}.Validate()

		Expect(err).NotTo(HaveOccurred())
	})

	It("uses snake case on the wire", func() {
		payload, err := json.Marshal(domain.ChangeEvent{Kind: domain.KindLocation, Operation: domain.OperationDelete, OrganizationID: "o", ID: "1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(ContainSubstring(`"organization_id":"o"`))
		Expect(string(payload)).NotTo(ContainSubstring(`"record"`))
	})
})

var _ = Describe("Feedback parsing", func() {
	DescribeTable("rating bounds",
		func(rating int, valid bool) {
			_, err := domain.ParseFeedback(domain.FeedbackInput{Rating: rating})

			Expect(err == nil).To(Equal(valid))
		},
		Entry("zero", 0, false),
		Entry("one", 1, true),
		Entry("five", 5, true),
		Entry("six", 6, false),
	)

	It("requires an email when the respondent asks to be contacted", func() {
		_, err := domain.ParseFeedback(domain.FeedbackInput{Rating: 4, Contact: true})

		Expect(fieldsOf(err)).To(HaveKey("email"))
	})

	It("keeps an optional valid email", func() {
		draft, err := domain.ParseFeedback(domain.FeedbackInput{Rating: 2, Reason: " slow ", Email: "A@b.io"})

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Reason).To(Equal("slow"))
		Expect(draft.Email).To(Equal("a@b.io"))
	})
})
