package domain_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
)

var _ = Describe("Survey input parsing", func() {
	rating := entities.SurveyQuestion{ID: "q1", Type: entities.QuestionRating, Text: "How was it?", Required: true}

	It("fills branding defaults and starts active", func() {
		draft, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title:     "  Support CSAT ",
			Questions: []entities.SurveyQuestion{rating},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Title).To(Equal("Support CSAT"))
		Expect(draft.IsActive).To(BeTrue())
		Expect(draft.Branding.PrimaryColor).To(Equal(domain.DefaultPrimaryColor))
		Expect(draft.Branding.SecondaryColor).To(Equal(domain.DefaultSecondColor))
	})

	It("keeps an explicit inactive flag", func() {
		draft, err := domain.ParseSurveyDraft(domain.SurveyInput{Title: "Draft survey", IsActive: ptr(false)})

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.IsActive).To(BeFalse())
	})

	It("reports invalid questions by position", func() {
		_, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title: "Support CSAT",
			Questions: []entities.SurveyQuestion{
				rating,
				{ID: "q1", Type: entities.QuestionText, Text: "Why?"},
				{ID: "q3", Type: entities.QuestionMultipleChoice, Text: "Channel", Options: []string{"email", " email "}},
				{ID: "q4", Type: "slider", Text: "Effort"},
				{ID: "q5", Type: entities.QuestionText, Text: "More?", ConditionalLogic: &entities.ConditionalLogic{
					DependsOn: "q9", ShowIf: json.RawMessage(`5`),
				}},
			},
		})

		fields := fieldsOf(err)
		Expect(fields).To(HaveKeyWithValue("questions[1].id", "question ids must be unique"))
		Expect(fields).To(HaveKey("questions[2].options"))
		Expect(fields).To(HaveKey("questions[3].type"))
		Expect(fields).To(HaveKey("questions[4].conditional_logic"))
		Expect(fields).NotTo(HaveKey("questions[0].id"))
	})

	It("accepts conditional logic on an earlier question and drops options of non choice questions", func() {
		draft, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title: "Support CSAT",
			Questions: []entities.SurveyQuestion{
				{ID: "q1", Type: entities.QuestionRating, Text: "Score", Options: []string{"ignored"}},
				{ID: "q2", Type: entities.QuestionText, Text: "What went wrong?", ConditionalLogic: &entities.ConditionalLogic{
					DependsOn: "q1", ShowIf: json.RawMessage(`1`),
				}},
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Questions[0].Options).To(BeNil())
		Expect(draft.Questions[1].ConditionalLogic.DependsOn).To(Equal("q1"))
	})

	It("rejects malformed brand colors", func() {
		_, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title:    "Support CSAT",
			Branding: entities.SurveyBranding{PrimaryColor: "blue", SecondaryColor: "#12"},
		})

		Expect(fieldsOf(err)).To(HaveKey("branding.primary_color"))
		Expect(fieldsOf(err)).To(HaveKey("branding.secondary_color"))
	})

	It("deduplicates assignments", func() {
		draft, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title:      "Support CSAT",
			AssignedTo: entities.SurveyAssignment{Groups: []string{"g1", " g1", "", "g2"}},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.AssignedTo.Groups).To(Equal([]string{"g1", "g2"}))
	})

	It("rejects an empty patch", func() {
		_, err := domain.ParseSurveyPatch(domain.SurveyPatchInput{})

		Expect(fieldsOf(err)).To(HaveKey("patch"))
	})

	It("validates only the patched fields", func() {
		patch, err := domain.ParseSurveyPatch(domain.SurveyPatchInput{IsActive: ptr(false)})

		Expect(err).NotTo(HaveOccurred())
		Expect(*patch.IsActive).To(BeFalse())
		Expect(patch.Title).To(BeNil())
	})

	Context("batch ids", func() {
		It("removes blanks and duplicates", func() {
			ids, err := domain.ParseSurveyIDs(domain.SurveyIDsInput{IDs: []string{"s1", " s1 ", "", "s2"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"s1", "s2"}))
		})

		It("requires at least one id and caps the batch", func() {
			_, err := domain.ParseSurveyIDs(domain.SurveyIDsInput{IDs: []string{" "}})
			Expect(fieldsOf(err)).To(HaveKey("ids"))

			many := make([]string, 101)
			for i := range many {
				many[i] = strings.Repeat("x", i+1)
			}
			_, err = domain.ParseSurveyIDs(domain.SurveyIDsInput{IDs: many})
			Expect(fieldsOf(err)).To(HaveKey("ids"))
		})
	})

	Context("signatures", func() {
		It("requires the survey", func() {
			_, err := domain.ParseSignatureDraft(domain.SignatureInput{SurveyID: "  "})

			Expect(fieldsOf(err)).To(HaveKey("survey_id"))
		})
	})

	Context("audit filter", func() {
		It("defaults the limit and parses the cursor", func() {
			filter, err := domain.ParseAuditFilter("survey.delete", "", "2026-01-02T00:00:00Z", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(filter.Limit).To(Equal(domain.DefaultAuditLimit))
			Expect(filter.Action).To(Equal(domain.AuditSurveyDelete))
			Expect(filter.Before.Year()).To(Equal(2026))
		})

		It("rejects out of range limits and malformed values", func() {
			_, err := domain.ParseAuditFilter("delete", "", "yesterday", "500")

			fields := fieldsOf(err)
			Expect(fields).To(HaveKey("action"))
			Expect(fields).To(HaveKey("before"))
			Expect(fields).To(HaveKey("limit"))
		})

		It("builds collection actions from the entity kind", func() {
			Expect(domain.AuditActionFor(domain.KindGroup, domain.AuditVerbCreate)).To(Equal(domain.AuditAction("group.create")))
		})
	})
})
