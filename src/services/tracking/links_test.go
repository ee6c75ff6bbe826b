package tracking_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/services/tracking"
)

var _ = Describe("Feedback links", func() {
	It("builds the public feedback URL", func() {
		Expect(tracking.FeedbackURL("https://app.example.com/", "abc")).To(Equal("https://app.example.com/feedback/abc"))
		Expect(tracking.RatingPath("abc", 4)).To(Equal("/feedback/abc/4"))
	})

	DescribeTable("extracts the token from a path or URL",
		func(input, expected string, found bool) {
			token, ok := tracking.TokenFromPath(input)

			Expect(ok).To(Equal(found))
			Expect(token).To(Equal(expected))
		},
		Entry("feedback path", "/feedback/abc", "abc", true),
		Entry("rating path", "/feedback/abc/5", "abc", true),
		Entry("full URL", "https://app.example.com/feedback/abc?utm=x", "abc", true),
		Entry("missing token", "/feedback/", "", false),
		Entry("unrelated path", "/dashboard", "", false),
	)

	It("round-trips a real token through the link", func() {
		token, err := tracking.Encode(tracking.Identifiers{SurveyID: "s1", UserID: "u1", GroupID: "g1", LocationID: "l1"})
		Expect(err).NotTo(HaveOccurred())

		extracted, ok := tracking.TokenFromPath(tracking.FeedbackURL("https://x.io", token))

		Expect(ok).To(BeTrue())
		Expect(extracted).To(Equal(token))
	})
})
