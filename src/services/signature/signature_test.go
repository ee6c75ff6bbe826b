package signature_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/signature"
	"feedbackflow/src/services/tracking"
)

var _ = Describe("Render", func() {
	var token string

	BeforeEach(func() {
		var err error
		token, err = tracking.Encode(tracking.Identifiers{SurveyID: "s1", UserID: "u1", GroupID: "g1", LocationID: "l1"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("links each of the five rating steps to the feedback page", func() {
		html, err := signature.Render(signature.Style{Name: "Ana Lima", Email: "ana@acme.io"}, token, "https://app.acme.io/")

		Expect(err).NotTo(HaveOccurred())
		for _, rating := range []string{"1", "2", "3", "4", "5"} {
			Expect(html).To(ContainSubstring(`href="https://app.acme.io/feedback/` + token + `/` + rating + `"`))
		}
		Expect(strings.Count(html, "/feedback/")).To(Equal(5))
	})

	It("uses the horizontal layout when asked", func() {
		html, err := signature.Render(signature.Style{Name: "Ana", Email: "ana@acme.io", Layout: signature.LayoutHorizontal}, token, "https://x.io")

		Expect(err).NotTo(HaveOccurred())
		Expect(html).To(ContainSubstring("display: flex"))
	})

	It("defaults to the vertical layout and the brand color", func() {
		html, err := signature.Render(signature.Style{Name: "Ana", Email: "ana@acme.io"}, token, "https://x.io")

		Expect(err).NotTo(HaveOccurred())
		Expect(html).NotTo(ContainSubstring("display: flex"))
		Expect(html).To(ContainSubstring("#2563eb"))
	})

	It("escapes user supplied text", func() {
		html, err := signature.Render(signature.Style{Name: `<script>alert(1)</script>`, Email: "ana@acme.io"}, token, "https://x.io")

		Expect(err).NotTo(HaveOccurred())
		Expect(html).NotTo(ContainSubstring("<script>"))
		Expect(html).To(ContainSubstring("&lt;script&gt;"))
	})

	It("rejects invalid tokens", func() {
		_, err := signature.Render(signature.Style{Name: "Ana", Email: "ana@acme.io"}, "nope", "https://x.io")

		Expect(err).To(MatchError(domain.ErrInvalidTrackingCode))
	})

	It("validates the style", func() {
		_, err := signature.Render(signature.Style{Layout: "diagonal", PrimaryColor: "red;background:url(x)"}, token, "https://x.io")

		Expect(domain.IsValidation(err)).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("layout")))
		Expect(err).To(MatchError(ContainSubstring("primary_color")))
		Expect(err).To(MatchError(ContainSubstring("name")))
	})
})
