package tracking_test

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/tracking"
)

var _ = Describe("Tracking codec", func() {
	ids := tracking.Identifiers{SurveyID: "s1", UserID: "u1", GroupID: "g1", LocationID: "l1"}

	Context("when encoding", func() {
		It("round-trips the identifiers and the timestamp", func() {
			// ARRANGE
			at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

			// ACT
			token, err := tracking.EncodeAt(ids, at)
			Expect(err).NotTo(HaveOccurred())
			decoded, ok := tracking.Decode(token)

			// ASSERT
			Expect(ok).To(BeTrue())
			Expect(decoded.Identifiers).To(Equal(ids))
			Expect(decoded.Timestamp.Equal(at)).To(BeTrue())
		})

		It("produces a token that is safe inside a URL path", func() {
			for range 50 {
				token, err := tracking.Encode(tracking.Identifiers{
					SurveyID:   gofakeit.UUID(),
					UserID:     gofakeit.Email(),
					GroupID:    gofakeit.Sentence(4),
					LocationID: "ação/çã?+",
				})

				Expect(err).NotTo(HaveOccurred())
				Expect(token).NotTo(ContainSubstring("/"))
				Expect(token).NotTo(ContainSubstring("+"))
				Expect(token).NotTo(ContainSubstring("="))
			}
		})

		It("stamps the current time", func() {
			before := time.Now().Add(-time.Second)

			token, err := tracking.Encode(ids)
			Expect(err).NotTo(HaveOccurred())
			decoded, ok := tracking.Decode(token)

			Expect(ok).To(BeTrue())
			Expect(decoded.Timestamp).To(BeTemporally(">", before))
		})

		It("refuses identifiers with empty fields", func() {
			_, err := tracking.Encode(tracking.Identifiers{SurveyID: "s1", GroupID: "g1"})

			Expect(domain.IsValidation(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("userId")))
			Expect(err).To(MatchError(ContainSubstring("locationId")))
		})

		It("treats whitespace identifiers as opaque non-empty values", func() {
			// ARRANGE
			blank := tracking.Identifiers{SurveyID: "s1", UserID: " ", GroupID: "g1", LocationID: "\t"}

			// ACT
			token, err := tracking.Encode(blank)
			Expect(err).NotTo(HaveOccurred())
			decoded, ok := tracking.Decode(token)

			// ASSERT
			Expect(ok).To(BeTrue())
			Expect(decoded.Identifiers).To(Equal(blank))
		})
	})

	Context("when decoding untrusted input", func() {
		DescribeTable("returns false without panicking",
			func(token string) {
				decoded, ok := tracking.Decode(token)

				Expect(ok).To(BeFalse())
				Expect(decoded).To(Equal(tracking.Context{}))
			},
			Entry("empty token", ""),
			Entry("whitespace", "   "),
			Entry("not base64", "%%%***"),
			Entry("base64 of plain text", base64.RawURLEncoding.EncodeToString([]byte("hello"))),
			Entry("base64 of a JSON array", base64.RawURLEncoding.EncodeToString([]byte(`["s1","u1"]`))),
			Entry("missing locationId", base64.RawURLEncoding.EncodeToString(
				[]byte(`{"surveyId":"s1","userId":"u1","groupId":"g1","timestamp":"2024-01-01T00:00:00Z"}`))),
			Entry("empty surveyId", base64.RawURLEncoding.EncodeToString(
				[]byte(`{"surveyId":"","userId":"u1","groupId":"g1","locationId":"l1"}`))),
			Entry("numeric identifiers", base64.RawURLEncoding.EncodeToString(
				[]byte(`{"surveyId":1,"userId":2,"groupId":3,"locationId":4}`))),
			Entry("oversized token", strings.Repeat("a", 5000)),
		)

		It("rejects truncated tokens", func() {
			token, err := tracking.Encode(ids)
			Expect(err).NotTo(HaveOccurred())

			for cut := 1; cut < len(token); cut += 7 {
				_, ok := tracking.Decode(token[:cut])
				Expect(ok).To(BeFalse(), "prefix of length %d decoded", cut)
			}
		})

		It("never panics on random strings", func() {
			for range 200 {
				Expect(func() { tracking.Decode(gofakeit.LetterN(uint(gofakeit.Number(0, 64)))) }).NotTo(Panic())
			}
		})

		It("accepts legacy tokens encoded with standard padded base64", func() {
			legacy := base64.StdEncoding.EncodeToString(
				[]byte(`{"surveyId":"s1","userId":"u1","groupId":"g1","locationId":"l1","timestamp":"2023-05-04T10:00:00.000Z"}`))

			decoded, ok := tracking.Decode(legacy)

			Expect(ok).To(BeTrue())
			Expect(decoded.Identifiers).To(Equal(ids))
			Expect(decoded.Timestamp.Year()).To(Equal(2023))
		})

		DescribeTable("accepts tokens whatever the timestamp looks like",
			func(timestamp string, expected time.Time) {
				// ARRANGE
				payload := `{"surveyId":"s1","userId":"u1","groupId":"g1","locationId":"l1"` + timestamp + `}`
				token := base64.StdEncoding.EncodeToString([]byte(payload))

				// ACT
				decoded, ok := tracking.Decode(token)

				// ASSERT
				Expect(ok).To(BeTrue())
				Expect(decoded.Identifiers).To(Equal(ids))
				Expect(decoded.Timestamp.Equal(expected)).To(BeTrue(), "got %s", decoded.Timestamp)
			},
			Entry("missing", "", time.Time{}),
			Entry("null", `,"timestamp":null`, time.Time{}),
			Entry("epoch milliseconds", `,"timestamp":1683194400000`, time.Date(2023, 5, 4, 10, 0, 0, 0, time.UTC)),
			Entry("locale string", `,"timestamp":"04/05/2023, 10:00:00"`, time.Time{}),
			Entry("boolean", `,"timestamp":true`, time.Time{}),
		)

		It("ignores fields it does not know", func() {
			token := base64.RawURLEncoding.EncodeToString(
				[]byte(`{"surveyId":"s1","userId":"u1","groupId":"g1","locationId":"l1","campaign":"x"}`))

			decoded, ok := tracking.Decode(token)

			Expect(ok).To(BeTrue())
			Expect(decoded.Identifiers).To(Equal(ids))
		})
	})
})
