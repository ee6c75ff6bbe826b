package domain

import (
	"strings"
	"time"
)

// FeedbackInput é o corpo enviado pela página pública de feedback. O contexto
// (survey, user, group, location) não vem no corpo: sai do tracking code.
type FeedbackInput struct {
	Rating  int               `json:"rating"`
	Reason  string            `json:"reason"`
	Comment string            `json:"comment"`
	Answers map[string]string `json:"answers"`
	Contact bool              `json:"contact"`
	Email   string            `json:"email"`
}

type FeedbackDraft struct {
	Rating  int
	Reason  string
	Comment string
	Answers map[string]string
	Contact bool
	Email   string
}

func ParseFeedback(in FeedbackInput) (FeedbackDraft, error) {
	v := &ValidationError{}
	if in.Rating < 1 || in.Rating > 5 {
		v.add("rating", "rating must be between 1 and 5")
	}

	draft := FeedbackDraft{
		Rating:  in.Rating,
		Reason:  requireLength(v, "reason", in.Reason, 0, 200, ""),
		Comment: requireLength(v, "comment", in.Comment, 0, 2000, ""),
		Answers: in.Answers,
		Contact: in.Contact,
	}

	if email := strings.TrimSpace(in.Email); email != "" {
		draft.Email = parseEmail(v, "email", email)
	} else if in.Contact {
		v.add("email", "email is required when asking to be contacted")
	}

	return draft, v.orNil()
}

// FeedbackFilter restringe as estatísticas. Campos zero não filtram.
type FeedbackFilter struct {
	From       time.Time
	To         time.Time
	GroupID    string
	LocationID string
}
