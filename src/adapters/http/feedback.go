package http

import (
	"net/http"
	"strconv"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/signature"
	"feedbackflow/src/services/tracking"
)

func (s *Server) CreateTrackingCode(w http.ResponseWriter, r *http.Request) {
	var body TrackingCodeRequestDTO
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	token, err := tracking.Encode(tracking.Identifiers{
		SurveyID:   body.SurveyID,
		UserID:     body.UserID,
		GroupID:    body.GroupID,
		LocationID: body.LocationID,
	})
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, TrackingCodeDTO{
		Token: token,
		URL:   tracking.FeedbackURL(s.publicBaseURL, token),
	})
}

// ResolveFeedbackLink atende /feedback/{token} e /feedback/{token}/{rating}.
// O rating do path vem do clique em uma das estrelas da assinatura.
func (s *Server) ResolveFeedbackLink(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	rating := 0
	if raw := r.PathValue("rating"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 5 {
			writeError(w, s.logger, r, &domain.ValidationError{Fields: map[string]string{"rating": "rating must be between 1 and 5"}})
			return
		}
		rating = parsed
	}

	decoded, err := s.feedbackService.Resolve(token)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackLinkDTO(decoded, rating, tracking.FeedbackURL(s.publicBaseURL, token)))
}

func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var input domain.FeedbackInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	saved, err := s.feedbackService.Submit(r.Context(), r.PathValue("token"), s.clientKey(r), input)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) PreviewSignature(w http.ResponseWriter, r *http.Request) {
	var body SignaturePreviewRequestDTO
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	html, err := signature.Render(signature.Style{
		Name:         body.Name,
		Title:        body.Title,
		Email:        body.Email,
		Phone:        body.Phone,
		Logo:         body.Logo,
		PrimaryColor: body.PrimaryColor,
		Layout:       signature.Layout(body.Layout),
	}, body.Token, s.publicBaseURL)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	invalid := &domain.ValidationError{Fields: map[string]string{}}

	from, ok := parseDate(query.Get("from"))
	if !ok {
		invalid.Fields["from"] = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
	}
	to, ok := parseDate(query.Get("to"))
	if !ok {
		invalid.Fields["to"] = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
	}
	if len(invalid.Fields) > 0 {
		writeError(w, s.logger, r, invalid)
		return
	}

	stats, err := s.feedbackService.Stats(r.Context(), callerFrom(r.Context()).OrganizationID, domain.FeedbackFilter{
		From:       from,
		To:         to,
		GroupID:    query.Get("group_id"),
		LocationID: query.Get("location_id"),
	})
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseDate aceita vazio (sem filtro), data simples ou RFC3339.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
