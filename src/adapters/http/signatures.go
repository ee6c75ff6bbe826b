package http

import (
	"net/http"

	"feedbackflow/src/domain"
)

func (s *Server) ListSignatures(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	signatures, err := s.signatureService.List(r.Context(), c.OrganizationID, c.UserID)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signatures)
}

func (s *Server) CreateSignature(w http.ResponseWriter, r *http.Request) {
	var input domain.SignatureInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	c := callerFrom(r.Context())
	saved, err := s.signatureService.Create(r.Context(), c.OrganizationID, c.UserID, input)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) SignatureHTML(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	html, err := s.signatureService.RenderHTML(r.Context(), c.OrganizationID, c.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
