package http

import (
	"context"
	"net/http"

	"feedbackflow/src/domain"
)

func (s *Server) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.surveyService.List(r.Context(), callerFrom(r.Context()).OrganizationID)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (s *Server) GetSurvey(w http.ResponseWriter, r *http.Request) {
	found, err := s.surveyService.Get(r.Context(), callerFrom(r.Context()).OrganizationID, r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var input domain.SurveyInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	created, err := s.surveyService.Create(r.Context(), callerFrom(r.Context()).OrganizationID, input)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	var input domain.SurveyPatchInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	updated, err := s.surveyService.Update(r.Context(), callerFrom(r.Context()).OrganizationID, r.PathValue("id"), input)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := s.surveyService.Delete(r.Context(), callerFrom(r.Context()).OrganizationID, r.PathValue("id")); err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSurveys apaga várias pesquisas de uma vez; ids desconhecidos não são
// erro e ficam de fora da resposta.
func (s *Server) DeleteSurveys(w http.ResponseWriter, r *http.Request) {
	var input domain.SurveyIDsInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	deleted, err := s.surveyService.DeleteMany(r.Context(), callerFrom(r.Context()).OrganizationID, input)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedSurveysDTO{Deleted: deleted})
}

func (s *Server) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := domain.ParseAuditFilter(query.Get("action"), query.Get("user_id"), query.Get("before"), query.Get("limit"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	entries, err := s.auditService.List(r.Context(), callerFrom(r.Context()).OrganizationID, filter)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any) {
	if s.auditService != nil {
		s.auditService.Record(ctx, organizationID, action, metadata)
	}
}
