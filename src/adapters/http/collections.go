package http

import (
	"net/http"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/optimistic"
	"feedbackflow/src/services/workspace"
)

// Os handlers de groups, locations e users são o mesmo código: cada rota só
// escolhe a coleção do workspace e a função de validação da entrada.

func pickGroups(ws *workspace.Workspace) *workspace.Groups       { return ws.Groups }
func pickLocations(ws *workspace.Workspace) *workspace.Locations { return ws.Locations }
func pickUsers(ws *workspace.Workspace) *workspace.Users         { return ws.Users }

// workspaceFor abre (ou reaproveita) o workspace da organização autenticada.
func (s *Server) workspaceFor(r *http.Request) (*workspace.Workspace, error) {
	ws, err := s.registry.Open(r.Context(), callerFrom(r.Context()).OrganizationID)
	if err != nil {
		return nil, err
	}
	s.observeWorkspaces()
	return ws, nil
}

func (s *Server) observeWorkspaces() {
	if s.metrics != nil {
		s.metrics.OpenWorkspaces.Set(float64(s.registry.Len()))
	}
}

func listEntities[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]](
	s *Server,
	pick func(*workspace.Workspace) *optimistic.Collection[E, D, P],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.workspaceFor(r)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pick(ws).Items())
	}
}

func createEntity[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E], I any](
	s *Server,
	pick func(*workspace.Workspace) *optimistic.Collection[E, D, P],
	parse func(I) (D, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input I
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		draft, err := parse(input)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}

		ws, err := s.workspaceFor(r)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}

		created, err := pick(ws).Add(r.Context(), draft)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateEntity[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E], I any](
	s *Server,
	pick func(*workspace.Workspace) *optimistic.Collection[E, D, P],
	parse func(I) (P, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input I
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		patch, err := parse(input)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}

		ws, err := s.workspaceFor(r)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}

		updated, err := pick(ws).Update(r.Context(), r.PathValue("id"), patch)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteEntity[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]](
	s *Server,
	pick func(*workspace.Workspace) *optimistic.Collection[E, D, P],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.workspaceFor(r)
		if err != nil {
			writeError(w, s.logger, r, err)
			return
		}

		if err := pick(ws).Delete(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, s.logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(r)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	s.record(r.Context(), ws.OrganizationID(), domain.AuditUserLogin, nil)
	writeJSON(w, http.StatusOK, SessionDTO{
		OrganizationID: ws.OrganizationID(),
		Groups:         ws.Groups.Len(),
		Locations:      ws.Locations.Len(),
		Users:          ws.Users.Len(),
	})
}

func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	organizationID := callerFrom(r.Context()).OrganizationID
	if !s.registry.Close(organizationID) {
		writeError(w, s.logger, r, domain.ErrWorkspaceNotOpen)
		return
	}
	s.observeWorkspaces()
	s.record(r.Context(), organizationID, domain.AuditUserLogout, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	writeJSON(w, http.StatusOK, MeDTO{
		Role:           c.Role,
		OrganizationID: c.OrganizationID,
		UserID:         c.UserID,
		Permissions:    domain.PermissionsFor(c.Role),
	})
}
