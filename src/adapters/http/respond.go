package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"feedbackflow/src/domain"
)

// maxBodyBytes limita o corpo de qualquer requisição de escrita.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return &domain.ValidationError{Fields: map[string]string{"body": fmt.Sprintf("invalid JSON body: %v", err)}}
	}
	return nil
}

// statusFor traduz os erros de domínio para status HTTP. Qualquer outro erro
// é uma falha do colaborador remoto (banco, cache) e vira 502.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrInvalidTrackingCode),
		errors.Is(err, domain.ErrWorkspaceNotOpen):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrMutationInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status := statusFor(err)

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, status, ErrorDTO{Error: "validation failed", Fields: validationErr.Fields})
	case status == http.StatusBadGateway:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, ErrorDTO{Error: domain.ErrUnavailableServer.Error()})
	default:
		writeJSON(w, status, ErrorDTO{Error: unwrapDomain(err).Error()})
	}
}

// unwrapDomain devolve o sentinel de domínio para não vazar o contexto interno
// da mensagem (nomes de métodos, ids).
func unwrapDomain(err error) error {
	for _, sentinel := range []error{
		domain.ErrEntityNotFound,
		domain.ErrInvalidTrackingCode,
		domain.ErrWorkspaceNotOpen,
		domain.ErrConflict,
		domain.ErrMutationInFlight,
		domain.ErrPermissionDenied,
		domain.ErrRateLimited,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}
