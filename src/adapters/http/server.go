package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedbackflow/src/domain"
	"feedbackflow/src/infra/metrics"
	"feedbackflow/src/services/audit"
	"feedbackflow/src/services/feedback"
	"feedbackflow/src/services/signature"
	"feedbackflow/src/services/survey"
	"feedbackflow/src/services/workspace"
)

// HealthCheck verifica uma dependência (Postgres, Redis).
type HealthCheck func(ctx context.Context) error

// Server representa o servidor HTTP da API
type Server struct {
	logger           *slog.Logger
	server           *http.Server
	mux              *http.ServeMux
	port             int
	publicBaseURL    string
	trustedProxies   []netip.Prefix
	registry         *workspace.Registry
	feedbackService  *feedback.FeedbackService
	surveyService    *survey.SurveyService
	signatureService *signature.SignatureService
	auditService     *audit.AuditService
	metrics          *metrics.Metrics
	healthChecks     map[string]HealthCheck
}

// Config do servidor. TrustedProxies lista os proxies cujo X-Forwarded-For é
// aceito; vazio, o endereço da conexão é sempre o cliente.
type Config struct {
	Port           int
	PublicBaseURL  string
	TrustedProxies []netip.Prefix
}

// Services agrupa os casos de uso atendidos fora do workspace.
type Services struct {
	Feedback   *feedback.FeedbackService
	Surveys    *survey.SurveyService
	Signatures *signature.SignatureService
	Audit      *audit.AuditService
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	cfg Config,
	registry *workspace.Registry,
	services Services,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	healthChecks map[string]HealthCheck,
) *Server {
	server := &Server{
		mux:              http.NewServeMux(),
		port:             cfg.Port,
		publicBaseURL:    cfg.PublicBaseURL,
		trustedProxies:   cfg.TrustedProxies,
		logger:           logger,
		registry:         registry,
		feedbackService:  services.Feedback,
		surveyService:    services.Surveys,
		signatureService: services.Signatures,
		auditService:     services.Audit,
		metrics:          m,
		healthChecks:     healthChecks,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.instrument(server.mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Operação
	server.mux.HandleFunc("GET /healthz", server.Health)
	server.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Link público de feedback
	server.mux.HandleFunc("GET /feedback/{token}", server.ResolveFeedbackLink)
	server.mux.HandleFunc("GET /feedback/{token}/{rating}", server.ResolveFeedbackLink)
	server.mux.HandleFunc("POST /feedback/{token}", server.SubmitFeedback)

	server.mux.HandleFunc("GET /v1/me", server.requireRole(server.Me))

	// Tracking codes e assinaturas
	server.mux.HandleFunc("POST /v1/tracking-codes", server.requireRole(server.CreateTrackingCode))
	server.mux.HandleFunc("POST /v1/signatures/preview", server.requireRole(server.PreviewSignature))

	// Sessão do dashboard
	server.mux.HandleFunc("POST /v1/organizations/{org}/session", server.requireRole(server.OpenSession))
	server.mux.HandleFunc("DELETE /v1/organizations/{org}/session", server.requireRole(server.CloseSession))

	// Groups
	server.mux.HandleFunc("GET /v1/organizations/{org}/groups", server.requireRole(listEntities(server, pickGroups)))
	server.mux.HandleFunc("POST /v1/organizations/{org}/groups",
		server.requireRole(createEntity(server, pickGroups, domain.ParseGroupDraft), domain.PermOrganizationManage))
	server.mux.HandleFunc("PATCH /v1/organizations/{org}/groups/{id}",
		server.requireRole(updateEntity(server, pickGroups, domain.ParseGroupPatch), domain.PermOrganizationManage))
	server.mux.HandleFunc("DELETE /v1/organizations/{org}/groups/{id}",
		server.requireRole(deleteEntity(server, pickGroups), domain.PermOrganizationManage))

	// Locations
	server.mux.HandleFunc("GET /v1/organizations/{org}/locations", server.requireRole(listEntities(server, pickLocations)))
	server.mux.HandleFunc("POST /v1/organizations/{org}/locations",
		server.requireRole(createEntity(server, pickLocations, domain.ParseLocationDraft), domain.PermOrganizationManage))
	server.mux.HandleFunc("PATCH /v1/organizations/{org}/locations/{id}",
		server.requireRole(updateEntity(server, pickLocations, domain.ParseLocationPatch), domain.PermOrganizationManage))
	server.mux.HandleFunc("DELETE /v1/organizations/{org}/locations/{id}",
		server.requireRole(deleteEntity(server, pickLocations), domain.PermOrganizationManage))

	// Users
	server.mux.HandleFunc("GET /v1/organizations/{org}/users",
		server.requireRole(listEntities(server, pickUsers), domain.PermUsersView, domain.PermUsersManage))
	server.mux.HandleFunc("POST /v1/organizations/{org}/users",
		server.requireRole(createEntity(server, pickUsers, domain.ParseUserDraft), domain.PermUsersManage))
	server.mux.HandleFunc("PATCH /v1/organizations/{org}/users/{id}",
		server.requireRole(updateEntity(server, pickUsers, domain.ParseUserPatch), domain.PermUsersManage))
	server.mux.HandleFunc("DELETE /v1/organizations/{org}/users/{id}",
		server.requireRole(deleteEntity(server, pickUsers), domain.PermUsersManage))

	// Surveys
	anySurveyPermission := []domain.Permission{domain.PermSurveysManage, domain.PermSurveysCreate, domain.PermSurveysEdit, domain.PermSurveysRespond}
	server.mux.HandleFunc("GET /v1/organizations/{org}/surveys", server.requireRole(server.ListSurveys, anySurveyPermission...))
	server.mux.HandleFunc("GET /v1/organizations/{org}/surveys/{id}", server.requireRole(server.GetSurvey, anySurveyPermission...))
	server.mux.HandleFunc("POST /v1/organizations/{org}/surveys",
		server.requireRole(server.CreateSurvey, domain.PermSurveysManage, domain.PermSurveysCreate))
	server.mux.HandleFunc("PATCH /v1/organizations/{org}/surveys/{id}",
		server.requireRole(server.UpdateSurvey, domain.PermSurveysManage, domain.PermSurveysEdit))
	server.mux.HandleFunc("DELETE /v1/organizations/{org}/surveys/{id}",
		server.requireRole(server.DeleteSurvey, domain.PermSurveysManage))
	server.mux.HandleFunc("POST /v1/organizations/{org}/surveys/batch-delete",
		server.requireRole(server.DeleteSurveys, domain.PermSurveysManage))

	// Assinaturas salvas do usuário autenticado
	server.mux.HandleFunc("GET /v1/organizations/{org}/signatures", server.requireRole(server.ListSignatures))
	server.mux.HandleFunc("POST /v1/organizations/{org}/signatures", server.requireRole(server.CreateSignature))
	server.mux.HandleFunc("GET /v1/organizations/{org}/signatures/{id}/html", server.requireRole(server.SignatureHTML))

	// Analytics
	server.mux.HandleFunc("GET /v1/organizations/{org}/analytics",
		server.requireRole(server.GetAnalytics, domain.PermAnalyticsView))

	// Audit log
	server.mux.HandleFunc("GET /v1/organizations/{org}/audit-logs",
		server.requireRole(server.ListAuditLogs, domain.PermOrganizationManage))

	return server
}

// Handler expõe o roteamento completo (com métricas) para testes.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.healthChecks))
	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", "dependency", name, "error", err)
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	writeJSON(w, status, HealthDTO{Status: http.StatusText(status), Checks: checks})
}
