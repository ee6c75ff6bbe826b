package http

import (
	"context"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/audit"
)

// Cabeçalhos preenchidos pelo proxy de autenticação na frente da API. O proxy
// remove qualquer valor enviado pelo cliente antes de preenchê-los.
const (
	RoleHeader         = "X-User-Role"
	OrganizationHeader = "X-Organization-ID"
	UserHeader         = "X-User-ID"
)

// caller é a identidade autenticada da requisição.
type caller struct {
	Role           domain.Role
	OrganizationID string
	UserID         string
}

type callerKey struct{}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c
}

// requireRole exige papel, organização e usuário autenticados e, quando
// informado, ao menos uma das permissões. Identidade incompleta: 401. Rota de
// outra organização ou papel sem permissão: 403.
func (s *Server) requireRole(next http.HandlerFunc, anyOf ...domain.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := domain.ParseRole(r.Header.Get(RoleHeader))
		organizationID := strings.TrimSpace(r.Header.Get(OrganizationHeader))
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if err != nil || organizationID == "" || userID == "" {
			writeJSON(w, http.StatusUnauthorized, ErrorDTO{Error: "authentication required"})
			return
		}

		// O {org} do path só escolhe o recurso; quem decide o tenant é a
		// identidade autenticada.
		if pathOrg := r.PathValue("org"); pathOrg != "" && pathOrg != organizationID {
			s.logger.Warn("Cross-organization request refused",
				"organization_id", organizationID,
				"user_id", userID,
				"path", r.URL.Path)
			writeError(w, s.logger, r, domain.ErrPermissionDenied)
			return
		}

		if len(anyOf) > 0 && !domain.HasAnyPermission(role, anyOf...) {
			s.logger.Warn("Permission denied", "role", role, "path", r.URL.Path)
			writeError(w, s.logger, r, domain.ErrPermissionDenied)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey{}, caller{Role: role, OrganizationID: organizationID, UserID: userID})
		ctx = audit.WithActor(ctx, audit.Actor{
			UserID:         userID,
			OrganizationID: organizationID,
			IPAddress:      s.clientKey(r),
			UserAgent:      r.UserAgent(),
		})
		next(w, r.WithContext(ctx))
	}
}

// ParseTrustedProxies lê uma lista separada por vírgulas de CIDRs ou IPs.
func ParseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (s *Server) trusted(addr netip.Addr) bool {
	for _, prefix := range s.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// clientKey identifica o respondente para o rate limit. O X-Forwarded-For só
// é lido quando a conexão vem de um proxy confiável; nesse caso os saltos são
// percorridos da direita para a esquerda e o primeiro endereço fora dos
// proxies confiáveis é o cliente.
func (s *Server) clientKey(r *http.Request) string {
	peer, ok := remoteAddr(r.RemoteAddr)
	if !ok {
		return r.RemoteAddr
	}
	if !s.trusted(peer) {
		return peer.String()
	}

	client := peer
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !s.trusted(client) {
			break
		}
	}
	return client.String()
}

func remoteAddr(raw string) (netip.Addr, bool) {
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument registra contagem e duração por rota. A rota é o padrão do mux,
// nunca o path bruto, para manter a cardinalidade dos labels fixa.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		if s.metrics == nil {
			return
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
