package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/optimistic"
)

// Registry guarda os workspaces abertos por organização. É construído uma vez
// por processo e injetado onde for necessário; não existe store global.
type Registry struct {
	logger   *slog.Logger
	remotes  Remotes
	observer SettleObserver
	opts     []optimistic.Option

	mu         sync.Mutex
	workspaces map[string]*entry
}

// entry é registrada antes do fetch inicial, para que eventos que chegam
// durante o load fiquem no backlog do workspace em vez de se perderem.
// err só é lido depois que ready foi fechado.
type entry struct {
	ws    *Workspace
	ready chan struct{}
	err   error
}

func (e *entry) loaded() bool {
	select {
	case <-e.ready:
		return e.err == nil
	default:
		return false
	}
}

func NewRegistry(logger *slog.Logger, remotes Remotes, observer SettleObserver, opts ...optimistic.Option) *Registry {
	return &Registry{
		logger:     logger,
		remotes:    remotes,
		observer:   observer,
		opts:       opts,
		workspaces: make(map[string]*entry),
	}
}

// Open devolve o workspace da organização, criando e carregando-o na primeira
// chamada. Chamadas concorrentes esperam o mesmo load. Um workspace cujo fetch
// inicial falhou é removido do registro.
func (r *Registry) Open(ctx context.Context, organizationID string) (*Workspace, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("Registry.Open - organization id is required")
	}

	r.mu.Lock()
	if existing, ok := r.workspaces[organizationID]; ok {
		r.mu.Unlock()
		select {
		case <-existing.ready:
		case <-ctx.Done():
			return nil, fmt.Errorf("Registry.Open - waiting for workspace: %w", ctx.Err())
		}
		if existing.err != nil {
			return nil, fmt.Errorf("Registry.Open - failed to load workspace: %w", existing.err)
		}
		return existing.ws, nil
	}
	opening := &entry{
		ws:    New(organizationID, r.remotes, r.observer, r.opts...),
		ready: make(chan struct{}),
	}
	r.workspaces[organizationID] = opening
	r.mu.Unlock()

	opening.err = opening.ws.Load(ctx)
	close(opening.ready)

	if opening.err != nil {
		r.mu.Lock()
		if r.workspaces[organizationID] == opening {
			delete(r.workspaces, organizationID)
		}
		r.mu.Unlock()
		return nil, fmt.Errorf("Registry.Open - failed to load workspace: %w", opening.err)
	}

	ws := opening.ws
	r.logger.Info("Workspace opened",
		"organization_id", organizationID,
		"groups", ws.Groups.Len(),
		"locations", ws.Locations.Len(),
		"users", ws.Users.Len())

	return ws, nil
}

// Get devolve apenas workspaces com o load concluído.
func (r *Registry) Get(organizationID string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.workspaces[organizationID]
	if !ok || !e.loaded() {
		return nil, domain.ErrWorkspaceNotOpen
	}
	return e.ws, nil
}

// Close descarta o workspace (logout). Mutações em voo terminam normalmente,
// mas o workspace deixa de receber eventos.
func (r *Registry) Close(organizationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[organizationID]; !ok {
		return false
	}
	delete(r.workspaces, organizationID)
	r.logger.Info("Workspace closed", "organization_id", organizationID)
	return true
}

// Len é o número de workspaces abertos ou em abertura.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces = make(map[string]*entry)
}

// Dispatch entrega um evento do change feed ao workspace da organização.
// Eventos de organizações sem workspace registrado são ignorados; durante o
// load eles ficam no backlog do workspace.
func (r *Registry) Dispatch(event domain.ChangeEvent) error {
	r.mu.Lock()
	e, ok := r.workspaces[event.OrganizationID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	queued, err := e.ws.Apply(event)
	if err != nil {
		return fmt.Errorf("Registry.Dispatch - %w", err)
	}

	if queued {
		r.logger.Debug("Change event queued",
			"organization_id", event.OrganizationID,
			"kind", event.Kind,
			"id", event.ID)
	}
	return nil
}
