// Package workspace reúne, por organização, as coleções otimistas usadas pelo
// dashboard. Um Workspace vive da abertura da sessão até o logout.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/optimistic"

	"golang.org/x/sync/errgroup"
)

type (
	GroupRemote    = optimistic.Remote[entities.Group, domain.GroupDraft, domain.GroupPatch]
	LocationRemote = optimistic.Remote[entities.Location, domain.LocationDraft, domain.LocationPatch]
	UserRemote     = optimistic.Remote[entities.User, domain.UserDraft, domain.UserPatch]

	Groups    = optimistic.Collection[entities.Group, domain.GroupDraft, domain.GroupPatch]
	Locations = optimistic.Collection[entities.Location, domain.LocationDraft, domain.LocationPatch]
	Users     = optimistic.Collection[entities.User, domain.UserDraft, domain.UserPatch]
)

// Remotes são os colaboradores remotos compartilhados por todos os workspaces.
type Remotes struct {
	Groups    GroupRemote
	Locations LocationRemote
	Users     UserRemote
}

// SettleObserver recebe o resultado de cada mutação otimista (usado para métricas).
type SettleObserver func(kind domain.EntityKind, op optimistic.Operation, outcome optimistic.Outcome)

type Workspace struct {
	organizationID string

	Groups    *Groups
	Locations *Locations
	Users     *Users

	mu      sync.Mutex
	loaded  bool
	backlog []func() bool
}

func New(organizationID string, remotes Remotes, observer SettleObserver, opts ...optimistic.Option) *Workspace {
	hook := func(kind domain.EntityKind) []optimistic.Option {
		if observer == nil {
			return opts
		}
		return append(append([]optimistic.Option{}, opts...), optimistic.WithSettleHook(
			func(op optimistic.Operation, outcome optimistic.Outcome) { observer(kind, op, outcome) },
		))
	}

	return &Workspace{
		organizationID: organizationID,
		Groups:         optimistic.NewCollection[entities.Group, domain.GroupDraft, domain.GroupPatch](organizationID, remotes.Groups, hook(domain.KindGroup)...),
		Locations:      optimistic.NewCollection[entities.Location, domain.LocationDraft, domain.LocationPatch](organizationID, remotes.Locations, hook(domain.KindLocation)...),
		Users:          optimistic.NewCollection[entities.User, domain.UserDraft, domain.UserPatch](organizationID, remotes.Users, hook(domain.KindUser)...),
	}
}

func (w *Workspace) OrganizationID() string {
	return w.organizationID
}

// Load faz o fetch inicial das três coleções em paralelo e depois reaplica,
// na ordem de chegada, os eventos recebidos enquanto o fetch corria.
func (w *Workspace) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Groups.Load(ctx) })
	g.Go(func() error { return w.Locations.Load(ctx) })
	g.Go(func() error { return w.Users.Load(ctx) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("Workspace.Load - organization %s: %w", w.organizationID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, apply := range w.backlog {
		apply()
	}
	w.backlog = nil
	w.loaded = true
	return nil
}

// Apply encaminha um evento do change feed para a coleção certa.
// Retorna true quando o evento ficou enfileirado, seja atrás de uma mutação
// em voo, seja porque o fetch inicial ainda não terminou.
func (w *Workspace) Apply(event domain.ChangeEvent) (bool, error) {
	apply, err := w.route(event)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loaded {
		w.backlog = append(w.backlog, apply)
		return true, nil
	}
	return apply(), nil
}

func (w *Workspace) route(event domain.ChangeEvent) (func() bool, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.OrganizationID != w.organizationID {
		return nil, fmt.Errorf("event for organization %s routed to workspace %s", event.OrganizationID, w.organizationID)
	}

	switch event.Kind {
	case domain.KindGroup:
		change, err := decodeChange[entities.Group](event)
		if err != nil {
			return nil, err
		}
		return func() bool { return w.Groups.ApplyChange(change) }, nil
	case domain.KindLocation:
		change, err := decodeChange[entities.Location](event)
		if err != nil {
			return nil, err
		}
		return func() bool { return w.Locations.ApplyChange(change) }, nil
	default:
		change, err := decodeChange[entities.User](event)
		if err != nil {
			return nil, err
		}
		return func() bool { return w.Users.ApplyChange(change) }, nil
	}
}

func decodeChange[E optimistic.Record](event domain.ChangeEvent) (optimistic.Change[E], error) {
	if event.Operation == domain.OperationDelete {
		return optimistic.Deleted[E](event.ID), nil
	}

	var record E
	if err := json.Unmarshal(event.Record, &record); err != nil {
		return optimistic.Change[E]{}, fmt.Errorf("failed to decode %s record %s: %w", event.Kind, event.ID, err)
	}
	if record.EntityID() != event.ID {
		return optimistic.Change[E]{}, fmt.Errorf("%s record id %q does not match event id %q", event.Kind, record.EntityID(), event.ID)
	}
	return optimistic.Upserted(record), nil
}
