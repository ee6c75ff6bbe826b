package fakes

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/optimistic"
)

// Remote é um colaborador remoto em memória para specs do mutator.
// Falhas e latência são programáveis; os hooks Before* rodam dentro da chamada
// remota, antes da resposta, e permitem inspecionar o estado otimista.
type Remote[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]] struct {
	mu      sync.Mutex
	records map[string][]E
	seq     int

	Latency time.Duration

	CreateErr error
	UpdateErr error
	DeleteErr error
	ListErr   error

	// NewID gera o id do servidor; por padrão "srv-<n>".
	NewID func(n int) string
	// Created permite forçar a entidade devolvida pelo create.
	Created func(organizationID string, draft D, id string) E

	// AfterList roda depois da leitura do estado e antes da resposta do List.
	AfterList func()

	BeforeCreate func()
	BeforeUpdate func()
	BeforeDelete func()

	Calls []string
}

func NewRemote[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]]() *Remote[E, D, P] {
	return &Remote[E, D, P]{records: make(map[string][]E)}
}

// Seed define o estado inicial do servidor para uma organização.
func (r *Remote[E, D, P]) Seed(organizationID string, records ...E) *Remote[E, D, P] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[organizationID] = slices.Clone(records)
	return r
}

func (r *Remote[E, D, P]) Records(organizationID string) []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records[organizationID])
}

func (r *Remote[E, D, P]) List(ctx context.Context, organizationID string) ([]E, error) {
	r.record("list")
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	records := r.Records(organizationID)
	if r.AfterList != nil {
		r.AfterList()
	}
	return records, nil
}

func (r *Remote[E, D, P]) Create(ctx context.Context, organizationID string, draft D) (E, error) {
	var zero E
	r.record("create")
	if r.BeforeCreate != nil {
		r.BeforeCreate()
	}
	if err := r.wait(ctx); err != nil {
		return zero, err
	}
	if r.CreateErr != nil {
		return zero, r.CreateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++

	id := fmt.Sprintf("srv-%d", r.seq)
	if r.NewID != nil {
		id = r.NewID(r.seq)
	}

	var created E
	if r.Created != nil {
		created = r.Created(organizationID, draft, id)
	} else {
		created = draft.Provisional(id, organizationID, time.Now().UTC())
	}
	r.records[organizationID] = append(r.records[organizationID], created)
	return created, nil
}

func (r *Remote[E, D, P]) Update(ctx context.Context, organizationID string, id string, patch P) (E, error) {
	var zero E
	r.record("update")
	if r.BeforeUpdate != nil {
		r.BeforeUpdate()
	}
	if err := r.wait(ctx); err != nil {
		return zero, err
	}
	if r.UpdateErr != nil {
		return zero, r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.records[organizationID]
	idx := slices.IndexFunc(records, func(e E) bool { return e.EntityID() == id })
	if idx < 0 {
		return zero, domain.ErrEntityNotFound
	}
	records[idx] = patch.ApplyTo(records[idx], time.Now().UTC())
	return records[idx], nil
}

func (r *Remote[E, D, P]) Delete(ctx context.Context, organizationID string, id string) error {
	r.record("delete")
	if r.BeforeDelete != nil {
		r.BeforeDelete()
	}
	if err := r.wait(ctx); err != nil {
		return err
	}
	if r.DeleteErr != nil {
		return r.DeleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.records[organizationID]
	idx := slices.IndexFunc(records, func(e E) bool { return e.EntityID() == id })
	if idx < 0 {
		return domain.ErrEntityNotFound
	}
	r.records[organizationID] = slices.Delete(slices.Clone(records), idx, idx+1)
	return nil
}

func (r *Remote[E, D, P]) record(call string) {
	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	r.mu.Unlock()
}

func (r *Remote[E, D, P]) wait(ctx context.Context) error {
	if r.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(r.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
