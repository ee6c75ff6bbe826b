package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/optimistic"
)

// ListCache é o subconjunto do client Redis usado pelo decorator.
type ListCache interface {
	GetKey(ctx context.Context, key string) ([]byte, bool, error)
	SetWithRegistry(ctx context.Context, cacheKey string, cacheValue []byte, registryKeys ...string) error
	InvalidateRegistry(ctx context.Context, registryKeys ...string) error
}

// ChangeNotifier publica as alterações confirmadas no change feed.
type ChangeNotifier interface {
	Publish(ctx context.Context, events ...domain.ChangeEvent) error
}

// Auditor grava a entrada do audit log de uma escrita confirmada.
type Auditor interface {
	Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any)
}

// CachedListRepository decora um repositório com cache de listagem por
// organização e publicação de eventos após cada escrita confirmada.
// Falhas de cache ou de publicação são logadas e nunca desfazem a escrita.
type CachedListRepository[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]] struct {
	logger   *slog.Logger
	kind     domain.EntityKind
	inner    optimistic.Remote[E, D, P]
	cache    ListCache
	notifier ChangeNotifier
	auditor  Auditor
	observe  func(entity, result string)
	now      func() time.Time
}

type CachedListOption func(*cachedListOptions)

type cachedListOptions struct {
	cache    ListCache
	notifier ChangeNotifier
	auditor  Auditor
	observe  func(entity, result string)
}

func WithListCache(cache ListCache) CachedListOption {
	return func(o *cachedListOptions) { o.cache = cache }
}

func WithChangeNotifier(notifier ChangeNotifier) CachedListOption {
	return func(o *cachedListOptions) { o.notifier = notifier }
}

// WithAuditor registra cada escrita confirmada como "<kind>.<verbo>".
func WithAuditor(auditor Auditor) CachedListOption {
	return func(o *cachedListOptions) { o.auditor = auditor }
}

// WithCacheObserver recebe "hit", "miss" ou "error" a cada leitura do cache.
func WithCacheObserver(observe func(entity, result string)) CachedListOption {
	return func(o *cachedListOptions) { o.observe = observe }
}

func NewCachedListRepository[E optimistic.Record, D optimistic.Draft[E], P optimistic.Patch[E]](
	logger *slog.Logger,
	kind domain.EntityKind,
	inner optimistic.Remote[E, D, P],
	opts ...CachedListOption,
) *CachedListRepository[E, D, P] {
	var o cachedListOptions
	for _, opt := range opts {
		opt(&o)
	}

	return &CachedListRepository[E, D, P]{
		logger:   logger,
		kind:     kind,
		inner:    inner,
		cache:    o.cache,
		notifier: o.notifier,
		auditor:  o.auditor,
		observe:  o.observe,
		now:      time.Now,
	}
}

func (r *CachedListRepository[E, D, P]) cacheKey(organizationID string) string {
	return fmt.Sprintf("list:%s:%s", r.kind, organizationID)
}

func (r *CachedListRepository[E, D, P]) registryKey(organizationID string) string {
	return fmt.Sprintf("registry:organization:%s:%s", organizationID, r.kind)
}

func (r *CachedListRepository[E, D, P]) record(result string) {
	if r.observe != nil {
		r.observe(string(r.kind), result)
	}
}

func (r *CachedListRepository[E, D, P]) List(ctx context.Context, organizationID string) ([]E, error) {
	if r.cache == nil {
		return r.inner.List(ctx, organizationID)
	}

	cacheKey := r.cacheKey(organizationID)
	cached, found, err := r.cache.GetKey(ctx, cacheKey)
	switch {
	case err != nil:
		r.record("error")
		r.logger.Warn("List cache read failed", "key", cacheKey, "error", err)
	case found:
		var items []E
		if err := json.Unmarshal(cached, &items); err == nil {
			r.record("hit")
			return items, nil
		}
		r.record("error")
		r.logger.Warn("Discarding undecodable list cache entry", "key", cacheKey)
	default:
		r.record("miss")
	}

	items, err := r.inner.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err != nil {
		r.logger.Error("Failed to marshal list for cache", "key", cacheKey, "error", err)
	} else if err := r.cache.SetWithRegistry(ctx, cacheKey, payload, r.registryKey(organizationID)); err != nil {
		r.logger.Warn("Failed to set list cache", "key", cacheKey, "error", err)
	}

	return items, nil
}

func (r *CachedListRepository[E, D, P]) Create(ctx context.Context, organizationID string, draft D) (E, error) {
	created, err := r.inner.Create(ctx, organizationID, draft)
	if err != nil {
		return created, err
	}

	r.afterWrite(ctx, organizationID, created.EntityID(), domain.AuditVerbCreate, created)
	return created, nil
}

func (r *CachedListRepository[E, D, P]) Update(ctx context.Context, organizationID string, id string, patch P) (E, error) {
	updated, err := r.inner.Update(ctx, organizationID, id, patch)
	if err != nil {
		return updated, err
	}

	r.afterWrite(ctx, organizationID, id, domain.AuditVerbUpdate, updated)
	return updated, nil
}

func (r *CachedListRepository[E, D, P]) Delete(ctx context.Context, organizationID string, id string) error {
	if err := r.inner.Delete(ctx, organizationID, id); err != nil {
		return err
	}

	var zero E
	r.afterWrite(ctx, organizationID, id, domain.AuditVerbDelete, zero)
	return nil
}

// afterWrite roda com um contexto desacoplado do chamador: a escrita já foi
// confirmada e o cache precisa ser invalidado mesmo se o cliente desistiu.
func (r *CachedListRepository[E, D, P]) afterWrite(ctx context.Context, organizationID, id string, verb string, record E) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if r.auditor != nil {
		r.auditor.Record(ctx, organizationID, domain.AuditActionFor(r.kind, verb), map[string]any{"id": id})
	}

	if r.cache != nil {
		if err := r.cache.InvalidateRegistry(ctx, r.registryKey(organizationID)); err != nil {
			r.logger.Warn("Failed to invalidate list cache",
				"organization_id", organizationID, "kind", r.kind, "error", err)
		}
	}

	if r.notifier == nil {
		return
	}

	op := domain.OperationUpsert
	if verb == domain.AuditVerbDelete {
		op = domain.OperationDelete
	}
	event := domain.ChangeEvent{
		EventID:        uuid.NewString(),
		Kind:           r.kind,
		Operation:      op,
		OrganizationID: organizationID,
		ID:             id,
		OccurredAt:     r.now().UTC(),
	}
	if op == domain.OperationUpsert {
		payload, err := json.Marshal(record)
		if err != nil {
			r.logger.Error("Failed to marshal change record", "kind", r.kind, "id", id, "error", err)
			return
		}
		event.Record = payload
	}

	if err := r.notifier.Publish(ctx, event); err != nil {
		r.logger.Error("Failed to publish change event",
			"organization_id", organizationID, "kind", r.kind, "id", id, "error", err)
	}
}
