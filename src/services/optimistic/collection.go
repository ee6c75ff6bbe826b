// Package optimistic mantém uma coleção local de entidades de uma organização
// consistente com o backend, aplicando cada mutação imediatamente e
// revertendo-a quando a escrita remota falha.
package optimistic

import (
	"context"
	"slices"
	"sync"
	"time"

	"feedbackflow/src/domain"

	"github.com/google/uuid"
)

// Record é o mínimo que uma entidade precisa expor para ser gerenciada.
type Record interface {
	EntityID() string
	LastModified() time.Time
}

// Draft sintetiza a entidade provisória exibida enquanto o create remoto não responde.
type Draft[E any] interface {
	Provisional(id, organizationID string, now time.Time) E
}

// Patch aplica um merge raso sobre a entidade atual.
type Patch[E any] interface {
	ApplyTo(current E, now time.Time) E
}

// Remote é o colaborador que detém a fonte de verdade. Toda chamada é
// escopada pela organização.
type Remote[E any, D any, P any] interface {
	List(ctx context.Context, organizationID string) ([]E, error)
	Create(ctx context.Context, organizationID string, draft D) (E, error)
	Update(ctx context.Context, organizationID string, id string, patch P) (E, error)
	Delete(ctx context.Context, organizationID string, id string) error
}

type Operation string

const (
	OperationAdd    Operation = "add"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// SettleHook é chamado uma vez por mutação, depois que ela foi confirmada ou revertida.
type SettleHook func(op Operation, outcome Outcome)

type Option func(*options)

type options struct {
	now      func() time.Time
	newTemp  func() string
	onSettle SettleHook
}

func WithTempIDs(generator func() string) Option {
	return func(o *options) { o.newTemp = generator }
}

func WithSettleHook(hook SettleHook) Option {
	return func(o *options) { o.onSettle = hook }
}

// Collection é a coleção ordenada de uma organização. Toda escrita troca o
// slice inteiro (copy-on-write): um leitor nunca observa um array pela metade.
// O lock nunca fica preso durante a chamada remota.
type Collection[E Record, D Draft[E], P Patch[E]] struct {
	organizationID string
	remote         Remote[E, D, P]
	opts           options

	mu        sync.Mutex
	items     []E
	pending   map[string]struct{}
	queued    map[string][]Change[E]
	observers map[int]func([]E)
	nextObs   int
	// generation avança a cada mutação assentada ou evento aplicado.
	generation uint64
}

// maxLoadAttempts limita as releituras quando a coleção muda durante o List.
const maxLoadAttempts = 3

func NewCollection[E Record, D Draft[E], P Patch[E]](
	organizationID string,
	remote Remote[E, D, P],
	opts ...Option,
) *Collection[E, D, P] {
	o := options{
		now:     time.Now,
		newTemp: func() string { return "tmp-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Collection[E, D, P]{
		organizationID: organizationID,
		remote:         remote,
		opts:           o,
		pending:        make(map[string]struct{}),
		queued:         make(map[string][]Change[E]),
		observers:      make(map[int]func([]E)),
	}
}

func (c *Collection[E, D, P]) OrganizationID() string {
	return c.organizationID
}

// Items devolve uma cópia do estado atual.
func (c *Collection[E, D, P]) Items() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[E, D, P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[E, D, P]) Get(id string) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero E
	return zero, false
}

// Pending informa se existe mutação em voo para o id.
func (c *Collection[E, D, P]) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Subscribe registra um observador que recebe uma cópia da coleção a cada
// escrita. O retorno cancela a inscrição.
func (c *Collection[E, D, P]) Subscribe(fn func([]E)) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Load substitui a coleção pelo estado do servidor. É recusado enquanto
// houver mutações em voo, para não apagar uma reversão pendente.
// Se uma mutação assentar durante o List, a listagem é descartada e refeita.
func (c *Collection[E, D, P]) Load(ctx context.Context) error {
	for range maxLoadAttempts {
		c.mu.Lock()
		generation := c.generation
		c.mu.Unlock()

		records, err := c.remote.List(ctx, c.organizationID)
		if err != nil {
			return err
		}

		c.mu.Lock()
		if len(c.pending) > 0 {
			c.mu.Unlock()
			return domain.ErrMutationInFlight
		}
		if c.generation != generation {
			c.mu.Unlock()
			continue
		}
		c.items = dedupe(records)
		notify := c.snapshotForObserversLocked()
		c.mu.Unlock()

		notify()
		return nil
	}

	return domain.ErrMutationInFlight
}

// Add insere uma entidade provisória com id temporário, chama o create remoto
// e troca a provisória pela entidade do servidor; em caso de erro remove a
// provisória e devolve o erro remoto sem alterá-lo.
func (c *Collection[E, D, P]) Add(ctx context.Context, draft D) (E, error) {
	c.mu.Lock()
	tempID := c.freshTempIDLocked()
	provisional := draft.Provisional(tempID, c.organizationID, c.opts.now())
	c.items = append(slices.Clone(c.items), provisional)
	c.pending[tempID] = struct{}{}
	notify := c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	created, err := c.remote.Create(ctx, c.organizationID, draft)

	c.mu.Lock()
	delete(c.pending, tempID)
	c.generation++
	if err != nil {
		c.items = removeAt(c.items, c.indexOf(tempID))
	} else {
		c.items = c.replaceProvisionalLocked(tempID, created)
	}
	notify = c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	c.settled(OperationAdd, err)
	if err != nil {
		var zero E
		return zero, err
	}
	return created, nil
}

// Update aplica o patch localmente, chama o update remoto e, se falhar,
// restaura o snapshot tirado antes da chamada.
func (c *Collection[E, D, P]) Update(ctx context.Context, id string, patch P) (E, error) {
	var zero E

	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return zero, domain.ErrEntityNotFound
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return zero, domain.ErrMutationInFlight
	}
	snapshot := c.items[idx]
	next := slices.Clone(c.items)
	next[idx] = patch.ApplyTo(snapshot, c.opts.now())
	c.items = next
	c.pending[id] = struct{}{}
	notify := c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	updated, err := c.remote.Update(ctx, c.organizationID, id, patch)

	c.mu.Lock()
	delete(c.pending, id)
	c.generation++
	replacement := snapshot
	if err == nil {
		replacement = updated
	}
	if pos := c.indexOf(id); pos >= 0 {
		next := slices.Clone(c.items)
		next[pos] = replacement
		c.items = next
	} else {
		c.items = append(slices.Clone(c.items), replacement)
	}
	c.applyChangesLocked(c.drainQueueLocked(id))
	notify = c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	c.settled(OperationUpdate, err)
	if err != nil {
		return zero, err
	}
	return updated, nil
}

// Delete remove a entidade imediatamente e a reinsere na mesma posição
// (ou no fim, se a coleção encolheu) quando o delete remoto falha.
func (c *Collection[E, D, P]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return domain.ErrEntityNotFound
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return domain.ErrMutationInFlight
	}
	snapshot := c.items[idx]
	c.items = removeAt(c.items, idx)
	c.pending[id] = struct{}{}
	notify := c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	err := c.remote.Delete(ctx, c.organizationID, id)

	c.mu.Lock()
	delete(c.pending, id)
	c.generation++
	queued := c.drainQueueLocked(id)
	if err != nil {
		if c.indexOf(id) < 0 {
			c.items = insertAt(c.items, min(idx, len(c.items)), snapshot)
		}
		c.applyChangesLocked(queued)
	}
	// delete confirmado pelo servidor: eventos enfileirados para o id são obsoletos
	notify = c.snapshotForObserversLocked()
	c.mu.Unlock()
	notify()

	c.settled(OperationDelete, err)
	return err
}

func (c *Collection[E, D, P]) settled(op Operation, err error) {
	if c.opts.onSettle == nil {
		return
	}
	outcome := OutcomeCommitted
	if err != nil {
		outcome = OutcomeRolledBack
	}
	c.opts.onSettle(op, outcome)
}

func (c *Collection[E, D, P]) freshTempIDLocked() string {
	for {
		id := c.opts.newTemp()
		if _, busy := c.pending[id]; busy {
			continue
		}
		if c.indexOf(id) < 0 {
			return id
		}
	}
}

// replaceProvisionalLocked coloca a entidade do servidor na posição da
// provisória e descarta qualquer outra entrada com o mesmo id (por exemplo,
// um push que chegou antes da resposta do create).
func (c *Collection[E, D, P]) replaceProvisionalLocked(tempID string, created E) []E {
	next := make([]E, 0, len(c.items))
	placed := false
	for _, item := range c.items {
		switch item.EntityID() {
		case tempID:
			if !placed {
				next = append(next, created)
				placed = true
			}
		case created.EntityID():
			// descartada; a posição da provisória prevalece
		default:
			next = append(next, item)
		}
	}
	if !placed {
		next = append(next, created)
	}
	return next
}

func (c *Collection[E, D, P]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(item E) bool { return item.EntityID() == id })
}

// snapshotForObserversLocked captura o estado e os observadores sob o lock e
// devolve uma função que os notifica depois que o lock for liberado.
func (c *Collection[E, D, P]) snapshotForObserversLocked() func() {
	if len(c.observers) == 0 {
		return func() {}
	}
	items := c.items
	fns := make([]func([]E), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(slices.Clone(items))
		}
	}
}

func removeAt[E any](items []E, idx int) []E {
	if idx < 0 || idx >= len(items) {
		return items
	}
	next := make([]E, 0, len(items)-1)
	next = append(next, items[:idx]...)
	return append(next, items[idx+1:]...)
}

func insertAt[E any](items []E, idx int, item E) []E {
	next := make([]E, 0, len(items)+1)
	next = append(next, items[:idx]...)
	next = append(next, item)
	return append(next, items[idx:]...)
}

func dedupe[E Record](records []E) []E {
	seen := make(map[string]int, len(records))
	out := make([]E, 0, len(records))
	for _, record := range records {
		if pos, ok := seen[record.EntityID()]; ok {
			out[pos] = record
			continue
		}
		seen[record.EntityID()] = len(out)
		out = append(out, record)
	}
	return out
}
