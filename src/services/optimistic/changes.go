package optimistic

import (
	"slices"
)

// Change é uma alteração empurrada pelo change feed (segundo escritor da coleção).
type Change[E Record] struct {
	Deleted bool
	ID      string
	Record  E
}

func Upserted[E Record](record E) Change[E] {
	return Change[E]{ID: record.EntityID(), Record: record}
}

func Deleted[E Record](id string) Change[E] {
	return Change[E]{Deleted: true, ID: id}
}

// ApplyChange incorpora um evento realtime. Se houver mutação otimista em voo
// para o mesmo id, o evento fica na fila e é reaplicado, na ordem de chegada,
// depois que a mutação for confirmada ou revertida.
// Um upsert mais antigo que o registro atual é descartado.
// Retorna true quando o evento foi enfileirado.
func (c *Collection[E, D, P]) ApplyChange(change Change[E]) bool {
	c.mu.Lock()
	if _, busy := c.pending[change.ID]; busy {
		c.queued[change.ID] = append(c.queued[change.ID], change)
		c.mu.Unlock()
		return true
	}
	c.applyChangesLocked([]Change[E]{change})
	c.generation++
	notify := c.snapshotForObserversLocked()
	c.mu.Unlock()

	notify()
	return false
}

func (c *Collection[E, D, P]) drainQueueLocked(id string) []Change[E] {
	changes := c.queued[id]
	delete(c.queued, id)
	return changes
}

func (c *Collection[E, D, P]) applyChangesLocked(changes []Change[E]) {
	for _, change := range changes {
		idx := c.indexOf(change.ID)

		if change.Deleted {
			c.items = removeAt(c.items, idx)
			continue
		}

		if idx < 0 {
			c.items = append(slices.Clone(c.items), change.Record)
			continue
		}

		if change.Record.LastModified().Before(c.items[idx].LastModified()) {
			continue
		}

		next := slices.Clone(c.items)
		next[idx] = change.Record
		c.items = next
	}
}
