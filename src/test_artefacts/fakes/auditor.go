package fakes

import (
	"context"
	"sync"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/audit"
)

// AuditEntry é o que o Auditor recebeu em uma chamada a Record.
type AuditEntry struct {
	OrganizationID string
	Action         domain.AuditAction
	Metadata       map[string]any
	Actor          audit.Actor
}

// Auditor guarda as entradas de auditoria em memória.
type Auditor struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *Auditor) Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any) {
	actor, _ := audit.ActorFrom(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, AuditEntry{
		OrganizationID: organizationID,
		Action:         action,
		Metadata:       metadata,
		Actor:          actor,
	})
}

func (a *Auditor) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}

func (a *Auditor) Actions() []domain.AuditAction {
	var actions []domain.AuditAction
	for _, entry := range a.Entries() {
		actions = append(actions, entry.Action)
	}
	return actions
}
