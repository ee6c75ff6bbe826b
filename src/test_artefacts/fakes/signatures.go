package fakes

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
)

// Signatures é um repositório de assinaturas em memória.
type Signatures struct {
	mu      sync.Mutex
	records []entities.Signature
	seq     int
}

func NewSignatures() *Signatures {
	return &Signatures{}
}

func (s *Signatures) ListByUser(_ context.Context, organizationID string, userID string) ([]entities.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.Signature{}
	for _, record := range s.records {
		if record.OrganizationID == organizationID && record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *Signatures) Get(_ context.Context, organizationID string, id string) (entities.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.records, func(record entities.Signature) bool {
		return record.ID == id && record.OrganizationID == organizationID
	})
	if idx < 0 {
		return entities.Signature{}, domain.ErrEntityNotFound
	}
	return s.records[idx], nil
}

func (s *Signatures) Create(_ context.Context, signature entities.Signature) (entities.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Now().UTC()
	signature.ID = fmt.Sprintf("sig-%d", s.seq)
	signature.CreatedAt = now
	signature.UpdatedAt = now
	s.records = append(s.records, signature)
	return signature, nil
}
