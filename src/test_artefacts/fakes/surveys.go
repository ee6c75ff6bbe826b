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

// Surveys é um repositório de pesquisas em memória, separado por organização.
type Surveys struct {
	mu      sync.Mutex
	records map[string][]entities.Survey
	seq     int

	CreatedBy []string
}

func NewSurveys() *Surveys {
	return &Surveys{records: make(map[string][]entities.Survey)}
}

func (s *Surveys) Seed(records ...entities.Survey) *Surveys {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.records[record.OrganizationID] = append(s.records[record.OrganizationID], record)
	}
	return s
}

func (s *Surveys) List(_ context.Context, organizationID string) ([]entities.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records[organizationID]), nil
}

func (s *Surveys) Get(_ context.Context, organizationID string, id string) (entities.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(organizationID, id)
	if idx < 0 {
		return entities.Survey{}, domain.ErrEntityNotFound
	}
	return s.records[organizationID][idx], nil
}

func (s *Surveys) Create(_ context.Context, organizationID string, createdBy string, draft domain.SurveyDraft) (entities.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.CreatedBy = append(s.CreatedBy, createdBy)

	now := time.Now().UTC()
	created := entities.Survey{
		ID:             fmt.Sprintf("survey-%d", s.seq),
		OrganizationID: organizationID,
		Title:          draft.Title,
		Description:    draft.Description,
		Questions:      draft.Questions,
		Branding:       draft.Branding,
		CreatedBy:      createdBy,
		IsActive:       draft.IsActive,
		AssignedTo:     draft.AssignedTo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.records[organizationID] = append(s.records[organizationID], created)
	return created, nil
}

func (s *Surveys) Update(_ context.Context, organizationID string, id string, patch domain.SurveyPatch) (entities.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(organizationID, id)
	if idx < 0 {
		return entities.Survey{}, domain.ErrEntityNotFound
	}

	record := &s.records[organizationID][idx]
	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Description != nil {
		record.Description = *patch.Description
	}
	if patch.Questions != nil {
		record.Questions = *patch.Questions
	}
	if patch.Branding != nil {
		record.Branding = *patch.Branding
	}
	if patch.AssignedTo != nil {
		record.AssignedTo = *patch.AssignedTo
	}
	if patch.IsActive != nil {
		record.IsActive = *patch.IsActive
	}
	record.UpdatedAt = time.Now().UTC()
	return *record, nil
}

func (s *Surveys) Delete(_ context.Context, organizationID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(organizationID, id)
	if idx < 0 {
		return domain.ErrEntityNotFound
	}
	s.records[organizationID] = slices.Delete(s.records[organizationID], idx, idx+1)
	return nil
}

func (s *Surveys) DeleteMany(_ context.Context, organizationID string, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []string
	s.records[organizationID] = slices.DeleteFunc(s.records[organizationID], func(record entities.Survey) bool {
		if slices.Contains(ids, record.ID) {
			deleted = append(deleted, record.ID)
			return true
		}
		return false
	})
	return deleted, nil
}

func (s *Surveys) index(organizationID, id string) int {
	return slices.IndexFunc(s.records[organizationID], func(record entities.Survey) bool { return record.ID == id })
}
