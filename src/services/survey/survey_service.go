// Package survey cuida do CRUD das pesquisas de uma organização.
package survey

import (
	"context"
	"fmt"
	"log/slog"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/audit"
)

type Repository interface {
	List(ctx context.Context, organizationID string) ([]entities.Survey, error)
	Get(ctx context.Context, organizationID string, id string) (entities.Survey, error)
	Create(ctx context.Context, organizationID string, createdBy string, draft domain.SurveyDraft) (entities.Survey, error)
	Update(ctx context.Context, organizationID string, id string, patch domain.SurveyPatch) (entities.Survey, error)
	Delete(ctx context.Context, organizationID string, id string) error
	DeleteMany(ctx context.Context, organizationID string, ids []string) ([]string, error)
}

// Auditor grava uma entrada do audit log para a mutação confirmada.
type Auditor interface {
	Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any)
}

type SurveyService struct {
	logger     *slog.Logger
	repository Repository
	auditor    Auditor
}

func NewSurveyService(logger *slog.Logger, repository Repository, auditor Auditor) *SurveyService {
	return &SurveyService{logger: logger, repository: repository, auditor: auditor}
}

func (s *SurveyService) List(ctx context.Context, organizationID string) ([]entities.Survey, error) {
	surveys, err := s.repository.List(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("SurveyService.List - %w", err)
	}
	return surveys, nil
}

func (s *SurveyService) Get(ctx context.Context, organizationID string, id string) (entities.Survey, error) {
	found, err := s.repository.Get(ctx, organizationID, id)
	if err != nil {
		return entities.Survey{}, fmt.Errorf("SurveyService.Get - %w", err)
	}
	return found, nil
}

// Create valida a entrada e grava a pesquisa em nome do ator da requisição.
func (s *SurveyService) Create(ctx context.Context, organizationID string, input domain.SurveyInput) (entities.Survey, error) {
	draft, err := domain.ParseSurveyDraft(input)
	if err != nil {
		return entities.Survey{}, err
	}

	var createdBy string
	if actor, ok := audit.ActorFrom(ctx); ok {
		createdBy = actor.UserID
	}

	created, err := s.repository.Create(ctx, organizationID, createdBy, draft)
	if err != nil {
		return entities.Survey{}, fmt.Errorf("SurveyService.Create - %w", err)
	}

	s.record(ctx, organizationID, domain.AuditSurveyCreate, map[string]any{"survey_id": created.ID, "title": created.Title})
	s.logger.Info("Survey created", "organization_id", organizationID, "survey_id", created.ID)
	return created, nil
}

func (s *SurveyService) Update(ctx context.Context, organizationID string, id string, input domain.SurveyPatchInput) (entities.Survey, error) {
	patch, err := domain.ParseSurveyPatch(input)
	if err != nil {
		return entities.Survey{}, err
	}

	updated, err := s.repository.Update(ctx, organizationID, id, patch)
	if err != nil {
		return entities.Survey{}, fmt.Errorf("SurveyService.Update - %w", err)
	}

	s.record(ctx, organizationID, domain.AuditSurveyUpdate, map[string]any{"survey_id": id})
	return updated, nil
}

func (s *SurveyService) Delete(ctx context.Context, organizationID string, id string) error {
	if err := s.repository.Delete(ctx, organizationID, id); err != nil {
		return fmt.Errorf("SurveyService.Delete - %w", err)
	}

	s.record(ctx, organizationID, domain.AuditSurveyDelete, map[string]any{"survey_id": id})
	return nil
}

// DeleteMany apaga as pesquisas em lote e devolve os ids removidos. Ids que
// não existem na organização são ignorados; cada remoção gera sua entrada de
// auditoria.
func (s *SurveyService) DeleteMany(ctx context.Context, organizationID string, input domain.SurveyIDsInput) ([]string, error) {
	ids, err := domain.ParseSurveyIDs(input)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repository.DeleteMany(ctx, organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("SurveyService.DeleteMany - %w", err)
	}

	for _, id := range deleted {
		s.record(ctx, organizationID, domain.AuditSurveyDelete, map[string]any{"survey_id": id, "batch": true})
	}
	s.logger.Info("Surveys deleted",
		"organization_id", organizationID,
		"requested", len(ids),
		"deleted", len(deleted))

	if deleted == nil {
		deleted = []string{}
	}
	return deleted, nil
}

func (s *SurveyService) record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any) {
	if s.auditor != nil {
		s.auditor.Record(ctx, organizationID, action, metadata)
	}
}
