// Package audit registra as mutações feitas pelos usuários do dashboard.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
)

const writeTimeout = 5 * time.Second

// Actor identifica quem fez a requisição que originou a mutação.
type Actor struct {
	UserID         string
	OrganizationID string
	IPAddress      string
	UserAgent      string
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

type Repository interface {
	Insert(ctx context.Context, entry entities.AuditLog) (entities.AuditLog, error)
	List(ctx context.Context, organizationID string, filter domain.AuditFilter) ([]entities.AuditLog, error)
}

// Observer recebe o resultado de cada escrita ("written" ou "failed").
type Observer interface {
	ObserveAuditWrite(result string)
}

type AuditService struct {
	logger     *slog.Logger
	repository Repository
	observer   Observer
}

func NewAuditService(logger *slog.Logger, repository Repository, observer Observer) *AuditService {
	return &AuditService{logger: logger, repository: repository, observer: observer}
}

// Record grava a entrada com o ator do contexto. A mutação já foi confirmada
// quando Record roda, então uma falha aqui só é logada.
func (s *AuditService) Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any) {
	entry := entities.AuditLog{
		OrganizationID: organizationID,
		Action:         string(action),
		Metadata:       metadata,
	}
	if actor, ok := ActorFrom(ctx); ok {
		entry.UserID = actor.UserID
		entry.IPAddress = actor.IPAddress
		entry.UserAgent = actor.UserAgent
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if _, err := s.repository.Insert(writeCtx, entry); err != nil {
		s.observe("failed")
		s.logger.Error("Failed to write audit log",
			"organization_id", organizationID,
			"action", action,
			"error", err)
		return
	}
	s.observe("written")
}

func (s *AuditService) List(ctx context.Context, organizationID string, filter domain.AuditFilter) ([]entities.AuditLog, error) {
	entries, err := s.repository.List(ctx, organizationID, filter)
	if err != nil {
		return nil, fmt.Errorf("AuditService.List - %w", err)
	}
	return entries, nil
}

func (s *AuditService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveAuditWrite(result)
	}
}
