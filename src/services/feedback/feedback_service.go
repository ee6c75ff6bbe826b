// Package feedback atende a página pública de feedback e as estatísticas do
// dashboard.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/tracking"
)

const (
	DefaultSubmissionLimit  = 100
	DefaultSubmissionWindow = time.Minute
)

type Repository interface {
	Insert(ctx context.Context, response entities.FeedbackResponse) (entities.FeedbackResponse, error)
	Stats(ctx context.Context, organizationID string, filter domain.FeedbackFilter) (entities.FeedbackStats, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Observer recebe o resultado de cada decode e de cada envio.
type Observer interface {
	ObserveTrackingDecode(valid bool)
	ObserveSubmission(result string)
}

// Auditor grava a entrada do audit log de cada resposta aceita.
type Auditor interface {
	Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any)
}

type FeedbackService struct {
	logger     *slog.Logger
	repository Repository
	limiter    RateLimiter
	observer   Observer
	auditor    Auditor
	limit      int
	window     time.Duration
}

func NewFeedbackService(logger *slog.Logger, repository Repository, limiter RateLimiter, observer Observer, auditor Auditor, limit int, window time.Duration) *FeedbackService {
	if limit <= 0 {
		limit = DefaultSubmissionLimit
	}
	if window <= 0 {
		window = DefaultSubmissionWindow
	}

	return &FeedbackService{
		logger:     logger,
		repository: repository,
		limiter:    limiter,
		observer:   observer,
		auditor:    auditor,
		limit:      limit,
		window:     window,
	}
}

// Resolve decodifica o token de /feedback/{token}.
func (s *FeedbackService) Resolve(token string) (tracking.Context, error) {
	decoded, ok := tracking.Decode(token)
	if s.observer != nil {
		s.observer.ObserveTrackingDecode(ok)
	}
	if !ok {
		return tracking.Context{}, domain.ErrInvalidTrackingCode
	}
	return decoded, nil
}

// Submit grava uma resposta. clientKey identifica o respondente (IP) para o
// rate limit, que vale por token e cliente.
func (s *FeedbackService) Submit(ctx context.Context, token string, clientKey string, input domain.FeedbackInput) (entities.FeedbackResponse, error) {
	decoded, err := s.Resolve(token)
	if err != nil {
		s.observe("invalid_link")
		return entities.FeedbackResponse{}, err
	}

	allowed, err := s.limiter.Allow(ctx, "feedback:"+token+":"+clientKey, s.limit, s.window)
	if err != nil {
		// Sem Redis o envio segue; perder uma resposta é pior que aceitar excesso.
		s.logger.Warn("Rate limiter unavailable, accepting submission", "error", err)
	} else if !allowed {
		s.observe("rate_limited")
		return entities.FeedbackResponse{}, domain.ErrRateLimited
	}

	draft, err := domain.ParseFeedback(input)
	if err != nil {
		s.observe("invalid")
		return entities.FeedbackResponse{}, err
	}

	saved, err := s.repository.Insert(ctx, entities.FeedbackResponse{
		SurveyID:     decoded.SurveyID,
		UserID:       decoded.UserID,
		GroupID:      decoded.GroupID,
		LocationID:   decoded.LocationID,
		Rating:       draft.Rating,
		Reason:       draft.Reason,
		Comment:      draft.Comment,
		Answers:      draft.Answers,
		Contact:      draft.Contact,
		Email:        draft.Email,
		TrackingCode: token,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			// O usuário ou a pesquisa do link não existem (ou são de outra
			// organização): o link é tratado como inválido.
			s.observe("invalid_link")
			return entities.FeedbackResponse{}, domain.ErrInvalidTrackingCode
		}
		s.observe("error")
		return entities.FeedbackResponse{}, fmt.Errorf("FeedbackService.Submit - %w", err)
	}

	s.observe("accepted")
	if s.auditor != nil {
		s.auditor.Record(ctx, saved.OrganizationID, domain.AuditFeedbackSubmit, map[string]any{
			"feedback_id": saved.ID,
			"survey_id":   saved.SurveyID,
			"rating":      saved.Rating,
		})
	}
	s.logger.Info("Feedback received",
		"organization_id", saved.OrganizationID,
		"survey_id", saved.SurveyID,
		"rating", saved.Rating)

	return saved, nil
}

func (s *FeedbackService) Stats(ctx context.Context, organizationID string, filter domain.FeedbackFilter) (entities.FeedbackStats, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return entities.FeedbackStats{}, &domain.ValidationError{Fields: map[string]string{"to": "end date must not be before start date"}}
	}

	stats, err := s.repository.Stats(ctx, organizationID, filter)
	if err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackService.Stats - %w", err)
	}
	return stats, nil
}

func (s *FeedbackService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveSubmission(result)
	}
}
