package signature

import (
	"context"
	"fmt"
	"log/slog"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/tracking"
)

type Repository interface {
	ListByUser(ctx context.Context, organizationID string, userID string) ([]entities.Signature, error)
	Get(ctx context.Context, organizationID string, id string) (entities.Signature, error)
	Create(ctx context.Context, signature entities.Signature) (entities.Signature, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (entities.User, error)
}

type Auditor interface {
	Record(ctx context.Context, organizationID string, action domain.AuditAction, metadata map[string]any)
}

// SignatureService salva as assinaturas de cada usuário. O tracking code é
// emitido no servidor a partir do perfil do dono; o cliente só escolhe a
// pesquisa e o estilo.
type SignatureService struct {
	logger     *slog.Logger
	repository Repository
	users      UserFinder
	auditor    Auditor
	baseURL    string
}

func NewSignatureService(logger *slog.Logger, repository Repository, users UserFinder, auditor Auditor, baseURL string) *SignatureService {
	return &SignatureService{
		logger:     logger,
		repository: repository,
		users:      users,
		auditor:    auditor,
		baseURL:    baseURL,
	}
}

func (s *SignatureService) List(ctx context.Context, organizationID string, userID string) ([]entities.Signature, error) {
	signatures, err := s.repository.ListByUser(ctx, organizationID, userID)
	if err != nil {
		return nil, fmt.Errorf("SignatureService.List - %w", err)
	}
	return signatures, nil
}

func (s *SignatureService) Create(ctx context.Context, organizationID string, userID string, input domain.SignatureInput) (entities.Signature, error) {
	draft, err := domain.ParseSignatureDraft(input)
	if err != nil {
		return entities.Signature{}, err
	}
	style, err := Normalize(draft.Style)
	if err != nil {
		return entities.Signature{}, err
	}

	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return entities.Signature{}, fmt.Errorf("SignatureService.Create - %w", err)
	}
	if owner.OrganizationID != organizationID {
		return entities.Signature{}, domain.ErrPermissionDenied
	}
	if owner.GroupID == "" || owner.LocationID == "" {
		return entities.Signature{}, &domain.ValidationError{Fields: map[string]string{
			"user": "a group and a location must be assigned before creating a signature",
		}}
	}

	token, err := tracking.Encode(tracking.Identifiers{
		SurveyID:   draft.SurveyID,
		UserID:     owner.ID,
		GroupID:    owner.GroupID,
		LocationID: owner.LocationID,
	})
	if err != nil {
		return entities.Signature{}, fmt.Errorf("SignatureService.Create - %w", err)
	}

	saved, err := s.repository.Create(ctx, entities.Signature{
		OrganizationID: organizationID,
		UserID:         owner.ID,
		SurveyID:       draft.SurveyID,
		TrackingCode:   token,
		Style:          style,
	})
	if err != nil {
		return entities.Signature{}, fmt.Errorf("SignatureService.Create - %w", err)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, organizationID, domain.AuditSignatureCreate, map[string]any{
			"signature_id": saved.ID,
			"survey_id":    saved.SurveyID,
		})
	}
	s.logger.Info("Signature created", "organization_id", organizationID, "signature_id", saved.ID)
	return saved, nil
}

// RenderHTML devolve o HTML de uma assinatura salva. Assinaturas de outro
// usuário são tratadas como inexistentes.
func (s *SignatureService) RenderHTML(ctx context.Context, organizationID string, userID string, id string) (string, error) {
	saved, err := s.repository.Get(ctx, organizationID, id)
	if err != nil {
		return "", fmt.Errorf("SignatureService.RenderHTML - %w", err)
	}
	if saved.UserID != userID {
		return "", fmt.Errorf("SignatureService.RenderHTML - signature %s: %w", id, domain.ErrEntityNotFound)
	}
	return Render(saved.Style, saved.TrackingCode, s.baseURL)
}
