package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/postgres"
)

const signatureColumns = `id, organization_id, user_id, survey_id, tracking_code, style, created_at, updated_at`

type SignatureRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewSignatureRepository(client *postgres.ReadWriteClient) *SignatureRepository {
	return &SignatureRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanSignature(row pgx.CollectableRow) (entities.Signature, error) {
	var signature entities.Signature
	err := row.Scan(
		&signature.ID,
		&signature.OrganizationID,
		&signature.UserID,
		&signature.SurveyID,
		&signature.TrackingCode,
		&signature.Style,
		&signature.CreatedAt,
		&signature.UpdatedAt,
	)
	return signature, err
}

func (r *SignatureRepository) ListByUser(ctx context.Context, organizationID string, userID string) ([]entities.Signature, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+signatureColumns+` FROM signatures WHERE organization_id = $1 AND user_id = $2 ORDER BY created_at, id`,
		organizationID, userID)
	if err != nil {
		return nil, fmt.Errorf("SignatureRepository.ListByUser - failed to query signatures: %w", err)
	}

	signatures, err := pgx.CollectRows(rows, scanSignature)
	if err != nil {
		return nil, fmt.Errorf("SignatureRepository.ListByUser - failed to scan signatures: %w", err)
	}
	return signatures, nil
}

func (r *SignatureRepository) Get(ctx context.Context, organizationID string, id string) (entities.Signature, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+signatureColumns+` FROM signatures WHERE id = $1 AND organization_id = $2`,
		id, organizationID)
	if err != nil {
		return entities.Signature{}, fmt.Errorf("SignatureRepository.Get - failed to query signature %s: %w", id, err)
	}

	signature, err := pgx.CollectExactlyOneRow(rows, scanSignature)
	if err != nil {
		return entities.Signature{}, mapWriteError("SignatureRepository.Get", err)
	}
	return signature, nil
}

// Create exige que a pesquisa e o dono pertençam à organização da assinatura.
func (r *SignatureRepository) Create(ctx context.Context, signature entities.Signature) (entities.Signature, error) {
	if err := ensureSameOrganization(ctx, r.writePool, "SignatureRepository.Create", signature.OrganizationID,
		orgReference{field: "survey_id", table: "surveys", id: signature.SurveyID},
		orgReference{field: "user_id", table: "profiles", id: signature.UserID},
	); err != nil {
		return entities.Signature{}, err
	}

	rows, err := r.writePool.Query(ctx, `
		INSERT INTO signatures (organization_id, user_id, survey_id, tracking_code, style)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING `+signatureColumns,
		signature.OrganizationID,
		signature.UserID,
		signature.SurveyID,
		signature.TrackingCode,
		signature.Style,
	)
	if err != nil {
		return entities.Signature{}, mapWriteError("SignatureRepository.Create", err)
	}

	saved, err := pgx.CollectExactlyOneRow(rows, scanSignature)
	if err != nil {
		return entities.Signature{}, mapWriteError("SignatureRepository.Create", err)
	}
	return saved, nil
}
