package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/postgres"
)

const surveyColumns = `id, organization_id, title, description, questions, branding, assigned_to, is_active, created_by, created_at, updated_at`

type SurveyRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewSurveyRepository(client *postgres.ReadWriteClient) *SurveyRepository {
	return &SurveyRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanSurvey(row pgx.CollectableRow) (entities.Survey, error) {
	var survey entities.Survey
	var createdBy pgtype.Text
	err := row.Scan(
		&survey.ID,
		&survey.OrganizationID,
		&survey.Title,
		&survey.Description,
		&survey.Questions,
		&survey.Branding,
		&survey.AssignedTo,
		&survey.IsActive,
		&createdBy,
		&survey.CreatedAt,
		&survey.UpdatedAt,
	)
	survey.CreatedBy = postgres.TextValue(createdBy)
	if survey.Questions == nil {
		survey.Questions = []entities.SurveyQuestion{}
	}
	return survey, err
}

// checkAssignment garante que a pesquisa só é atribuída a registros da própria organização.
func (r *SurveyRepository) checkAssignment(ctx context.Context, op, organizationID string, assignment entities.SurveyAssignment) error {
	if err := ensureAllInOrganization(ctx, r.writePool, op, organizationID, "assigned_to.groups", "groups", assignment.Groups); err != nil {
		return err
	}
	if err := ensureAllInOrganization(ctx, r.writePool, op, organizationID, "assigned_to.locations", "locations", assignment.Locations); err != nil {
		return err
	}
	return ensureAllInOrganization(ctx, r.writePool, op, organizationID, "assigned_to.users", "profiles", assignment.Users)
}

func (r *SurveyRepository) List(ctx context.Context, organizationID string) ([]entities.Survey, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE organization_id = $1 ORDER BY created_at, id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("SurveyRepository.List - failed to query surveys: %w", err)
	}

	surveys, err := pgx.CollectRows(rows, scanSurvey)
	if err != nil {
		return nil, fmt.Errorf("SurveyRepository.List - failed to scan surveys: %w", err)
	}
	return surveys, nil
}

func (r *SurveyRepository) Get(ctx context.Context, organizationID string, id string) (entities.Survey, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE id = $1 AND organization_id = $2`,
		id, organizationID)
	if err != nil {
		return entities.Survey{}, fmt.Errorf("SurveyRepository.Get - failed to query survey %s: %w", id, err)
	}

	survey, err := pgx.CollectExactlyOneRow(rows, scanSurvey)
	if err != nil {
		return entities.Survey{}, mapWriteError("SurveyRepository.Get", err)
	}
	return survey, nil
}

// Create grava a pesquisa. createdBy vazio (ator desconhecido) fica NULL.
func (r *SurveyRepository) Create(ctx context.Context, organizationID string, createdBy string, draft domain.SurveyDraft) (entities.Survey, error) {
	if err := r.checkAssignment(ctx, "SurveyRepository.Create", organizationID, draft.AssignedTo); err != nil {
		return entities.Survey{}, err
	}
	if err := ensureSameOrganization(ctx, r.writePool, "SurveyRepository.Create", organizationID,
		orgReference{field: "created_by", table: "profiles", id: createdBy},
	); err != nil {
		return entities.Survey{}, err
	}

	questions := draft.Questions
	if questions == nil {
		questions = []entities.SurveyQuestion{}
	}

	rows, err := r.writePool.Query(ctx, `
		INSERT INTO surveys (organization_id, title, description, questions, branding, assigned_to, is_active, created_by)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7, $8)
		RETURNING `+surveyColumns,
		organizationID,
		draft.Title,
		draft.Description,
		questions,
		draft.Branding,
		draft.AssignedTo,
		draft.IsActive,
		postgres.NewNullString(createdBy),
	)
	if err != nil {
		return entities.Survey{}, mapWriteError("SurveyRepository.Create", err)
	}

	survey, err := pgx.CollectExactlyOneRow(rows, scanSurvey)
	if err != nil {
		return entities.Survey{}, mapWriteError("SurveyRepository.Create", err)
	}
	return survey, nil
}

// Update substitui por inteiro os campos JSON presentes no patch.
func (r *SurveyRepository) Update(ctx context.Context, organizationID string, id string, patch domain.SurveyPatch) (entities.Survey, error) {
	if patch.AssignedTo != nil {
		if err := r.checkAssignment(ctx, "SurveyRepository.Update", organizationID, *patch.AssignedTo); err != nil {
			return entities.Survey{}, err
		}
	}

	rows, err := r.writePool.Query(ctx, `
		UPDATE surveys SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			questions   = COALESCE($5::jsonb, questions),
			branding    = COALESCE($6::jsonb, branding),
			assigned_to = COALESCE($7::jsonb, assigned_to),
			is_active   = COALESCE($8, is_active),
			updated_at  = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+surveyColumns,
		id,
		organizationID,
		patch.Title,
		patch.Description,
		patch.Questions,
		patch.Branding,
		patch.AssignedTo,
		patch.IsActive,
	)
	if err != nil {
		return entities.Survey{}, mapWriteError("SurveyRepository.Update", err)
	}

	survey, err := pgx.CollectExactlyOneRow(rows, scanSurvey)
	if err != nil {
		return entities.Survey{}, mapWriteError("SurveyRepository.Update", err)
	}
	return survey, nil
}

func (r *SurveyRepository) Delete(ctx context.Context, organizationID string, id string) error {
	tag, err := r.writePool.Exec(ctx, `DELETE FROM surveys WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("SurveyRepository.Delete - failed to delete survey %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SurveyRepository.Delete - survey %s: %w", id, domain.ErrEntityNotFound)
	}
	return nil
}

// DeleteMany remove as pesquisas da organização em um único comando e devolve
// os ids que de fato existiam.
func (r *SurveyRepository) DeleteMany(ctx context.Context, organizationID string, ids []string) ([]string, error) {
	rows, err := r.writePool.Query(ctx,
		`DELETE FROM surveys WHERE organization_id = $1 AND id = ANY($2) RETURNING id`,
		organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("SurveyRepository.DeleteMany - failed to delete surveys: %w", err)
	}

	deleted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("SurveyRepository.DeleteMany - failed to collect ids: %w", err)
	}
	return deleted, nil
}
