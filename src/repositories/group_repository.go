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

const groupColumns = `id, organization_id, name, description, parent_group_id, created_at, updated_at`

type GroupRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewGroupRepository(client *postgres.ReadWriteClient) *GroupRepository {
	return &GroupRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanGroup(row pgx.CollectableRow) (entities.Group, error) {
	var group entities.Group
	var parent pgtype.Text
	err := row.Scan(
		&group.ID,
		&group.OrganizationID,
		&group.Name,
		&group.Description,
		&parent,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	group.ParentGroupID = postgres.TextValue(parent)
	return group, err
}

func (r *GroupRepository) List(ctx context.Context, organizationID string) ([]entities.Group, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE organization_id = $1 ORDER BY created_at, id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("GroupRepository.List - failed to query groups: %w", err)
	}

	groups, err := pgx.CollectRows(rows, scanGroup)
	if err != nil {
		return nil, fmt.Errorf("GroupRepository.List - failed to scan groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) Create(ctx context.Context, organizationID string, draft domain.GroupDraft) (entities.Group, error) {
	if err := ensureSameOrganization(ctx, r.writePool, "GroupRepository.Create", organizationID,
		orgReference{field: "parent_group_id", table: "groups", id: draft.ParentGroupID},
	); err != nil {
		return entities.Group{}, err
	}

	rows, err := r.writePool.Query(ctx, `
		INSERT INTO groups (organization_id, name, description, parent_group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+groupColumns,
		organizationID,
		draft.Name,
		draft.Description,
		postgres.NewNullString(draft.ParentGroupID),
	)
	if err != nil {
		return entities.Group{}, mapWriteError("GroupRepository.Create", err)
	}

	group, err := pgx.CollectExactlyOneRow(rows, scanGroup)
	if err != nil {
		return entities.Group{}, mapWriteError("GroupRepository.Create", err)
	}
	return group, nil
}

// Update aplica apenas os campos presentes no patch. parent_group_id vazio
// remove o grupo pai.
func (r *GroupRepository) Update(ctx context.Context, organizationID string, id string, patch domain.GroupPatch) (entities.Group, error) {
	if patch.ParentGroupID != nil && *patch.ParentGroupID == id {
		return entities.Group{}, &domain.ValidationError{Fields: map[string]string{"parent_group_id": "a group cannot be its own parent"}}
	}
	if err := ensureSameOrganization(ctx, r.writePool, "GroupRepository.Update", organizationID,
		orgReference{field: "parent_group_id", table: "groups", id: optionalID(patch.ParentGroupID)},
	); err != nil {
		return entities.Group{}, err
	}

	rows, err := r.writePool.Query(ctx, `
		UPDATE groups SET
			name            = COALESCE($3, name),
			description     = COALESCE($4, description),
			parent_group_id = CASE WHEN $5::text IS NULL THEN parent_group_id ELSE NULLIF($5::text, '') END,
			updated_at      = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+groupColumns,
		id,
		organizationID,
		patch.Name,
		patch.Description,
		patch.ParentGroupID,
	)
	if err != nil {
		return entities.Group{}, mapWriteError("GroupRepository.Update", err)
	}

	group, err := pgx.CollectExactlyOneRow(rows, scanGroup)
	if err != nil {
		return entities.Group{}, mapWriteError("GroupRepository.Update", err)
	}
	return group, nil
}

func (r *GroupRepository) Delete(ctx context.Context, organizationID string, id string) error {
	tag, err := r.writePool.Exec(ctx, `DELETE FROM groups WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("GroupRepository.Delete - failed to delete group %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("GroupRepository.Delete - group %s: %w", id, domain.ErrEntityNotFound)
	}
	return nil
}
