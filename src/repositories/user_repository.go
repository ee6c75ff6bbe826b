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

const profileColumns = `id, organization_id, email, full_name, role, group_id, location_id, created_at, updated_at`

// UserRepository persiste os usuários de uma organização na tabela profiles.
type UserRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewUserRepository(client *postgres.ReadWriteClient) *UserRepository {
	return &UserRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanUser(row pgx.CollectableRow) (entities.User, error) {
	var user entities.User
	var groupID, locationID pgtype.Text
	err := row.Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&groupID,
		&locationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	user.GroupID = postgres.TextValue(groupID)
	user.LocationID = postgres.TextValue(locationID)
	return user, err
}

func (r *UserRepository) List(ctx context.Context, organizationID string) ([]entities.User, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE organization_id = $1 ORDER BY created_at, id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.List - failed to query profiles: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.List - failed to scan profiles: %w", err)
	}
	return users, nil
}

// FindByID é usado pelo feedback para descobrir a organização do usuário do link.
func (r *UserRepository) FindByID(ctx context.Context, id string) (entities.User, error) {
	rows, err := r.readPool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		return entities.User{}, fmt.Errorf("UserRepository.FindByID - failed to query profile %s: %w", id, err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return entities.User{}, mapWriteError("UserRepository.FindByID", err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, organizationID string, draft domain.UserDraft) (entities.User, error) {
	if err := ensureSameOrganization(ctx, r.writePool, "UserRepository.Create", organizationID,
		orgReference{field: "group_id", table: "groups", id: draft.GroupID},
		orgReference{field: "location_id", table: "locations", id: draft.LocationID},
	); err != nil {
		return entities.User{}, err
	}

	rows, err := r.writePool.Query(ctx, `
		INSERT INTO profiles (organization_id, email, full_name, role, group_id, location_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+profileColumns,
		organizationID,
		draft.Email,
		draft.FullName,
		string(draft.Role),
		postgres.NewNullString(draft.GroupID),
		postgres.NewNullString(draft.LocationID),
	)
	if err != nil {
		return entities.User{}, mapWriteError("UserRepository.Create", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return entities.User{}, mapWriteError("UserRepository.Create", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, organizationID string, id string, patch domain.UserPatch) (entities.User, error) {
	var role *string
	if patch.Role != nil {
		value := string(*patch.Role)
		role = &value
	}
	if err := ensureSameOrganization(ctx, r.writePool, "UserRepository.Update", organizationID,
		orgReference{field: "group_id", table: "groups", id: optionalID(patch.GroupID)},
		orgReference{field: "location_id", table: "locations", id: optionalID(patch.LocationID)},
	); err != nil {
		return entities.User{}, err
	}

	rows, err := r.writePool.Query(ctx, `
		UPDATE profiles SET
			email       = COALESCE($3, email),
			full_name   = COALESCE($4, full_name),
			role        = COALESCE($5, role),
			group_id    = CASE WHEN $6::text IS NULL THEN group_id ELSE NULLIF($6::text, '') END,
			location_id = CASE WHEN $7::text IS NULL THEN location_id ELSE NULLIF($7::text, '') END,
			updated_at  = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+profileColumns,
		id, organizationID, patch.Email, patch.FullName, role, patch.GroupID, patch.LocationID,
	)
	if err != nil {
		return entities.User{}, mapWriteError("UserRepository.Update", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return entities.User{}, mapWriteError("UserRepository.Update", err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, organizationID string, id string) error {
	tag, err := r.writePool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("UserRepository.Delete - failed to delete profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UserRepository.Delete - profile %s: %w", id, domain.ErrEntityNotFound)
	}
	return nil
}
