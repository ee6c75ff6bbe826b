package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/postgres"
)

const locationColumns = `id, organization_id, name, address, city, state, country, created_at, updated_at`

type LocationRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewLocationRepository(client *postgres.ReadWriteClient) *LocationRepository {
	return &LocationRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanLocation(row pgx.CollectableRow) (entities.Location, error) {
	var location entities.Location
	err := row.Scan(
		&location.ID,
		&location.OrganizationID,
		&location.Name,
		&location.Address,
		&location.City,
		&location.State,
		&location.Country,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	return location, err
}

func (r *LocationRepository) List(ctx context.Context, organizationID string) ([]entities.Location, error) {
	rows, err := r.readPool.Query(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE organization_id = $1 ORDER BY created_at, id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("LocationRepository.List - failed to query locations: %w", err)
	}

	locations, err := pgx.CollectRows(rows, scanLocation)
	if err != nil {
		return nil, fmt.Errorf("LocationRepository.List - failed to scan locations: %w", err)
	}
	return locations, nil
}

func (r *LocationRepository) Create(ctx context.Context, organizationID string, draft domain.LocationDraft) (entities.Location, error) {
	rows, err := r.writePool.Query(ctx, `
		INSERT INTO locations (organization_id, name, address, city, state, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+locationColumns,
		organizationID, draft.Name, draft.Address, draft.City, draft.State, draft.Country,
	)
	if err != nil {
		return entities.Location{}, mapWriteError("LocationRepository.Create", err)
	}

	location, err := pgx.CollectExactlyOneRow(rows, scanLocation)
	if err != nil {
		return entities.Location{}, mapWriteError("LocationRepository.Create", err)
	}
	return location, nil
}

func (r *LocationRepository) Update(ctx context.Context, organizationID string, id string, patch domain.LocationPatch) (entities.Location, error) {
	rows, err := r.writePool.Query(ctx, `
		UPDATE locations SET
			name       = COALESCE($3, name),
			address    = COALESCE($4, address),
			city       = COALESCE($5, city),
			state      = COALESCE($6, state),
			country    = COALESCE($7, country),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+locationColumns,
		id, organizationID, patch.Name, patch.Address, patch.City, patch.State, patch.Country,
	)
	if err != nil {
		return entities.Location{}, mapWriteError("LocationRepository.Update", err)
	}

	location, err := pgx.CollectExactlyOneRow(rows, scanLocation)
	if err != nil {
		return entities.Location{}, mapWriteError("LocationRepository.Update", err)
	}
	return location, nil
}

func (r *LocationRepository) Delete(ctx context.Context, organizationID string, id string) error {
	tag, err := r.writePool.Exec(ctx, `DELETE FROM locations WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("LocationRepository.Delete - failed to delete location %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("LocationRepository.Delete - location %s: %w", id, domain.ErrEntityNotFound)
	}
	return nil
}
