package test_seeder

import (
	"context"
	"fmt"

	"feedbackflow/src/domain/entities"
)

// InsertOrganization cria a organização e devolve o id gerado.
func (ts TestSeeder) InsertOrganization(ctx context.Context, name string) string {
	var id string
	err := ts.pool.QueryRow(ctx, `INSERT INTO organizations (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertOrganization failed: %v", err))
	}
	return id
}

func (ts TestSeeder) InsertGroup(ctx context.Context, group *entities.Group) {
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO groups (organization_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		group.OrganizationID,
		group.Name,
		group.Description,
		group.CreatedAt,
		group.UpdatedAt,
	).Scan(&group.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertGroup failed: %v", err))
	}
}

func (ts TestSeeder) InsertLocation(ctx context.Context, location *entities.Location) {
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO locations (organization_id, name, address, city, state, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		location.OrganizationID,
		location.Name,
		location.Address,
		location.City,
		location.State,
		location.Country,
		location.CreatedAt,
		location.UpdatedAt,
	).Scan(&location.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertLocation failed: %v", err))
	}
}

// InsertUser ignora group_id e location_id vazios.
func (ts TestSeeder) InsertUser(ctx context.Context, user *entities.User) {
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO profiles (organization_id, email, full_name, role, group_id, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8) RETURNING id`,
		user.OrganizationID,
		user.Email,
		user.FullName,
		user.Role,
		user.GroupID,
		user.LocationID,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertUser failed: %v", err))
	}
}

// InsertSurvey grava a pesquisa com perguntas e atribuições vazias.
func (ts TestSeeder) InsertSurvey(ctx context.Context, survey *entities.Survey) {
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO surveys (organization_id, title, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		survey.OrganizationID,
		survey.Title,
		survey.Description,
		survey.IsActive,
		survey.CreatedAt,
		survey.UpdatedAt,
	).Scan(&survey.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertSurvey failed: %v", err))
	}
}

func (ts TestSeeder) CountAuditLogs(ctx context.Context, organizationID string) int {
	var count int
	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM audit_logs WHERE organization_id = $1`, organizationID).Scan(&count)
	if err != nil {
		panic(fmt.Sprintf("Seeder.CountAuditLogs failed: %v", err))
	}
	return count
}

func (ts TestSeeder) CountFeedback(ctx context.Context, organizationID string) int {
	var count int
	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM feedback_responses WHERE organization_id = $1`, organizationID).Scan(&count)
	if err != nil {
		panic(fmt.Sprintf("Seeder.CountFeedback failed: %v", err))
	}
	return count
}
