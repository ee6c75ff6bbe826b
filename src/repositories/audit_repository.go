package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/postgres"
)

const auditColumns = `id, organization_id, user_id, action, metadata, ip_address, user_agent, created_at`

type AuditRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewAuditRepository(client *postgres.ReadWriteClient) *AuditRepository {
	return &AuditRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

func scanAuditLog(row pgx.CollectableRow) (entities.AuditLog, error) {
	var entry entities.AuditLog
	var userID, ipAddress, userAgent pgtype.Text
	err := row.Scan(
		&entry.ID,
		&entry.OrganizationID,
		&userID,
		&entry.Action,
		&entry.Metadata,
		&ipAddress,
		&userAgent,
		&entry.CreatedAt,
	)
	entry.UserID = postgres.TextValue(userID)
	entry.IPAddress = postgres.TextValue(ipAddress)
	entry.UserAgent = postgres.TextValue(userAgent)
	return entry, err
}

func (r *AuditRepository) Insert(ctx context.Context, entry entities.AuditLog) (entities.AuditLog, error) {
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}

	err := r.writePool.QueryRow(ctx, `
		INSERT INTO audit_logs (organization_id, user_id, action, metadata, ip_address, user_agent)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
		RETURNING id, created_at`,
		entry.OrganizationID,
		postgres.NewNullString(entry.UserID),
		entry.Action,
		entry.Metadata,
		postgres.NewNullString(entry.IPAddress),
		postgres.NewNullString(entry.UserAgent),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return entities.AuditLog{}, mapWriteError("AuditRepository.Insert", err)
	}
	return entry, nil
}

// List devolve as entradas mais recentes primeiro. Before funciona como cursor
// de paginação.
func (r *AuditRepository) List(ctx context.Context, organizationID string, filter domain.AuditFilter) ([]entities.AuditLog, error) {
	conditions := []string{"organization_id = $1"}
	args := []any{organizationID}

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, strings.ReplaceAll(condition, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Action != "" {
		add("action = ?", string(filter.Action))
	}
	if filter.UserID != "" {
		add("user_id = ?", filter.UserID)
	}
	if !filter.Before.IsZero() {
		add("created_at < ?", filter.Before)
	}

	limit := filter.Limit
	if limit <= 0 || limit > domain.MaxAuditLimit {
		limit = domain.DefaultAuditLimit
	}

	rows, err := r.readPool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE `+strings.Join(conditions, " AND ")+
			` ORDER BY created_at DESC, id DESC LIMIT `+strconv.Itoa(limit),
		args...)
	if err != nil {
		return nil, fmt.Errorf("AuditRepository.List - failed to query audit logs: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanAuditLog)
	if err != nil {
		return nil, fmt.Errorf("AuditRepository.List - failed to scan audit logs: %w", err)
	}
	return entries, nil
}
