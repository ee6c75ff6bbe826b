package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain"
)

// orgReference é uma referência opcional (parent_group_id, group_id,
// location_id) que precisa apontar para um registro da mesma organização.
// table é sempre uma constante do pacote.
type orgReference struct {
	field string
	table string
	id    string
}

// ensureSameOrganization complementa a FK global, que só garante que o id
// existe em alguma organização. Ids vazios são ignorados. A consulta usa o pool
// de escrita para enxergar registros recém-criados.
func ensureSameOrganization(ctx context.Context, pool *pgxpool.Pool, op string, organizationID string, refs ...orgReference) error {
	fields := make(map[string]string)
	for _, ref := range refs {
		if ref.id == "" {
			continue
		}

		var found bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+ref.table+` WHERE id = $1 AND organization_id = $2)`,
			ref.id, organizationID,
		).Scan(&found)
		if err != nil {
			return fmt.Errorf("%s - failed to check %s: %w", op, ref.field, err)
		}
		if !found {
			fields[ref.field] = "referenced record does not exist"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func optionalID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// ensureAllInOrganization confere uma lista de ids (sem repetição) de uma vez.
func ensureAllInOrganization(ctx context.Context, pool *pgxpool.Pool, op string, organizationID string, field string, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var found int
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM `+table+` WHERE organization_id = $1 AND id = ANY($2)`,
		organizationID, ids,
	).Scan(&found)
	if err != nil {
		return fmt.Errorf("%s - failed to check %s: %w", op, field, err)
	}
	if found != len(ids) {
		return &domain.ValidationError{Fields: map[string]string{field: "referenced record does not exist"}}
	}
	return nil
}
