// Package test_seeder prepara o banco para specs de repositório.
package test_seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seededTables em ordem de dependência: filhos antes dos pais.
var seededTables = []string{
	"audit_logs", "signatures", "feedback_responses", "surveys",
	"profiles", "locations", "groups", "organizations",
}

type TestSeeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) TestSeeder {
	return TestSeeder{pool: pool}
}

// TruncateTables limpa todas as tabelas da aplicação em um único comando.
func (ts TestSeeder) TruncateTables(ctx context.Context) {
	statement := "TRUNCATE TABLE " + strings.Join(seededTables, ", ")
	if _, err := ts.pool.Exec(ctx, statement); err != nil {
		panic(fmt.Sprintf("Seeder.TruncateTables failed: %v", err))
	}
}
