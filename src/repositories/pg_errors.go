package repositories

import (
	"fmt"

	"feedbackflow/src/domain"
	"feedbackflow/src/infra/postgres"
)

// mapWriteError traduz violações de constraint para os erros de domínio.
// Uma referência inexistente vira erro de validação no campo da FK.
func mapWriteError(op string, err error) error {
	switch {
	case postgres.IsNoRows(err):
		return fmt.Errorf("%s: %w", op, domain.ErrEntityNotFound)
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case postgres.IsForeignKeyViolation(err):
		return &domain.ValidationError{Fields: map[string]string{
			postgres.ForeignKeyColumn(err): "referenced record does not exist",
		}}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
