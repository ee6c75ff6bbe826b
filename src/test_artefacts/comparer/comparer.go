// Package comparer reúne as opções de go-cmp usadas com BeComparableTo.
package comparer

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TimeWithin aceita horários a até tolerance um do outro. O Postgres guarda
// microssegundos, então valores lidos do banco diferem dos gerados em Go.
func TimeWithin(tolerance time.Duration) cmp.Option {
	return cmpopts.EquateApproxTime(tolerance)
}

// IgnoreTimestamps ignora CreatedAt e UpdatedAt de uma entidade.
func IgnoreTimestamps[T any]() cmp.Option {
	var zero T
	return cmpopts.IgnoreFields(zero, "CreatedAt", "UpdatedAt")
}

// JSONRawMessage compara payloads pelo conteúdo, sem depender da ordem das
// chaves nem da formatação.
func JSONRawMessage() cmp.Option {
	return cmp.Comparer(func(x, y json.RawMessage) bool {
		if len(bytes.TrimSpace(x)) == 0 || len(bytes.TrimSpace(y)) == 0 {
			return len(bytes.TrimSpace(x)) == len(bytes.TrimSpace(y))
		}

		var xValue, yValue any
		if json.Unmarshal(x, &xValue) != nil || json.Unmarshal(y, &yValue) != nil {
			return false
		}
		return cmp.Equal(xValue, yValue)
	})
}
