package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	ErrConflict = errors.New("entity conflicts with an existing record")

	// ErrMutationInFlight is returned when a second mutation targets an id whose
	// previous optimistic mutation has not settled yet.
	ErrMutationInFlight = errors.New("a mutation for this entity is still in flight")

	ErrWorkspaceNotOpen = errors.New("workspace is not open for this organization")

	ErrPermissionDenied = errors.New("permission denied")

	ErrInvalidTrackingCode = errors.New("invalid feedback link")

	ErrRateLimited = errors.New("too many requests, please try again later")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ValidationError carrega os erros de entrada por campo. Ele nunca chega ao
// mutator: é produzido pelas funções Parse* na fronteira de validação.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// orNil devolve nil quando nenhum campo falhou, para que o chamador possa
// retornar o resultado diretamente como error.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// ############################################################
// ############ EVENTOS DE ALTERAÇÃO (REALTIME) ###############
// ############################################################

type EntityKind string

const (
	KindGroup    EntityKind = "group"
	KindLocation EntityKind = "location"
	KindUser     EntityKind = "user"
)

type ChangeOperation string

const (
	OperationUpsert ChangeOperation = "upsert"
	OperationDelete ChangeOperation = "delete"
)

// ChangeEvent é o envelope trafegado no change feed. Record carrega a
// entidade serializada apenas para upserts.
type ChangeEvent struct {
	EventID        string          `json:"event_id"`
	Kind           EntityKind      `json:"kind"`
	Operation      ChangeOperation `json:"operation"`
	OrganizationID string          `json:"organization_id"`
	ID             string          `json:"id"`
	Record         json.RawMessage `json:"record,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (e ChangeEvent) Validate() error {
	switch e.Kind {
	case KindGroup, KindLocation, KindUser:
	default:
		return fmt.Errorf("unknown entity kind %q", e.Kind)
	}

	switch e.Operation {
	case OperationUpsert:
		if len(e.Record) == 0 {
			return fmt.Errorf("upsert event for %s %s has no record", e.Kind, e.ID)
		}
	case OperationDelete:
	default:
		return fmt.Errorf("unknown change operation %q", e.Operation)
	}

	if e.OrganizationID == "" || e.ID == "" {
		return fmt.Errorf("change event requires organization_id and id")
	}

	return nil
}
