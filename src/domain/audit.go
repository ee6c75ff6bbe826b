package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type AuditAction string

const (
	AuditUserLogin       AuditAction = "user.login"
	AuditUserLogout      AuditAction = "user.logout"
	AuditSurveyCreate    AuditAction = "survey.create"
	AuditSurveyUpdate    AuditAction = "survey.update"
	AuditSurveyDelete    AuditAction = "survey.delete"
	AuditFeedbackSubmit  AuditAction = "feedback.submit"
	AuditSignatureCreate AuditAction = "signature.create"
)

// Verbos usados pelas escritas das coleções (group, location, user).
const (
	AuditVerbCreate = "create"
	AuditVerbUpdate = "update"
	AuditVerbDelete = "delete"
)

// AuditActionFor monta a ação de uma escrita de coleção, p.ex. "group.create".
func AuditActionFor(kind EntityKind, verb string) AuditAction {
	return AuditAction(string(kind) + "." + verb)
}

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditFilter restringe a listagem do audit log. Campos zero não filtram.
type AuditFilter struct {
	Action AuditAction
	UserID string
	Before time.Time
	Limit  int
}

// ParseAuditFilter valida os parâmetros de query da listagem.
func ParseAuditFilter(action, userID, before, limit string) (AuditFilter, error) {
	v := &ValidationError{}
	filter := AuditFilter{
		Action: AuditAction(strings.TrimSpace(action)),
		UserID: strings.TrimSpace(userID),
		Limit:  DefaultAuditLimit,
	}

	if filter.Action != "" && !strings.Contains(string(filter.Action), ".") {
		v.add("action", "action must look like <entity>.<verb>")
	}

	if before != "" {
		at, err := time.Parse(time.RFC3339, before)
		if err != nil {
			v.add("before", "must be an RFC3339 timestamp")
		}
		filter.Before = at
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxAuditLimit {
			v.add("limit", fmt.Sprintf("limit must be between 1 and %d", MaxAuditLimit))
		} else {
			filter.Limit = n
		}
	}

	return filter, v.orNil()
}
