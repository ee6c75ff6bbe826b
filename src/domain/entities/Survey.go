package entities

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multipleChoice"
)

// ConditionalLogic mostra a pergunta só quando a resposta de DependsOn
// for igual a ShowIf.
type ConditionalLogic struct {
	DependsOn string          `json:"depends_on"`
	ShowIf    json.RawMessage `json:"show_if"`
}

type SurveyQuestion struct {
	ID               string            `json:"id"`
	Type             QuestionType      `json:"type"`
	Text             string            `json:"text"`
	Required         bool              `json:"required"`
	Options          []string          `json:"options,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditional_logic,omitempty"`
}

type SurveyBranding struct {
	Logo           string `json:"logo,omitempty"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// SurveyAssignment lista quem recebe a pesquisa. Listas vazias não restringem.
type SurveyAssignment struct {
	Groups    []string `json:"groups,omitempty"`
	Locations []string `json:"locations,omitempty"`
	Users     []string `json:"users,omitempty"`
}

type Survey struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Questions      []SurveyQuestion `json:"questions"`
	Branding       SurveyBranding   `json:"branding"`
	CreatedBy      string           `json:"created_by,omitempty"`
	IsActive       bool             `json:"is_active"`
	AssignedTo     SurveyAssignment `json:"assigned_to"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
