package http

import (
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/services/tracking"
)

type ErrorDTO struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type HealthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type SessionDTO struct {
	OrganizationID string `json:"organization_id"`
	Groups         int    `json:"groups"`
	Locations      int    `json:"locations"`
	Users          int    `json:"users"`
}

type TrackingCodeRequestDTO struct {
	SurveyID   string `json:"survey_id"`
	UserID     string `json:"user_id"`
	GroupID    string `json:"group_id"`
	LocationID string `json:"location_id"`
}

type TrackingCodeDTO struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// FeedbackLinkDTO é o que a página pública precisa para montar o formulário.
type FeedbackLinkDTO struct {
	SurveyID   string    `json:"survey_id"`
	UserID     string    `json:"user_id"`
	GroupID    string    `json:"group_id"`
	LocationID string    `json:"location_id"`
	IssuedAt   time.Time `json:"issued_at"`
	Rating     int       `json:"rating,omitempty"`
	SubmitURL  string    `json:"submit_url"`
}

type SignaturePreviewRequestDTO struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Logo         string `json:"logo,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	Layout       string `json:"layout,omitempty"`
}

type MeDTO struct {
	Role           domain.Role         `json:"role"`
	OrganizationID string              `json:"organization_id"`
	UserID         string              `json:"user_id"`
	Permissions    []domain.Permission `json:"permissions"`
}

// DeletedSurveysDTO é a resposta da exclusão em lote.
type DeletedSurveysDTO struct {
	Deleted []string `json:"deleted"`
}

func toFeedbackLinkDTO(decoded tracking.Context, rating int, submitURL string) FeedbackLinkDTO {
	return FeedbackLinkDTO{
		SurveyID:   decoded.SurveyID,
		UserID:     decoded.UserID,
		GroupID:    decoded.GroupID,
		LocationID: decoded.LocationID,
		IssuedAt:   decoded.Timestamp,
		Rating:     rating,
		SubmitURL:  submitURL,
	}
}
