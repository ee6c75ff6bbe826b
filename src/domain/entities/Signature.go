package entities

import "time"

type SignatureLayout string

const (
	SignatureLayoutVertical   SignatureLayout = "vertical"
	SignatureLayoutHorizontal SignatureLayout = "horizontal"
)

type SignatureStyle struct {
	Name         string          `json:"name"`
	Title        string          `json:"title,omitempty"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Logo         string          `json:"logo,omitempty"`
	PrimaryColor string          `json:"primary_color,omitempty"`
	Layout       SignatureLayout `json:"layout,omitempty"`
}

// Signature é a assinatura de e-mail salva por um usuário. TrackingCode é
// emitido na criação a partir do perfil (group e location) do dono.
type Signature struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	SurveyID       string         `json:"survey_id"`
	TrackingCode   string         `json:"tracking_code"`
	Style          SignatureStyle `json:"style"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
