package domain

import (
	"strings"

	"feedbackflow/src/domain/entities"
)

// SignatureInput é o corpo para salvar uma assinatura. O tracking code não
// vem do cliente: é emitido a partir do perfil de quem salva.
type SignatureInput struct {
	SurveyID string                  `json:"survey_id"`
	Style    entities.SignatureStyle `json:"style"`
}

type SignatureDraft struct {
	SurveyID string
	Style    entities.SignatureStyle
}

// ParseSignatureDraft só confere a pesquisa; o estilo é normalizado pelo
// renderizador da assinatura.
func ParseSignatureDraft(in SignatureInput) (SignatureDraft, error) {
	v := &ValidationError{}
	draft := SignatureDraft{SurveyID: strings.TrimSpace(in.SurveyID), Style: in.Style}
	if draft.SurveyID == "" {
		v.add("survey_id", "survey id is required")
	}
	return draft, v.orNil()
}
