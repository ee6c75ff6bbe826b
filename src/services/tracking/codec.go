// Package tracking codifica o contexto de origem de um link de feedback
// (survey, user, group, location) em um token opaco usado em /feedback/{token}.
package tracking

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"feedbackflow/src/domain"
)

// Identifiers são os quatro campos obrigatórios do tracking code.
type Identifiers struct {
	SurveyID   string `json:"surveyId"`
	UserID     string `json:"userId"`
	GroupID    string `json:"groupId"`
	LocationID string `json:"locationId"`
}

// Context é o payload decodificado de um token válido.
type Context struct {
	Identifiers
	Timestamp time.Time `json:"timestamp"`
}

// maxTokenLength limita o trabalho feito com entrada pública não confiável.
const maxTokenLength = 4096

var decoders = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// wireContext lê o timestamp cru: ele não participa da validade do token.
type wireContext struct {
	Identifiers
	Timestamp json.RawMessage `json:"timestamp"`
}

// Identificadores são opacos: só a string vazia é recusada.
func (ids Identifiers) validate() error {
	v := &domain.ValidationError{Fields: map[string]string{}}
	if ids.SurveyID == "" {
		v.Fields["surveyId"] = "survey id is required"
	}
	if ids.UserID == "" {
		v.Fields["userId"] = "user id is required"
	}
	if ids.GroupID == "" {
		v.Fields["groupId"] = "group id is required"
	}
	if ids.LocationID == "" {
		v.Fields["locationId"] = "location id is required"
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// Encode carimba o horário atual e gera o token.
func Encode(ids Identifiers) (string, error) {
	return EncodeAt(ids, time.Now())
}

func EncodeAt(ids Identifiers, at time.Time) (string, error) {
	if err := ids.validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(Context{Identifiers: ids, Timestamp: at.UTC()})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode é total: qualquer token malformado, estrangeiro ou sem um dos quatro
// identificadores resulta em (Context{}, false).
// Tokens antigos gerados com base64 padrão (btoa) também são aceitos.
func Decode(token string) (Context, bool) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxTokenLength {
		return Context{}, false
	}

	for _, encoding := range decoders {
		payload, err := encoding.DecodeString(token)
		if err != nil {
			continue
		}

		var decoded wireContext
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return Context{}, false
		}
		if decoded.validate() != nil {
			return Context{}, false
		}
		return Context{Identifiers: decoded.Identifiers, Timestamp: parseTimestamp(decoded.Timestamp)}, true
	}

	return Context{}, false
}

// parseTimestamp aceita RFC3339 ou epoch em milissegundos (Date.now()).
// Qualquer outro formato vira o tempo zero.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		at, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}
		}
		return at
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis).UTC()
	}

	return time.Time{}
}
