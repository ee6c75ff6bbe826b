// Package signature gera a assinatura de e-mail com a barra de avaliação que
// leva ao link de feedback.
package signature

import (
	"bytes"
	_ "embed"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/services/tracking"
)

type (
	Layout = entities.SignatureLayout
	Style  = entities.SignatureStyle
)

const (
	LayoutVertical   = entities.SignatureLayoutVertical
	LayoutHorizontal = entities.SignatureLayoutHorizontal
)

const defaultColor = "#2563eb"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type ratingLink struct {
	Rating int
	Label  string
	URL    string
}

type view struct {
	Style
	Horizontal bool
	Ratings    []ratingLink
}

var ratingLabels = [...]string{"Very poor", "Poor", "Okay", "Good", "Excellent"}

//go:embed signature.html.tmpl
var templateSource string

var signatureTemplate = template.Must(template.New("signature").Parse(templateSource))

// Normalize aplica os defaults de layout e cor e valida os campos obrigatórios.
func Normalize(s Style) (Style, error) {
	v := &domain.ValidationError{Fields: map[string]string{}}

	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	if s.Name == "" {
		v.Fields["name"] = "name is required"
	}
	if s.Email == "" {
		v.Fields["email"] = "email is required"
	}

	switch s.Layout {
	case "":
		s.Layout = LayoutVertical
	case LayoutVertical, LayoutHorizontal:
	default:
		v.Fields["layout"] = "layout must be vertical or horizontal"
	}

	if s.PrimaryColor == "" {
		s.PrimaryColor = defaultColor
	} else if !hexColor.MatchString(s.PrimaryColor) {
		v.Fields["primary_color"] = "primary color must be a hex color such as #2563eb"
	}

	if len(v.Fields) > 0 {
		return s, v
	}
	return s, nil
}

// Render devolve o HTML da assinatura. O token precisa ser um tracking code
// válido; cada passo da barra aponta para /feedback/{token}/{rating}.
func Render(style Style, token string, baseURL string) (string, error) {
	if _, ok := tracking.Decode(token); !ok {
		return "", domain.ErrInvalidTrackingCode
	}

	style, err := Normalize(style)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(baseURL, "/")
	ratings := make([]ratingLink, 0, len(ratingLabels))
	for i, label := range ratingLabels {
		rating := i + 1
		ratings = append(ratings, ratingLink{
			Rating: rating,
			Label:  strconv.Itoa(rating) + " - " + label,
			URL:    base + tracking.RatingPath(token, rating),
		})
	}

	var out bytes.Buffer
	if err := signatureTemplate.Execute(&out, view{
		Style:      style,
		Horizontal: style.Layout == LayoutHorizontal,
		Ratings:    ratings,
	}); err != nil {
		return "", err
	}
	return out.String(), nil
}
