package tracking

import (
	"net/url"
	"strconv"
	"strings"
)

const feedbackPrefix = "/feedback/"

func FeedbackPath(token string) string {
	return feedbackPrefix + url.PathEscape(token)
}

// RatingPath é o link de cada estrela da assinatura: /feedback/{token}/{rating}.
func RatingPath(token string, rating int) string {
	return FeedbackPath(token) + "/" + strconv.Itoa(rating)
}

// FeedbackURL junta a base pública do dashboard com o caminho do token.
func FeedbackURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + FeedbackPath(token)
}

// TokenFromPath extrai o token de /feedback/{token} ou /feedback/{token}/{rating}.
// Aceita também uma URL completa.
func TokenFromPath(path string) (string, bool) {
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}

	idx := strings.Index(path, feedbackPrefix)
	if idx < 0 {
		return "", false
	}

	rest := path[idx+len(feedbackPrefix):]
	token, _, _ := strings.Cut(rest, "/")
	if token == "" {
		return "", false
	}

	unescaped, err := url.PathUnescape(token)
	if err != nil {
		return "", false
	}
	return unescaped, true
}
