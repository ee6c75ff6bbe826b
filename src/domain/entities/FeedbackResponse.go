package entities

import "time"

// FeedbackResponse é uma resposta anônima vinda do link de feedback.
// O contexto (survey/user/group/location) vem do tracking code.
type FeedbackResponse struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	SurveyID       string            `json:"survey_id"`
	UserID         string            `json:"user_id"`
	GroupID        string            `json:"group_id"`
	LocationID     string            `json:"location_id"`
	Rating         int               `json:"rating"`
	Reason         string            `json:"reason,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
	Contact        bool              `json:"contact"`
	Email          string            `json:"email,omitempty"`
	TrackingCode   string            `json:"tracking_code"`
	CreatedAt      time.Time         `json:"created_at"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type FeedbackStats struct {
	TotalResponses     int           `json:"total_responses"`
	AverageRating      float64       `json:"average_rating"`
	RatingDistribution map[int]int   `json:"rating_distribution"`
	CommonReasons      []ReasonCount `json:"common_reasons"`
}
