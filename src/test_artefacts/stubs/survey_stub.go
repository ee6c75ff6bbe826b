package stubs

import (
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type SurveyStub struct {
	survey entities.Survey
}

func NewSurveyStub() SurveyStub {
	now := time.Now().UTC()

	survey := entities.Survey{
		ID:             gofakeit.UUID(),
		OrganizationID: gofakeit.UUID(),
		Title:          gofakeit.Sentence(3),
		Description:    gofakeit.Sentence(10),
		Questions: []entities.SurveyQuestion{
			{ID: "q1", Type: entities.QuestionRating, Text: "How satisfied are you?", Required: true},
		},
		Branding:  entities.SurveyBranding{PrimaryColor: domain.DefaultPrimaryColor, SecondaryColor: domain.DefaultSecondColor},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return SurveyStub{survey: survey}
}

func (ss SurveyStub) WithID(id string) SurveyStub {
	ss.survey.ID = id
	return ss
}

func (ss SurveyStub) WithOrganizationID(organizationID string) SurveyStub {
	ss.survey.OrganizationID = organizationID
	return ss
}

func (ss SurveyStub) WithTitle(title string) SurveyStub {
	ss.survey.Title = title
	return ss
}

func (ss SurveyStub) Get() entities.Survey {
	return ss.survey
}
