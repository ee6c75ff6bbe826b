// Command seed popula o banco com organizações fictícias para desenvolvimento.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/helper/env"
	"feedbackflow/src/infra/postgres"
	"feedbackflow/src/repositories"
	"feedbackflow/src/services/tracking"
)

var reasons = []string{"Fast answer", "Friendly staff", "Took too long", "Problem not solved", "Clear explanation"}

type seeder struct {
	logger     *slog.Logger
	client     *postgres.ReadWriteClient
	groups     *repositories.GroupRepository
	locations  *repositories.LocationRepository
	users      *repositories.UserRepository
	surveys    *repositories.SurveyRepository
	signatures *repositories.SignatureRepository
	feedback   *repositories.FeedbackRepository
}

func main() {
	numOrgs := flag.Int("orgs", 3, "Número de organizações")
	groupsPerOrg := flag.Int("groups", 4, "Grupos por organização")
	locationsPerOrg := flag.Int("locations", 3, "Locations por organização")
	usersPerOrg := flag.Int("users", 10, "Usuários por organização")
	surveysPerOrg := flag.Int("surveys", 2, "Pesquisas por organização")
	feedbackPerUser := flag.Int("feedback", 5, "Respostas de feedback por usuário")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	writeHost := env.MustGetString("DB_WRITE_HOST")
	client, err := postgres.NewReadWriteClient(postgres.Config{
		ReadHost:       writeHost,
		WriteHost:      writeHost,
		Port:           env.GetString("DB_PORT", "5432"),
		DBName:         env.MustGetString("DB_NAME"),
		Username:       env.MustGetString("DB_USER"),
		Password:       env.MustGetString("DB_PASSWORD"),
		MaxConnections: 5,
	})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	s := seeder{
		logger:     logger,
		client:     client,
		groups:     repositories.NewGroupRepository(client),
		locations:  repositories.NewLocationRepository(client),
		users:      repositories.NewUserRepository(client),
		surveys:    repositories.NewSurveyRepository(client),
		signatures: repositories.NewSignatureRepository(client),
		feedback:   repositories.NewFeedbackRepository(client),
	}

	for i := 0; i < *numOrgs; i++ {
		if err := s.seedOrganization(ctx, *groupsPerOrg, *locationsPerOrg, *usersPerOrg, max(*surveysPerOrg, 1), *feedbackPerUser); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
	}
}

func (s seeder) seedOrganization(ctx context.Context, numGroups, numLocations, numUsers, numSurveys, feedbackPerUser int) error {
	var orgID string
	err := s.client.GetWritePool().QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id`, gofakeit.Company()).Scan(&orgID)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	groups := make([]entities.Group, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		draft, err := domain.ParseGroupDraft(domain.GroupInput{
			Name:        fmt.Sprintf("%s %d", gofakeit.JobDescriptor(), i+1),
			Description: gofakeit.Sentence(8),
		})
		if err != nil {
			return err
		}
		group, err := s.groups.Create(ctx, orgID, draft)
		if err != nil {
			return err
		}
		groups = append(groups, group)
	}

	locations := make([]entities.Location, 0, numLocations)
	for i := 0; i < numLocations; i++ {
		address := gofakeit.Address()
		draft, err := domain.ParseLocationDraft(domain.LocationInput{
			Name:    fmt.Sprintf("%s Office", address.City),
			Address: address.Street,
			City:    address.City,
			State:   address.State,
			Country: address.Country,
		})
		if err != nil {
			return err
		}
		location, err := s.locations.Create(ctx, orgID, draft)
		if err != nil {
			return err
		}
		locations = append(locations, location)
	}

	roles := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser}
	users := make([]entities.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		input := domain.UserInput{
			Email:    fmt.Sprintf("%d.%s", i, faker.Email()),
			FullName: faker.Name(),
			Role:     string(roles[min(i, len(roles)-1)]),
		}
		if len(groups) > 0 {
			input.GroupID = groups[rand.Intn(len(groups))].ID
		}
		if len(locations) > 0 {
			input.LocationID = locations[rand.Intn(len(locations))].ID
		}

		draft, err := domain.ParseUserDraft(input)
		if err != nil {
			return err
		}
		user, err := s.users.Create(ctx, orgID, draft)
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	surveys := make([]entities.Survey, 0, numSurveys)
	for i := 0; i < numSurveys; i++ {
		draft, err := domain.ParseSurveyDraft(domain.SurveyInput{
			Title:       fmt.Sprintf("%s survey %d", gofakeit.BuzzWord(), i+1),
			Description: gofakeit.Sentence(10),
			Questions: []entities.SurveyQuestion{
				{ID: "rating", Type: entities.QuestionRating, Text: "How would you rate your experience?", Required: true},
				{ID: "channel", Type: entities.QuestionMultipleChoice, Text: "How did you reach us?", Options: []string{"Email", "Phone", "Chat"}},
				{ID: "comment", Type: entities.QuestionText, Text: "Anything else?"},
			},
		})
		if err != nil {
			return err
		}
		var createdBy string
		if len(users) > 0 {
			createdBy = users[0].ID
		}
		survey, err := s.surveys.Create(ctx, orgID, createdBy, draft)
		if err != nil {
			return err
		}
		surveys = append(surveys, survey)
	}

	responses := 0
	for _, user := range users {
		if user.GroupID == "" || user.LocationID == "" {
			continue
		}
		surveyID := surveys[rand.Intn(len(surveys))].ID
		token, err := tracking.Encode(tracking.Identifiers{
			SurveyID:   surveyID,
			UserID:     user.ID,
			GroupID:    user.GroupID,
			LocationID: user.LocationID,
		})
		if err != nil {
			return err
		}

		if _, err := s.signatures.Create(ctx, entities.Signature{
			OrganizationID: orgID,
			UserID:         user.ID,
			SurveyID:       surveyID,
			TrackingCode:   token,
			Style: entities.SignatureStyle{
				Name:   user.FullName,
				Email:  user.Email,
				Phone:  faker.Phonenumber(),
				Layout: entities.SignatureLayoutVertical,
			},
		}); err != nil {
			return err
		}

		for i := 0; i < feedbackPerUser; i++ {
			_, err := s.feedback.Insert(ctx, entities.FeedbackResponse{
				SurveyID:     surveyID,
				UserID:       user.ID,
				GroupID:      user.GroupID,
				LocationID:   user.LocationID,
				Rating:       gofakeit.Number(1, 5),
				Reason:       reasons[rand.Intn(len(reasons))],
				Comment:      gofakeit.Sentence(12),
				TrackingCode: token,
			})
			if err != nil {
				return err
			}
			responses++
		}
	}

	s.logger.Info("Organization seeded",
		"organization_id", orgID,
		"groups", len(groups),
		"locations", len(locations),
		"users", len(users),
		"surveys", len(surveys),
		"feedback", responses)
	return nil
}
