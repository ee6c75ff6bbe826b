package stubs

import (
	"strings"
	"time"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"

	"github.com/go-faker/faker/v4"
)

type UserStub struct {
	user entities.User
}

func NewUserStub() UserStub {
	now := time.Now().UTC()

	user := entities.User{
		ID:             faker.UUIDHyphenated(),
		OrganizationID: faker.UUIDHyphenated(),
		Email:          strings.ToLower(faker.Email()),
		FullName:       faker.Name(),
		Role:           string(domain.RoleUser),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return UserStub{user: user}
}

func (us UserStub) WithID(id string) UserStub {
	us.user.ID = id
	return us
}

func (us UserStub) WithOrganizationID(organizationID string) UserStub {
	us.user.OrganizationID = organizationID
	return us
}

func (us UserStub) WithRole(role domain.Role) UserStub {
	us.user.Role = string(role)
	return us
}

func (us UserStub) WithGroupID(groupID string) UserStub {
	us.user.GroupID = groupID
	return us
}

func (us UserStub) WithLocationID(locationID string) UserStub {
	us.user.LocationID = locationID
	return us
}

func (us UserStub) Get() entities.User {
	return us.user
}
