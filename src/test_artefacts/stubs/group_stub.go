package stubs

import (
	"time"

	"feedbackflow/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type GroupStub struct {
	group entities.Group
}

func NewGroupStub() GroupStub {
	now := time.Now().UTC()

	group := entities.Group{
		ID:             gofakeit.UUID(),
		OrganizationID: gofakeit.UUID(),
		Name:           gofakeit.JobDescriptor() + " Team",
		Description:    gofakeit.Sentence(8),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return GroupStub{group: group}
}

func (gs GroupStub) WithID(id string) GroupStub {
	gs.group.ID = id
	return gs
}

func (gs GroupStub) WithOrganizationID(organizationID string) GroupStub {
	gs.group.OrganizationID = organizationID
	return gs
}

func (gs GroupStub) WithName(name string) GroupStub {
	gs.group.Name = name
	return gs
}

func (gs GroupStub) WithUpdatedAt(updatedAt time.Time) GroupStub {
	gs.group.UpdatedAt = updatedAt
	return gs
}

func (gs GroupStub) Get() entities.Group {
	return gs.group
}
