package stubs

import (
	"time"

	"feedbackflow/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type LocationStub struct {
	location entities.Location
}

func NewLocationStub() LocationStub {
	now := time.Now().UTC()
	address := gofakeit.Address()

	location := entities.Location{
		ID:             gofakeit.UUID(),
		OrganizationID: gofakeit.UUID(),
		Name:           address.City + " Office",
		Address:        address.Street,
		City:           address.City,
		State:          address.State,
		Country:        address.Country,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return LocationStub{location: location}
}

func (ls LocationStub) WithID(id string) LocationStub {
	ls.location.ID = id
	return ls
}

func (ls LocationStub) WithOrganizationID(organizationID string) LocationStub {
	ls.location.OrganizationID = organizationID
	return ls
}

func (ls LocationStub) WithName(name string) LocationStub {
	ls.location.Name = name
	return ls
}

func (ls LocationStub) Get() entities.Location {
	return ls.location
}
