package domain

import (
	"time"

	"feedbackflow/src/domain/entities"
)

type LocationInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type LocationPatchInput struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Country *string `json:"country,omitempty"`
}

type LocationDraft struct {
	Name    string
	Address string
	City    string
	State   string
	Country string
}

type LocationPatch struct {
	Name    *string
	Address *string
	City    *string
	State   *string
	Country *string
}

func ParseLocationDraft(in LocationInput) (LocationDraft, error) {
	v := &ValidationError{}
	draft := LocationDraft{
		Name:    requireLength(v, "name", in.Name, 2, 100, "location name is required"),
		Address: requireLength(v, "address", in.Address, 5, 200, "address is required"),
		City:    requireLength(v, "city", in.City, 2, 100, "city is required"),
		State:   requireLength(v, "state", in.State, 2, 100, "state is required"),
		Country: requireLength(v, "country", in.Country, 2, 100, "country is required"),
	}
	return draft, v.orNil()
}

func ParseLocationPatch(in LocationPatchInput) (LocationPatch, error) {
	v := &ValidationError{}
	patch := LocationPatch{
		Name:    optionalLength(v, "name", in.Name, 2, 100, "location name is required"),
		Address: optionalLength(v, "address", in.Address, 5, 200, "address is required"),
		City:    optionalLength(v, "city", in.City, 2, 100, "city is required"),
		State:   optionalLength(v, "state", in.State, 2, 100, "state is required"),
		Country: optionalLength(v, "country", in.Country, 2, 100, "country is required"),
	}
	if patch == (LocationPatch{}) {
		v.add("patch", "at least one field must be provided")
	}
	return patch, v.orNil()
}

func (d LocationDraft) Provisional(id, organizationID string, now time.Time) entities.Location {
	return entities.Location{
		ID:             id,
		OrganizationID: organizationID,
		Name:           d.Name,
		Address:        d.Address,
		City:           d.City,
		State:          d.State,
		Country:        d.Country,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (p LocationPatch) ApplyTo(current entities.Location, now time.Time) entities.Location {
	next := current
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Address != nil {
		next.Address = *p.Address
	}
	if p.City != nil {
		next.City = *p.City
	}
	if p.State != nil {
		next.State = *p.State
	}
	if p.Country != nil {
		next.Country = *p.Country
	}
	next.UpdatedAt = now
	return next
}
