package domain

import (
	"strings"
	"time"

	"feedbackflow/src/domain/entities"
)

type UserInput struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	GroupID    string `json:"group_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

type UserPatchInput struct {
	Email      *string `json:"email,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Role       *string `json:"role,omitempty"`
	GroupID    *string `json:"group_id,omitempty"`
	LocationID *string `json:"location_id,omitempty"`
}

type UserDraft struct {
	Email      string
	FullName   string
	Role       Role
	GroupID    string
	LocationID string
}

type UserPatch struct {
	Email      *string
	FullName   *string
	Role       *Role
	GroupID    *string
	LocationID *string
}

func ParseUserDraft(in UserInput) (UserDraft, error) {
	v := &ValidationError{}
	draft := UserDraft{
		Email:      parseEmail(v, "email", in.Email),
		FullName:   requireLength(v, "full_name", in.FullName, 2, 120, "full name is required"),
		GroupID:    strings.TrimSpace(in.GroupID),
		LocationID: strings.TrimSpace(in.LocationID),
	}

	role, err := ParseRole(in.Role)
	if err != nil {
		v.add("role", "role must be one of admin, manager, user")
	}
	draft.Role = role

	return draft, v.orNil()
}

func ParseUserPatch(in UserPatchInput) (UserPatch, error) {
	v := &ValidationError{}
	patch := UserPatch{
		FullName:   optionalLength(v, "full_name", in.FullName, 2, 120, "full name is required"),
		GroupID:    trimmedPtr(in.GroupID),
		LocationID: trimmedPtr(in.LocationID),
	}

	if in.Email != nil {
		email := parseEmail(v, "email", *in.Email)
		patch.Email = &email
	}

	if in.Role != nil {
		role, err := ParseRole(*in.Role)
		if err != nil {
			v.add("role", "role must be one of admin, manager, user")
		}
		patch.Role = &role
	}

	if patch == (UserPatch{}) {
		v.add("patch", "at least one field must be provided")
	}
	return patch, v.orNil()
}

func (d UserDraft) Provisional(id, organizationID string, now time.Time) entities.User {
	return entities.User{
		ID:             id,
		OrganizationID: organizationID,
		Email:          d.Email,
		FullName:       d.FullName,
		Role:           string(d.Role),
		GroupID:        d.GroupID,
		LocationID:     d.LocationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (p UserPatch) ApplyTo(current entities.User, now time.Time) entities.User {
	next := current
	if p.Email != nil {
		next.Email = *p.Email
	}
	if p.FullName != nil {
		next.FullName = *p.FullName
	}
	if p.Role != nil {
		next.Role = string(*p.Role)
	}
	if p.GroupID != nil {
		next.GroupID = *p.GroupID
	}
	if p.LocationID != nil {
		next.LocationID = *p.LocationID
	}
	next.UpdatedAt = now
	return next
}
