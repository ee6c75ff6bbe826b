package domain

import (
	"strings"
	"time"

	"feedbackflow/src/domain/entities"
)

// GroupInput é o corpo recebido para criar um grupo.
type GroupInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ParentGroupID string `json:"parent_group_id,omitempty"`
}

// GroupPatchInput usa ponteiros: campo ausente significa "não alterar".
type GroupPatchInput struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	ParentGroupID *string `json:"parent_group_id,omitempty"`
}

// GroupDraft é a versão validada de GroupInput.
type GroupDraft struct {
	Name          string
	Description   string
	ParentGroupID string
}

type GroupPatch struct {
	Name          *string
	Description   *string
	ParentGroupID *string
}

func ParseGroupDraft(in GroupInput) (GroupDraft, error) {
	v := &ValidationError{}
	draft := GroupDraft{
		Name:          requireLength(v, "name", in.Name, 2, 50, "group name must be at least 2 characters"),
		Description:   requireLength(v, "description", in.Description, 0, 500, ""),
		ParentGroupID: strings.TrimSpace(in.ParentGroupID),
	}
	return draft, v.orNil()
}

func ParseGroupPatch(in GroupPatchInput) (GroupPatch, error) {
	v := &ValidationError{}
	patch := GroupPatch{
		Name:          optionalLength(v, "name", in.Name, 2, 50, "group name must be at least 2 characters"),
		Description:   optionalLength(v, "description", in.Description, 0, 500, ""),
		ParentGroupID: trimmedPtr(in.ParentGroupID),
	}
	if patch.Name == nil && patch.Description == nil && patch.ParentGroupID == nil {
		v.add("patch", "at least one field must be provided")
	}
	return patch, v.orNil()
}

func (d GroupDraft) Provisional(id, organizationID string, now time.Time) entities.Group {
	return entities.Group{
		ID:             id,
		OrganizationID: organizationID,
		Name:           d.Name,
		Description:    d.Description,
		ParentGroupID:  d.ParentGroupID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (p GroupPatch) ApplyTo(current entities.Group, now time.Time) entities.Group {
	next := current
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.ParentGroupID != nil {
		next.ParentGroupID = *p.ParentGroupID
	}
	next.UpdatedAt = now
	return next
}
