package entities

import "time"

// Group agrupa usuários de uma organização (times, departamentos).
type Group struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ParentGroupID  string    `json:"parent_group_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (g Group) EntityID() string        { return g.ID }
func (g Group) LastModified() time.Time { return g.UpdatedAt }
