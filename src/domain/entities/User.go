package entities

import "time"

// User é o perfil de um membro da organização (tabela profiles).
// GroupID e LocationID são opcionais.
type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	GroupID        string    `json:"group_id,omitempty"`
	LocationID     string    `json:"location_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u User) EntityID() string        { return u.ID }
func (u User) LastModified() time.Time { return u.UpdatedAt }
