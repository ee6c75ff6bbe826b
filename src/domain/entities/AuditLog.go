package entities

import "time"

// AuditLog registra quem fez o quê em uma organização. UserID fica vazio
// para ações anônimas (envio de feedback pelo link público).
type AuditLog struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id,omitempty"`
	Action         string         `json:"action"`
	Metadata       map[string]any `json:"metadata"`
	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
