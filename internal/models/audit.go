package models

import "time"

// AuditAction defines the kind of change an audit entry records
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionImport AuditAction = "IMPORT"
)

// AuditEntry is an append-only record of a change made by a user. Entries are
// never updated or deleted.
type AuditEntry struct {
	ID             int         `json:"id" db:"id"`
	OrganizationID int         `json:"organization_id" db:"organization_id"`
	UserID         int         `json:"user_id" db:"user_id"`
	EntityType     string      `json:"entity_type" db:"entity_type"`
	EntityID       int         `json:"entity_id" db:"entity_id"`
	Action         AuditAction `json:"action" db:"action"`
	Details        string      `json:"details,omitempty" db:"details"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
