package models

import "gorm.io/datatypes"

// AuditLog records staff and admin operations on articles, tickets and accounts.
type AuditLog struct {
	Base
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Changes      datatypes.JSON `gorm:"not null;default:'{}'" json:"changes,omitempty"`
}
