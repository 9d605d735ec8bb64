package models

import "time"

// Role is the access level of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// CanAuthor reports whether the role may publish articles.
func (r Role) CanAuthor() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents a reader, staff member or administrator account
type User struct {
	Base
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        Role       `gorm:"not null;default:'user'" json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Location    string     `json:"location,omitempty"`
	CountryID   *string    `gorm:"type:uuid;index" json:"country_id,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	TelegramID  *int64     `gorm:"uniqueIndex" json:"telegram_id,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Country     *Country   `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Staff       *Staff     `gorm:"foreignKey:UserID" json:"staff,omitempty"`
}
