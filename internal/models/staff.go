package models

// Staff is the profile owned by every staff account
type Staff struct {
	Base
	UserID     string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	StaffID    string `gorm:"size:8;uniqueIndex;not null" json:"staff_id"`
	Department string `json:"department,omitempty"`
}
