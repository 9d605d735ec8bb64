package models

// Country is a reference row that users and articles point at
type Country struct {
	Base
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Code     string `gorm:"size:2;uniqueIndex;not null" json:"code"`
	Timezone string `gorm:"not null;default:'UTC'" json:"timezone"`
}
