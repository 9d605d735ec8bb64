package models

// DefaultCategoryName is used for ingested articles that carry no category
const DefaultCategoryName = "General"

// Category groups news articles. Names are unique and case-sensitive.
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description,omitempty"`
}
