package models

import (
	"time"

	"gorm.io/datatypes"
)

// Translation is the localized headline of an article
type Translation struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Translations maps a language code to its translation
type Translations map[string]Translation

// News represents a news article, ingested or written by staff
type News struct {
	Base
	Title           string                           `gorm:"not null;index" json:"title"`
	Summary         string                           `json:"summary"`
	Content         string                           `json:"content,omitempty"`
	ImageURL        string                           `json:"image_url,omitempty"`
	SourceURL       *string                          `gorm:"uniqueIndex" json:"source_url,omitempty"`
	SourceName      string                           `json:"source_name,omitempty"`
	CategoryID      *string                          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	CountryID       *string                          `gorm:"type:uuid;index" json:"country_id,omitempty"`
	AuthorID        *string                          `gorm:"type:uuid" json:"author_id,omitempty"`
	IsBreaking      bool                             `gorm:"default:false" json:"is_breaking"`
	IsPublished     bool                             `gorm:"default:false" json:"is_published"`
	IsAutoGenerated bool                             `gorm:"default:false" json:"is_auto_generated"`
	PublishedAt     time.Time                        `gorm:"index" json:"published_at"`
	Translations    datatypes.JSONType[Translations] `json:"translations"`
	Category        *Category                        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Country         *Country                         `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

// TranslationFor returns the translation stored for lang, if any.
func (n *News) TranslationFor(lang string) (Translation, bool) {
	tr, ok := n.Translations.Data()[lang]
	if !ok || tr.Title == "" {
		return Translation{}, false
	}
	return tr, true
}
