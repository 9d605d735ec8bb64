package database

import (
	"fmt"

	"jbcnews/internal/models"

	"gorm.io/gorm"
)

// DefaultCountries are the countries served at launch.
var DefaultCountries = []models.Country{
	{Name: "India", Code: "IN", Timezone: "Asia/Kolkata"},
	{Name: "Pakistan", Code: "PK", Timezone: "Asia/Karachi"},
	{Name: "USA", Code: "US", Timezone: "America/New_York"},
	{Name: "Saudi Arabia", Code: "SA", Timezone: "Asia/Riyadh"},
	{Name: "Sri Lanka", Code: "LK", Timezone: "Asia/Colombo"},
}

// DefaultCategories are the editorial sections created on first start.
var DefaultCategories = []models.Category{
	{Name: "Politics", Description: "Political news and updates"},
	{Name: "Business", Description: "Business and economy news"},
	{Name: "Technology", Description: "Technology and innovation news"},
	{Name: "Sports", Description: "Sports news and updates"},
	{Name: "Entertainment", Description: "Entertainment and celebrity news"},
	{Name: "Health", Description: "Health and wellness news"},
	{Name: "Science", Description: "Science and research news"},
	{Name: "World", Description: "International news"},
}

// Seed inserts reference countries and categories that are missing.
// Existing rows are left untouched, so it is safe to run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range DefaultCountries {
			country := c
			if err := tx.Where(models.Country{Code: country.Code}).
				Attrs(models.Country{Name: country.Name, Timezone: country.Timezone}).
				FirstOrCreate(&country).Error; err != nil {
				return fmt.Errorf("failed to seed country %s: %w", c.Code, err)
			}
		}
		for _, c := range DefaultCategories {
			category := c
			if err := tx.Where(models.Category{Name: category.Name}).
				Attrs(models.Category{Description: category.Description}).
				FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
			}
		}
		return nil
	})
}
