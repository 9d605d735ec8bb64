package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
)

// countryService reads country reference data.
type countryService struct {
	db *gorm.DB
}

// NewCountryService creates a new CountryServicer.
func NewCountryService(db *gorm.DB) CountryServicer {
	return &countryService{db: db}
}

// List returns every country ordered by name
func (s *countryService) List() ([]models.Country, error) {
	var countries []models.Country
	if err := s.db.Order("name ASC").Find(&countries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return countries, nil
}

// GetByID retrieves a country by ID
func (s *countryService) GetByID(id string) (*models.Country, error) {
	var country models.Country
	if err := s.db.Where("id = ?", id).First(&country).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &country, nil
}

// GetByCode retrieves a country by its ISO code, case-insensitively
func (s *countryService) GetByCode(code string) (*models.Country, error) {
	var country models.Country
	if err := s.db.Where("code = ?", strings.ToUpper(code)).First(&country).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &country, nil
}
