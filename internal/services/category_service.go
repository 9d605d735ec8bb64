package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// List returns every category ordered by name
func (s *categoryService) List() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (s *categoryService) GetByID(id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ResolveCategory returns the category with the exact name, creating it when
// missing. An empty name resolves to the default category. The insert runs in
// a savepoint so that losing a creation race to another writer re-reads the
// winner instead of aborting the caller's transaction.
func (s *categoryService) ResolveCategory(tx *gorm.DB, name string) (*models.Category, error) {
	if tx == nil {
		tx = s.db
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultCategoryName
	}

	if category, err := findCategoryByName(tx, name); err == nil {
		return category, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category := &models.Category{Name: name}
	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(category).Error
	})
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := findCategoryByName(tx, name)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return existing, nil
}

// findCategoryByName also sees soft-deleted rows, since the unique name index
// covers them. A deleted match is restored.
func findCategoryByName(tx *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	if err := tx.Unscoped().Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	if category.DeletedAt.Valid {
		if err := tx.Unscoped().Model(&category).Update("deleted_at", nil).Error; err != nil {
			return nil, err
		}
		category.DeletedAt = gorm.DeletedAt{}
	}
	return &category, nil
}
