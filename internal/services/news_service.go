package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
	"jbcnews/internal/pagination"
)

// newsService handles article storage and lookup.
type newsService struct {
	db *gorm.DB
}

// NewNewsService creates a new NewsServicer.
func NewNewsService(db *gorm.DB) NewsServicer {
	return &newsService{db: db}
}

// Exists reports whether an article with the source URL, or failing that the
// exact title, is already stored. Soft-deleted rows count so that a removed
// article is not ingested again.
func (s *newsService) Exists(tx *gorm.DB, sourceURL, title string) (bool, error) {
	if tx == nil {
		tx = s.db
	}
	if sourceURL != "" {
		found, err := exists(tx.Unscoped().Model(&models.News{}).Where("source_url = ?", sourceURL))
		if err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if found {
			return true, nil
		}
	}
	if title == "" {
		return false, nil
	}
	found, err := exists(tx.Unscoped().Model(&models.News{}).Where("title = ?", title))
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return found, nil
}

// Create inserts an article. A unique source URL conflict is reported as a duplicate.
func (s *newsService) Create(tx *gorm.DB, news *models.News) error {
	if tx == nil {
		tx = s.db
	}
	if strings.TrimSpace(news.Title) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if news.SourceURL != nil && *news.SourceURL == "" {
		news.SourceURL = nil
	}
	if news.PublishedAt.IsZero() {
		news.PublishedAt = time.Now()
	}
	if news.Translations.Data() == nil {
		news.Translations = datatypes.NewJSONType(models.Translations{})
	}

	if err := tx.Create(news).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Wrap(apperrors.ErrDuplicateNews, err)
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateStaffArticle publishes an article written by a staff member. The
// article takes the author's country.
func (s *newsService) CreateStaffArticle(author *models.User, in ArticleInput) (*models.News, error) {
	if author == nil || !author.Role.CanAuthor() {
		return nil, apperrors.ErrForbidden
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Summary) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title and summary are required")
	}

	var category models.Category
	if err := s.db.Where("id = ?", in.CategoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	authorID := author.ID
	news := &models.News{
		Title:           strings.TrimSpace(in.Title),
		Summary:         strings.TrimSpace(in.Summary),
		Content:         strings.TrimSpace(in.Content),
		SourceName:      "JBC News",
		CategoryID:      &category.ID,
		CountryID:       author.CountryID,
		AuthorID:        &authorID,
		IsPublished:     true,
		IsAutoGenerated: false,
		PublishedAt:     time.Now(),
		Translations:    datatypes.NewJSONType(models.Translations{}),
	}

	if err := s.Create(s.db, news); err != nil {
		return nil, err
	}
	news.Category = &category
	return news, nil
}

// GetByID retrieves an article with its category and country
func (s *newsService) GetByID(id string) (*models.News, error) {
	var news models.News
	if err := s.db.Preload("Category").Preload("Country").Where("id = ?", id).First(&news).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNewsNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &news, nil
}

// List returns published articles, newest first, one page at a time
func (s *newsService) List(filter NewsFilter, page pagination.PageRequest) (*pagination.PageResponse[models.News], error) {
	scope := func() *gorm.DB { return s.published(filter) }
	resp, err := pagination.Find[models.News](scope, page, "published_at DESC", "Category", "Country")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// Latest returns up to limit published articles, newest first
func (s *newsService) Latest(filter NewsFilter, limit int) ([]models.News, error) {
	var items []models.News
	if err := s.published(filter).
		Preload("Category").
		Preload("Country").
		Order("published_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// SetPublished publishes or withdraws an article
func (s *newsService) SetPublished(id string, published bool) (*models.News, error) {
	if err := s.update(id, map[string]any{"is_published": published}); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// MarkBreaking flags an article as breaking news. Breaking articles are always published.
func (s *newsService) MarkBreaking(id string) (*models.News, error) {
	if err := s.update(id, map[string]any{"is_breaking": true, "is_published": true}); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// SetTranslations replaces the stored translation map of an article
func (s *newsService) SetTranslations(id string, translations models.Translations) error {
	if translations == nil {
		translations = models.Translations{}
	}
	return s.update(id, map[string]any{"translations": datatypes.NewJSONType(translations)})
}

func (s *newsService) update(id string, values map[string]any) error {
	result := s.db.Model(&models.News{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNewsNotFound
	}
	return nil
}

func (s *newsService) published(filter NewsFilter) *gorm.DB {
	query := s.db.Where("is_published = ?", true)
	if filter.CountryID != "" {
		query = query.Where("country_id = ?", filter.CountryID)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.BreakingOnly {
		query = query.Where("is_breaking = ?", true)
	}
	return query
}
