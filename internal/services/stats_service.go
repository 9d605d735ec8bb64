package services

import (
	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
)

// statsService aggregates site counters for the staff bot.
type statsService struct {
	db *gorm.DB
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(db *gorm.DB) StatsServicer {
	return &statsService{db: db}
}

// Snapshot counts users, articles and open tickets
func (s *statsService) Snapshot() (*Stats, error) {
	var stats Stats
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Users, s.db.Model(&models.User{})},
		{&stats.Articles, s.db.Model(&models.News{})},
		{&stats.Published, s.db.Model(&models.News{}).Where("is_published = ?", true)},
		{&stats.Breaking, s.db.Model(&models.News{}).Where("is_breaking = ?", true)},
		{&stats.OpenTickets, s.db.Model(&models.SupportTicket{}).Where("status <> ?", models.TicketStatusClosed)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &stats, nil
}
