package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jbcnews/internal/delivery"
	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/pagination"
	"jbcnews/internal/services"
)

// BreakingPusher marks an article as breaking and pushes it to every reader.
type BreakingPusher interface {
	Breaking(ctx context.Context, newsID string) (*delivery.Report, error)
}

// NewsHandler handles article requests
type NewsHandler struct {
	newsService    services.NewsServicer
	countryService services.CountryServicer
	pusher         BreakingPusher
	auditService   services.AuditServicer
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(newsService services.NewsServicer, countryService services.CountryServicer, pusher BreakingPusher, auditService services.AuditServicer) *NewsHandler {
	return &NewsHandler{
		newsService:    newsService,
		countryService: countryService,
		pusher:         pusher,
		auditService:   auditService,
	}
}

// ListNewsQuery holds the filters of the article listing
type ListNewsQuery struct {
	Country  string `form:"country" binding:"omitempty,iso_country"`
	Category string `form:"category" binding:"omitempty,uuid"`
	Breaking bool   `form:"breaking"`
}

// ListNews returns published articles, newest first
// @Summary     List news
// @Description List published articles, optionally filtered by country code and category
// @Tags        news
// @Produce     json
// @Param       country   query string false "ISO 3166-1 alpha-2 country code"
// @Param       category  query string false "Category ID"
// @Param       breaking  query bool   false "Breaking news only"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.News] "Articles"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown country"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /news [get]
func (h *NewsHandler) ListNews(c *gin.Context) {
	var query ListNewsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	filter := services.NewsFilter{CategoryID: query.Category, BreakingOnly: query.Breaking}
	if query.Country != "" {
		country, err := h.countryService.GetByCode(query.Country)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.CountryID = country.ID
	}

	news, err := h.newsService.List(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, news)
}

// GetNews returns one published article
// @Summary     Get article
// @Description Get a published article with its translations
// @Tags        news
// @Produce     json
// @Param       id path string true "Article ID"
// @Success     200 {object} models.News "Article"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /news/{id} [get]
func (h *NewsHandler) GetNews(c *gin.Context) {
	news, err := h.newsService.GetByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !news.IsPublished {
		respondWithError(c, apperrors.ErrNewsNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": news})
}

// PushBreaking marks an article as breaking and sends it to every subscribed reader
// @Summary     Push breaking news
// @Description Mark an article as breaking and push it to every subscribed chat
// @Tags        news
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Article ID"
// @Success     200 {object} delivery.Report "Delivery report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     503 {object} ErrorResponse "News bot not running"
// @Router      /news/{id}/breaking [post]
func (h *NewsHandler) PushBreaking(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	newsID := c.Param("id")
	report, err := h.pusher.Breaking(c.Request.Context(), newsID)
	if errors.Is(err, delivery.ErrNoSender) {
		h.auditService.Log(userID, services.AuditBreakingPush, "news", newsID, c.ClientIP(),
			map[string]any{"delivered": 0})
		respondWithError(c, apperrors.ErrBotDisabled)
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditBreakingPush, "news", newsID, c.ClientIP(),
		map[string]any{"recipients": report.Recipients, "delivered": report.Delivered})

	c.JSON(http.StatusOK, report)
}
