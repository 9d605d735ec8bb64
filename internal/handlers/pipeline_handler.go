package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/ingest"
	"jbcnews/internal/services"
)

// Ingester runs the news ingestion pipeline.
type Ingester interface {
	RunAll(ctx context.Context) ([]ingest.RunResult, error)
	RunCountryCode(ctx context.Context, code string) (ingest.RunResult, error)
}

// PipelineHandler lets machine clients trigger ingestion
type PipelineHandler struct {
	ingester     Ingester
	auditService services.AuditServicer
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(ingester Ingester, auditService services.AuditServicer) *PipelineHandler {
	return &PipelineHandler{ingester: ingester, auditService: auditService}
}

// IngestAll runs ingestion for every country
// @Summary     Ingest all countries
// @Description Fetch, deduplicate, store and translate headlines for every country
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {array}  ingest.RunResult "Per-country results"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/ingest [post]
func (h *PipelineHandler) IngestAll(c *gin.Context) {
	results, err := h.ingester.RunAll(c.Request.Context())
	if err != nil && len(results) == 0 {
		respondWithError(c, err)
		return
	}

	created := 0
	for _, r := range results {
		created += r.Created
	}
	h.auditService.Log(services.SystemActorID, services.AuditIngest, "pipeline", "", c.ClientIP(),
		map[string]any{"countries": len(results), "created": created})

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// IngestCountry runs ingestion for one country
// @Summary     Ingest one country
// @Description Fetch, deduplicate, store and translate headlines for one country
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Param       country path string true "ISO 3166-1 alpha-2 country code"
// @Success     200 {object} ingest.RunResult "Result"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Unknown country"
// @Router      /pipeline/ingest/{country} [post]
func (h *PipelineHandler) IngestCountry(c *gin.Context) {
	result, err := h.ingester.RunCountryCode(c.Request.Context(), c.Param("country"))
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondWithError(c, err)
		return
	}
	// a failed fetch is reported in the result

	h.auditService.Log(services.SystemActorID, services.AuditIngest, "pipeline", result.Country, c.ClientIP(),
		map[string]any{"created": result.Created, "failure": result.Failure})

	c.JSON(http.StatusOK, gin.H{"result": result})
}
