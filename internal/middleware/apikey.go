package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/services"
)

// APIKeyHeader carries the machine client key of the pipeline endpoints.
const APIKeyHeader = "X-API-Key"

// PipelineAuthMiddleware admits requests whose X-API-Key matches apiKey and
// records them as made by the system actor. An empty apiKey disables the
// routes it guards.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrPipelineDisabled)
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Set(UserIDKey, services.SystemActorID)
		c.Next()
	}
}
