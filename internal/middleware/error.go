package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/logger"
)

// ErrorHandler returns a Gin middleware that renders the last error set on
// the Gin context. Handlers that write their own errors are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError writes {"error":{"code","message"}} for err. AppErrors keep their
// status, code and message; anything else is logged and becomes a generic
// internal error so details never reach the client.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}

	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// abortWithError writes err and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	WriteError(c, err)
	c.Abort()
}
