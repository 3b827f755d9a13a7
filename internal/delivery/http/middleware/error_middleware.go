package middleware

import (
	"errors"
	"net/http"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/pkg/apperror"
	"go-studybuddy-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, nil)
				return
			}

			// Never expose internal error details to clients. Log the real
			// error server-side and hand the user a generic message.
			reqID, _ := c.Get("RequestID")
			logger.Log.Error("unhandled request error",
				"request_id", reqID, "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
