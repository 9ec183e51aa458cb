package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/logger"
)

// ErrorHandler renders errors attached via c.Error as the uniform error
// payload, with the status code derived from the error mark. Handlers only
// call c.Error(err) and return; this middleware does the rest.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"error", err,
			)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
