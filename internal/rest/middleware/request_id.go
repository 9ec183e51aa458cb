package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// RequestIDMiddleware assigns each request an ID, honoring one supplied by
// the caller, and echoes it back in the response headers.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)

	c.Next()
}
