package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediastash/mediastash/utils"
)

// RequestID tags every request with an id for log correlation, honoring one
// supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(utils.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Header(utils.RequestIDHeader, id)
		ctx.Next()
	}
}
