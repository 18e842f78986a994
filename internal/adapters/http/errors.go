package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/dto"
)

// AbortWithErrorCode stops the chain and writes the envelope for code, with
// the status HTTPStatusFromCode gives it.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.HTTPStatusFromCode(code),
		dto.NewErrorResponse(code, message).WithTraceID(dto.GetTraceID(c)))
}

func routeNotFound(c *gin.Context) {
	AbortWithErrorCode(c, dto.ErrorCodeNotFound, "route not found")
}
