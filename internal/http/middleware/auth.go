package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notify_hub/internal/auth"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/resp"
)

const (
	ctxKeyUserID   = "user_id"
	ctxKeyUsername = "username"
)

// BearerAuth validates the Authorization header and stores the subject on
// the gin context.
func BearerAuth(validator auth.TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: resp.CodeUnauthorized, Message: "bearer token required"})
			return
		}

		subject, err := validator.Validate(token)
		if err != nil {
			logger.Warn("bearer token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: resp.CodeUnauthorized, Message: "invalid token"})
			return
		}

		c.Set(ctxKeyUserID, subject.UserID)
		c.Set(ctxKeyUsername, subject.Username)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

func Username(c *gin.Context) string {
	return c.GetString(ctxKeyUsername)
}
