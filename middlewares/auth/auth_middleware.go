package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/utils/jwt_parse"
)

// AuthMiddleware authenticates the request with an access token issued by the identity
// provider and stores "user_id" (and "email" when present) in the context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := jwt_parse.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnLogger.Warnf("Rejected request to %s: %v", c.FullPath(), err)
			code := "NO_TOKEN"
			if errors.Is(err, jwt_parse.ErrInvalidFormat) {
				code = "INVALID_AUTH_FORMAT"
			}
			abortUnauthorized(c, code, err.Error())
			return
		}

		identity, err := jwt_parse.ParseJWTToken(tokenString, secret)
		if err != nil {
			logger.WarnLogger.Warnf("Failed to parse JWT token: %v", err)
			abortUnauthorized(c, "INVALID_TOKEN", "invalid token")
			return
		}

		if _, err := uuid.Parse(identity.UserID); err != nil {
			logger.WarnLogger.Warnf("Token subject %q is not a UUID", identity.UserID)
			abortUnauthorized(c, "INVALID_TOKEN", "invalid token subject")
			return
		}

		c.Set("user_id", identity.UserID)
		if identity.Email != "" {
			c.Set("email", identity.Email)
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
